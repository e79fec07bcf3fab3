package common

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner.
func PrintBanner(cfg *Config, logger arbor.ILogger) {
	version := GetVersion()
	serviceURL := fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)

	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorGreen).
		SetTextColor(banner.ColorWhite).
		SetBold(true).
		SetWidth(80)

	fmt.Printf("\n")
	b.PrintTopLine()
	b.PrintCenteredText("LEADSCOUT")
	b.PrintCenteredText("Lead Qualification Supervisor")
	b.PrintSeparatorLine()
	b.PrintKeyValue("Version", version, 15)
	b.PrintKeyValue("Environment", cfg.Environment, 15)
	b.PrintKeyValue("Server URL", serviceURL, 15)
	b.PrintKeyValue("Max Rounds", fmt.Sprintf("%d", cfg.Supervisor.MaxRounds), 15)
	b.PrintBottomLine()
	fmt.Printf("\n")

	logger.Info().
		Str("version", version).
		Str("environment", cfg.Environment).
		Str("server_url", serviceURL).
		Int("max_rounds", cfg.Supervisor.MaxRounds).
		Int("max_worker_retries", cfg.Supervisor.MaxWorkerRetries).
		Msg("leadscout started")
}
