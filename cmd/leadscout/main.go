package main

import (
	"fmt"
	"os"

	"github.com/ternarybob/arbor"

	"github.com/leadscoutai/leadscout/internal/app"
	"github.com/leadscoutai/leadscout/internal/common"
)

// Global state mirroring the teacher's cmd/quaero/main.go: config and
// logger are resolved once at startup in a fixed order (defaults ->
// file -> CLI overrides) and handed to whichever subcommand runs.
var (
	config *common.Config
	logger arbor.ILogger
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	subcommand := os.Args[1]
	args := os.Args[2:]

	switch subcommand {
	case "run":
		runCmd(args)
	case "serve":
		serveCmd(args)
	case "schedule":
		scheduleCmd(args)
	case "history":
		historyCmd(args)
	case "report":
		reportCmd(args)
	case "version", "-version", "--version":
		fmt.Printf("leadscout version %s\n", common.GetVersion())
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `leadscout - lead qualification supervisor

Usage:
  leadscout run -product "..." -target 20 [-config leadscout.toml]
  leadscout serve -port 8090 [-config leadscout.toml]
  leadscout schedule -product "..." -target 20 -cron "0 */6 * * *"
  leadscout history [-limit 20] [-id <job-id>]
  leadscout report -id <job-id> -out report.pdf
  leadscout version`)
}

// bootstrap resolves config and logger in the teacher's REQUIRED ORDER:
// defaults -> file -> logger -> crash handler -> banner. Every
// subcommand calls this once its own flags have been parsed.
func bootstrap(configPath string) {
	var err error
	config, err = common.LoadFromFile(configPath)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Err(err).Str("path", configPath).Msg("failed to load configuration")
		os.Exit(1)
	}

	logger = common.SetupLogger(config)
	common.InstallCrashHandler("./logs")
	common.PrintBanner(config, logger)
}

// buildApp constructs the composition root once config/logger are
// resolved. Every subcommand that needs the supervisor calls this
// after bootstrap has run.
func buildApp() *app.App {
	a, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}
	return a
}
