// Command leadscout-mcp exposes the supervisor as two MCP tools —
// run_job and get_run_result — over stdio, so an MCP-aware agent can
// trigger a lead-generation job and retrieve its result without
// shelling out to the leadscout CLI. Grounded on
// ternarybob-quaero/cmd/quaero-mcp/main.go's minimal console-only
// logger + server.NewMCPServer/AddTool/ServeStdio wiring.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/leadscoutai/leadscout/internal/app"
	"github.com/leadscoutai/leadscout/internal/common"
)

func main() {
	configPath := os.Getenv("LEADSCOUT_CONFIG")
	if configPath == "" {
		configPath = "leadscout.toml"
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	// Minimal logging to avoid cluttering MCP stdio, matching the
	// teacher's MCP entrypoint.
	config.Logging.Level = "warn"
	config.Logging.Output = []string{"stdout"}
	logger := common.SetupLogger(config)

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer application.Close()

	mcpServer := server.NewMCPServer(
		"leadscout",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createRunJobTool(), handleRunJob(application, logger))
	mcpServer.AddTool(createGetRunResultTool(), handleGetRunResult(application, logger))

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
