package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/leadscoutai/leadscout/internal/app"
	"github.com/leadscoutai/leadscout/internal/interfaces"
	"github.com/leadscoutai/leadscout/internal/models"
)

// discardSink satisfies interfaces.EventSink without forwarding
// anything: an MCP tool call has no open connection to stream Events
// to, only a final result.
type discardSink struct{}

func (discardSink) Publish(models.Event) {}

// handleRunJob implements the run_job tool.
func handleRunJob(application *app.App, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		product, err := request.RequireString("product")
		if err != nil || product == "" {
			return errorResult("product parameter is required"), nil
		}
		target := request.GetInt("target", 20)

		started := time.Now()
		cancel := interfaces.NewCancelSignal()
		result, err := application.Supervisor.Run(ctx, product, target, nil, discardSink{}, cancel)
		if err != nil {
			logger.Error().Err(err).Msg("run_job: supervisor run failed")
			return errorResult(fmt.Sprintf("run failed: %v", err)), nil
		}

		jobID, err := application.RunStore.Save(context.Background(), product, target, started, result)
		if err != nil {
			logger.Warn().Err(err).Msg("run_job: failed to persist run result")
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(formatRunResult(jobID, product, result))},
		}, nil
	}
}

// handleGetRunResult implements the get_run_result tool.
func handleGetRunResult(application *app.App, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jobID, err := request.RequireString("job_id")
		if err != nil || jobID == "" {
			return errorResult("job_id parameter is required"), nil
		}

		record, err := application.RunStore.Get(ctx, jobID)
		if err != nil {
			logger.Error().Err(err).Str("job_id", jobID).Msg("get_run_result: lookup failed")
			return errorResult(fmt.Sprintf("run not found: %v", err)), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(formatRunResult(record.ID, record.Product, record.Result))},
		}, nil
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent("Error: " + message)}}
}

func formatRunResult(jobID, product string, result models.RunResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Lead report: %s\n\n", product)
	fmt.Fprintf(&b, "Job ID: %s\n\n", jobID)
	fmt.Fprintf(&b, "Success: %v | Leads: %d | Elapsed: %s | LLM calls: %d\n\n",
		result.Success, len(result.Leads), result.Elapsed, result.LLMCallCount)

	if len(result.Errors) > 0 {
		fmt.Fprintln(&b, "## Errors")
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
		fmt.Fprintln(&b)
	}

	fmt.Fprintln(&b, "## Leads")
	for _, lead := range result.Leads {
		fmt.Fprintf(&b, "- [%s] %s at %s (score %d, via %s): %s\n",
			lead.Priority, lead.Name, lead.Company, lead.IntentScore, lead.SourcePlatform, lead.IntentSignal)
	}

	return b.String()
}
