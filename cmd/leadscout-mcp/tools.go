package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createRunJobTool returns the run_job tool definition: it drives a
// full supervisor job synchronously and returns the job ID plus a
// Markdown summary, since MCP tool calls are request/response and
// cannot stream the Event feed serve.go exposes over WebSocket.
func createRunJobTool() mcp.Tool {
	return mcp.NewTool("run_job",
		mcp.WithDescription("Run a lead-generation job for a product and return a summary of the leads found"),
		mcp.WithString("product",
			mcp.Required(),
			mcp.Description("Product or service description to generate leads for"),
		),
		mcp.WithNumber("target",
			mcp.Description("Target number of leads (default: 20)"),
		),
	)
}

// createGetRunResultTool returns the get_run_result tool definition.
func createGetRunResultTool() mcp.Tool {
	return mcp.NewTool("get_run_result",
		mcp.WithDescription("Retrieve the full result of a previously completed lead-generation job"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("Job ID returned by run_job"),
		),
	)
}
