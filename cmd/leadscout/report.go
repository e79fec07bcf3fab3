package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/leadscoutai/leadscout/internal/models"
	"github.com/leadscoutai/leadscout/internal/pdfreport"
	"github.com/leadscoutai/leadscout/internal/runstore"
)

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configPath := fs.String("config", "leadscout.toml", "Configuration file path")
	id := fs.String("id", "", "Job ID to export (required)")
	out := fs.String("out", "report.pdf", "Output PDF path")
	fs.Parse(args)

	if *id == "" {
		fmt.Fprintln(os.Stderr, "report: -id is required")
		os.Exit(1)
	}

	bootstrap(*configPath)

	store, err := runstore.Open(config.RunStore, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open run store")
	}
	defer store.Close()

	record, err := store.Get(context.Background(), *id)
	if err != nil {
		logger.Fatal().Err(err).Str("job_id", *id).Msg("run not found")
	}

	markdown, title := buildReportMarkdown(record)

	renderer := pdfreport.New(logger)
	pdfBytes, err := renderer.Render(markdown, title)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to render PDF report")
	}

	if err := os.WriteFile(*out, pdfBytes, 0o644); err != nil {
		logger.Fatal().Err(err).Str("path", *out).Msg("failed to write PDF report")
	}

	logger.Info().Str("job_id", *id).Str("path", *out).Msg("report written")
}

// buildReportMarkdown renders a run record as Markdown suitable for
// pdfreport.Render. It is host-layer formatting, not a core concern:
// the supervisor never produces or consumes Markdown.
func buildReportMarkdown(record *runstore.Record) (markdown, title string) {
	title = fmt.Sprintf("Lead report: %s", record.Product)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Job ID: %s\n\n", record.ID)
	fmt.Fprintf(&b, "Target leads: %d | Success: %v | Elapsed: %s | LLM calls: %d\n\n",
		record.Target, record.Result.Success, record.Result.Elapsed, record.Result.LLMCallCount)

	if len(record.Result.Errors) > 0 {
		fmt.Fprintln(&b, "## Errors")
		for _, e := range record.Result.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
		fmt.Fprintln(&b)
	}

	if len(record.Result.TotalsByTier) > 0 {
		fmt.Fprintln(&b, "## Totals by tier")
		fmt.Fprintln(&b, "| Tier | Count |")
		fmt.Fprintln(&b, "| --- | --- |")
		for _, tier := range []models.Priority{models.PriorityHot, models.PriorityWarm, models.PriorityCold} {
			if count, ok := record.Result.TotalsByTier[tier]; ok {
				fmt.Fprintf(&b, "| %s | %d |\n", tier, count)
			}
		}
		fmt.Fprintln(&b)
	}

	fmt.Fprintln(&b, "## Leads")
	fmt.Fprintln(&b, "| Priority | Name | Company | Title | Score | Source | Signal |")
	fmt.Fprintln(&b, "| --- | --- | --- | --- | --- | --- | --- |")
	for _, lead := range record.Result.Leads {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d | %s | %s |\n",
			lead.Priority, lead.Name, lead.Company, lead.Title, lead.IntentScore, lead.SourcePlatform, lead.IntentSignal)
	}

	return b.String(), title
}
