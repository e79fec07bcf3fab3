package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/leadscoutai/leadscout/internal/runstore"
)

func historyCmd(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", "leadscout.toml", "Configuration file path")
	limit := fs.Int("limit", 20, "Maximum number of runs to list")
	id := fs.String("id", "", "Show a single run by job ID instead of listing")
	fs.Parse(args)

	bootstrap(*configPath)

	store, err := runstore.Open(config.RunStore, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open run store")
	}
	defer store.Close()

	ctx := context.Background()

	if *id != "" {
		record, err := store.Get(ctx, *id)
		if err != nil {
			logger.Fatal().Err(err).Str("job_id", *id).Msg("run not found")
		}
		printRecord(record)
		return
	}

	records, err := store.List(ctx, *limit)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to list runs")
	}
	if len(records) == 0 {
		fmt.Println("no runs recorded yet")
		return
	}
	for _, record := range records {
		fmt.Printf("%s  %-30s  leads=%-4d  success=%-5v  ended=%s\n",
			record.ID, record.Product, len(record.Result.Leads), record.Result.Success,
			record.EndedAt.Format("2006-01-02 15:04:05"))
	}
}

func printRecord(record *runstore.Record) {
	fmt.Printf("Job:       %s\n", record.ID)
	fmt.Printf("Product:   %s\n", record.Product)
	fmt.Printf("Target:    %d\n", record.Target)
	fmt.Printf("Success:   %v\n", record.Result.Success)
	fmt.Printf("Leads:     %d\n", len(record.Result.Leads))
	fmt.Printf("Elapsed:   %s\n", record.Result.Elapsed)
	fmt.Printf("LLM calls: %d\n", record.Result.LLMCallCount)
	if len(record.Result.Errors) > 0 {
		fmt.Println("Errors:")
		for _, e := range record.Result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	for _, lead := range record.Result.Leads {
		fmt.Fprintf(os.Stdout, "  [%s] %-20s %-20s score=%d (%s)\n", lead.Priority, lead.Name, lead.Company, lead.IntentScore, lead.SourcePlatform)
	}
}
