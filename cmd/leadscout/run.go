package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leadscoutai/leadscout/internal/interfaces"
	"github.com/leadscoutai/leadscout/internal/models"
)

// consoleSink logs every Event at info level and is the default sink
// for a one-shot "run" invocation with no attached host transport.
type consoleSink struct{}

func (consoleSink) Publish(e models.Event) {
	logger.Info().
		Str("event", string(e.Type)).
		Str("source", e.Source).
		Msg(e.Message)
}

func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "leadscout.toml", "Configuration file path")
	product := fs.String("product", "", "Product description to generate leads for (required)")
	target := fs.Int("target", 20, "Target number of leads")
	icpPath := fs.String("icp", "", "Path to a JSON file describing the ideal customer profile")
	fs.Parse(args)

	if *product == "" {
		fmt.Fprintln(os.Stderr, "run: -product is required")
		os.Exit(1)
	}

	bootstrap(*configPath)
	application := buildApp()
	defer application.Close()

	icp := loadICP(*icpPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cancel := interfaces.NewCancelSignal()
	go func() {
		<-ctx.Done()
		logger.Info().Msg("interrupt received, requesting cancellation")
		cancel.Cancel()
	}()

	logger.Info().Str("product", *product).Int("target", *target).Msg("starting supervisor run")

	started := time.Now()
	result, err := application.Supervisor.Run(ctx, *product, *target, icp, consoleSink{}, cancel)
	if err != nil {
		logger.Fatal().Err(err).Msg("supervisor run failed")
	}

	jobID, err := application.RunStore.Save(context.Background(), *product, *target, started, result)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to persist run result")
	} else {
		logger.Info().Str("job_id", jobID).Msg("run result persisted")
	}

	logger.Info().
		Bool("success", result.Success).
		Int("leads", len(result.Leads)).
		Int("llm_calls", result.LLMCallCount).
		Msg("supervisor run complete")
}

func loadICP(path string) map[string]interface{} {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to read ICP file, continuing without one")
		return nil
	}
	var icp map[string]interface{}
	if err := json.Unmarshal(data, &icp); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to parse ICP file, continuing without one")
		return nil
	}
	return icp
}
