// schedule.go runs one product/target job repeatedly on a cron
// expression until interrupted. Grounded on ternarybob-quaero/internal/
// services/scheduler/scheduler_service.go's robfig/cron AddFunc +
// panic-recovering executeJob pattern, narrowed to a single
// always-enabled job instead of a dynamic job registry.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/leadscoutai/leadscout/internal/app"
	"github.com/leadscoutai/leadscout/internal/interfaces"
)

func scheduleCmd(args []string) {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	configPath := fs.String("config", "leadscout.toml", "Configuration file path")
	product := fs.String("product", "", "Product description to generate leads for (required)")
	target := fs.Int("target", 20, "Target number of leads per run")
	cronExpr := fs.String("cron", "0 */6 * * *", "Cron expression for run cadence")
	fs.Parse(args)

	if *product == "" {
		fmt.Fprintln(os.Stderr, "schedule: -product is required")
		os.Exit(1)
	}

	bootstrap(*configPath)
	application := buildApp()
	defer application.Close()

	var runMu sync.Mutex // prevents overlapping runs if one takes longer than the cron period

	c := cron.New()
	_, err := c.AddFunc(*cronExpr, func() {
		if !runMu.TryLock() {
			logger.Warn().Msg("schedule: previous run still in progress, skipping this tick")
			return
		}
		defer runMu.Unlock()
		runScheduledJob(application, *product, *target)
	})
	if err != nil {
		logger.Fatal().Err(err).Str("cron", *cronExpr).Msg("schedule: invalid cron expression")
	}

	c.Start()
	logger.Info().Str("cron", *cronExpr).Str("product", *product).Msg("schedule: started")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info().Msg("schedule: stopping")
	stopCtx := c.Stop()
	<-stopCtx.Done()
}

func runScheduledJob(application *app.App, product string, target int) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("schedule: recovered from panic in scheduled run")
		}
	}()

	logger.Info().Str("product", product).Msg("schedule: run starting")

	started := time.Now()
	cancel := interfaces.NewCancelSignal()
	result, err := application.Supervisor.Run(context.Background(), product, target, nil, consoleSink{}, cancel)
	if err != nil {
		logger.Error().Err(err).Msg("schedule: run failed")
		return
	}

	jobID, err := application.RunStore.Save(context.Background(), product, target, started, result)
	if err != nil {
		logger.Warn().Err(err).Msg("schedule: failed to persist run result")
		return
	}

	logger.Info().Str("job_id", jobID).Int("leads", len(result.Leads)).Msg("schedule: run complete")
}
