// Command report loads the sales archives and writes the dashboard
// aggregates as CSV files and an xlsx workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"salespulse/internal/analytics"
	"salespulse/internal/config"
	"salespulse/internal/dataset"
	"salespulse/internal/exporter"
	"salespulse/internal/infrastructure"
	"salespulse/internal/services"
)

func main() {
	_ = godotenv.Load()

	var (
		fromFlag = flag.String("from", "", "start date (YYYY-MM-DD, inclusive)")
		toFlag   = flag.String("to", "", "end date (YYYY-MM-DD, inclusive)")
		outFlag  = flag.String("out", "", "output directory (default: reports dir from config)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *outFlag != "" {
		cfg.Reports.Dir = *outFlag
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	rng, err := parseRange(*fromFlag, *toFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid date range: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg, logger, rng); err != nil {
		logger.Error("report generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("report generation complete", slog.String("dir", cfg.Reports.Dir))
}

func run(cfg *config.Config, logger *slog.Logger, rng dataset.DateRange) error {
	if err := cfg.EnsureReportDir(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store := dataset.NewStore(cfg.Archives.Part1, cfg.Archives.Part2, logger, nil)
	analyzer := analytics.NewAnalyzer(analytics.Config{
		TopFamilies:   cfg.Analytics.TopFamilies,
		TopStores:     cfg.Analytics.TopStores,
		TopStates:     cfg.Analytics.TopStates,
		RollingWindow: cfg.Analytics.RollingWindow,
	}, logger)
	service := services.NewDataService(store, analyzer, logger)

	overview, err := service.Overview(ctx, rng)
	if err != nil {
		return fmt.Errorf("computing overview: %w", err)
	}
	insights, err := service.Insights(ctx, rng)
	if err != nil {
		return fmt.Errorf("computing insights: %w", err)
	}

	builder := exporter.NewReportBuilder(cfg.Reports.Dir, logger)
	return builder.Build(overview, insights)
}

func parseRange(from, to string) (dataset.DateRange, error) {
	var rng dataset.DateRange
	if from != "" {
		ts, err := time.Parse("2006-01-02", from)
		if err != nil {
			return rng, fmt.Errorf("from: %w", err)
		}
		rng.From = ts
	}
	if to != "" {
		ts, err := time.Parse("2006-01-02", to)
		if err != nil {
			return rng, fmt.Errorf("to: %w", err)
		}
		rng.To = ts
	}
	if !rng.From.IsZero() && !rng.To.IsZero() && rng.To.Before(rng.From) {
		return rng, fmt.Errorf("to %s is before from %s", to, from)
	}
	return rng, nil
}
