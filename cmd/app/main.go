package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ticker_audit/internal/app"
	"ticker_audit/internal/domain"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 2. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Broker order feed (live snapshot; REST fallback until connected)
	if bootstrap.Config.Broker.WSURL != "" {
		if err := bootstrap.OrderFeed.Connect(ctx); err != nil {
			slog.Error("failed to connect broker feed", slog.Any("error", err))
		}
		defer bootstrap.OrderFeed.Disconnect()
	}

	// 4. Full audit scan
	report, err := bootstrap.Service.RunAll(ctx)
	if err != nil {
		slog.Error("audit run failed", slog.Any("error", err))
		os.Exit(1)
	}

	for checkID, results := range report.Findings {
		for _, result := range results {
			slog.Warn("finding",
				slog.String("check", checkID),
				slog.String("code", result.Code),
				slog.String("target", result.Target),
				slog.String("severity", string(result.Severity)),
				slog.String("message", result.Message),
			)
		}
	}
	for checkID, runErr := range report.Errors {
		slog.Error("check did not run", slog.String("check", checkID), slog.Any("error", runErr))
	}

	slog.Info("audit complete",
		slog.Int("findings", report.TotalFindings()),
		slog.Int("high", report.BySeverity[domain.SeverityHigh]),
		slog.Int("medium", report.BySeverity[domain.SeverityMedium]),
		slog.Int("low", report.BySeverity[domain.SeverityLow]),
		slog.Duration("duration", report.Duration),
	)

	if report.HasSeverity(domain.SeverityHigh) || len(report.Errors) > 0 {
		os.Exit(2)
	}
}
