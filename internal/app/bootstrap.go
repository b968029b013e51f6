package app

import (
	"log/slog"
	"time"

	"ticker_audit/internal/audit"
	"ticker_audit/internal/infra"
	"ticker_audit/internal/infra/broker"
	"ticker_audit/internal/infra/storage"
	"ticker_audit/internal/rank"
	"ticker_audit/internal/service"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config    *infra.Config
	Storage   *storage.Storage
	Metrics   *infra.Metrics
	OrderFeed *broker.OrderFeed
	Registry  *audit.SectionRegistry
	Service   *service.AuditService
	Ranker    *rank.Ranker
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB,
// broker feed, check set).
func (b *Bootstrap) Initialize(configPath string) error {
	slog.Info("Bootstrapping ticker audit...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("database initialized")

	// 4. Broker order feed (REST fallback inside)
	b.Metrics = &infra.Metrics{}
	client := broker.NewClient(cfg)
	b.OrderFeed = broker.NewOrderFeed(cfg, client, b.Metrics)

	// 5. Check set, registry, ranker, orchestrator
	deps := audit.Deps{
		Pairs:      store.Pairs(),
		TickerMap:  store.TickerMap(),
		Exchanges:  store.Exchanges(),
		Sequences:  store.Sequences(),
		Alerts:     store.Alerts(),
		Orders:     b.OrderFeed,
		Categories: store.Categories(),
		OpenTimes:  store.OpenTimes(),
	}
	opts := audit.Options{
		StalenessDays:   cfg.Audit.StalenessDays,
		AcceptedRisks:   cfg.Audit.AcceptedRisks,
		RiskTolerance:   cfg.Audit.RiskTolerancePct,
		WatchCategories: cfg.Audit.WatchCategories,
	}

	b.Registry = audit.NewSectionRegistry()
	svc, err := service.NewAuditService(audit.DefaultChecks(deps, opts), b.Registry, b.Metrics)
	if err != nil {
		return err
	}
	b.Service = svc

	b.Ranker = rank.NewRanker(
		deps.Pairs, deps.TickerMap, deps.Exchanges, deps.Sequences,
		deps.Alerts, deps.Categories, deps.OpenTimes,
		rank.Config{
			PreferredExchangePrefix: cfg.Ranking.PreferredExchange,
			RecentOpenWindow:        time.Duration(cfg.Ranking.RecentOpenDays) * 24 * time.Hour,
		},
	)

	slog.Info("audit engine ready", slog.Int("checks", len(b.Service.Checks())))
	return nil
}
