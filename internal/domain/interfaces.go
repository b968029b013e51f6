package domain

import (
	"context"
	"time"
)

// Repository contracts consumed by the audit engine. The engine only
// reads: every method is a point-in-time snapshot read, and a read may
// suspend (the broker order repository crosses a network boundary).
// Implementations must return a consistent snapshot per call; the
// engine holds no lock of its own.

// PairRepository stores vendor identity records keyed by investing ticker.
type PairRepository interface {
	Tickers(ctx context.Context) ([]string, error)
	// Get returns nil when no record exists for the ticker.
	Get(ctx context.Context, investingTicker string) (*PairInfo, error)
	All(ctx context.Context) (map[string]PairInfo, error)
}

// TickerMapRepository maps charting-platform (tv) tickers to investing tickers.
type TickerMapRepository interface {
	TvTickers(ctx context.Context) ([]string, error)
	// InvestingFor returns ok=false when the tv ticker has no mapping.
	InvestingFor(ctx context.Context, tvTicker string) (string, bool, error)
	All(ctx context.Context) (map[string]string, error)
}

// ExchangeRepository maps tv tickers to exchange-qualified codes.
type ExchangeRepository interface {
	TvTickers(ctx context.Context) ([]string, error)
	Get(ctx context.Context, tvTicker string) (string, bool, error)
	All(ctx context.Context) (map[string]string, error)
}

// SequenceRepository stores per-ticker price-sequence state.
type SequenceRepository interface {
	TvTickers(ctx context.Context) ([]string, error)
	Has(ctx context.Context, tvTicker string) (bool, error)
}

// AlertRepository stores pairId-scoped price alerts.
type AlertRepository interface {
	All(ctx context.Context) ([]Alert, error)
	CountByPairID(ctx context.Context, pairID string) (int, error)
}

// OrderRepository exposes the broker's active conditional orders.
type OrderRepository interface {
	Orders(ctx context.Context) ([]Order, error)
}

// CategoryRepository exposes the watch/flag category lists.
type CategoryRepository interface {
	Lists(ctx context.Context) (*CategoryLists, error)
}

// OpenTimeRepository stores last-opened timestamps per tv ticker.
type OpenTimeRepository interface {
	// LastOpened returns ok=false when the ticker was never opened.
	LastOpened(ctx context.Context, tvTicker string) (time.Time, bool, error)
}
