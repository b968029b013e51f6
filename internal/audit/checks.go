package audit

import (
	"context"
	"fmt"

	"ticker_audit/internal/domain"

	"github.com/shopspring/decimal"
)

// Finding codes, one family per check.
const (
	CodeMissingTvMapping   = "MISSING_TV_MAPPING"
	CodeMissingPairMapping = "MISSING_PAIR_MAPPING"
	CodeMissingExchange    = "MISSING_EXCHANGE"
	CodeMissingSequence    = "MISSING_SEQUENCE"
	CodeDuplicatePairID    = "DUPLICATE_PAIR_ID"
	CodeDuplicateTvAlias   = "DUPLICATE_TV_ALIAS"
	CodeOrphanedAlerts     = "ORPHANED_ALERTS"
	CodeOrphanedOrders     = "ORPHANED_ORDERS"
	CodeUnwatchedOrder     = "UNWATCHED_ORDER_TICKER"
	CodeUnwatchedAlert     = "UNWATCHED_ALERT_TICKER"
	CodeRiskTolerance      = "RISK_OUT_OF_TOLERANCE"
	CodeStaleTicker        = "STALE_TICKER"
	CodeOrphanedExchange   = "ORPHANED_EXCHANGE_MAPPING"
	CodeOrphanedSequence   = "ORPHANED_SEQUENCE_STATE"
	CodeCategoryGhost      = "CATEGORY_GHOST"
)

// Deps bundles the repositories the concrete checks read. Every check
// receives its repositories at construction; nothing is looked up from
// ambient state.
type Deps struct {
	Pairs      domain.PairRepository
	TickerMap  domain.TickerMapRepository
	Exchanges  domain.ExchangeRepository
	Sequences  domain.SequenceRepository
	Alerts     domain.AlertRepository
	Orders     domain.OrderRepository
	Categories domain.CategoryRepository
	OpenTimes  domain.OpenTimeRepository
}

// Options holds the tunable thresholds shared by the default check set.
type Options struct {
	StalenessDays   int
	AcceptedRisks   []decimal.Decimal
	RiskTolerance   decimal.Decimal
	WatchCategories []int
}

// DefaultChecks assembles the full check set over one repository bundle.
func DefaultChecks(deps Deps, opts Options) []Check {
	return []Check{
		NewPairMissingTvMapping(deps.Pairs, deps.TickerMap),
		NewTvMissingPairMapping(deps.TickerMap, deps.Pairs),
		NewTvMissingExchange(deps.TickerMap, deps.Exchanges),
		NewTvMissingSequence(deps.TickerMap, deps.Sequences),
		NewDuplicatePairID(deps.Pairs),
		NewDuplicateTvAlias(deps.TickerMap),
		NewOrphanedAlerts(deps.Alerts, deps.Pairs),
		NewOrphanedOrders(deps.Orders, deps.TickerMap),
		NewOrderTickerUnwatched(deps.Orders, deps.Categories, opts.WatchCategories),
		NewAlertTickerUnwatched(deps.Alerts, deps.Pairs, deps.TickerMap, deps.Categories, opts.WatchCategories),
		NewOrderRiskTolerance(deps.Orders, opts.AcceptedRisks, opts.RiskTolerance),
		NewStaleTicker(deps.TickerMap, deps.OpenTimes, opts.StalenessDays),
		NewExchangeOrphan(deps.Exchanges, deps.TickerMap),
		NewSequenceOrphan(deps.Sequences, deps.TickerMap),
		NewCategoryGhost(deps.Categories, deps.TickerMap),
	}
}

// NewPairMissingTvMapping flags pair records no tv ticker maps to.
func NewPairMissingTvMapping(pairs domain.PairRepository, tvMap domain.TickerMapRepository) *ExistenceCheck {
	return &ExistenceCheck{
		meta:     meta{id: "pair-missing-tv-mapping", title: "Pairs without a TV ticker"},
		code:     CodeMissingTvMapping,
		severity: domain.SeverityMedium,
		Keys:     pairs.Tickers,
		Exists: func(ctx context.Context, investingTicker string) (bool, error) {
			all, err := tvMap.All(ctx)
			if err != nil {
				return false, err
			}
			for _, inv := range all {
				if inv == investingTicker {
					return true, nil
				}
			}
			return false, nil
		},
		Describe: func(_ context.Context, key string) (string, any) {
			return fmt.Sprintf("pair %s has no charting-platform ticker", key),
				domain.MissingMappingData{Ticker: key, Wanted: "tv mapping"}
		},
	}
}

// NewTvMissingPairMapping flags tv tickers whose investing ticker has
// no pair record.
func NewTvMissingPairMapping(tvMap domain.TickerMapRepository, pairs domain.PairRepository) *ExistenceCheck {
	return &ExistenceCheck{
		meta:     meta{id: "tv-missing-pair-mapping", title: "TV tickers without pair info"},
		code:     CodeMissingPairMapping,
		severity: domain.SeverityMedium,
		Keys:     tvMap.TvTickers,
		Exists: func(ctx context.Context, tvTicker string) (bool, error) {
			inv, ok, err := tvMap.InvestingFor(ctx, tvTicker)
			if err != nil {
				return false, err
			}
			if !ok || inv == "" {
				return false, nil
			}
			info, err := pairs.Get(ctx, inv)
			if err != nil {
				return false, err
			}
			return info != nil, nil
		},
		Describe: func(_ context.Context, key string) (string, any) {
			return fmt.Sprintf("tv ticker %s resolves to no pair record", key),
				domain.MissingMappingData{Ticker: key, Wanted: "pair info"}
		},
	}
}

// NewTvMissingExchange flags tv tickers with no exchange mapping.
func NewTvMissingExchange(tvMap domain.TickerMapRepository, exchanges domain.ExchangeRepository) *ExistenceCheck {
	return &ExistenceCheck{
		meta:     meta{id: "tv-missing-exchange", title: "TV tickers without exchange"},
		code:     CodeMissingExchange,
		severity: domain.SeverityLow,
		Keys:     tvMap.TvTickers,
		Exists: func(ctx context.Context, tvTicker string) (bool, error) {
			_, ok, err := exchanges.Get(ctx, tvTicker)
			return ok, err
		},
		Describe: func(_ context.Context, key string) (string, any) {
			return fmt.Sprintf("tv ticker %s has no exchange mapping", key),
				domain.MissingMappingData{Ticker: key, Wanted: "exchange"}
		},
	}
}

// NewTvMissingSequence flags tv tickers with no price-sequence state.
func NewTvMissingSequence(tvMap domain.TickerMapRepository, sequences domain.SequenceRepository) *ExistenceCheck {
	return &ExistenceCheck{
		meta:     meta{id: "tv-missing-sequence", title: "TV tickers without sequence"},
		code:     CodeMissingSequence,
		severity: domain.SeverityLow,
		Keys:     tvMap.TvTickers,
		Exists:   sequences.Has,
		Describe: func(_ context.Context, key string) (string, any) {
			return fmt.Sprintf("tv ticker %s has no price-sequence state", key),
				domain.MissingMappingData{Ticker: key, Wanted: "sequence"}
		},
	}
}

// NewDuplicatePairID flags pairIds claimed by two or more investing tickers.
func NewDuplicatePairID(pairs domain.PairRepository) *DuplicateGroupCheck {
	return &DuplicateGroupCheck{
		meta:     meta{id: "duplicate-pair-id", title: "Duplicate pair ids"},
		code:     CodeDuplicatePairID,
		severity: domain.SeverityHigh,
		Groups: func(ctx context.Context) (map[string][]string, error) {
			all, err := pairs.All(ctx)
			if err != nil {
				return nil, err
			}
			groups := make(map[string][]string)
			for investingTicker, info := range all {
				groups[info.PairID] = append(groups[info.PairID], investingTicker)
			}
			return groups, nil
		},
		Describe: func(pairID string, members []string) (string, any) {
			return fmt.Sprintf("pair id %s is shared by %d investing tickers", pairID, len(members)),
				domain.DuplicatePairData{PairID: pairID, InvestingTickers: members}
		},
	}
}

// NewDuplicateTvAlias flags investing tickers that several tv tickers
// reverse-map to.
func NewDuplicateTvAlias(tvMap domain.TickerMapRepository) *DuplicateGroupCheck {
	return &DuplicateGroupCheck{
		meta:     meta{id: "duplicate-tv-alias", title: "Colliding TV aliases"},
		code:     CodeDuplicateTvAlias,
		severity: domain.SeverityHigh,
		Groups: func(ctx context.Context) (map[string][]string, error) {
			all, err := tvMap.All(ctx)
			if err != nil {
				return nil, err
			}
			groups := make(map[string][]string)
			for tvTicker, inv := range all {
				groups[inv] = append(groups[inv], tvTicker)
			}
			return groups, nil
		},
		Describe: func(investingTicker string, members []string) (string, any) {
			return fmt.Sprintf("%d tv tickers resolve to %s", len(members), investingTicker),
				domain.AliasCollisionData{InvestingTicker: investingTicker, TvTickers: members}
		},
	}
}

// NewOrphanedAlerts flags pairIds that carry alerts but no pair record.
func NewOrphanedAlerts(alerts domain.AlertRepository, pairs domain.PairRepository) *OrphanCheck {
	return &OrphanCheck{
		meta:     meta{id: "orphan-alerts", title: "Alerts without a pair"},
		code:     CodeOrphanedAlerts,
		severity: domain.SeverityMedium,
		Dependents: func(ctx context.Context) (map[string][]string, error) {
			all, err := alerts.All(ctx)
			if err != nil {
				return nil, err
			}
			deps := make(map[string][]string)
			for _, alert := range all {
				deps[alert.PairID] = append(deps[alert.PairID], alert.ID)
			}
			return deps, nil
		},
		ParentExists: func(ctx context.Context, pairID string) (bool, error) {
			all, err := pairs.All(ctx)
			if err != nil {
				return false, err
			}
			for _, info := range all {
				if info.PairID == pairID {
					return true, nil
				}
			}
			return false, nil
		},
		Describe: func(pairID string, alertIDs []string) (string, any) {
			return fmt.Sprintf("%d alerts reference unknown pair id %s", len(alertIDs), pairID),
				domain.OrphanAlertData{PairID: pairID, AlertCount: len(alertIDs)}
		},
	}
}

// NewOrphanedOrders flags broker orders whose ticker has no tv mapping.
func NewOrphanedOrders(orders domain.OrderRepository, tvMap domain.TickerMapRepository) *OrphanCheck {
	return &OrphanCheck{
		meta:     meta{id: "orphan-orders", title: "Orders without a ticker mapping"},
		code:     CodeOrphanedOrders,
		severity: domain.SeverityMedium,
		Dependents: func(ctx context.Context) (map[string][]string, error) {
			all, err := orders.Orders(ctx)
			if err != nil {
				return nil, err
			}
			deps := make(map[string][]string)
			for _, order := range all {
				deps[order.Ticker] = append(deps[order.Ticker], order.ID)
			}
			return deps, nil
		},
		ParentExists: func(ctx context.Context, ticker string) (bool, error) {
			_, ok, err := tvMap.InvestingFor(ctx, ticker)
			return ok, err
		},
		Describe: func(ticker string, orderIDs []string) (string, any) {
			return fmt.Sprintf("%d broker orders on unmapped ticker %s", len(orderIDs), ticker),
				domain.OrphanOrderData{Ticker: ticker, OrderCount: len(orderIDs), OrderIDs: orderIDs}
		},
	}
}

// NewOrderTickerUnwatched flags order tickers outside every watch category.
func NewOrderTickerUnwatched(orders domain.OrderRepository, categories domain.CategoryRepository, indices []int) *MembershipCheck {
	return &MembershipCheck{
		meta:     meta{id: "order-ticker-unwatched", title: "Unwatched order tickers"},
		code:     CodeUnwatchedOrder,
		severity: domain.SeverityMedium,
		Tickers: func(ctx context.Context) ([]string, error) {
			all, err := orders.Orders(ctx)
			if err != nil {
				return nil, err
			}
			tickers := make([]string, 0, len(all))
			for _, order := range all {
				tickers = append(tickers, order.Ticker)
			}
			return tickers, nil
		},
		Categories: categories,
		Indices:    indices,
	}
}

// NewAlertTickerUnwatched flags tv tickers of alerted pairs outside
// every watch category.
func NewAlertTickerUnwatched(alerts domain.AlertRepository, pairs domain.PairRepository, tvMap domain.TickerMapRepository, categories domain.CategoryRepository, indices []int) *MembershipCheck {
	return &MembershipCheck{
		meta:     meta{id: "alert-ticker-unwatched", title: "Unwatched alerted tickers"},
		code:     CodeUnwatchedAlert,
		severity: domain.SeverityLow,
		Tickers: func(ctx context.Context) ([]string, error) {
			allAlerts, err := alerts.All(ctx)
			if err != nil {
				return nil, err
			}
			allPairs, err := pairs.All(ctx)
			if err != nil {
				return nil, err
			}
			allTv, err := tvMap.All(ctx)
			if err != nil {
				return nil, err
			}
			// pairId -> investing ticker -> tv tickers
			byPairID := make(map[string]string, len(allPairs))
			for investingTicker, info := range allPairs {
				byPairID[info.PairID] = investingTicker
			}
			reverse := make(map[string][]string, len(allTv))
			for tvTicker, inv := range allTv {
				reverse[inv] = append(reverse[inv], tvTicker)
			}
			var tickers []string
			for _, alert := range allAlerts {
				inv, ok := byPairID[alert.PairID]
				if !ok {
					continue // orphaned alert, flagged elsewhere
				}
				tickers = append(tickers, reverse[inv]...)
			}
			return tickers, nil
		},
		Categories: categories,
		Indices:    indices,
	}
}

// NewOrderRiskTolerance flags orders whose computed risk matches no
// accepted amount within the relative tolerance.
func NewOrderRiskTolerance(orders domain.OrderRepository, accepted []decimal.Decimal, tolerance decimal.Decimal) *ToleranceCheck {
	return &ToleranceCheck{
		meta:      meta{id: "order-risk-tolerance", title: "Order risk out of tolerance"},
		code:      CodeRiskTolerance,
		severity:  domain.SeverityHigh,
		Orders:    orders,
		Accepted:  accepted,
		Tolerance: tolerance,
	}
}

// NewStaleTicker flags tv tickers not opened within the threshold.
func NewStaleTicker(tvMap domain.TickerMapRepository, openTimes domain.OpenTimeRepository, thresholdDays int) *StalenessCheck {
	return &StalenessCheck{
		meta:          meta{id: "stale-ticker", title: "Stale tickers"},
		code:          CodeStaleTicker,
		Tickers:       tvMap.TvTickers,
		OpenTimes:     openTimes,
		ThresholdDays: thresholdDays,
	}
}

// NewExchangeOrphan flags exchange mappings for tv tickers that have
// no tv mapping at all.
func NewExchangeOrphan(exchanges domain.ExchangeRepository, tvMap domain.TickerMapRepository) *ExistenceCheck {
	return &ExistenceCheck{
		meta:     meta{id: "exchange-orphan", title: "Orphaned exchange mappings"},
		code:     CodeOrphanedExchange,
		severity: domain.SeverityLow,
		Keys:     exchanges.TvTickers,
		Exists: func(ctx context.Context, tvTicker string) (bool, error) {
			_, ok, err := tvMap.InvestingFor(ctx, tvTicker)
			return ok, err
		},
		Describe: func(ctx context.Context, key string) (string, any) {
			value, _, _ := exchanges.Get(ctx, key)
			return fmt.Sprintf("exchange mapping %s=%s has no tv mapping", key, value),
				domain.ExchangeData{TvTicker: key, ExchangeValue: value}
		},
	}
}

// NewSequenceOrphan flags sequence state recorded for unknown tv tickers.
func NewSequenceOrphan(sequences domain.SequenceRepository, tvMap domain.TickerMapRepository) *ExistenceCheck {
	return &ExistenceCheck{
		meta:     meta{id: "sequence-orphan", title: "Orphaned sequence state"},
		code:     CodeOrphanedSequence,
		severity: domain.SeverityLow,
		Keys:     sequences.TvTickers,
		Exists: func(ctx context.Context, tvTicker string) (bool, error) {
			_, ok, err := tvMap.InvestingFor(ctx, tvTicker)
			return ok, err
		},
		Describe: func(_ context.Context, key string) (string, any) {
			return fmt.Sprintf("sequence state for %s has no tv mapping", key),
				domain.MissingMappingData{Ticker: key, Wanted: "tv mapping"}
		},
	}
}

// NewCategoryGhost flags category members with no tv mapping.
func NewCategoryGhost(categories domain.CategoryRepository, tvMap domain.TickerMapRepository) *ExistenceCheck {
	allIndices := make([]int, domain.CategoryCount)
	for i := range allIndices {
		allIndices[i] = i
	}
	return &ExistenceCheck{
		meta:     meta{id: "category-ghost", title: "Category members without mapping"},
		code:     CodeCategoryGhost,
		severity: domain.SeverityMedium,
		Keys: func(ctx context.Context) ([]string, error) {
			lists, err := categories.Lists(ctx)
			if err != nil {
				return nil, err
			}
			return lists.Union(allIndices)
		},
		Exists: func(ctx context.Context, tvTicker string) (bool, error) {
			_, ok, err := tvMap.InvestingFor(ctx, tvTicker)
			return ok, err
		},
		Describe: func(_ context.Context, key string) (string, any) {
			return fmt.Sprintf("category member %s has no tv mapping", key),
				domain.MissingMappingData{Ticker: key, Wanted: "tv mapping"}
		},
	}
}
