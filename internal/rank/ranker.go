// Package rank picks the canonical alias out of a set of tickers that
// denote one underlying instrument. Remediation keeps the top-ranked
// alias and removes the rest.
package rank

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"ticker_audit/internal/domain"
)

// Fixed signal weights. The encoded-alias penalty must dominate any
// achievable positive score so a markup artifact never wins a merge.
const (
	weightTvMapping        = 30
	weightPairMapping      = 30
	weightWatched          = 20
	weightRecentOpen       = 15
	weightPerAlert         = 10
	weightSequence         = 10
	weightExchange         = 10
	bonusPreferredExchange = 5
	penaltyEncodedAlias    = -1000
)

// entityPattern matches HTML-entity-style encodings (named, numeric or
// hex). Aliases containing one are artifacts of markup-parsing bugs
// upstream, never a legitimate identity.
var entityPattern = regexp.MustCompile(`&(?:[a-zA-Z][a-zA-Z0-9]*|#[0-9]+|#[xX][0-9a-fA-F]+);`)

// Config tunes the ranking signals.
type Config struct {
	// PreferredExchangePrefix earns the exchange bonus; a non-preferred
	// exchange mapping contributes no bonus at all.
	PreferredExchangePrefix string
	// RecentOpenWindow bounds how old a last-opened timestamp may be to
	// still count as recent.
	RecentOpenWindow time.Duration

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Ranker scores alias candidates against the annotation repositories.
// Pure given a materialized snapshot: the only suspension is in the
// repository reads themselves.
type Ranker struct {
	pairs      domain.PairRepository
	tvMap      domain.TickerMapRepository
	exchanges  domain.ExchangeRepository
	sequences  domain.SequenceRepository
	alerts     domain.AlertRepository
	categories domain.CategoryRepository
	openTimes  domain.OpenTimeRepository
	cfg        Config
}

// NewRanker constructs a ranker over the given repositories.
func NewRanker(
	pairs domain.PairRepository,
	tvMap domain.TickerMapRepository,
	exchanges domain.ExchangeRepository,
	sequences domain.SequenceRepository,
	alerts domain.AlertRepository,
	categories domain.CategoryRepository,
	openTimes domain.OpenTimeRepository,
	cfg Config,
) *Ranker {
	if cfg.RecentOpenWindow <= 0 {
		cfg.RecentOpenWindow = 30 * 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Ranker{
		pairs:      pairs,
		tvMap:      tvMap,
		exchanges:  exchanges,
		sequences:  sequences,
		alerts:     alerts,
		categories: categories,
		openTimes:  openTimes,
		cfg:        cfg,
	}
}

// RankByVendorTicker orders investing-ticker aliases that share one
// vendor pairId, most canonical first. The alert count is sourced by
// pairId and is therefore identical across aliases; it is reported on
// each candidate but never differentiates them.
func (r *Ranker) RankByVendorTicker(ctx context.Context, pairID string, aliases []string) ([]domain.RankedAlias, error) {
	reverse, err := r.reverseTvMap(ctx)
	if err != nil {
		return nil, err
	}
	alertCount, err := r.alerts.CountByPairID(ctx, pairID)
	if err != nil {
		return nil, err
	}
	lists, err := r.categories.Lists(ctx)
	if err != nil {
		return nil, err
	}

	ranked := make([]domain.RankedAlias, 0, len(aliases))
	for _, alias := range aliases {
		ra := domain.RankedAlias{Ticker: alias, AlertCount: alertCount}

		tvTickers := reverse[alias]
		if len(tvTickers) > 0 {
			ra.HasPairMapping = true
			ra.Score += weightTvMapping
		}
		for _, tv := range tvTickers {
			watched, err := watchedAnywhere(lists, tv)
			if err != nil {
				return nil, err
			}
			if watched {
				ra.Watched = true
			}
			recent, err := r.recentlyOpened(ctx, tv)
			if err != nil {
				return nil, err
			}
			if recent {
				ra.RecentlyOpened = true
			}
		}
		if ra.Watched {
			ra.Score += weightWatched
		}
		if ra.RecentlyOpened {
			ra.Score += weightRecentOpen
		}
		ra.Score += alertCount * weightPerAlert
		if encoded(alias) {
			ra.Score += penaltyEncodedAlias
		}
		ranked = append(ranked, ra)
	}

	sortRanked(ranked)
	return ranked, nil
}

// RankByTvTicker orders tv-ticker aliases that all reverse-map to one
// investing ticker, most canonical first.
func (r *Ranker) RankByTvTicker(ctx context.Context, investingTicker string, aliases []string) ([]domain.RankedAlias, error) {
	info, err := r.pairs.Get(ctx, investingTicker)
	if err != nil {
		return nil, err
	}
	alertCount := 0
	if info != nil {
		alertCount, err = r.alerts.CountByPairID(ctx, info.PairID)
		if err != nil {
			return nil, err
		}
	}
	lists, err := r.categories.Lists(ctx)
	if err != nil {
		return nil, err
	}

	ranked := make([]domain.RankedAlias, 0, len(aliases))
	for _, alias := range aliases {
		ra := domain.RankedAlias{Ticker: alias, AlertCount: alertCount}

		if info != nil {
			ra.HasPairMapping = true
			ra.Score += weightPairMapping
		}
		ra.Score += alertCount * weightPerAlert

		watched, err := watchedAnywhere(lists, alias)
		if err != nil {
			return nil, err
		}
		if watched {
			ra.Watched = true
			ra.Score += weightWatched
		}

		recent, err := r.recentlyOpened(ctx, alias)
		if err != nil {
			return nil, err
		}
		if recent {
			ra.RecentlyOpened = true
			ra.Score += weightRecentOpen
		}

		hasSeq, err := r.sequences.Has(ctx, alias)
		if err != nil {
			return nil, err
		}
		if hasSeq {
			ra.HasSequence = true
			ra.Score += weightSequence
		}

		exchange, ok, err := r.exchanges.Get(ctx, alias)
		if err != nil {
			return nil, err
		}
		if ok {
			ra.HasExchange = true
			ra.Score += weightExchange
			if r.cfg.PreferredExchangePrefix != "" && strings.HasPrefix(exchange, r.cfg.PreferredExchangePrefix) {
				ra.Score += bonusPreferredExchange
			}
		}

		if encoded(alias) {
			ra.Score += penaltyEncodedAlias
		}
		ranked = append(ranked, ra)
	}

	sortRanked(ranked)
	return ranked, nil
}

func (r *Ranker) reverseTvMap(ctx context.Context) (map[string][]string, error) {
	all, err := r.tvMap.All(ctx)
	if err != nil {
		return nil, err
	}
	reverse := make(map[string][]string, len(all))
	for tvTicker, inv := range all {
		reverse[inv] = append(reverse[inv], tvTicker)
	}
	for _, tvs := range reverse {
		sort.Strings(tvs)
	}
	return reverse, nil
}

func (r *Ranker) recentlyOpened(ctx context.Context, tvTicker string) (bool, error) {
	opened, ok, err := r.openTimes.LastOpened(ctx, tvTicker)
	if err != nil || !ok {
		return false, err
	}
	return r.cfg.Now().Sub(opened) <= r.cfg.RecentOpenWindow, nil
}

func watchedAnywhere(lists *domain.CategoryLists, tvTicker string) (bool, error) {
	for idx := 0; idx < domain.CategoryCount; idx++ {
		ok, err := lists.Contains(idx, tvTicker)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// sortRanked applies the ranking's only externally visible contract:
// score desc, then shorter ticker, then stable input order.
func sortRanked(ranked []domain.RankedAlias) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return len(ranked[i].Ticker) < len(ranked[j].Ticker)
	})
}

func encoded(alias string) bool {
	return entityPattern.MatchString(alias)
}
