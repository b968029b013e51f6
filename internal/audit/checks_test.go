package audit

import (
	"context"
	"reflect"
	"testing"
	"time"

	"ticker_audit/internal/domain"

	"github.com/shopspring/decimal"
)

func TestDuplicatePairID(t *testing.T) {
	pairs := &fakePairs{pairs: map[string]domain.PairInfo{
		"VOLTAS": {InvestingTicker: "VOLTAS", PairID: "18462"},
		"VOLT":   {InvestingTicker: "VOLT", PairID: "18462"},
		"TCS":    {InvestingTicker: "TCS", PairID: "9001"},
	}}
	chk := NewDuplicatePairID(pairs)

	results, err := chk.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected exactly one finding for the shared pair id, got %d", len(results))
	}

	res := results[0]
	if res.Code != CodeDuplicatePairID || res.Severity != domain.SeverityHigh {
		t.Errorf("Unexpected code/severity: %s/%s", res.Code, res.Severity)
	}
	data, ok := res.Data.(domain.DuplicatePairData)
	if !ok {
		t.Fatalf("Data is %T, want DuplicatePairData", res.Data)
	}
	if data.PairID != "18462" {
		t.Errorf("PairID = %s, want 18462", data.PairID)
	}
	if !reflect.DeepEqual(data.InvestingTickers, []string{"VOLT", "VOLTAS"}) {
		t.Errorf("Members = %v, want full sorted group", data.InvestingTickers)
	}
}

func TestDuplicateTvAlias(t *testing.T) {
	tvMap := &fakeTvMap{m: map[string]string{
		"RELI":     "RELIANCE",
		"RELIANCE": "RELIANCE",
		"TCS":      "TCS",
	}}
	chk := NewDuplicateTvAlias(tvMap)

	results, err := chk.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected one collision group, got %d", len(results))
	}
	data := results[0].Data.(domain.AliasCollisionData)
	if data.InvestingTicker != "RELIANCE" {
		t.Errorf("InvestingTicker = %s", data.InvestingTicker)
	}
	if !reflect.DeepEqual(data.TvTickers, []string{"RELI", "RELIANCE"}) {
		t.Errorf("TvTickers = %v", data.TvTickers)
	}
}

func TestOrphanedAlerts(t *testing.T) {
	pairs := &fakePairs{pairs: map[string]domain.PairInfo{
		"TCS": {InvestingTicker: "TCS", PairID: "100"},
	}}
	alerts := &fakeAlerts{alerts: []domain.Alert{
		{ID: "a1", PairID: "100"},
		{ID: "a2", PairID: "ORPHAN_PAIR"},
		{ID: "a3", PairID: "ORPHAN_PAIR"},
	}}
	chk := NewOrphanedAlerts(alerts, pairs)

	results, err := chk.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected one aggregated finding, got %d", len(results))
	}
	data := results[0].Data.(domain.OrphanAlertData)
	if data.PairID != "ORPHAN_PAIR" || data.AlertCount != 2 {
		t.Errorf("Got %+v, want ORPHAN_PAIR with 2 alerts", data)
	}
}

func TestOrphanedOrders(t *testing.T) {
	tvMap := &fakeTvMap{m: map[string]string{"TCS": "TCS"}}
	orders := &fakeOrders{orders: []domain.Order{
		{ID: "o2", Ticker: "GHOST"},
		{ID: "o1", Ticker: "GHOST"},
		{ID: "o3", Ticker: "TCS"},
	}}
	chk := NewOrphanedOrders(orders, tvMap)

	results, err := chk.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected one finding, got %d", len(results))
	}
	data := results[0].Data.(domain.OrphanOrderData)
	if data.Ticker != "GHOST" || data.OrderCount != 2 {
		t.Errorf("Got %+v", data)
	}
	if !reflect.DeepEqual(data.OrderIDs, []string{"o1", "o2"}) {
		t.Errorf("OrderIDs = %v, want sorted ids", data.OrderIDs)
	}
}

func TestOrderRiskTolerance(t *testing.T) {
	accepted := []decimal.Decimal{decimal.NewFromInt(3200), decimal.NewFromInt(6400)}
	tolerance := decimal.NewFromFloat(0.01)

	order := func(id, ticker string, qty, entry, stop int64) domain.Order {
		return domain.Order{
			ID:     id,
			Ticker: ticker,
			Qty:    decimal.NewFromInt(qty),
			Entry:  decimal.NewFromInt(entry),
			Stop:   decimal.NewFromInt(stop),
		}
	}

	t.Run("risk outside every band fails", func(t *testing.T) {
		// |100 - 90| * 300 = 3000, more than 1% away from 3200
		orders := &fakeOrders{orders: []domain.Order{order("o1", "TCS", 300, 100, 90)}}
		chk := NewOrderRiskTolerance(orders, accepted, tolerance)

		results, err := chk.Run(context.Background(), nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("Expected one finding, got %d", len(results))
		}
		data := results[0].Data.(domain.RiskToleranceData)
		if !data.ComputedRisk.Equal(decimal.NewFromInt(3000)) {
			t.Errorf("ComputedRisk = %s, want 3000", data.ComputedRisk)
		}
		if results[0].Severity != domain.SeverityHigh {
			t.Errorf("Severity = %s, want HIGH", results[0].Severity)
		}
	})

	t.Run("risk inside the band passes", func(t *testing.T) {
		// |100 - 84| * 398 = 6368, within 1% of 6400
		orders := &fakeOrders{orders: []domain.Order{order("o1", "TCS", 398, 100, 84)}}
		chk := NewOrderRiskTolerance(orders, accepted, tolerance)

		results, err := chk.Run(context.Background(), nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("Expected no findings, got %v", results)
		}
	})

	t.Run("short order uses absolute leg distance", func(t *testing.T) {
		// stop above entry: |84 - 100| * 200 = 3200 exactly
		orders := &fakeOrders{orders: []domain.Order{order("o1", "TCS", 200, 84, 100)}}
		chk := NewOrderRiskTolerance(orders, accepted, tolerance)

		results, err := chk.Run(context.Background(), nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("Expected no findings, got %v", results)
		}
	})

	t.Run("targeted by ticker", func(t *testing.T) {
		orders := &fakeOrders{orders: []domain.Order{
			order("o1", "TCS", 300, 100, 90),
			order("o2", "INFY", 300, 100, 90),
		}}
		chk := NewOrderRiskTolerance(orders, accepted, tolerance)

		results, err := chk.Run(context.Background(), []string{"INFY"})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(results) != 1 || results[0].Target != "INFY" {
			t.Errorf("Expected single INFY finding, got %v", results)
		}
	})
}

func TestStaleTicker(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	tvMap := &fakeTvMap{m: map[string]string{
		"NEVER": "NEVER",
		"OLD":   "OLD",
		"FRESH": "FRESH",
	}}
	openTimes := &fakeOpenTimes{m: map[string]time.Time{
		"OLD":   now.AddDate(0, 0, -100),
		"FRESH": now.AddDate(0, 0, -10),
	}}

	chk := NewStaleTicker(tvMap, openTimes, 90)
	chk.Now = func() time.Time { return now }

	results, err := chk.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	byTarget := make(map[string]domain.AuditResult)
	for _, r := range results {
		byTarget[r.Target] = r
	}

	t.Run("never opened is high with sentinel", func(t *testing.T) {
		res, ok := byTarget["NEVER"]
		if !ok {
			t.Fatal("Expected a finding for NEVER")
		}
		if res.Severity != domain.SeverityHigh {
			t.Errorf("Severity = %s, want HIGH", res.Severity)
		}
		if res.Data.(domain.StalenessData).DaysSinceOpen != NeverOpenedDays {
			t.Errorf("DaysSinceOpen = %d, want sentinel", res.Data.(domain.StalenessData).DaysSinceOpen)
		}
	})

	t.Run("older than threshold is medium", func(t *testing.T) {
		res, ok := byTarget["OLD"]
		if !ok {
			t.Fatal("Expected a finding for OLD")
		}
		if res.Severity != domain.SeverityMedium {
			t.Errorf("Severity = %s, want MEDIUM", res.Severity)
		}
		if days := res.Data.(domain.StalenessData).DaysSinceOpen; days < 99 {
			t.Errorf("DaysSinceOpen = %d, want ~100", days)
		}
	})

	t.Run("recently opened passes", func(t *testing.T) {
		if _, ok := byTarget["FRESH"]; ok {
			t.Error("FRESH should produce no finding")
		}
	})
}

func TestOrderTickerUnwatched(t *testing.T) {
	cats := newFakeCategories()
	cats.lists.SetList(domain.DefaultWatchlistIndex, []string{"TCS"})

	orders := &fakeOrders{orders: []domain.Order{
		{ID: "o1", Ticker: "TCS"},
		{ID: "o2", Ticker: "STRAY"},
	}}
	chk := NewOrderTickerUnwatched(orders, cats, []int{domain.DefaultWatchlistIndex})

	results, err := chk.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 || results[0].Target != "STRAY" {
		t.Fatalf("Expected one STRAY finding, got %v", results)
	}
	data := results[0].Data.(domain.MembershipData)
	if data.Ticker != "STRAY" {
		t.Errorf("Data = %+v", data)
	}
}

func TestAlertTickerUnwatched(t *testing.T) {
	pairs := &fakePairs{pairs: map[string]domain.PairInfo{
		"TCS":  {InvestingTicker: "TCS", PairID: "100"},
		"INFY": {InvestingTicker: "INFY", PairID: "200"},
	}}
	tvMap := &fakeTvMap{m: map[string]string{
		"TCS":  "TCS",
		"INFY": "INFY",
	}}
	alerts := &fakeAlerts{alerts: []domain.Alert{
		{ID: "a1", PairID: "100"},
		{ID: "a2", PairID: "200"},
		{ID: "a3", PairID: "UNKNOWN"}, // orphan, ignored here
	}}
	cats := newFakeCategories()
	cats.lists.SetList(domain.DefaultWatchlistIndex, []string{"TCS"})

	chk := NewAlertTickerUnwatched(alerts, pairs, tvMap, cats, []int{domain.DefaultWatchlistIndex})

	results, err := chk.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 || results[0].Target != "INFY" {
		t.Errorf("Expected single INFY finding, got %v", results)
	}
}

func TestExchangeOrphan(t *testing.T) {
	tvMap := &fakeTvMap{m: map[string]string{"TCS": "TCS"}}
	exchanges := &fakeExchanges{m: map[string]string{
		"TCS":  "NSE:TCS",
		"GONE": "NSE:GONE",
	}}
	chk := NewExchangeOrphan(exchanges, tvMap)

	results, err := chk.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected one finding, got %d", len(results))
	}
	data := results[0].Data.(domain.ExchangeData)
	if data.TvTicker != "GONE" || data.ExchangeValue != "NSE:GONE" {
		t.Errorf("Data = %+v", data)
	}
}

func TestSequenceOrphan(t *testing.T) {
	tvMap := &fakeTvMap{m: map[string]string{"TCS": "TCS"}}
	sequences := &fakeSequences{set: map[string]bool{"TCS": true, "GONE": true}}
	chk := NewSequenceOrphan(sequences, tvMap)

	results, err := chk.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 || results[0].Target != "GONE" {
		t.Errorf("Expected single GONE finding, got %v", results)
	}
}

func TestCategoryGhost(t *testing.T) {
	tvMap := &fakeTvMap{m: map[string]string{"TCS": "TCS"}}
	cats := newFakeCategories()
	cats.lists.SetList(0, []string{"TCS", "GHOST"})
	cats.lists.SetList(7, []string{"GHOST"})

	chk := NewCategoryGhost(cats, tvMap)

	results, err := chk.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// GHOST appears in two lists but the union dedupes it
	if len(results) != 1 || results[0].Target != "GHOST" {
		t.Errorf("Expected single GHOST finding, got %v", results)
	}
}

func TestDefaultChecks(t *testing.T) {
	deps := Deps{
		Pairs:      &fakePairs{pairs: map[string]domain.PairInfo{}},
		TickerMap:  &fakeTvMap{m: map[string]string{}},
		Exchanges:  &fakeExchanges{m: map[string]string{}},
		Sequences:  &fakeSequences{set: map[string]bool{}},
		Alerts:     &fakeAlerts{},
		Orders:     &fakeOrders{},
		Categories: newFakeCategories(),
		OpenTimes:  &fakeOpenTimes{m: map[string]time.Time{}},
	}
	opts := Options{
		StalenessDays:   90,
		AcceptedRisks:   []decimal.Decimal{decimal.NewFromInt(3200)},
		RiskTolerance:   decimal.NewFromFloat(0.01),
		WatchCategories: []int{domain.DefaultWatchlistIndex},
	}

	checks := DefaultChecks(deps, opts)
	if len(checks) != 15 {
		t.Fatalf("Expected 15 checks, got %d", len(checks))
	}

	seen := make(map[string]bool)
	for _, chk := range checks {
		if err := chk.Validate(); err != nil {
			t.Errorf("Check %s fails validation: %v", chk.ID(), err)
		}
		if seen[chk.ID()] {
			t.Errorf("Duplicate check id %s", chk.ID())
		}
		seen[chk.ID()] = true

		// every check must answer cleanly over an empty universe
		results, err := chk.Run(context.Background(), nil)
		if err != nil {
			t.Errorf("Check %s failed on empty data: %v", chk.ID(), err)
		}
		if len(results) != 0 {
			t.Errorf("Check %s found issues in empty data: %v", chk.ID(), results)
		}
	}
}
