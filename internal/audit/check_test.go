package audit

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"ticker_audit/internal/domain"
)

func TestMetaValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m := meta{id: "some-check", title: "Some check"}
		if err := m.Validate(); err != nil {
			t.Errorf("Validate failed: %v", err)
		}
	})

	t.Run("empty id", func(t *testing.T) {
		m := meta{title: "Some check"}
		var vErr *domain.ValidationError
		if err := m.Validate(); !errors.As(err, &vErr) {
			t.Errorf("Expected ValidationError, got %v", err)
		}
	})

	t.Run("empty title", func(t *testing.T) {
		m := meta{id: "some-check"}
		if err := m.Validate(); err == nil {
			t.Error("Expected error for empty title")
		}
	})
}

func TestGlobalChecksRejectTargets(t *testing.T) {
	pairs := &fakePairs{pairs: map[string]domain.PairInfo{
		"TCS": {InvestingTicker: "TCS", PairID: "1"},
	}}
	alerts := &fakeAlerts{}

	global := []Check{
		NewDuplicatePairID(pairs),
		NewOrphanedAlerts(alerts, pairs),
	}
	for _, chk := range global {
		t.Run(chk.ID(), func(t *testing.T) {
			_, err := chk.Run(context.Background(), []string{"TCS"})
			if !errors.Is(err, domain.ErrTargetsUnsupported) {
				t.Errorf("Expected ErrTargetsUnsupported, got %v", err)
			}
		})
	}
}

func TestRunNilEqualsRunEmpty(t *testing.T) {
	pairs := &fakePairs{pairs: map[string]domain.PairInfo{
		"TCS":  {InvestingTicker: "TCS", PairID: "100"},
		"INFY": {InvestingTicker: "INFY", PairID: "200"},
	}}
	tvMap := &fakeTvMap{m: map[string]string{"TCS": "TCS"}}

	chk := NewPairMissingTvMapping(pairs, tvMap)

	withNil, err := chk.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run(nil) failed: %v", err)
	}
	withEmpty, err := chk.Run(context.Background(), []string{})
	if err != nil {
		t.Fatalf("Run([]) failed: %v", err)
	}

	if !reflect.DeepEqual(withNil, withEmpty) {
		t.Errorf("Run(nil) and Run([]) diverge:\n%v\n%v", withNil, withEmpty)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	pairs := &fakePairs{pairs: map[string]domain.PairInfo{
		"ZEE": {InvestingTicker: "ZEE", PairID: "1"},
		"ABB": {InvestingTicker: "ABB", PairID: "2"},
		"MID": {InvestingTicker: "MID", PairID: "3"},
	}}
	tvMap := &fakeTvMap{m: map[string]string{}}
	chk := NewPairMissingTvMapping(pairs, tvMap)

	first, err := chk.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := chk.Run(context.Background(), nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Run order changed between invocations:\n%v\n%v", first, again)
		}
	}

	if len(first) != 3 {
		t.Fatalf("Expected 3 findings, got %d", len(first))
	}
	for i, want := range []string{"ABB", "MID", "ZEE"} {
		if first[i].Target != want {
			t.Errorf("Finding %d target = %s, want %s", i, first[i].Target, want)
		}
	}
}

func TestTargetedRunScopesToTargets(t *testing.T) {
	pairs := &fakePairs{pairs: map[string]domain.PairInfo{
		"TCS":  {InvestingTicker: "TCS", PairID: "100"},
		"INFY": {InvestingTicker: "INFY", PairID: "200"},
	}}
	tvMap := &fakeTvMap{m: map[string]string{}}
	chk := NewPairMissingTvMapping(pairs, tvMap)

	results, err := chk.Run(context.Background(), []string{"INFY"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 || results[0].Target != "INFY" {
		t.Errorf("Expected single INFY finding, got %v", results)
	}
}
