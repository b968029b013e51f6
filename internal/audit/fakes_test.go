package audit

import (
	"context"
	"sort"
	"time"

	"ticker_audit/internal/domain"
)

// In-memory repository fakes shared by the check tests.

type fakePairs struct {
	pairs map[string]domain.PairInfo
}

func (f *fakePairs) Tickers(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(f.pairs))
	for t := range f.pairs {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakePairs) Get(ctx context.Context, investingTicker string) (*domain.PairInfo, error) {
	info, ok := f.pairs[investingTicker]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

func (f *fakePairs) All(ctx context.Context) (map[string]domain.PairInfo, error) {
	out := make(map[string]domain.PairInfo, len(f.pairs))
	for k, v := range f.pairs {
		out[k] = v
	}
	return out, nil
}

type fakeTvMap struct {
	m map[string]string // tv ticker -> investing ticker
}

func (f *fakeTvMap) TvTickers(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(f.m))
	for t := range f.m {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeTvMap) InvestingFor(ctx context.Context, tvTicker string) (string, bool, error) {
	inv, ok := f.m[tvTicker]
	return inv, ok, nil
}

func (f *fakeTvMap) All(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(f.m))
	for k, v := range f.m {
		out[k] = v
	}
	return out, nil
}

type fakeExchanges struct {
	m map[string]string
}

func (f *fakeExchanges) TvTickers(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(f.m))
	for t := range f.m {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeExchanges) Get(ctx context.Context, tvTicker string) (string, bool, error) {
	v, ok := f.m[tvTicker]
	return v, ok, nil
}

func (f *fakeExchanges) All(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(f.m))
	for k, v := range f.m {
		out[k] = v
	}
	return out, nil
}

type fakeSequences struct {
	set map[string]bool
}

func (f *fakeSequences) TvTickers(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(f.set))
	for t := range f.set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeSequences) Has(ctx context.Context, tvTicker string) (bool, error) {
	return f.set[tvTicker], nil
}

type fakeAlerts struct {
	alerts []domain.Alert
}

func (f *fakeAlerts) All(ctx context.Context) ([]domain.Alert, error) {
	return append([]domain.Alert(nil), f.alerts...), nil
}

func (f *fakeAlerts) CountByPairID(ctx context.Context, pairID string) (int, error) {
	n := 0
	for _, a := range f.alerts {
		if a.PairID == pairID {
			n++
		}
	}
	return n, nil
}

type fakeOrders struct {
	orders []domain.Order
	err    error
}

func (f *fakeOrders) Orders(ctx context.Context) ([]domain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Order(nil), f.orders...), nil
}

type fakeCategories struct {
	lists *domain.CategoryLists
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{lists: domain.NewCategoryLists()}
}

func (f *fakeCategories) Lists(ctx context.Context) (*domain.CategoryLists, error) {
	return f.lists, nil
}

type fakeOpenTimes struct {
	m map[string]time.Time
}

func (f *fakeOpenTimes) LastOpened(ctx context.Context, tvTicker string) (time.Time, bool, error) {
	t, ok := f.m[tvTicker]
	return t, ok, nil
}
