package audit

import (
	"context"
	"fmt"
	"sort"

	"ticker_audit/internal/domain"
)

// MembershipCheck fails every ticker absent from the union of a named
// list of category indices. Supports targeted mode.
type MembershipCheck struct {
	meta
	code     string
	severity domain.Severity

	// Tickers enumerates the full scan surface (e.g. all order tickers).
	Tickers func(ctx context.Context) ([]string, error)

	Categories domain.CategoryRepository
	Indices    []int
}

func (c *MembershipCheck) Run(ctx context.Context, targets []string) ([]domain.AuditResult, error) {
	tickers := targets
	if len(tickers) == 0 {
		var err error
		tickers, err = c.Tickers(ctx)
		if err != nil {
			return nil, err
		}
	}
	tickers = dedupeSorted(tickers)

	lists, err := c.Categories.Lists(ctx)
	if err != nil {
		return nil, err
	}

	indices := append([]int(nil), c.Indices...)
	sort.Ints(indices)

	var results []domain.AuditResult
	for _, ticker := range tickers {
		ok, err := lists.UnionContains(indices, ticker)
		if err != nil {
			return nil, err
		}
		if ok {
			continue
		}
		results = append(results, domain.AuditResult{
			PluginID: c.id,
			Code:     c.code,
			Target:   ticker,
			Message:  fmt.Sprintf("%s is not in any watch category %v", ticker, indices),
			Severity: c.severity,
			Status:   domain.StatusFail,
			Data:     domain.MembershipData{Ticker: ticker, CategoryIndices: indices},
		})
	}
	return results, nil
}
