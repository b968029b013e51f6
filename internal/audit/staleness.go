package audit

import (
	"context"
	"fmt"
	"time"

	"ticker_audit/internal/domain"
)

// NeverOpenedDays is the sentinel distinguishing "never opened" from
// "opened long ago" in StalenessData.
const NeverOpenedDays = -1

// StalenessCheck fails every ticker whose last-opened timestamp is
// missing (HIGH) or older than the threshold (MEDIUM). A ticker
// opened within the threshold produces no finding. Supports targeted
// mode.
type StalenessCheck struct {
	meta
	code string

	// Tickers enumerates the full scan surface.
	Tickers func(ctx context.Context) ([]string, error)

	OpenTimes     domain.OpenTimeRepository
	ThresholdDays int

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func (c *StalenessCheck) Run(ctx context.Context, targets []string) ([]domain.AuditResult, error) {
	tickers := targets
	if len(tickers) == 0 {
		var err error
		tickers, err = c.Tickers(ctx)
		if err != nil {
			return nil, err
		}
	}
	tickers = dedupeSorted(tickers)

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	var results []domain.AuditResult
	for _, ticker := range tickers {
		opened, ok, err := c.OpenTimes.LastOpened(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if !ok {
			results = append(results, domain.AuditResult{
				PluginID: c.id,
				Code:     c.code,
				Target:   ticker,
				Message:  fmt.Sprintf("%s has never been opened", ticker),
				Severity: domain.SeverityHigh,
				Status:   domain.StatusFail,
				Data:     domain.StalenessData{DaysSinceOpen: NeverOpenedDays},
			})
			continue
		}
		days := int(now().Sub(opened).Hours() / 24)
		if days <= c.ThresholdDays {
			continue
		}
		results = append(results, domain.AuditResult{
			PluginID: c.id,
			Code:     c.code,
			Target:   ticker,
			Message:  fmt.Sprintf("%s last opened %d days ago (threshold %d)", ticker, days, c.ThresholdDays),
			Severity: domain.SeverityMedium,
			Status:   domain.StatusFail,
			Data:     domain.StalenessData{DaysSinceOpen: days},
		})
	}
	return results, nil
}
