package audit

import (
	"context"
	"sort"

	"ticker_audit/internal/domain"
)

// ExistenceCheck scans a source key set and fails every key that has
// no corresponding value in a relation. Supports targeted mode: a
// non-empty target list restricts the scan surface without changing
// the per-key answer.
type ExistenceCheck struct {
	meta
	code     string
	severity domain.Severity

	// Keys enumerates the full scan surface.
	Keys func(ctx context.Context) ([]string, error)
	// Exists reports whether the relation holds for one key.
	Exists func(ctx context.Context, key string) (bool, error)
	// Describe builds the finding message and payload for a failed key.
	// Best-effort lookups for display data may use ctx.
	Describe func(ctx context.Context, key string) (string, any)
}

func (c *ExistenceCheck) Run(ctx context.Context, targets []string) ([]domain.AuditResult, error) {
	keys := targets
	if len(keys) == 0 {
		var err error
		keys, err = c.Keys(ctx)
		if err != nil {
			return nil, err
		}
	}
	keys = append([]string(nil), keys...)
	sort.Strings(keys)

	var results []domain.AuditResult
	for _, key := range keys {
		ok, err := c.Exists(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			continue
		}
		msg, data := c.Describe(ctx, key)
		results = append(results, domain.AuditResult{
			PluginID: c.id,
			Code:     c.code,
			Target:   key,
			Message:  msg,
			Severity: c.severity,
			Status:   domain.StatusFail,
			Data:     data,
		})
	}
	return results, nil
}
