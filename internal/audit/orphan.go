package audit

import (
	"context"
	"sort"

	"ticker_audit/internal/domain"
)

// OrphanCheck scans a dependent collection keyed by parent id and
// fails every parent id with dependents but no parent record. The
// finding aggregates: one FAIL per parent id carrying the dependent
// count, never one FAIL per dependent. Inherently global.
type OrphanCheck struct {
	meta
	code     string
	severity domain.Severity

	// Dependents returns parentID -> dependent ids over the whole collection.
	Dependents func(ctx context.Context) (map[string][]string, error)
	// ParentExists reports whether a parent record exists.
	ParentExists func(ctx context.Context, parentID string) (bool, error)
	// Describe builds the finding message and payload for one orphaned parent id.
	Describe func(parentID string, dependentIDs []string) (string, any)
}

func (c *OrphanCheck) Run(ctx context.Context, targets []string) ([]domain.AuditResult, error) {
	if err := rejectTargets(c.id, targets); err != nil {
		return nil, err
	}

	deps, err := c.Dependents(ctx)
	if err != nil {
		return nil, err
	}

	parents := make([]string, 0, len(deps))
	for p := range deps {
		parents = append(parents, p)
	}
	sort.Strings(parents)

	var results []domain.AuditResult
	for _, parent := range parents {
		ok, err := c.ParentExists(ctx, parent)
		if err != nil {
			return nil, err
		}
		if ok {
			continue
		}
		ids := append([]string(nil), deps[parent]...)
		sort.Strings(ids)
		msg, data := c.Describe(parent, ids)
		results = append(results, domain.AuditResult{
			PluginID: c.id,
			Code:     c.code,
			Target:   parent,
			Message:  msg,
			Severity: c.severity,
			Status:   domain.StatusFail,
			Data:     data,
		})
	}
	return results, nil
}
