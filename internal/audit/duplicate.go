package audit

import (
	"context"
	"sort"

	"ticker_audit/internal/domain"
)

// DuplicateGroupCheck groups a collection by a derived key and fails
// every group holding two or more distinct members. One FAIL per
// group, carrying the full member list. Inherently global: grouping a
// subset would hide collisions, so targeted mode is refused.
type DuplicateGroupCheck struct {
	meta
	code     string
	severity domain.Severity

	// Groups returns groupKey -> members over the whole collection.
	Groups func(ctx context.Context) (map[string][]string, error)
	// Describe builds the finding message and payload for one group.
	Describe func(groupKey string, members []string) (string, any)
}

func (c *DuplicateGroupCheck) Run(ctx context.Context, targets []string) ([]domain.AuditResult, error) {
	if err := rejectTargets(c.id, targets); err != nil {
		return nil, err
	}

	groups, err := c.Groups(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var results []domain.AuditResult
	for _, key := range keys {
		members := dedupeSorted(groups[key])
		if len(members) < 2 {
			continue
		}
		msg, data := c.Describe(key, members)
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

// dedupeSorted returns the distinct members in sorted order.
func dedupeSorted(members []string) []string {
	seen := make(map[string]struct{}, len(members))
	out := make([]string, 0, len(members))
	for _, m := range members {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
