package audit

import (
	"context"
	"fmt"

	"ticker_audit/internal/domain"
)

// Check is the uniform contract every audit check implements. An
// orchestrator runs all checks through it; targeted UIs run one check
// against a ticker subset.
//
// Run with an empty or nil target list means "scan everything"; the
// two calls are observationally equal. Globally-scoped checks (the
// duplicate-group and orphan archetypes) reject a non-empty target
// list because a correct answer requires seeing the whole collection.
type Check interface {
	// ID is the stable, unique, kebab-case identifier.
	ID() string
	// Title is the human-readable label.
	Title() string
	// Validate fails when the check was constructed with an empty id
	// or title. A construction-time sanity check, not a data check.
	Validate() error
	// Run scans the repositories and returns findings. Result order is
	// deterministic for a fixed repository snapshot. An empty result
	// slice means "no issues found".
	Run(ctx context.Context, targets []string) ([]domain.AuditResult, error)
}

// meta carries the identity shared by every archetype.
type meta struct {
	id    string
	title string
}

func (m meta) ID() string    { return m.id }
func (m meta) Title() string { return m.title }

func (m meta) Validate() error {
	if m.id == "" {
		return &domain.ValidationError{CheckID: m.id, Reason: "empty id"}
	}
	if m.title == "" {
		return &domain.ValidationError{CheckID: m.id, Reason: "empty title"}
	}
	return nil
}

// rejectTargets enforces the global-scan contract.
func rejectTargets(id string, targets []string) error {
	if len(targets) > 0 {
		return fmt.Errorf("check %q: %w", id, domain.ErrTargetsUnsupported)
	}
	return nil
}
