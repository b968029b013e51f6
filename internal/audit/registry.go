package audit

import (
	"context"
	"fmt"
	"sync"

	"ticker_audit/internal/domain"
)

// SectionHandler consumes the findings of one check, typically to
// drive a remediation section in the UI layer.
type SectionHandler interface {
	HandleFindings(ctx context.Context, results []domain.AuditResult) error
}

// SectionHandlerFunc adapts a function to SectionHandler.
type SectionHandlerFunc func(ctx context.Context, results []domain.AuditResult) error

func (f SectionHandlerFunc) HandleFindings(ctx context.Context, results []domain.AuditResult) error {
	return f(ctx, results)
}

// SectionRegistry maps check identifiers to remediation handlers. It
// is an explicit constructed object, never ambient state, so multiple
// engine instances do not interfere. Both failure modes are loud:
// silent overwrite or silent miss would route findings to the wrong
// remediation logic.
type SectionRegistry struct {
	mu       sync.RWMutex
	sections map[string]SectionHandler
}

// NewSectionRegistry returns an empty registry.
func NewSectionRegistry() *SectionRegistry {
	return &SectionRegistry{sections: make(map[string]SectionHandler)}
}

// Register adds a handler. Registering an id twice fails.
func (r *SectionRegistry) Register(id string, handler SectionHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sections[id]; ok {
		return fmt.Errorf("section %q: %w", id, domain.ErrDuplicateSection)
	}
	r.sections[id] = handler
	return nil
}

// Get returns the handler for id, failing when none is registered.
func (r *SectionRegistry) Get(id string) (SectionHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.sections[id]
	if !ok {
		return nil, fmt.Errorf("section %q: %w", id, domain.ErrSectionNotFound)
	}
	return handler, nil
}

// Has reports whether a handler is registered for id.
func (r *SectionRegistry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sections[id]
	return ok
}

// ListSections returns the registered ids in no particular order.
func (r *SectionRegistry) ListSections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sections))
	for id := range r.sections {
		ids = append(ids, id)
	}
	return ids
}
