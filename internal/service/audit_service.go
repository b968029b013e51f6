package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ticker_audit/internal/audit"
	"ticker_audit/internal/domain"
	"ticker_audit/internal/infra"
)

// Report aggregates one full audit run. Findings are keyed by plugin
// id; result order within a plugin is the check's own deterministic
// order.
type Report struct {
	Findings   map[string][]domain.AuditResult
	Errors     map[string]error
	BySeverity map[domain.Severity]int
	Duration   time.Duration
}

// TotalFindings returns the number of findings across all checks.
func (r *Report) TotalFindings() int {
	n := 0
	for _, results := range r.Findings {
		n += len(results)
	}
	return n
}

// HasSeverity reports whether any finding carries the given severity.
func (r *Report) HasSeverity(sev domain.Severity) bool {
	return r.BySeverity[sev] > 0
}

// AuditService orchestrates the check set. Checks never mutate their
// repositories, so they run concurrently without coordination; the
// service only bounds the fan-out.
type AuditService struct {
	checks   []audit.Check
	registry *audit.SectionRegistry
	metrics  *infra.Metrics
	logger   *slog.Logger

	maxConcurrent int
}

// NewAuditService validates every check up front. A malformed check or
// a duplicated id fails construction; it is never buried in a report.
func NewAuditService(checks []audit.Check, registry *audit.SectionRegistry, metrics *infra.Metrics) (*AuditService, error) {
	seen := make(map[string]struct{}, len(checks))
	for _, check := range checks {
		if err := check.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[check.ID()]; ok {
			return nil, fmt.Errorf("check id %q registered twice", check.ID())
		}
		seen[check.ID()] = struct{}{}
	}
	return &AuditService{
		checks:        checks,
		registry:      registry,
		metrics:       metrics,
		logger:        slog.Default().With("module", "audit_service"),
		maxConcurrent: 4,
	}, nil
}

// Checks returns the check ids in registration order.
func (s *AuditService) Checks() []string {
	ids := make([]string, 0, len(s.checks))
	for _, check := range s.checks {
		ids = append(ids, check.ID())
	}
	return ids
}

// RunAll runs every check as a full scan and aggregates the findings.
// Findings of checks with a registered remediation section are handed
// to their handler.
func (s *AuditService) RunAll(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{
		Findings:   make(map[string][]domain.AuditResult),
		Errors:     make(map[string]error),
		BySeverity: make(map[domain.Severity]int),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, s.maxConcurrent)

	for _, check := range s.checks {
		wg.Add(1)
		go func(check audit.Check) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			results, err := check.Run(ctx, nil)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Errors[check.ID()] = err
				if s.metrics != nil {
					s.metrics.RecordCheckError()
				}
				s.logger.Error("check failed", slog.String("check", check.ID()), slog.Any("error", err))
				return
			}
			report.Findings[check.ID()] = results
			for _, result := range results {
				report.BySeverity[result.Severity]++
			}
			if s.metrics != nil {
				s.metrics.RecordCheck(len(results))
			}
		}(check)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordScan(report.Duration.Nanoseconds())
	}

	if err := s.dispatch(ctx, report); err != nil {
		return report, err
	}
	return report, nil
}

// RunCheck runs one check by id, optionally against a target subset.
func (s *AuditService) RunCheck(ctx context.Context, id string, targets []string) ([]domain.AuditResult, error) {
	for _, check := range s.checks {
		if check.ID() == id {
			return check.Run(ctx, targets)
		}
	}
	return nil, fmt.Errorf("check %q: %w", id, domain.ErrSectionNotFound)
}

func (s *AuditService) dispatch(ctx context.Context, report *Report) error {
	if s.registry == nil {
		return nil
	}
	for _, check := range s.checks {
		results := report.Findings[check.ID()]
		if len(results) == 0 || !s.registry.Has(check.ID()) {
			continue
		}
		handler, err := s.registry.Get(check.ID())
		if err != nil {
			return err
		}
		if err := handler.HandleFindings(ctx, results); err != nil {
			return fmt.Errorf("section %q: %w", check.ID(), err)
		}
	}
	return nil
}
