package audit

import (
	"context"
	"fmt"
	"sort"

	"ticker_audit/internal/domain"

	"github.com/shopspring/decimal"
)

// ToleranceCheck derives capital at risk from each order's paired legs
// (|entry - stop| * qty) and fails unless it matches one of the
// accepted amounts within the relative tolerance. Supports targeted
// mode restricted by order ticker.
type ToleranceCheck struct {
	meta
	code     string
	severity domain.Severity

	Orders domain.OrderRepository
	// Accepted risk amounts, e.g. 3200 and 6400.
	Accepted []decimal.Decimal
	// Tolerance is relative, e.g. 0.01 for +-1%.
	Tolerance decimal.Decimal
}

func (c *ToleranceCheck) Run(ctx context.Context, targets []string) ([]domain.AuditResult, error) {
	orders, err := c.Orders.Orders(ctx)
	if err != nil {
		return nil, err
	}

	var scope map[string]struct{}
	if len(targets) > 0 {
		scope = make(map[string]struct{}, len(targets))
		for _, t := range targets {
			scope[t] = struct{}{}
		}
	}

	orders = append([]domain.Order(nil), orders...)
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].Ticker != orders[j].Ticker {
			return orders[i].Ticker < orders[j].Ticker
		}
		return orders[i].ID < orders[j].ID
	})

	var results []domain.AuditResult
	for _, order := range orders {
		if scope != nil {
			if _, ok := scope[order.Ticker]; !ok {
				continue
			}
		}
		risk := order.Risk()
		if c.withinTolerance(risk) {
			continue
		}
		results = append(results, domain.AuditResult{
			PluginID: c.id,
			Code:     c.code,
			Target:   order.Ticker,
			Message:  fmt.Sprintf("order %s on %s risks %s, not within tolerance of any accepted amount", order.ID, order.Ticker, risk.String()),
			Severity: c.severity,
			Status:   domain.StatusFail,
			Data:     domain.RiskToleranceData{OrderIDs: []string{order.ID}, ComputedRisk: risk},
		})
	}
	return results, nil
}

func (c *ToleranceCheck) withinTolerance(risk decimal.Decimal) bool {
	for _, accepted := range c.Accepted {
		band := accepted.Mul(c.Tolerance)
		if risk.Sub(accepted).Abs().LessThanOrEqual(band) {
			return true
		}
	}
	return false
}
