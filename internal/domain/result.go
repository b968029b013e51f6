package domain

import "github.com/shopspring/decimal"

// Severity classifies how urgent a finding is.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Status marks whether a check condition held.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// AuditResult is one finding emitted by a check. It is ephemeral:
// created fresh on every run, never persisted, and carries no identity
// beyond its fields. Target is the identifier remediation acts on
// (a ticker, a pairId, or similar).
type AuditResult struct {
	PluginID string   `json:"plugin_id"`
	Code     string   `json:"code"`
	Target   string   `json:"target"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Status   Status   `json:"status"`
	Data     any      `json:"data,omitempty"`
}

// Per-code Data payloads. Remediation code switches on Code and
// asserts the matching payload type instead of digging through an
// untyped map.

// DuplicatePairData lists every investing ticker sharing one pairId.
type DuplicatePairData struct {
	PairID           string   `json:"pair_id"`
	InvestingTickers []string `json:"investing_tickers"`
}

// AliasCollisionData lists every tv ticker reverse-mapping to one
// investing ticker.
type AliasCollisionData struct {
	InvestingTicker string   `json:"investing_ticker"`
	TvTickers       []string `json:"tv_tickers"`
}

// MissingMappingData names the relation an existence check found absent.
type MissingMappingData struct {
	Ticker string `json:"ticker"`
	Wanted string `json:"wanted"`
}

// OrphanAlertData aggregates alerts pointing at a pairId with no pair
// record. One finding per pairId, never one per alert.
type OrphanAlertData struct {
	PairID     string `json:"pair_id"`
	AlertCount int    `json:"alert_count"`
}

// OrphanOrderData aggregates broker orders whose ticker resolves to nothing.
type OrphanOrderData struct {
	Ticker     string   `json:"ticker"`
	OrderCount int      `json:"order_count"`
	OrderIDs   []string `json:"order_ids"`
}

// MembershipData names the category indices a ticker was expected in.
type MembershipData struct {
	Ticker          string `json:"ticker"`
	CategoryIndices []int  `json:"category_indices"`
}

// RiskToleranceData carries the offending order ids and the risk the
// check computed from the order legs.
type RiskToleranceData struct {
	OrderIDs     []string        `json:"order_ids"`
	ComputedRisk decimal.Decimal `json:"computed_risk"`
}

// StalenessData reports elapsed days since the ticker was last opened.
// DaysSinceOpen is -1 when no open was ever recorded.
type StalenessData struct {
	DaysSinceOpen int `json:"days_since_open"`
}

// ExchangeData carries an exchange mapping a finding refers to.
type ExchangeData struct {
	TvTicker      string `json:"tv_ticker"`
	ExchangeValue string `json:"exchange_value"`
}
