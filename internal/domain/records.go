package domain

import (
	"github.com/shopspring/decimal"
)

// PairInfo identifies one instrument as known to the data vendor.
// PairID is the vendor's stable instrument identifier and the join
// key across every other mapping.
type PairInfo struct {
	InvestingTicker string `gorm:"primaryKey" json:"investing_ticker"`
	Name            string `json:"name"`
	PairID          string `gorm:"index" json:"pair_id"`
	Exchange        string `json:"exchange"`
}

// Alert is a price trigger scoped to a vendor pairId, not to any one
// ticker alias.
type Alert struct {
	ID     string          `gorm:"primaryKey" json:"id"`
	PairID string          `gorm:"index" json:"pair_id"`
	Price  decimal.Decimal `gorm:"type:decimal(20,8)" json:"price"`
}

// Order is a broker conditional order (two-leg GTT: entry trigger
// plus stop leg). All monetary values are decimals.
type Order struct {
	ID     string          `json:"id"`
	Ticker string          `json:"ticker"`
	Qty    decimal.Decimal `json:"qty"`
	Entry  decimal.Decimal `json:"entry"`
	Stop   decimal.Decimal `json:"stop"`
}

// Risk returns the capital at risk for the order: |entry - stop| * qty.
func (o *Order) Risk() decimal.Decimal {
	return o.Entry.Sub(o.Stop).Abs().Mul(o.Qty)
}
