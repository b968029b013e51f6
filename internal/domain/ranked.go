package domain

// RankedAlias is the canonical ranker's output for one candidate
// alias. Score is the composite; the boolean fields expose the
// individual signals so remediation UIs can explain the ranking.
// HasPairMapping reports whether the alias joins to the other identity
// system at all (a tv mapping for vendor aliases, a pair record for tv
// aliases).
type RankedAlias struct {
	Ticker         string `json:"ticker"`
	Score          int    `json:"score"`
	AlertCount     int    `json:"alert_count"`
	Watched        bool   `json:"watched"`
	RecentlyOpened bool   `json:"recently_opened"`
	HasSequence    bool   `json:"has_sequence"`
	HasExchange    bool   `json:"has_exchange"`
	HasPairMapping bool   `json:"has_pair_mapping"`
}
