package infra

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"ticker_audit/internal/domain"
)

// Config holds every application setting. Secrets can be overridden
// through environment variables after the file is loaded.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Storage struct {
		Path string `yaml:"path"` // empty = OS config dir default
	} `yaml:"storage"`

	Broker struct {
		RestURL   string `yaml:"rest_url"`
		WSURL     string `yaml:"ws_url"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"broker"`

	Audit struct {
		StalenessDays    int               `yaml:"staleness_days"`
		AcceptedRisks    []decimal.Decimal `yaml:"accepted_risks"`
		RiskTolerancePct decimal.Decimal   `yaml:"risk_tolerance_pct"`
		WatchCategories  []int             `yaml:"watch_categories"`
	} `yaml:"audit"`

	Ranking struct {
		PreferredExchange string `yaml:"preferred_exchange"`
		RecentOpenDays    int    `yaml:"recent_open_days"`
	} `yaml:"ranking"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// DefaultConfig returns the settings used when the file omits them.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Name = "ticker-audit"
	cfg.Audit.StalenessDays = 90
	cfg.Audit.AcceptedRisks = []decimal.Decimal{
		decimal.NewFromInt(3200),
		decimal.NewFromInt(6400),
	}
	cfg.Audit.RiskTolerancePct = decimal.NewFromFloat(0.01)
	cfg.Audit.WatchCategories = []int{domain.DefaultWatchlistIndex}
	cfg.Ranking.PreferredExchange = "NSE"
	cfg.Ranking.RecentOpenDays = 30
	cfg.Logging.Level = "info"
	return cfg
}

// LoadConfig reads and parses the configuration file, applies env
// overrides for secrets, and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Audit.StalenessDays <= 0 {
		return fmt.Errorf("staleness_days must be positive, got %d", c.Audit.StalenessDays)
	}
	if len(c.Audit.AcceptedRisks) == 0 {
		return fmt.Errorf("at least one accepted risk amount is required")
	}
	for _, amount := range c.Audit.AcceptedRisks {
		if !amount.IsPositive() {
			return fmt.Errorf("accepted risk amounts must be positive, got %s", amount)
		}
	}
	if c.Audit.RiskTolerancePct.IsNegative() || c.Audit.RiskTolerancePct.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("risk_tolerance_pct must be in [0, 1), got %s", c.Audit.RiskTolerancePct)
	}
	if len(c.Audit.WatchCategories) == 0 {
		return fmt.Errorf("at least one watch category index is required")
	}
	for _, idx := range c.Audit.WatchCategories {
		if idx < 0 || idx >= domain.CategoryCount {
			return fmt.Errorf("watch category index %d out of range 0..%d", idx, domain.CategoryCount-1)
		}
	}
	if c.Ranking.RecentOpenDays <= 0 {
		return fmt.Errorf("recent_open_days must be positive, got %d", c.Ranking.RecentOpenDays)
	}
	return nil
}

// overrideWithEnv overrides secrets from the environment when present.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("TICKER_AUDIT_BROKER_KEY"); key != "" {
		cfg.Broker.AccessKey = key
	}
	if secret := os.Getenv("TICKER_AUDIT_BROKER_SECRET"); secret != "" {
		cfg.Broker.SecretKey = secret
	}
}
