package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"ticker_audit/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Row models for the alias and state tables. Pair info and alerts are
// persisted straight from their domain records.

// TickerMapping maps a charting-platform ticker to its vendor ticker.
type TickerMapping struct {
	TvTicker        string    `gorm:"primaryKey" json:"tv_ticker"`
	InvestingTicker string    `gorm:"index" json:"investing_ticker"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ExchangeMapping maps a tv ticker to its exchange-qualified code.
type ExchangeMapping struct {
	TvTicker  string    `gorm:"primaryKey" json:"tv_ticker"`
	Exchange  string    `json:"exchange"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SequenceState holds per-ticker price-sequence state.
type SequenceState struct {
	TvTicker  string    `gorm:"primaryKey" json:"tv_ticker"`
	Sequence  string    `json:"sequence"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryMember is one ticker's membership in one category list.
type CategoryMember struct {
	CategoryIndex int    `gorm:"primaryKey" json:"category_index"`
	TvTicker      string `gorm:"primaryKey" json:"tv_ticker"`
}

// OpenEvent records when a tv ticker was last opened.
type OpenEvent struct {
	TvTicker   string    `gorm:"primaryKey" json:"tv_ticker"`
	LastOpened time.Time `json:"last_opened"`
}

// Storage is the SQLite-backed record store. The audit engine reads it
// through the narrow repository views below; the surrounding app uses
// the write helpers.
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance. An empty path
// resolves to the OS config directory default.
func NewStorage(path string) (*Storage, error) {
	dbPath := path
	if dbPath == "" {
		var err error
		dbPath, err = defaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
	}

	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.PairInfo{},
		&domain.Alert{},
		&TickerMapping{},
		&ExchangeMapping{},
		&SequenceState{},
		&CategoryMember{},
		&OpenEvent{},
	)
}

// defaultDBPath resolves the database file path based on OS
func defaultDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "TickerAudit", "data", "audit.db"), nil
}

// ======================================================================================
// Repository views (read side consumed by the audit engine)
// ======================================================================================

// Pairs returns the pair repository view.
func (s *Storage) Pairs() domain.PairRepository { return &pairStore{db: s.db} }

// TickerMap returns the tv->investing mapping view.
func (s *Storage) TickerMap() domain.TickerMapRepository { return &tickerMapStore{db: s.db} }

// Exchanges returns the exchange mapping view.
func (s *Storage) Exchanges() domain.ExchangeRepository { return &exchangeStore{db: s.db} }

// Sequences returns the sequence state view.
func (s *Storage) Sequences() domain.SequenceRepository { return &sequenceStore{db: s.db} }

// Alerts returns the alert view.
func (s *Storage) Alerts() domain.AlertRepository { return &alertStore{db: s.db} }

// Categories returns the category list view.
func (s *Storage) Categories() domain.CategoryRepository { return &categoryStore{db: s.db} }

// OpenTimes returns the last-opened view.
func (s *Storage) OpenTimes() domain.OpenTimeRepository { return &openTimeStore{db: s.db} }

type pairStore struct{ db *gorm.DB }

func (p *pairStore) Tickers(ctx context.Context) ([]string, error) {
	var tickers []string
	err := p.db.WithContext(ctx).Model(&domain.PairInfo{}).
		Order("investing_ticker").Pluck("investing_ticker", &tickers).Error
	return tickers, err
}

func (p *pairStore) Get(ctx context.Context, investingTicker string) (*domain.PairInfo, error) {
	var info domain.PairInfo
	err := p.db.WithContext(ctx).First(&info, "investing_ticker = ?", investingTicker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (p *pairStore) All(ctx context.Context) (map[string]domain.PairInfo, error) {
	var rows []domain.PairInfo
	if err := p.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	all := make(map[string]domain.PairInfo, len(rows))
	for _, row := range rows {
		all[row.InvestingTicker] = row
	}
	return all, nil
}

type tickerMapStore struct{ db *gorm.DB }

func (t *tickerMapStore) TvTickers(ctx context.Context) ([]string, error) {
	var tickers []string
	err := t.db.WithContext(ctx).Model(&TickerMapping{}).
		Order("tv_ticker").Pluck("tv_ticker", &tickers).Error
	return tickers, err
}

func (t *tickerMapStore) InvestingFor(ctx context.Context, tvTicker string) (string, bool, error) {
	var row TickerMapping
	err := t.db.WithContext(ctx).First(&row, "tv_ticker = ?", tvTicker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.InvestingTicker, true, nil
}

func (t *tickerMapStore) All(ctx context.Context) (map[string]string, error) {
	var rows []TickerMapping
	if err := t.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	all := make(map[string]string, len(rows))
	for _, row := range rows {
		all[row.TvTicker] = row.InvestingTicker
	}
	return all, nil
}

type exchangeStore struct{ db *gorm.DB }

func (e *exchangeStore) TvTickers(ctx context.Context) ([]string, error) {
	var tickers []string
	err := e.db.WithContext(ctx).Model(&ExchangeMapping{}).
		Order("tv_ticker").Pluck("tv_ticker", &tickers).Error
	return tickers, err
}

func (e *exchangeStore) Get(ctx context.Context, tvTicker string) (string, bool, error) {
	var row ExchangeMapping
	err := e.db.WithContext(ctx).First(&row, "tv_ticker = ?", tvTicker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.Exchange, true, nil
}

func (e *exchangeStore) All(ctx context.Context) (map[string]string, error) {
	var rows []ExchangeMapping
	if err := e.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	all := make(map[string]string, len(rows))
	for _, row := range rows {
		all[row.TvTicker] = row.Exchange
	}
	return all, nil
}

type sequenceStore struct{ db *gorm.DB }

func (q *sequenceStore) TvTickers(ctx context.Context) ([]string, error) {
	var tickers []string
	err := q.db.WithContext(ctx).Model(&SequenceState{}).
		Order("tv_ticker").Pluck("tv_ticker", &tickers).Error
	return tickers, err
}

func (q *sequenceStore) Has(ctx context.Context, tvTicker string) (bool, error) {
	var count int64
	err := q.db.WithContext(ctx).Model(&SequenceState{}).
		Where("tv_ticker = ?", tvTicker).Count(&count).Error
	return count > 0, err
}

type alertStore struct{ db *gorm.DB }

func (a *alertStore) All(ctx context.Context) ([]domain.Alert, error) {
	var rows []domain.Alert
	err := a.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, err
}

func (a *alertStore) CountByPairID(ctx context.Context, pairID string) (int, error) {
	var count int64
	err := a.db.WithContext(ctx).Model(&domain.Alert{}).
		Where("pair_id = ?", pairID).Count(&count).Error
	return int(count), err
}

type categoryStore struct{ db *gorm.DB }

func (c *categoryStore) Lists(ctx context.Context) (*domain.CategoryLists, error) {
	var rows []CategoryMember
	if err := c.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	byIndex := make(map[int][]string)
	for _, row := range rows {
		byIndex[row.CategoryIndex] = append(byIndex[row.CategoryIndex], row.TvTicker)
	}
	lists := domain.NewCategoryLists()
	for idx, tickers := range byIndex {
		if err := lists.SetList(idx, tickers); err != nil {
			return nil, fmt.Errorf("corrupt category table: %w", err)
		}
	}
	return lists, nil
}

type openTimeStore struct{ db *gorm.DB }

func (o *openTimeStore) LastOpened(ctx context.Context, tvTicker string) (time.Time, bool, error) {
	var row OpenEvent
	err := o.db.WithContext(ctx).First(&row, "tv_ticker = ?", tvTicker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return row.LastOpened, true, nil
}

// ======================================================================================
// Write operations (used by the surrounding app and by test fixtures)
// ======================================================================================

// UpsertPair creates or updates a pair record
func (s *Storage) UpsertPair(info *domain.PairInfo) error {
	return s.db.Save(info).Error
}

// DeletePair removes a pair record
func (s *Storage) DeletePair(investingTicker string) error {
	return s.db.Where("investing_ticker = ?", investingTicker).Delete(&domain.PairInfo{}).Error
}

// SetTickerMapping creates or updates a tv->investing mapping
func (s *Storage) SetTickerMapping(tvTicker, investingTicker string) error {
	return s.db.Save(&TickerMapping{
		TvTicker:        tvTicker,
		InvestingTicker: investingTicker,
		UpdatedAt:       time.Now(),
	}).Error
}

// DeleteTickerMapping removes a tv->investing mapping
func (s *Storage) DeleteTickerMapping(tvTicker string) error {
	return s.db.Where("tv_ticker = ?", tvTicker).Delete(&TickerMapping{}).Error
}

// SetExchangeMapping creates or updates a tv->exchange mapping
func (s *Storage) SetExchangeMapping(tvTicker, exchange string) error {
	return s.db.Save(&ExchangeMapping{
		TvTicker:  tvTicker,
		Exchange:  exchange,
		UpdatedAt: time.Now(),
	}).Error
}

// SetSequence creates or updates per-ticker sequence state
func (s *Storage) SetSequence(tvTicker, sequence string) error {
	return s.db.Save(&SequenceState{
		TvTicker:  tvTicker,
		Sequence:  sequence,
		UpdatedAt: time.Now(),
	}).Error
}

// SaveAlert creates or updates an alert
func (s *Storage) SaveAlert(alert *domain.Alert) error {
	return s.db.Save(alert).Error
}

// DeleteAlert removes an alert by id
func (s *Storage) DeleteAlert(id string) error {
	return s.db.Where("id = ?", id).Delete(&domain.Alert{}).Error
}

// ToggleCategory adds the ticker to the category if absent, removes it
// if present. Returns the resulting membership.
func (s *Storage) ToggleCategory(idx int, tvTicker string) (bool, error) {
	if idx < 0 || idx >= domain.CategoryCount {
		return false, fmt.Errorf("category index %d: %w", idx, domain.ErrCategoryIndex)
	}
	var count int64
	if err := s.db.Model(&CategoryMember{}).
		Where("category_index = ? AND tv_ticker = ?", idx, tvTicker).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		err := s.db.Where("category_index = ? AND tv_ticker = ?", idx, tvTicker).
			Delete(&CategoryMember{}).Error
		return false, err
	}
	err := s.db.Create(&CategoryMember{CategoryIndex: idx, TvTicker: tvTicker}).Error
	return true, err
}

// SetCategoryList replaces the whole list at idx
func (s *Storage) SetCategoryList(idx int, tickers []string) error {
	if idx < 0 || idx >= domain.CategoryCount {
		return fmt.Errorf("category index %d: %w", idx, domain.ErrCategoryIndex)
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_index = ?", idx).Delete(&CategoryMember{}).Error; err != nil {
			return err
		}
		for _, ticker := range tickers {
			if err := tx.Create(&CategoryMember{CategoryIndex: idx, TvTicker: ticker}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// RecordOpen stores the last-opened timestamp for a tv ticker
func (s *Storage) RecordOpen(tvTicker string, openedAt time.Time) error {
	return s.db.Save(&OpenEvent{TvTicker: tvTicker, LastOpened: openedAt}).Error
}
