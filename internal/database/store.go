// Package database persists trade streams and profiling runs with gorm on sqlite.
package database

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"trading-personality/internal/logger"
	"trading-personality/internal/models"
)

// ErrNotFound is returned when an account has no stored profile.
var ErrNotFound = errors.New("not found")

const insertBatchSize = 500

// Store wraps the gorm connection.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore opens the database at dsn and migrates the schema.
func NewStore(dsn string, l *zap.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return &Store{db: db, logger: logger.OrNop(l).Named("store")}, nil
}

// AutoMigrate creates or updates the tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.TradeRecord{}, &models.ProfileRecord{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveTrades appends trades to their accounts' streams. Each row gets the next
// sequence number of its account so the original order survives timestamp ties.
func (s *Store) SaveTrades(trades []models.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		next := make(map[string]int)
		records := make([]models.TradeRecord, 0, len(trades))
		for _, t := range trades {
			account := t.AccountID()
			seq, ok := next[account]
			if !ok {
				var last int
				if err := tx.Model(&models.TradeRecord{}).
					Where("account = ?", account).
					Select("COALESCE(MAX(seq), -1)").
					Scan(&last).Error; err != nil {
					return fmt.Errorf("failed to read sequence for %s: %w", account, err)
				}
				seq = last + 1
			}
			records = append(records, models.NewTradeRecord(t, seq))
			next[account] = seq + 1
		}
		return tx.CreateInBatches(&records, insertBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save trades: %w", err)
	}
	s.logger.Debug("Saved trades", zap.Int("count", len(trades)))
	return nil
}

// LoadTrades returns an account's trades ordered by timestamp, then insertion order.
func (s *Store) LoadTrades(account string) ([]models.Trade, error) {
	var records []models.TradeRecord
	if err := s.db.Where("account = ?", account).
		Order("timestamp asc").Order("seq asc").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load trades for %s: %w", account, err)
	}
	trades := make([]models.Trade, len(records))
	for i, r := range records {
		trades[i] = r.ToTrade()
	}
	return trades, nil
}

// Accounts lists the accounts with stored trades.
func (s *Store) Accounts() ([]string, error) {
	var accounts []string
	if err := s.db.Model(&models.TradeRecord{}).
		Distinct("account").Order("account").
		Pluck("account", &accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// SaveProfile stores a profiling run.
func (s *Store) SaveProfile(rec *models.ProfileRecord) error {
	if err := s.db.Create(rec).Error; err != nil {
		return fmt.Errorf("failed to save profile %s: %w", rec.RunID, err)
	}
	return nil
}

// LatestProfile returns the most recent run for account.
func (s *Store) LatestProfile(account string) (*models.ProfileRecord, error) {
	var rec models.ProfileRecord
	err := s.db.Where("account = ?", account).
		Order("created_at desc").Order("id desc").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("profile for %s: %w", account, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for %s: %w", account, err)
	}
	return &rec, nil
}
