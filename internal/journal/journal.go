// Package journal persists closed trades and alert history locally, so the
// operator keeps history across console restarts. The sync layer never reads
// from it; writes are strictly additive side channels.
package journal

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type Journal struct {
	db *gorm.DB
}

// Models

// TradeRecord mirrors one closed trade from the backend, keyed by its id
type TradeRecord struct {
	ID         int    `gorm:"primaryKey"`
	Symbol     string `gorm:"index"`
	Direction  string
	Strategy   string `gorm:"index"`
	Regime     string
	Quantity   int
	EntryPrice decimal.Decimal `gorm:"type:decimal(20,6)"`
	EntryTime  string
	ExitPrice  decimal.Decimal `gorm:"type:decimal(20,6)"`
	ExitTime   string
	Pnl        decimal.Decimal `gorm:"type:decimal(20,6)"`
	PnlPct     decimal.Decimal `gorm:"type:decimal(10,4)"`
	ExitReason string
	IsPaper    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AlertRecord is one ingested alert
type AlertRecord struct {
	ID        int64 `gorm:"primaryKey"`
	Action    string
	Strategy  string `gorm:"index"`
	Display   string
	Pnl       decimal.Decimal `gorm:"type:decimal(20,6)"`
	HasPnl    bool
	Severity  string
	CreatedAt time.Time
}

// New opens the journal database. A postgres:// URL selects PostgreSQL;
// anything else is treated as a SQLite path.
func New(dsn string) (*Journal, error) {
	var db *gorm.DB
	var err error

	if isPostgres(dsn) {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return nil, err
		}
		log.Info().Msg("Journal connected (PostgreSQL)")
	} else {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", dsn).Msg("Journal initialized (SQLite)")
	}

	if err := db.AutoMigrate(&TradeRecord{}, &AlertRecord{}); err != nil {
		return nil, err
	}

	return &Journal{db: db}, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// SaveTrade upserts one closed trade by id
func (j *Journal) SaveTrade(t *TradeRecord) error {
	return j.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(t).Error
}

// SaveAlert records one alert; a duplicate id is a no-op
func (j *Journal) SaveAlert(a *AlertRecord) error {
	return j.db.Clauses(clause.OnConflict{DoNothing: true}).Create(a).Error
}

// RecentAlerts returns the newest alerts, most recent first
func (j *Journal) RecentAlerts(limit int) ([]AlertRecord, error) {
	var out []AlertRecord
	err := j.db.Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

// TradesByStrategy returns all journaled trades for one strategy
func (j *Journal) TradesByStrategy(strategy string) ([]TradeRecord, error) {
	var out []TradeRecord
	err := j.db.Where("strategy = ?", strategy).Order("exit_time DESC").Find(&out).Error
	return out, err
}
