// Package adapters provides the GORM-backed strategy store.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"strategy_backend/internal/feature/strategy/domain/entity"
	"strategy_backend/internal/feature/strategy/usecase"
	"strategy_backend/internal/shared/actor"
)

const pgUniqueViolation = "23505"

// strategyModel はstrategiesテーブルの1行に対応します。
type strategyModel struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:100;not null"`
	Description   string `gorm:"size:1000"`
	TradingTypeID uint   `gorm:"not null;index"`
	AssetClassID  uint   `gorm:"not null;index"`
	CreatedBy     uint
	CreatedAt     time.Time
	ModifiedBy    uint
	ModifiedAt    time.Time `gorm:"autoUpdateTime"`
}

func (strategyModel) TableName() string { return "strategies" }

// statisticModel はstrategy_statisticsテーブルの1行に対応します。
type statisticModel struct {
	ID          uint `gorm:"primaryKey"`
	StrategyID  uint `gorm:"not null;index"`
	PeriodStart time.Time
	PeriodEnd   time.Time
	NetProfit   float64
	MaxDrawdown float64
	WinRate     float64
	TradeCount  int
	CreatedAt   time.Time
}

func (statisticModel) TableName() string { return "strategy_statistics" }

// Migrate creates the strategy tables and the unique index on name.
// The index is created raw so its name is stable for constraint-error
// translation.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&strategyModel{}, &statisticModel{}); err != nil {
		return err
	}
	return db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS uq_strategies_name ON strategies (name)").Error
}

func toEntity(m *strategyModel) *entity.Strategy {
	return &entity.Strategy{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		TradingTypeID: m.TradingTypeID,
		AssetClassID:  m.AssetClassID,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
		ModifiedBy:    m.ModifiedBy,
		ModifiedAt:    m.ModifiedAt,
	}
}

func toModel(s *entity.Strategy) *strategyModel {
	return &strategyModel{
		ID:            s.ID,
		Name:          s.Name,
		Description:   s.Description,
		TradingTypeID: s.TradingTypeID,
		AssetClassID:  s.AssetClassID,
		CreatedBy:     s.CreatedBy,
		CreatedAt:     s.CreatedAt,
		ModifiedBy:    s.ModifiedBy,
		ModifiedAt:    s.ModifiedAt,
	}
}

func rowToEntity(m *statisticModel) entity.StatisticRow {
	return entity.StatisticRow{
		ID:          m.ID,
		StrategyID:  m.StrategyID,
		PeriodStart: m.PeriodStart,
		PeriodEnd:   m.PeriodEnd,
		NetProfit:   m.NetProfit,
		MaxDrawdown: m.MaxDrawdown,
		WinRate:     m.WinRate,
		TradeCount:  m.TradeCount,
		CreatedAt:   m.CreatedAt,
	}
}

// strategyPostgres implements usecase.StrategyRepository with GORM.
type strategyPostgres struct {
	db *gorm.DB
}

// strategyPostgresがStrategyRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.StrategyRepository = (*strategyPostgres)(nil)

// NewStrategyRepository creates the Postgres-backed strategy repository.
func NewStrategyRepository(db *gorm.DB) *strategyPostgres {
	return &strategyPostgres{db: db}
}

// FindByID retrieves a strategy by its ID.
func (r *strategyPostgres) FindByID(ctx context.Context, id uint) (*entity.Strategy, error) {
	var m strategyModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrStrategyNotFound
		}
		return nil, err
	}
	return toEntity(&m), nil
}

// FindByName retrieves a strategy by its name.
func (r *strategyPostgres) FindByName(ctx context.Context, name string) (*entity.Strategy, error) {
	var m strategyModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrStrategyNotFound
		}
		return nil, err
	}
	return toEntity(&m), nil
}

// FindPage returns one page of strategies sorted by ID ascending.
func (r *strategyPostgres) FindPage(ctx context.Context, page, size int) (*entity.Page, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&strategyModel{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var models []strategyModel
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(page * size).
		Limit(size).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	items := make([]entity.Strategy, 0, len(models))
	for i := range models {
		items = append(items, *toEntity(&models[i]))
	}

	return &entity.Page{
		Items:      items,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(size))),
	}, nil
}

// Save inserts or updates a strategy, stamping the audit columns from the
// actor carried in the request context.
func (r *strategyPostgres) Save(ctx context.Context, s *entity.Strategy) error {
	m := toModel(s)

	if memberID, ok := actor.MemberFrom(ctx); ok {
		if m.ID == 0 {
			m.CreatedBy = memberID
		}
		m.ModifiedBy = memberID
	}

	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return translateNameViolation(err)
	}

	*s = *toEntity(m)
	return nil
}

// Delete removes a strategy and all of its statistic rows.
func (r *strategyPostgres) Delete(ctx context.Context, s *entity.Strategy) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("strategy_id = ?", s.ID).Delete(&statisticModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&strategyModel{}, s.ID).Error
	})
}

// AddStatistic appends one statistic row.
func (r *strategyPostgres) AddStatistic(ctx context.Context, row *entity.StatisticRow) error {
	m := &statisticModel{
		StrategyID:  row.StrategyID,
		PeriodStart: row.PeriodStart,
		PeriodEnd:   row.PeriodEnd,
		NetProfit:   row.NetProfit,
		MaxDrawdown: row.MaxDrawdown,
		WinRate:     row.WinRate,
		TradeCount:  row.TradeCount,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*row = rowToEntity(m)
	return nil
}

// FindStatistics returns a strategy's statistic rows by period start ascending.
func (r *strategyPostgres) FindStatistics(ctx context.Context, strategyID uint) ([]entity.StatisticRow, error) {
	var models []statisticModel
	err := r.db.WithContext(ctx).
		Where("strategy_id = ?", strategyID).
		Order("period_start ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	rows := make([]entity.StatisticRow, 0, len(models))
	for i := range models {
		rows = append(rows, rowToEntity(&models[i]))
	}
	return rows, nil
}

// translateNameViolation maps a unique-constraint violation on the name
// index to ErrStrategyNameTaken. Pre-checks in the usecase normally catch
// duplicates first; this covers the concurrent writer that slips past them.
func translateNameViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", usecase.ErrStrategyNameTaken, pgErr.ConstraintName)
	}
	return err
}
