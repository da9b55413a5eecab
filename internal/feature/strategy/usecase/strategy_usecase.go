package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	catalogentity "strategy_backend/internal/feature/catalog/domain/entity"
	catalogusecase "strategy_backend/internal/feature/catalog/usecase"
	"strategy_backend/internal/feature/strategy/domain/entity"
)

// dayLayout is the date format of statistic periods on the wire and in CSV.
const dayLayout = "2006-01-02"

// StrategyRepository はストラテジーの永続化層を抽象化します。
// インターフェースはコンシューマー（usecase）が定義します。
type StrategyRepository interface {
	// FindByID retrieves a strategy by its ID.
	// Returns ErrStrategyNotFound when no strategy exists.
	FindByID(ctx context.Context, id uint) (*entity.Strategy, error)

	// FindByName retrieves a strategy by its name.
	// Returns ErrStrategyNotFound when the name is free.
	FindByName(ctx context.Context, name string) (*entity.Strategy, error)

	// FindPage returns one page of strategies sorted by ID ascending.
	// A page beyond the last yields an empty page, not an error.
	FindPage(ctx context.Context, page, size int) (*entity.Page, error)

	// Save inserts or updates a strategy. The store reports name constraint
	// violations as ErrStrategyNameTaken.
	Save(ctx context.Context, s *entity.Strategy) error

	// Delete physically removes a strategy and its statistic rows.
	Delete(ctx context.Context, s *entity.Strategy) error

	// AddStatistic appends one statistic row for a strategy.
	AddStatistic(ctx context.Context, row *entity.StatisticRow) error

	// FindStatistics returns all statistic rows of a strategy sorted by
	// period start ascending.
	FindStatistics(ctx context.Context, strategyID uint) ([]entity.StatisticRow, error)
}

// CatalogLookup resolves catalog entries by ID. Both catalog usecases
// satisfy it, so reference checking stays at the application layer instead
// of leaning on database foreign keys across features.
type CatalogLookup interface {
	GetByID(ctx context.Context, id uint) (*catalogentity.Entry, error)
}

// StrategyInput carries the caller-editable fields of a strategy.
type StrategyInput struct {
	Name          string
	Description   string
	TradingTypeID uint
	AssetClassID  uint
}

// StatisticInput carries one performance record to append to a strategy.
type StatisticInput struct {
	PeriodStart string
	PeriodEnd   string
	NetProfit   float64
	MaxDrawdown float64
	WinRate     float64
	TradeCount  int
}

// StrategyUsecase manages strategy metadata and its performance statistics.
// Catalog references must point at active entries; soft-deleted catalog
// entries are not assignable to new or updated strategies.
type StrategyUsecase struct {
	repo         StrategyRepository
	tradingTypes CatalogLookup
	assetClasses CatalogLookup
}

// NewStrategyUsecase はStrategyUsecaseの新しいインスタンスを生成します。
func NewStrategyUsecase(repo StrategyRepository, tradingTypes, assetClasses CatalogLookup) *StrategyUsecase {
	return &StrategyUsecase{
		repo:         repo,
		tradingTypes: tradingTypes,
		assetClasses: assetClasses,
	}
}

// List はストラテジーを1ページ分返します。
func (u *StrategyUsecase) List(ctx context.Context, page, size int) (*entity.Page, error) {
	return u.repo.FindPage(ctx, page, size)
}

// GetByID はIDでストラテジーを1件取得します。
func (u *StrategyUsecase) GetByID(ctx context.Context, id uint) (*entity.Strategy, error) {
	return u.repo.FindByID(ctx, id)
}

// Create は新しいストラテジーを登録します。
// 名前が使用中の場合はErrStrategyNameTakenを、参照先のカタログエントリが
// 存在しないか無効の場合はErrCatalogRefMissingを返します。
func (u *StrategyUsecase) Create(ctx context.Context, in StrategyInput) (*entity.Strategy, error) {
	if err := u.checkRefs(ctx, in.TradingTypeID, in.AssetClassID); err != nil {
		return nil, err
	}

	if _, err := u.repo.FindByName(ctx, in.Name); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrStrategyNameTaken, in.Name)
	} else if !errors.Is(err, ErrStrategyNotFound) {
		return nil, err
	}

	s := &entity.Strategy{
		Name:          in.Name,
		Description:   in.Description,
		TradingTypeID: in.TradingTypeID,
		AssetClassID:  in.AssetClassID,
	}
	if err := u.repo.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Update は既存ストラテジーの名前・説明・カタログ参照を全置換します。
func (u *StrategyUsecase) Update(ctx context.Context, id uint, in StrategyInput) (*entity.Strategy, error) {
	existing, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := u.checkRefs(ctx, in.TradingTypeID, in.AssetClassID); err != nil {
		return nil, err
	}

	if in.Name != existing.Name {
		other, err := u.repo.FindByName(ctx, in.Name)
		if err == nil && other.ID != existing.ID {
			return nil, fmt.Errorf("%w: %s", ErrStrategyNameTaken, in.Name)
		}
		if err != nil && !errors.Is(err, ErrStrategyNotFound) {
			return nil, err
		}
	}

	existing.Name = in.Name
	existing.Description = in.Description
	existing.TradingTypeID = in.TradingTypeID
	existing.AssetClassID = in.AssetClassID
	if err := u.repo.Save(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete はストラテジーと紐づく統計行を物理削除します。
func (u *StrategyUsecase) Delete(ctx context.Context, id uint) error {
	existing, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return u.repo.Delete(ctx, existing)
}

// AddStatistic はストラテジーに統計行を1件追加します。
// 期間はYYYY-MM-DD形式で、開始が終了より後の場合はエラーになります。
func (u *StrategyUsecase) AddStatistic(ctx context.Context, strategyID uint, in StatisticInput) (*entity.StatisticRow, error) {
	if _, err := u.repo.FindByID(ctx, strategyID); err != nil {
		return nil, err
	}

	start, err := time.Parse(dayLayout, in.PeriodStart)
	if err != nil {
		return nil, fmt.Errorf("%w: start %q", ErrInvalidPeriod, in.PeriodStart)
	}
	end, err := time.Parse(dayLayout, in.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: end %q", ErrInvalidPeriod, in.PeriodEnd)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s precedes start %s", ErrInvalidPeriod, in.PeriodEnd, in.PeriodStart)
	}

	row := &entity.StatisticRow{
		StrategyID:  strategyID,
		PeriodStart: start,
		PeriodEnd:   end,
		NetProfit:   in.NetProfit,
		MaxDrawdown: in.MaxDrawdown,
		WinRate:     in.WinRate,
		TradeCount:  in.TradeCount,
	}
	if err := u.repo.AddStatistic(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// Statistics はストラテジーの統計行を期間開始の昇順で全件返します。
func (u *StrategyUsecase) Statistics(ctx context.Context, strategyID uint) ([]entity.StatisticRow, error) {
	if _, err := u.repo.FindByID(ctx, strategyID); err != nil {
		return nil, err
	}
	return u.repo.FindStatistics(ctx, strategyID)
}

// csvHeader is the column layout of the statistics export.
var csvHeader = []string{"period_start", "period_end", "net_profit", "max_drawdown", "win_rate", "trade_count"}

// ExportStatisticsCSV writes all statistic rows of a strategy to w as CSV,
// header row first, rows ordered by period start ascending.
func (u *StrategyUsecase) ExportStatisticsCSV(ctx context.Context, strategyID uint, w io.Writer) error {
	rows, err := u.Statistics(ctx, strategyID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.PeriodStart.Format(dayLayout),
			row.PeriodEnd.Format(dayLayout),
			strconv.FormatFloat(row.NetProfit, 'f', 2, 64),
			strconv.FormatFloat(row.MaxDrawdown, 'f', 2, 64),
			strconv.FormatFloat(row.WinRate, 'f', 4, 64),
			strconv.Itoa(row.TradeCount),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// checkRefs verifies that both catalog references point at existing, active
// entries. Existence failures from the lookups collapse into
// ErrCatalogRefMissing so the handler can report a single conflict shape.
func (u *StrategyUsecase) checkRefs(ctx context.Context, tradingTypeID, assetClassID uint) error {
	if err := checkRef(ctx, u.tradingTypes, tradingTypeID, "trading type"); err != nil {
		return err
	}
	return checkRef(ctx, u.assetClasses, assetClassID, "asset class")
}

func checkRef(ctx context.Context, lookup CatalogLookup, id uint, kind string) error {
	e, err := lookup.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogusecase.ErrEntryNotFound) {
			return fmt.Errorf("%w: %s %d", ErrCatalogRefMissing, kind, id)
		}
		return err
	}
	if e.IsActive != catalogentity.FlagActive {
		return fmt.Errorf("%w: %s %d is inactive", ErrCatalogRefMissing, kind, id)
	}
	return nil
}
