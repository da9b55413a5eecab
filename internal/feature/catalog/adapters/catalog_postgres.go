// Package adapters はcatalogフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"strategy_backend/internal/feature/catalog/domain/entity"
	"strategy_backend/internal/feature/catalog/usecase"
	"strategy_backend/internal/shared/actor"
)

// Table names of the two catalogs. One table per catalog kind; both share
// the same column layout and the same entryModel.
const (
	TableTradingTypes = "trading_types"
	TableAssetClasses = "investment_asset_classes"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for a unique-constraint
// violation.
const pgUniqueViolation = "23505"

// entryModel is the persisted shape of a catalog entry.
// The unique indexes on DisplayOrder and Name are created per table in
// Migrate rather than by tag, because the model is shared between the two
// catalog tables and index names must stay unique per database schema.
type entryModel struct {
	ID           uint      `gorm:"primaryKey"`
	DisplayOrder int       `gorm:"not null"`
	Name         string    `gorm:"size:50;not null"`
	Icon         string    `gorm:"size:255"`
	IsActive     string    `gorm:"size:1;not null;default:Y"`
	CreatedBy    uint      `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ModifiedBy   uint      `gorm:"not null;default:0"`
	ModifiedAt   time.Time `gorm:"autoUpdateTime"`
}

func toEntity(m entryModel) entity.Entry {
	return entity.Entry{
		ID:           m.ID,
		DisplayOrder: m.DisplayOrder,
		Name:         m.Name,
		Icon:         m.Icon,
		IsActive:     entity.Flag(m.IsActive),
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
		ModifiedBy:   m.ModifiedBy,
		ModifiedAt:   m.ModifiedAt,
	}
}

func toModel(e *entity.Entry) entryModel {
	return entryModel{
		ID:           e.ID,
		DisplayOrder: e.DisplayOrder,
		Name:         e.Name,
		Icon:         e.Icon,
		IsActive:     string(e.IsActive),
		CreatedBy:    e.CreatedBy,
		CreatedAt:    e.CreatedAt,
		ModifiedBy:   e.ModifiedBy,
		ModifiedAt:   e.ModifiedAt,
	}
}

// catalogPostgres はCatalogRepositoryインターフェースのPostgreSQL実装です。
// GORMを使用し、テーブル名でカタログ種別にバインドされます。
type catalogPostgres struct {
	db    *gorm.DB
	table string
}

// catalogPostgresがCatalogRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.CatalogRepository = (*catalogPostgres)(nil)

// NewTradingTypeRepository はtrading_typesテーブルにバインドされたリポジトリを生成します。
func NewTradingTypeRepository(db *gorm.DB) *catalogPostgres {
	return &catalogPostgres{db: db, table: TableTradingTypes}
}

// NewAssetClassRepository はinvestment_asset_classesテーブルにバインドされたリポジトリを生成します。
func NewAssetClassRepository(db *gorm.DB) *catalogPostgres {
	return &catalogPostgres{db: db, table: TableAssetClasses}
}

// Migrate creates or updates both catalog tables. The shared model is
// migrated per table, and each table gets its own named unique indexes on
// display_order and name. These constraints are the ground truth for
// uniqueness; the usecase pre-checks only provide the clean error message.
func Migrate(db *gorm.DB) error {
	for _, table := range []string{TableTradingTypes, TableAssetClasses} {
		if err := db.Table(table).AutoMigrate(&entryModel{}); err != nil {
			return err
		}
		for _, column := range []string{"display_order", "name"} {
			stmt := fmt.Sprintf(
				"CREATE UNIQUE INDEX IF NOT EXISTS uq_%s_%s ON %s (%s)",
				table, column, table, column,
			)
			if err := db.Exec(stmt).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *catalogPostgres) scope(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.table)
}

// FindByID はIDでエントリを取得します。
// 存在しない場合、usecase.ErrEntryNotFoundを返します。
func (r *catalogPostgres) FindByID(ctx context.Context, id uint) (*entity.Entry, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByOrder は表示順でエントリを取得します。有効フラグは考慮しません。
func (r *catalogPostgres) FindByOrder(ctx context.Context, order int) (*entity.Entry, error) {
	return r.findOne(ctx, "display_order = ?", order)
}

// FindByName は名前でエントリを取得します。有効フラグは考慮しません。
func (r *catalogPostgres) FindByName(ctx context.Context, name string) (*entity.Entry, error) {
	return r.findOne(ctx, "name = ?", name)
}

func (r *catalogPostgres) findOne(ctx context.Context, query string, arg any) (*entity.Entry, error) {
	var m entryModel
	if err := r.scope(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrEntryNotFound
		}
		return nil, err
	}
	e := toEntity(m)
	return &e, nil
}

// FindMaxOrder は有効・無効を問わず全エントリの最大表示順を返します。
// カタログが空の場合は0を返します。
func (r *catalogPostgres) FindMaxOrder(ctx context.Context) (int, error) {
	var max int
	err := r.scope(ctx).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

// FindPage は表示順の昇順でエントリを1ページ分返します。
// activeがnilでない場合は有効フラグでフィルタリングします。
func (r *catalogPostgres) FindPage(ctx context.Context, page, size int, active *entity.Flag) (*entity.Page, error) {
	filter := func(q *gorm.DB) *gorm.DB {
		if active != nil {
			q = q.Where("is_active = ?", string(*active))
		}
		return q
	}

	var total int64
	if err := filter(r.scope(ctx)).Count(&total).Error; err != nil {
		return nil, err
	}

	var models []entryModel
	if err := filter(r.scope(ctx)).
		Order("display_order ASC").
		Offset(page * size).
		Limit(size).
		Find(&models).Error; err != nil {
		return nil, err
	}

	items := make([]entity.Entry, 0, len(models))
	for _, m := range models {
		items = append(items, toEntity(m))
	}

	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}

	return &entity.Page{
		Items:      items,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// Save はエントリを挿入または更新します。
// 監査カラム（created_by / modified_by）はコンテキストのアクターからここで刻印されます。
// 一意制約違反はusecase.ErrDuplicateOrder / ErrDuplicateNameに変換されます。
func (r *catalogPostgres) Save(ctx context.Context, e *entity.Entry) error {
	m := toModel(e)

	if memberID, ok := actor.MemberFrom(ctx); ok {
		if m.ID == 0 {
			m.CreatedBy = memberID
		}
		m.ModifiedBy = memberID
	}

	if err := r.scope(ctx).Save(&m).Error; err != nil {
		return translateUniqueViolation(err)
	}

	*e = toEntity(m)
	return nil
}

// Delete はエントリを物理削除します。
func (r *catalogPostgres) Delete(ctx context.Context, e *entity.Entry) error {
	return r.scope(ctx).Where("id = ?", e.ID).Delete(&entryModel{}).Error
}

// InTx は単一トランザクションにバインドされたリポジトリに対してfnを実行します。
func (r *catalogPostgres) InTx(ctx context.Context, fn func(usecase.CatalogRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&catalogPostgres{db: tx, table: r.table})
	})
}

// translateUniqueViolation maps a PostgreSQL unique-constraint violation to
// the matching domain error. The pre-checks in the usecase catch most
// duplicates first; this path handles the ones that raced past them, so
// callers see one error type regardless of which side detected the conflict.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}
	if strings.HasSuffix(pgErr.ConstraintName, "_name") {
		return usecase.ErrDuplicateName
	}
	return usecase.ErrDuplicateOrder
}
