package usecase

import (
	"context"
	"errors"
	"fmt"

	"strategy_backend/internal/feature/catalog/domain/entity"
)

// CatalogRepository はカタログエントリの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
//
// The store performs no business validation. Uniqueness enforcement is this
// package's responsibility, with the store's unique constraints as the last
// line of defense: Save and the find methods must report constraint
// violations as ErrDuplicateOrder / ErrDuplicateName.
type CatalogRepository interface {
	// FindByID retrieves an entry by its ID.
	// Returns ErrEntryNotFound when no entry exists.
	FindByID(ctx context.Context, id uint) (*entity.Entry, error)

	// FindByOrder retrieves the entry holding the given display order,
	// regardless of its active flag.
	// Returns ErrEntryNotFound when the order is free.
	FindByOrder(ctx context.Context, order int) (*entity.Entry, error)

	// FindByName retrieves the entry holding the given name,
	// regardless of its active flag.
	// Returns ErrEntryNotFound when the name is free.
	FindByName(ctx context.Context, name string) (*entity.Entry, error)

	// FindMaxOrder returns the maximum display order across all entries,
	// active and inactive. Returns 0 when the catalog is empty.
	FindMaxOrder(ctx context.Context) (int, error)

	// FindPage returns one page of entries sorted by display order ascending.
	// A nil active filter returns both active and inactive entries.
	// A page beyond the last yields an empty page, not an error.
	FindPage(ctx context.Context, page, size int, active *entity.Flag) (*entity.Page, error)

	// Save inserts or updates an entry. It is the sole mutation entry point;
	// audit columns are stamped by the store on the way in.
	Save(ctx context.Context, e *entity.Entry) error

	// Delete physically removes an entry, freeing its order and name.
	Delete(ctx context.Context, e *entity.Entry) error

	// InTx runs fn against a repository bound to a single transaction.
	// The duplicate pre-checks and the subsequent write of every mutating
	// operation share one transaction through this.
	InTx(ctx context.Context, fn func(CatalogRepository) error) error
}

// EntryInput carries the caller-editable fields of a catalog entry.
// A nil Order means "assign the next free order" on create and
// "keep the current order" on update.
type EntryInput struct {
	Name     string
	Icon     string
	Order    *int
	IsActive entity.Flag
}

// CatalogUsecase enforces the ordering invariants of one catalog.
// It is stateless across calls; all state lives in the repository, so
// multiple instances may run in parallel against the same store.
type CatalogUsecase struct {
	repo CatalogRepository
}

// NewCatalogUsecase はCatalogUsecaseの新しいインスタンスを生成します。
func NewCatalogUsecase(repo CatalogRepository) *CatalogUsecase {
	return &CatalogUsecase{repo: repo}
}

// List は表示順の昇順でカタログエントリを1ページ分返します。
// activeがnilの場合はフィルタリングせず、有効・無効の両方を返します。
// 範囲外のページは空ページを返し、エラーにはなりません。
func (u *CatalogUsecase) List(ctx context.Context, page, size int, active *entity.Flag) (*entity.Page, error) {
	return u.repo.FindPage(ctx, page, size, active)
}

// GetByID はIDでカタログエントリを1件取得します。
// 存在しない場合はErrEntryNotFoundを返します。
func (u *CatalogUsecase) GetByID(ctx context.Context, id uint) (*entity.Entry, error) {
	return u.repo.FindByID(ctx, id)
}

// Create は新しいカタログエントリを登録します。
// 表示順が省略された場合は既存の最大値+1（空のカタログでは1）を割り当てます。
// 指定された場合は有効・無効を問わず全エントリと突き合わせ、
// 使用中ならErrDuplicateOrderを返します。
//
// The pre-checks here give a clean error message; they are not race-free.
// Two concurrent creates can pass them with the same computed order, and the
// store's unique constraint decides the loser, which the repository reports
// as the same ErrDuplicateOrder.
func (u *CatalogUsecase) Create(ctx context.Context, in EntryInput) error {
	return u.repo.InTx(ctx, func(r CatalogRepository) error {
		if err := checkNameFree(ctx, r, in.Name, 0); err != nil {
			return err
		}

		order, err := resolveOrder(ctx, r, in.Order)
		if err != nil {
			return err
		}

		e := &entity.Entry{
			DisplayOrder: order,
			Name:         in.Name,
			Icon:         in.Icon,
			IsActive:     in.IsActive,
		}
		return r.Save(ctx, e)
	})
}

// Update は既存エントリの表示順・名前・アイコン・有効フラグを全置換します。
// 表示順が現在値と同じ場合は重複チェックを行いません（自分の順序は保持できます）。
// 別のエントリが使用中の順序を指定した場合はErrDuplicateOrderを返します。
func (u *CatalogUsecase) Update(ctx context.Context, id uint, in EntryInput) error {
	return u.repo.InTx(ctx, func(r CatalogRepository) error {
		existing, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if in.Order != nil && *in.Order != existing.DisplayOrder {
			other, err := r.FindByOrder(ctx, *in.Order)
			if err == nil && other.ID != existing.ID {
				return fmt.Errorf("%w: %d", ErrDuplicateOrder, *in.Order)
			}
			if err != nil && !errors.Is(err, ErrEntryNotFound) {
				return err
			}
			existing.DisplayOrder = *in.Order
		}

		if in.Name != existing.Name {
			if err := checkNameFree(ctx, r, in.Name, existing.ID); err != nil {
				return err
			}
		}

		existing.Name = in.Name
		existing.Icon = in.Icon
		existing.IsActive = in.IsActive
		return r.Save(ctx, existing)
	})
}

// SoftDelete はエントリを論理削除します（有効フラグをNに変更）。
// 表示順と名前は引き続き一意性スロットを占有したままになります。
func (u *CatalogUsecase) SoftDelete(ctx context.Context, id uint) error {
	return u.repo.InTx(ctx, func(r CatalogRepository) error {
		existing, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		existing.IsActive = entity.FlagInactive
		return r.Save(ctx, existing)
	})
}

// HardDelete はエントリを物理削除します。
// 削除後、そのエントリの表示順と名前は再利用可能になります。
func (u *CatalogUsecase) HardDelete(ctx context.Context, id uint) error {
	return u.repo.InTx(ctx, func(r CatalogRepository) error {
		existing, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		return r.Delete(ctx, existing)
	})
}

// resolveOrder computes the display order for a new entry: the requested
// order when supplied and free, max+1 otherwise.
func resolveOrder(ctx context.Context, r CatalogRepository, requested *int) (int, error) {
	if requested == nil {
		max, err := r.FindMaxOrder(ctx)
		if err != nil {
			return 0, err
		}
		return max + 1, nil
	}

	if _, err := r.FindByOrder(ctx, *requested); err == nil {
		return 0, fmt.Errorf("%w: %d", ErrDuplicateOrder, *requested)
	} else if !errors.Is(err, ErrEntryNotFound) {
		return 0, err
	}
	return *requested, nil
}

// checkNameFree returns ErrDuplicateName when the name is held by an entry
// other than selfID. Soft-deleted entries count as holders too.
func checkNameFree(ctx context.Context, r CatalogRepository, name string, selfID uint) error {
	other, err := r.FindByName(ctx, name)
	if err == nil && other.ID != selfID {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	if err != nil && !errors.Is(err, ErrEntryNotFound) {
		return err
	}
	return nil
}
