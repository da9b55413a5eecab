// Package adapters はmemberフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"strategy_backend/internal/feature/member/domain/entity"
	"strategy_backend/internal/feature/member/usecase"
)

// memberPostgres はMemberRepositoryインターフェースのPostgreSQL実装です。
// GORMを使用してデータベース操作を行います。
type memberPostgres struct {
	db *gorm.DB
}

// memberPostgresがMemberRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MemberRepository = (*memberPostgres)(nil)

// NewMemberRepository は指定されたgorm.DB接続でmemberPostgresの新しいインスタンスを生成します。
func NewMemberRepository(db *gorm.DB) *memberPostgres {
	return &memberPostgres{db: db}
}

// Create はメンバーをデータベースに追加します。
// メールアドレスまたはニックネームが既に存在する場合、
// usecase.ErrEmailTaken / usecase.ErrNicknameTakenを返します。
func (r *memberPostgres) Create(ctx context.Context, m *entity.Member) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateMemberConflict(err)
	}
	return nil
}

// FindByEmail はメールアドレスでメンバーを取得します。
// 存在しない場合、usecase.ErrMemberNotFoundを返します。
func (r *memberPostgres) FindByEmail(ctx context.Context, email string) (*entity.Member, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByNickname はニックネームでメンバーを取得します。
func (r *memberPostgres) FindByNickname(ctx context.Context, nickname string) (*entity.Member, error) {
	return r.findOne(ctx, "nickname = ?", nickname)
}

// FindByID はIDでメンバーを取得します。
func (r *memberPostgres) FindByID(ctx context.Context, id uint) (*entity.Member, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *memberPostgres) findOne(ctx context.Context, query string, arg any) (*entity.Member, error) {
	var m entity.Member
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Update は既存メンバーの変更を保存します。
func (r *memberPostgres) Update(ctx context.Context, m *entity.Member) error {
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return translateMemberConflict(err)
	}
	return nil
}

// translateMemberConflict maps a PostgreSQL unique-constraint violation to
// the matching domain error, so a duplicate that raced past the pre-checks
// surfaces the same way.
func translateMemberConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	if strings.Contains(pgErr.ConstraintName, "nickname") {
		return usecase.ErrNicknameTaken
	}
	return usecase.ErrEmailTaken
}
