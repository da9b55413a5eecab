// Package usecase はmemberフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"strategy_backend/internal/feature/member/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8

	// refreshTokenBytes is the entropy of a refresh token (hex-encoded to 64
	// characters).
	refreshTokenBytes = 32

	// refreshTokenTTL is how long a refresh session stays usable.
	refreshTokenTTL = 7 * 24 * time.Hour
)

// MemberRepository はメンバーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type MemberRepository interface {
	// Create は新しいメンバーをストレージに永続化します。
	// メールアドレスまたはニックネームが既に存在する場合、
	// ErrEmailTaken / ErrNicknameTakenを返します。
	Create(ctx context.Context, m *entity.Member) error

	// FindByEmail はメールアドレスでメンバーを取得します。
	FindByEmail(ctx context.Context, email string) (*entity.Member, error)

	// FindByNickname はニックネームでメンバーを取得します。
	FindByNickname(ctx context.Context, nickname string) (*entity.Member, error)

	// FindByID はIDでメンバーを取得します。
	FindByID(ctx context.Context, id uint) (*entity.Member, error)

	// Update は既存メンバーの変更を永続化します。
	Update(ctx context.Context, m *entity.Member) error
}

// SessionRepository はリフレッシュセッションの永続化層を抽象化します。
type SessionRepository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *entity.Session) error

	// FindByID retrieves a session by its ID (refresh token value).
	FindByID(ctx context.Context, id string) (*entity.Session, error)

	// Revoke marks a session as revoked by setting RevokedAt.
	Revoke(ctx context.Context, id string) error

	// RevokeAllByMemberID revokes all sessions of a member.
	RevokeAllByMemberID(ctx context.Context, memberID uint) error
}

// TokenGenerator はアクセストークン生成のインターフェースを定義します。
type TokenGenerator interface {
	// GenerateToken は指定されたメンバーの署名済みアクセストークンを生成します。
	GenerateToken(memberID uint, email, role string) (string, error)
}

// SignupInput carries the fields of a signup request.
type SignupInput struct {
	Email           string
	Nickname        string
	Password        string
	ConfirmPassword string
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// ClientInfo identifies the client for session auditing.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// authUsecase は会員登録・認証のビジネスロジックを実装します。
type authUsecase struct {
	members  MemberRepository
	sessions SessionRepository
	tokens   TokenGenerator
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(members MemberRepository, sessions SessionRepository, tokens TokenGenerator) *authUsecase {
	return &authUsecase{
		members:  members,
		sessions: sessions,
		tokens:   tokens,
	}
}

// Signup はハッシュ化されたパスワードで新規メンバーを登録します。
// 確認パスワードの一致、メールアドレスとニックネームの重複を検証します。
// 重複チェックはクリーンなエラーのための事前チェックで、最終的にはストレージの
// 一意制約が同じエラーとして報告されます。
func (u *authUsecase) Signup(ctx context.Context, in SignupInput) error {
	if len(in.Password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	if in.Password != in.ConfirmPassword {
		return ErrPasswordMismatch
	}

	if err := u.CheckEmail(ctx, in.Email); err != nil {
		return err
	}
	if err := u.CheckNickname(ctx, in.Nickname); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	member := &entity.Member{
		Email:    in.Email,
		Nickname: in.Nickname,
		Password: string(hashed),
		Role:     entity.RoleUser,
	}
	return u.members.Create(ctx, member)
}

// CheckEmail はメールアドレスが使用可能かを確認します。
// 使用中の場合はErrEmailTakenを返します。
func (u *authUsecase) CheckEmail(ctx context.Context, email string) error {
	_, err := u.members.FindByEmail(ctx, email)
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, ErrMemberNotFound) {
		return err
	}
	return nil
}

// CheckNickname はニックネームが使用可能かを確認します。
// 使用中の場合はErrNicknameTakenを返します。
func (u *authUsecase) CheckNickname(ctx context.Context, nickname string) error {
	_, err := u.members.FindByNickname(ctx, nickname)
	if err == nil {
		return ErrNicknameTaken
	}
	if !errors.Is(err, ErrMemberNotFound) {
		return err
	}
	return nil
}

// Login はメンバーを認証し、アクセストークンとリフレッシュトークンを返します。
// 5回連続でパスワードを間違えるとアカウントがロックされ、
// 以降のログインはErrAccountLockedで拒否されます。
// 成功時には失敗カウンタがリセットされます。
func (u *authUsecase) Login(ctx context.Context, email, password string, client ClientInfo) (*TokenPair, error) {
	member, err := u.members.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if member.IsLoginLocked {
		return nil, ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(member.Password), []byte(password)) != nil {
		member.RecordLoginFailure()
		if updateErr := u.members.Update(ctx, member); updateErr != nil {
			return nil, updateErr
		}
		if member.IsLoginLocked {
			// ロック時は既存のリフレッシュセッションもすべて失効させる
			if err := u.sessions.RevokeAllByMemberID(ctx, member.ID); err != nil {
				return nil, err
			}
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	if member.FailedLoginCount > 0 {
		member.RecordLoginSuccess()
		if err := u.members.Update(ctx, member); err != nil {
			return nil, err
		}
	}

	return u.issueTokens(ctx, member, client)
}

// Refresh はリフレッシュトークンを検証し、ローテーションして新しいトークンペアを返します。
// 失効・期限切れ・不明なセッションは拒否されます。
func (u *authUsecase) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*TokenPair, error) {
	session, err := u.sessions.FindByID(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if session.IsRevoked() {
		return nil, ErrSessionRevoked
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	member, err := u.members.FindByID(ctx, session.MemberID)
	if err != nil {
		return nil, err
	}

	// ローテーション: 古いセッションを失効させてから新しいペアを発行
	if err := u.sessions.Revoke(ctx, session.ID); err != nil {
		return nil, err
	}
	return u.issueTokens(ctx, member, client)
}

// Logout は指定されたリフレッシュセッションを失効させます。
func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	return u.sessions.Revoke(ctx, refreshToken)
}

// Profile は指定されたメンバーのプロフィールを返します。
func (u *authUsecase) Profile(ctx context.Context, memberID uint) (*entity.Member, error) {
	return u.members.FindByID(ctx, memberID)
}

func (u *authUsecase) issueTokens(ctx context.Context, member *entity.Member, client ClientInfo) (*TokenPair, error) {
	access, err := u.tokens.GenerateToken(member.ID, member.Email, member.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	refresh, err := newRefreshToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &entity.Session{
		ID:        refresh,
		MemberID:  member.ID,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(refreshTokenTTL),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func newRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
