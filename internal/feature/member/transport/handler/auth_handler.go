// Package handler はmemberフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"strategy_backend/internal/feature/member/domain/entity"
	"strategy_backend/internal/feature/member/transport/http/dto"
	"strategy_backend/internal/feature/member/usecase"
	jwtmw "strategy_backend/internal/platform/jwt"
)

// AuthUsecase は会員登録・認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Signup(ctx context.Context, in usecase.SignupInput) error
	Login(ctx context.Context, email, password string, client usecase.ClientInfo) (*usecase.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, client usecase.ClientInfo) (*usecase.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	CheckEmail(ctx context.Context, email string) error
	CheckNickname(ctx context.Context, nickname string) error
	Profile(ctx context.Context, memberID uint) (*entity.Member, error)
}

// AuthHandler は会員登録・認証のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup は会員登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - メール/ニックネーム重複・確認パスワード不一致時は409を返却
// - 成功時は201を返却
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.auth.Signup(c.Request.Context(), usecase.SignupInput{
		Email:           req.Email,
		Nickname:        req.Nickname,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		slog.Warn("signup failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		switch {
		case errors.Is(err, usecase.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
		case errors.Is(err, usecase.ErrNicknameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "nickname already in use"})
		case errors.Is(err, usecase.ErrPasswordMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "confirmation password does not match"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		}
		return
	}

	slog.Info("member signup successful", "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, gin.H{"message": "ok"})
}

// Login はログインAPIエンドポイントを処理します。
// - 未登録メールは404、ロック済みアカウントとパスワード不一致は401
// - 成功時はアクセストークンとリフレッシュトークンを返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, h.clientInfo(c))
	if err != nil {
		slog.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		switch {
		case errors.Is(err, usecase.ErrMemberNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "account does not exist"})
		case errors.Is(err, usecase.ErrAccountLocked):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "account locked after repeated login failures"})
		case errors.Is(err, usecase.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}

	slog.Info("member login successful", "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Refresh はリフレッシュトークンをローテーションするAPIエンドポイントを処理します。
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, h.clientInfo(c))
	if err != nil {
		// セッション状態の詳細を漏らさないため、失敗はすべて401に丸める
		slog.Warn("token refresh failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Logout はリフレッシュセッションを失効させるAPIエンドポイントを処理します。
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		slog.Warn("logout failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// CheckEmail はメールアドレスの使用可否を確認するAPIです。
// 使用中の場合は409を返します。
func (h *AuthHandler) CheckEmail(c *gin.Context) {
	email, ok := c.GetQuery("email")
	if !ok || email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	if err := h.auth.CheckEmail(c.Request.Context(), email); err != nil {
		if errors.Is(err, usecase.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "available"})
}

// CheckNickname はニックネームの使用可否を確認するAPIです。
func (h *AuthHandler) CheckNickname(c *gin.Context) {
	nickname, ok := c.GetQuery("nickname")
	if !ok || nickname == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nickname is required"})
		return
	}

	if err := h.auth.CheckNickname(c.Request.Context(), nickname); err != nil {
		if errors.Is(err, usecase.ErrNicknameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "nickname already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "available"})
}

// Me は認証済みメンバー自身のプロフィールを返すAPIです。
func (h *AuthHandler) Me(c *gin.Context) {
	memberID, ok := c.Get(jwtmw.ContextMemberID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	member, err := h.auth.Profile(c.Request.Context(), memberID.(uint))
	if err != nil {
		if errors.Is(err, usecase.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.ToProfileResponse(member))
}

func (h *AuthHandler) clientInfo(c *gin.Context) usecase.ClientInfo {
	return usecase.ClientInfo{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
}
