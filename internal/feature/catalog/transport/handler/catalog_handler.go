// Package handler はcatalogフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"strategy_backend/internal/feature/catalog/domain/entity"
	"strategy_backend/internal/feature/catalog/transport/http/dto"
	"strategy_backend/internal/feature/catalog/usecase"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// CatalogUsecase はカタログ管理操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type CatalogUsecase interface {
	List(ctx context.Context, page, size int, active *entity.Flag) (*entity.Page, error)
	GetByID(ctx context.Context, id uint) (*entity.Entry, error)
	Create(ctx context.Context, in usecase.EntryInput) error
	Update(ctx context.Context, id uint, in usecase.EntryInput) error
	SoftDelete(ctx context.Context, id uint) error
	HardDelete(ctx context.Context, id uint) error
}

// CatalogHandler は1つのカタログ種別の管理HTTPリクエストを処理します。
// trading type用とinvestment asset class用に1つずつマウントされます。
type CatalogHandler struct {
	uc      CatalogUsecase
	catalog string // catalog kind, for logs only
}

// NewCatalogHandler はCatalogHandlerの新しいインスタンスを生成します。
func NewCatalogHandler(uc CatalogUsecase, catalog string) *CatalogHandler {
	return &CatalogHandler{uc: uc, catalog: catalog}
}

// List はカタログエントリの一覧取得APIです。
// クエリパラメータ: page（0始まり、デフォルト0）、size（デフォルト10、最大100）、
// isActive（Y/N、省略時はフィルタリングなし）。
func (h *CatalogHandler) List(c *gin.Context) {
	page, err := parseNonNegative(c.DefaultQuery("page", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}
	size, err := parseNonNegative(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)))
	if err != nil || size == 0 || size > maxPageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid size"})
		return
	}

	var active *entity.Flag
	if raw, ok := c.GetQuery("isActive"); ok {
		flag := entity.Flag(raw)
		if !flag.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "isActive must be Y or N"})
			return
		}
		active = &flag
	}

	result, err := h.uc.List(c.Request.Context(), page, size, active)
	if err != nil {
		slog.Error("catalog list failed", "catalog", h.catalog, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.ToPageResponse(result))
}

// Get はカタログエントリの詳細取得APIです。存在しない場合は404を返します。
func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := h.entryID(c)
	if !ok {
		return
	}
	e, err := h.uc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, id)
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(*e))
}

// Create はカタログエントリの登録APIです。
// - リクエストJSONをEntryRequestにバインド、バリデーションエラー時は400
// - 表示順・名前の重複時は409
// - 成功時は201（割り当てられたIDや表示順は再取得で確認する契約）
func (h *CatalogHandler) Create(c *gin.Context) {
	var req dto.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("catalog create validation failed", "catalog", h.catalog, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.uc.Create(c.Request.Context(), req.ToInput()); err != nil {
		h.writeError(c, err, 0)
		return
	}
	slog.Info("catalog entry created", "catalog", h.catalog, "name", req.Name)
	c.JSON(http.StatusCreated, gin.H{"message": "created"})
}

// Update はカタログエントリの修正APIです。
// 表示順・名前・アイコン・有効フラグを全置換します。
func (h *CatalogHandler) Update(c *gin.Context) {
	id, ok := h.entryID(c)
	if !ok {
		return
	}
	var req dto.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("catalog update validation failed", "catalog", h.catalog, "id", id, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.uc.Update(c.Request.Context(), id, req.ToInput()); err != nil {
		h.writeError(c, err, id)
		return
	}
	slog.Info("catalog entry updated", "catalog", h.catalog, "id", id)
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

// SoftDelete はカタログエントリの論理削除APIです。
// 有効フラグをNに変更するだけで、表示順と名前は占有されたままになります。
func (h *CatalogHandler) SoftDelete(c *gin.Context) {
	id, ok := h.entryID(c)
	if !ok {
		return
	}
	if err := h.uc.SoftDelete(c.Request.Context(), id); err != nil {
		h.writeError(c, err, id)
		return
	}
	slog.Info("catalog entry soft-deleted", "catalog", h.catalog, "id", id)
	c.JSON(http.StatusOK, gin.H{"message": "deactivated"})
}

// HardDelete はカタログエントリの物理削除APIです。
// 削除後、表示順と名前は再利用可能になります。
func (h *CatalogHandler) HardDelete(c *gin.Context) {
	id, ok := h.entryID(c)
	if !ok {
		return
	}
	if err := h.uc.HardDelete(c.Request.Context(), id); err != nil {
		h.writeError(c, err, id)
		return
	}
	slog.Info("catalog entry hard-deleted", "catalog", h.catalog, "id", id)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// entryID parses the :id path parameter. Writes a 400 response and returns
// false on failure.
func (h *CatalogHandler) entryID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// writeError maps usecase errors onto HTTP statuses: not found → 404,
// duplicate order/name → 409, anything else → 500.
func (h *CatalogHandler) writeError(c *gin.Context, err error, id uint) {
	switch {
	case errors.Is(err, usecase.ErrEntryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "catalog entry not found", "id": id})
	case errors.Is(err, usecase.ErrDuplicateOrder), errors.Is(err, usecase.ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		slog.Error("catalog operation failed", "catalog", h.catalog, "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseNonNegative(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("negative or non-numeric")
	}
	return n, nil
}
