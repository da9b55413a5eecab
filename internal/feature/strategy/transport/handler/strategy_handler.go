// Package handler はstrategyフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"strategy_backend/internal/feature/strategy/domain/entity"
	"strategy_backend/internal/feature/strategy/transport/http/dto"
	"strategy_backend/internal/feature/strategy/usecase"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// StrategyUsecase はストラテジー管理操作のユースケースを定義します。
// インターフェースはコンシューマー（handler）が定義します。
type StrategyUsecase interface {
	List(ctx context.Context, page, size int) (*entity.Page, error)
	GetByID(ctx context.Context, id uint) (*entity.Strategy, error)
	Create(ctx context.Context, in usecase.StrategyInput) (*entity.Strategy, error)
	Update(ctx context.Context, id uint, in usecase.StrategyInput) (*entity.Strategy, error)
	Delete(ctx context.Context, id uint) error
	AddStatistic(ctx context.Context, strategyID uint, in usecase.StatisticInput) (*entity.StatisticRow, error)
	Statistics(ctx context.Context, strategyID uint) ([]entity.StatisticRow, error)
	ExportStatisticsCSV(ctx context.Context, strategyID uint, w io.Writer) error
}

// StrategyHandler はストラテジー管理のHTTPリクエストを処理します。
type StrategyHandler struct {
	uc StrategyUsecase
}

// NewStrategyHandler はStrategyHandlerの新しいインスタンスを生成します。
func NewStrategyHandler(uc StrategyUsecase) *StrategyHandler {
	return &StrategyHandler{uc: uc}
}

// List はストラテジーの一覧取得APIです。
// クエリパラメータ: page（0始まり、デフォルト0）、size（デフォルト10、最大100）。
func (h *StrategyHandler) List(c *gin.Context) {
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

	result, err := h.uc.List(c.Request.Context(), page, size)
	if err != nil {
		slog.Error("strategy list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.ToPageResponse(result))
}

// Get はストラテジーの詳細取得APIです。存在しない場合は404を返します。
func (h *StrategyHandler) Get(c *gin.Context) {
	id, ok := h.strategyID(c)
	if !ok {
		return
	}
	s, err := h.uc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, id)
		return
	}
	c.JSON(http.StatusOK, dto.ToStrategyResponse(*s))
}

// Create はストラテジーの登録APIです。
// 名前の重複と無効なカタログ参照は409を返します。
func (h *StrategyHandler) Create(c *gin.Context) {
	var req dto.StrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("strategy create validation failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	s, err := h.uc.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.writeError(c, err, 0)
		return
	}
	slog.Info("strategy created", "id", s.ID, "name", s.Name)
	c.JSON(http.StatusCreated, dto.ToStrategyResponse(*s))
}

// Update はストラテジーの修正APIです。
func (h *StrategyHandler) Update(c *gin.Context) {
	id, ok := h.strategyID(c)
	if !ok {
		return
	}
	var req dto.StrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("strategy update validation failed", "id", id, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	s, err := h.uc.Update(c.Request.Context(), id, req.ToInput())
	if err != nil {
		h.writeError(c, err, id)
		return
	}
	slog.Info("strategy updated", "id", id)
	c.JSON(http.StatusOK, dto.ToStrategyResponse(*s))
}

// Delete はストラテジーの削除APIです。統計行も一緒に削除されます。
func (h *StrategyHandler) Delete(c *gin.Context) {
	id, ok := h.strategyID(c)
	if !ok {
		return
	}
	if err := h.uc.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err, id)
		return
	}
	slog.Info("strategy deleted", "id", id)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// AddStatistic はストラテジーに統計行を追加するAPIです。
func (h *StrategyHandler) AddStatistic(c *gin.Context) {
	id, ok := h.strategyID(c)
	if !ok {
		return
	}
	var req dto.StatisticRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("statistic validation failed", "strategyId", id, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	row, err := h.uc.AddStatistic(c.Request.Context(), id, req.ToInput())
	if err != nil {
		h.writeError(c, err, id)
		return
	}
	c.JSON(http.StatusCreated, dto.ToStatisticResponse(*row))
}

// Statistics はストラテジーの統計行一覧APIです。
func (h *StrategyHandler) Statistics(c *gin.Context) {
	id, ok := h.strategyID(c)
	if !ok {
		return
	}
	rows, err := h.uc.Statistics(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, id)
		return
	}
	c.JSON(http.StatusOK, dto.ToStatisticResponses(rows))
}

// ExportStatistics はストラテジーの統計をCSVファイルとしてダウンロードさせます。
func (h *StrategyHandler) ExportStatistics(c *gin.Context) {
	id, ok := h.strategyID(c)
	if !ok {
		return
	}

	// Verify existence before committing headers; once the CSV body starts
	// streaming the status code cannot change.
	if _, err := h.uc.GetByID(c.Request.Context(), id); err != nil {
		h.writeError(c, err, id)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=strategy_%d_statistics.csv", id))
	if err := h.uc.ExportStatisticsCSV(c.Request.Context(), id, c.Writer); err != nil {
		slog.Error("statistics export failed", "strategyId", id, "error", err)
	}
}

// strategyID parses the :id path parameter. Writes a 400 response and
// returns false on failure.
func (h *StrategyHandler) strategyID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// writeError maps usecase errors onto HTTP statuses: not found → 404,
// name taken or broken catalog reference → 409, invalid period → 400,
// anything else → 500.
func (h *StrategyHandler) writeError(c *gin.Context, err error, id uint) {
	switch {
	case errors.Is(err, usecase.ErrStrategyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "strategy not found", "id": id})
	case errors.Is(err, usecase.ErrStrategyNameTaken), errors.Is(err, usecase.ErrCatalogRefMissing):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error("strategy operation failed", "id", id, "error", err)
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
