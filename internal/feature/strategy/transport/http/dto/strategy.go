// Package dto defines the request/response shapes of the strategy API.
package dto

import (
	"strategy_backend/internal/feature/strategy/domain/entity"
	"strategy_backend/internal/feature/strategy/usecase"
)

// StrategyRequest はストラテジー登録・修正リクエストのボディです。
type StrategyRequest struct {
	Name          string `json:"name" binding:"required,max=100"`
	Description   string `json:"description" binding:"omitempty,max=1000"`
	TradingTypeID uint   `json:"tradingTypeId" binding:"required"`
	AssetClassID  uint   `json:"assetClassId" binding:"required"`
}

// ToInput converts the request into the usecase input.
func (r StrategyRequest) ToInput() usecase.StrategyInput {
	return usecase.StrategyInput{
		Name:          r.Name,
		Description:   r.Description,
		TradingTypeID: r.TradingTypeID,
		AssetClassID:  r.AssetClassID,
	}
}

// StatisticRequest は統計行追加リクエストのボディです。
// 期間はYYYY-MM-DD形式、勝率は0〜1の小数です。
type StatisticRequest struct {
	PeriodStart string  `json:"periodStart" binding:"required,datetime=2006-01-02"`
	PeriodEnd   string  `json:"periodEnd" binding:"required,datetime=2006-01-02"`
	NetProfit   float64 `json:"netProfit"`
	MaxDrawdown float64 `json:"maxDrawdown" binding:"omitempty,gte=0"`
	WinRate     float64 `json:"winRate" binding:"omitempty,gte=0,lte=1"`
	TradeCount  int     `json:"tradeCount" binding:"omitempty,gte=0"`
}

// ToInput converts the request into the usecase input.
func (r StatisticRequest) ToInput() usecase.StatisticInput {
	return usecase.StatisticInput{
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
		NetProfit:   r.NetProfit,
		MaxDrawdown: r.MaxDrawdown,
		WinRate:     r.WinRate,
		TradeCount:  r.TradeCount,
	}
}

// StrategyResponse is the API representation of a strategy.
type StrategyResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	TradingTypeID uint   `json:"tradingTypeId"`
	AssetClassID  uint   `json:"assetClassId"`
	CreatedBy     uint   `json:"createdBy"`
	CreatedAt     string `json:"createdAt"`
	ModifiedBy    uint   `json:"modifiedBy"`
	ModifiedAt    string `json:"modifiedAt"`
}

// PageResponse is one page of strategies.
type PageResponse struct {
	Items      []StrategyResponse `json:"items"`
	Page       int                `json:"page"`
	Size       int                `json:"size"`
	TotalItems int64              `json:"totalItems"`
	TotalPages int                `json:"totalPages"`
}

// StatisticResponse is the API representation of one statistic row.
type StatisticResponse struct {
	ID          uint    `json:"id"`
	StrategyID  uint    `json:"strategyId"`
	PeriodStart string  `json:"periodStart"`
	PeriodEnd   string  `json:"periodEnd"`
	NetProfit   float64 `json:"netProfit"`
	MaxDrawdown float64 `json:"maxDrawdown"`
	WinRate     float64 `json:"winRate"`
	TradeCount  int     `json:"tradeCount"`
}

const (
	dayLayout  = "2006-01-02"
	timeLayout = "2006-01-02T15:04:05Z07:00"
)

// ToStrategyResponse converts a domain strategy into its API shape.
func ToStrategyResponse(s entity.Strategy) StrategyResponse {
	return StrategyResponse{
		ID:            s.ID,
		Name:          s.Name,
		Description:   s.Description,
		TradingTypeID: s.TradingTypeID,
		AssetClassID:  s.AssetClassID,
		CreatedBy:     s.CreatedBy,
		CreatedAt:     s.CreatedAt.Format(timeLayout),
		ModifiedBy:    s.ModifiedBy,
		ModifiedAt:    s.ModifiedAt.Format(timeLayout),
	}
}

// ToPageResponse converts a domain page into its API shape.
func ToPageResponse(p *entity.Page) PageResponse {
	items := make([]StrategyResponse, 0, len(p.Items))
	for _, s := range p.Items {
		items = append(items, ToStrategyResponse(s))
	}
	return PageResponse{
		Items:      items,
		Page:       p.Page,
		Size:       p.Size,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
}

// ToStatisticResponse converts a domain statistic row into its API shape.
func ToStatisticResponse(row entity.StatisticRow) StatisticResponse {
	return StatisticResponse{
		ID:          row.ID,
		StrategyID:  row.StrategyID,
		PeriodStart: row.PeriodStart.Format(dayLayout),
		PeriodEnd:   row.PeriodEnd.Format(dayLayout),
		NetProfit:   row.NetProfit,
		MaxDrawdown: row.MaxDrawdown,
		WinRate:     row.WinRate,
		TradeCount:  row.TradeCount,
	}
}

// ToStatisticResponses converts a slice of statistic rows.
func ToStatisticResponses(rows []entity.StatisticRow) []StatisticResponse {
	out := make([]StatisticResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToStatisticResponse(row))
	}
	return out
}
