// Package entity defines the strategy metadata domain model.
package entity

import "time"

// Strategy is a trading strategy registered on the platform. It references
// one trading type and one asset class from the ordered catalogs by ID.
type Strategy struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	TradingTypeID uint      `json:"tradingTypeId"`
	AssetClassID  uint      `json:"assetClassId"`
	CreatedBy     uint      `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
	ModifiedBy    uint      `json:"modifiedBy"`
	ModifiedAt    time.Time `json:"modifiedAt"`
}

// StatisticRow is one performance record of a strategy over a period.
type StatisticRow struct {
	ID          uint      `json:"id"`
	StrategyID  uint      `json:"strategyId"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	NetProfit   float64   `json:"netProfit"`
	MaxDrawdown float64   `json:"maxDrawdown"`
	WinRate     float64   `json:"winRate"`
	TradeCount  int       `json:"tradeCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Page is one page of strategies sorted by ID ascending.
type Page struct {
	Items      []Strategy `json:"items"`
	Page       int        `json:"page"`
	Size       int        `json:"size"`
	TotalItems int64      `json:"totalItems"`
	TotalPages int        `json:"totalPages"`
}
