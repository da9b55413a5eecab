// Package dto defines data transfer objects for the catalog feature's HTTP
// transport layer and the pure mappers between wire shapes and domain shapes.
package dto

import (
	"time"

	"strategy_backend/internal/feature/catalog/domain/entity"
	"strategy_backend/internal/feature/catalog/usecase"
)

// EntryRequest is the request body for creating or updating a catalog entry.
// It uses Gin's binding tags for validation: name is required and at most 50
// characters, order is optional but positive when present, isActive must be
// Y or N.
type EntryRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Icon     string `json:"icon" binding:"omitempty,max=255"`
	Order    *int   `json:"order" binding:"omitempty,gt=0"`
	IsActive string `json:"isActive" binding:"required,oneof=Y N"`
}

// ToInput converts the request into the usecase input shape.
func (r EntryRequest) ToInput() usecase.EntryInput {
	return usecase.EntryInput{
		Name:     r.Name,
		Icon:     r.Icon,
		Order:    r.Order,
		IsActive: entity.Flag(r.IsActive),
	}
}

// EntryResponse mirrors a catalog entry plus its audit metadata.
type EntryResponse struct {
	ID         uint      `json:"id"`
	Order      int       `json:"order"`
	Name       string    `json:"name"`
	Icon       string    `json:"icon,omitempty"`
	IsActive   string    `json:"isActive"`
	CreatedBy  uint      `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedBy uint      `json:"modifiedBy"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// PageResponse is one page of catalog entries with paging metadata.
type PageResponse struct {
	Items      []EntryResponse `json:"items"`
	Page       int             `json:"page"`
	Size       int             `json:"size"`
	TotalItems int64           `json:"totalItems"`
	TotalPages int             `json:"totalPages"`
}

// ToEntryResponse maps a domain entry to its response shape. Pure; no side
// effects.
func ToEntryResponse(e entity.Entry) EntryResponse {
	return EntryResponse{
		ID:         e.ID,
		Order:      e.DisplayOrder,
		Name:       e.Name,
		Icon:       e.Icon,
		IsActive:   string(e.IsActive),
		CreatedBy:  e.CreatedBy,
		CreatedAt:  e.CreatedAt,
		ModifiedBy: e.ModifiedBy,
		ModifiedAt: e.ModifiedAt,
	}
}

// ToPageResponse maps a domain page to its response shape.
func ToPageResponse(p *entity.Page) PageResponse {
	items := make([]EntryResponse, 0, len(p.Items))
	for _, e := range p.Items {
		items = append(items, ToEntryResponse(e))
	}
	return PageResponse{
		Items:      items,
		Page:       p.Page,
		Size:       p.Size,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
}
