package dto

import (
	"time"

	"strategy_backend/internal/feature/member/domain/entity"
)

// ProfileResponse is the member's own profile as returned by /api/members/me.
type ProfileResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToProfileResponse maps a member entity to its profile shape.
// The password hash and lockout bookkeeping are never exposed.
func ToProfileResponse(m *entity.Member) ProfileResponse {
	return ProfileResponse{
		ID:        m.ID,
		Email:     m.Email,
		Nickname:  m.Nickname,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
	}
}
