// Package entity defines the domain entities for the member feature.
package entity

import "time"

// Member roles. Admin members may manage catalogs and strategies.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// maxFailedLogins is the number of consecutive failed logins after which an
// account is locked.
const maxFailedLogins = 5

// Member represents a registered member of the platform.
type Member struct {
	// ID is the unique identifier for the member.
	ID uint `gorm:"primaryKey"`

	// Email is the member's login identifier. Unique across all members.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Nickname is the member's public display name. Unique across all members.
	Nickname string `gorm:"uniqueIndex;size:30;not null"`

	// Password is the bcrypt hash of the member's password.
	Password string `gorm:"size:255;not null"`

	// Role controls access to the administrative surface.
	Role string `gorm:"size:20;not null;default:USER"`

	// FailedLoginCount counts consecutive failed login attempts.
	// Reset to zero on a successful login.
	FailedLoginCount int `gorm:"not null;default:0"`

	// IsLoginLocked marks an account locked after too many failed logins.
	// A locked account cannot log in until the password is reset.
	IsLoginLocked bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecordLoginFailure increments the failure counter and locks the account
// once the limit is reached.
func (m *Member) RecordLoginFailure() {
	m.FailedLoginCount++
	if m.FailedLoginCount >= maxFailedLogins {
		m.IsLoginLocked = true
	}
}

// RecordLoginSuccess resets the failure counter.
func (m *Member) RecordLoginSuccess() {
	m.FailedLoginCount = 0
}

// IsAdmin reports whether the member may use the administrative surface.
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}
