// Package usecase implements the business logic for the member feature.
package usecase

import "errors"

var (
	// ErrMemberNotFound is returned when a member cannot be found by email,
	// nickname or ID.
	ErrMemberNotFound = errors.New("member not found")

	// ErrEmailTaken is returned when the email is already in use.
	ErrEmailTaken = errors.New("email already in use")

	// ErrNicknameTaken is returned when the nickname is already in use.
	ErrNicknameTaken = errors.New("nickname already in use")

	// ErrPasswordMismatch is returned when the confirmation password does not
	// match the password at signup.
	ErrPasswordMismatch = errors.New("confirmation password does not match")

	// ErrAccountLocked is returned when logging into an account locked after
	// too many failed attempts.
	ErrAccountLocked = errors.New("account locked after repeated login failures")

	// ErrInvalidCredentials is returned when the password is wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrSessionNotFound is returned when a refresh session cannot be found.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionRevoked is returned when using a revoked refresh session.
	ErrSessionRevoked = errors.New("session has been revoked")

	// ErrSessionExpired is returned when using an expired refresh session.
	ErrSessionExpired = errors.New("session has expired")
)
