// Package dto defines data transfer objects for the member feature's HTTP
// transport layer.
package dto

// SignupReq represents the request body for the /auth/signup endpoint.
// It uses Gin's binding tags for validation (required, email format,
// password and nickname lengths).
type SignupReq struct {
	Email           string `json:"email" binding:"required,email"`
	Nickname        string `json:"nickname" binding:"required,max=30"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}
