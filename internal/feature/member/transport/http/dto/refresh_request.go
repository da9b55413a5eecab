package dto

// RefreshReq represents the request body for the /auth/refresh and
// /auth/logout endpoints.
type RefreshReq struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}
