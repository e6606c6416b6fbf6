package dto

type TokenResponse struct {
	Token     string `json:"token"`
	Refresh   string `json:"refresh"`
	ExpiresIn int64  `json:"expires_in"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type JWKSResponse struct {
	Keys []map[string]any `json:"keys"`
}
