package requests

// GenerateTokenRequest creates a new gallery access token.
type GenerateTokenRequest struct {
	Description   *string `json:"description"`
	ValidityHours int     `json:"validityHours"`
}

// ValidateTokenRequest checks a presented bearer token.
type ValidateTokenRequest struct {
	Token string `json:"token" binding:"required"`
}
