package accesstoken

import "time"

// AccessToken is a bearer secret gating gallery access. A token is valid
// iff it is active and not yet expired; validity is recomputed at every
// check, never cached. IsActive only flips through explicit deactivation or
// an expiry sweep, so an expired-but-unswept token reads as active here
// while still failing validation.
type AccessToken struct {
	ID          int       `json:"id"`
	Token       string    `json:"token"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
	IsActive    bool      `json:"isActive"`
}
