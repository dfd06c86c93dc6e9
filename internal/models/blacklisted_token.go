package models

import (
	"time"

	"github.com/google/uuid"
)

// Revocation reasons recorded alongside a blacklist entry.
const (
	RevocationReasonLogout         = "logout"
	RevocationReasonPasswordChange = "password_change"
	RevocationReasonSecurity       = "security"
	RevocationReasonAdmin          = "admin"
	RevocationReasonOther          = "other"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// BlacklistedToken represents a revoked token, keyed by its JTI claim.
type BlacklistedToken struct {
	ID        uuid.UUID `json:"id"`
	TokenID   string    `json:"token_id"` // JTI (JWT ID) claim from the token
	UserID    uuid.UUID `json:"user_id"`
	TokenType string    `json:"token_type"` // access or refresh
	ExpiresAt time.Time `json:"expires_at"` // token expiration time
	RevokedAt time.Time `json:"revoked_at"`
	RevokedBy string    `json:"revoked_by,omitempty"`
	Reason    string    `json:"reason"`
}

func (bt *BlacklistedToken) IsExpired() bool {
	return time.Now().After(bt.ExpiresAt)
}
