package models

import (
	"time"

	"github.com/google/uuid"
)

// IssuedRefreshToken records a refresh token JTI handed out to a user,
// so all outstanding refresh tokens can be revoked at once.
type IssuedRefreshToken struct {
	ID        uuid.UUID `json:"id"`
	TokenID   string    `json:"token_id"` // JTI claim
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (rt *IssuedRefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}
