package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated platform user.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Login        string     `json:"login"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CompanyID    uuid.UUID  `json:"company_id"`
	CompanyName  string     `json:"company_name"`
	Timezone     string     `json:"timezone"`
	Language     string     `json:"language"`
	Active       bool       `json:"active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
