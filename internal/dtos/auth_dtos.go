package dtos

// ---------------------------
// Requests
// ---------------------------

type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// ---------------------------
// Responses
// ---------------------------

type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"` // always "Bearer"
	ExpiresIn    int64       `json:"expires_in"` // seconds
	User         UserProfile `json:"user"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type UserProfile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Login       string `json:"login"`
	Email       string `json:"email"`
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	Timezone    string `json:"timezone"`
	Language    string `json:"language"`
	LastLoginAt string `json:"last_login_at,omitempty"`
}
