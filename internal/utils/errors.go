// internal/utils/errors.go
package utils

import "errors"

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrInvalidCredentials     = errors.New("invalid_credentials")
	ErrAccountDisabled        = errors.New("account_disabled")
	ErrUserNotFound           = errors.New("user_not_found")
	ErrMalformedToken         = errors.New("malformed_token")
	ErrTokenRevoked           = errors.New("token_revoked")
	ErrTokenExpired           = errors.New("token_expired")
	ErrInvalidSignature       = errors.New("invalid_signature")
	ErrWrongTokenType         = errors.New("wrong_token_type")
	ErrInvalidCurrentPassword = errors.New("invalid_current_password")
	ErrPasswordTooShort       = errors.New("password_too_short")
)
