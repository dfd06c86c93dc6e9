// internal/utils/response.go
package utils

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	ErrCodeInvalidPayload         = "invalid_payload"
	ErrCodeValidation             = "validation_error"
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeTokenRevoked           = "token_revoked"
	ErrCodeWrongTokenType         = "wrong_token_type"
	ErrCodeInvalidCredentials     = "invalid_credentials"
	ErrCodeAccountDisabled        = "account_disabled"
	ErrCodeInvalidCurrentPassword = "invalid_current_password"
	ErrCodePasswordTooShort       = "password_too_short"
	ErrCodeInternal               = "internal_server_error"
	ErrCodeNotFound               = "not_found"
	ErrCodeRateLimitExceeded      = "rate_limit_exceeded"
)

// APIResponse is the standard success envelope every endpoint returns.
type APIResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ErrorBody carries a machine-readable code next to the public message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     ErrorBody `json:"error"`
	Timestamp string    `json:"timestamp"`
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// RespondErrorWithCode builds a JSON error envelope with a standard
// code and public message. The optional `details` is included if non-nil.
// Full error detail is logged server-side only.
func RespondErrorWithCode(
	w http.ResponseWriter,
	status int,
	errorCode string,
	publicMessage string,
	details any,
	devErrs ...error,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := ErrorResponse{
		Success: false,
		Error: ErrorBody{
			Code:    errorCode,
			Message: publicMessage,
		},
		Timestamp: timestamp(),
	}
	if details != nil {
		body.Error.Details = details
	}
	_ = json.NewEncoder(w).Encode(body)

	if len(devErrs) > 0 && devErrs[0] != nil {
		Logger.WithFields(logrus.Fields{
			"status": status,
			"error":  devErrs[0].Error(),
		}).Error(publicMessage)
	} else {
		Logger.WithFields(logrus.Fields{
			"status": status,
		}).Error(publicMessage)
	}
}

// RespondWithJSON wraps payload in the success envelope.
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Success:   true,
		Data:      payload,
		Timestamp: timestamp(),
	})
}

// RespondWithMessage is RespondWithJSON for message-only success responses.
func RespondWithMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Success:   true,
		Message:   message,
		Timestamp: timestamp(),
	})
}
