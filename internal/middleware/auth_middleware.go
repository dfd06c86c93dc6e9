package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/DENNISVILL/makipartner/internal/models"
	"github.com/DENNISVILL/makipartner/internal/services"
	"github.com/DENNISVILL/makipartner/internal/utils"
)

type contextKey string

const (
	ContextKeyUserID = contextKey("userID")
	// ContextKeyRawToken carries the presented bearer token so logout can
	// revoke it without re-extraction.
	ContextKeyRawToken = contextKey("rawToken")
)

// AuthMiddleware protects endpoints with a verified access token. On
// success the subject's user ID and the raw token are placed on the
// request context.
func AuthMiddleware(jwtService services.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := ExtractBearerToken(r)
			if err != nil {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil,
				)
				return
			}

			claims, _, vErr := jwtService.VerifyToken(r.Context(), tokenStr, models.TokenTypeAccess)
			if vErr != nil {
				respondVerifyError(w, vErr)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.UserID)
			ctx = context.WithValue(ctx, ContextKeyRawToken, tokenStr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondVerifyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, utils.ErrTokenRevoked):
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeTokenRevoked, "Token has been revoked", nil,
		)
	case errors.Is(err, utils.ErrTokenExpired):
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Token expired", nil,
		)
	case errors.Is(err, utils.ErrAccountDisabled):
		utils.RespondErrorWithCode(
			w, http.StatusForbidden, utils.ErrCodeAccountDisabled, "Account is disabled", nil,
		)
	case errors.Is(err, utils.ErrMalformedToken),
		errors.Is(err, utils.ErrInvalidSignature),
		errors.Is(err, utils.ErrWrongTokenType),
		errors.Is(err, utils.ErrUserNotFound):
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid token", nil,
		)
	default:
		// Infrastructure failure during verification: deny, retryable.
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Authentication temporarily unavailable", nil, err,
		)
	}
}

// ExtractBearerToken reads the Authorization: Bearer header.
func ExtractBearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", errors.New("missing Authorization header")
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	if token == "" {
		return "", errors.New("missing Authorization header")
	}
	return token, nil
}

// UserIDFromContext returns the authenticated subject set by AuthMiddleware.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return id, ok
}

// RawTokenFromContext returns the bearer token set by AuthMiddleware.
func RawTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(ContextKeyRawToken).(string)
	return token, ok
}
