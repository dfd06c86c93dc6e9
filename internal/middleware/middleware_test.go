package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/DENNISVILL/makipartner/internal/config"
	"github.com/DENNISVILL/makipartner/internal/middleware"
	"github.com/DENNISVILL/makipartner/internal/models"
	"github.com/DENNISVILL/makipartner/internal/services"
	"github.com/DENNISVILL/makipartner/internal/utils"
)

// ---------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------

type fakeLimiter struct {
	decision services.Decision
	err      error
	lastKey  string
}

func (f *fakeLimiter) Admit(ctx context.Context, scope, callerKey string) (services.Decision, error) {
	f.lastKey = scope + ":" + callerKey
	return f.decision, f.err
}

func (f *fakeLimiter) Rule(scope string) config.RateLimitRule {
	return config.RateLimitRule{Limit: f.decision.Limit, Window: f.decision.Window}
}

type fakeJWTService struct {
	goodToken string
	userID    uuid.UUID
	verifyErr error
}

func (f *fakeJWTService) GenerateToken(userID uuid.UUID, tokenType string) (string, *services.Claims, error) {
	return f.goodToken, &services.Claims{UserID: userID, TokenType: tokenType}, nil
}

func (f *fakeJWTService) VerifyToken(ctx context.Context, tokenString, expectedType string) (*services.Claims, *models.User, error) {
	if f.verifyErr != nil {
		return nil, nil, f.verifyErr
	}
	if tokenString != f.goodToken {
		return nil, nil, utils.ErrInvalidSignature
	}
	return &services.Claims{UserID: f.userID, TokenType: expectedType}, &models.User{ID: f.userID, Active: true}, nil
}

func (f *fakeJWTService) DecodeUnverified(tokenString string) (*services.Claims, error) {
	return &services.Claims{UserID: f.userID}, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// ---------------------------------------------------------------------
// Rate limit middleware
// ---------------------------------------------------------------------

func TestRateLimitMiddlewareAllows(t *testing.T) {
	limiter := &fakeLimiter{decision: services.Decision{Allowed: true, Current: 1, Limit: 100, Window: time.Hour}}
	handler := middleware.RateLimitMiddleware(limiter, config.ScopeAuth)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "203.0.113.7:4711"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "auth:ip:203.0.113.7", limiter.lastKey)
}

func TestRateLimitMiddlewareRejectsWithHistoricalShape(t *testing.T) {
	limiter := &fakeLimiter{decision: services.Decision{Allowed: false, Current: 101, Limit: 100, Window: time.Hour}}
	handler := middleware.RateLimitMiddleware(limiter, config.ScopeAuth)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Rate limit exceeded", body["error"])
	require.Equal(t, "Too many requests. Limit: 100 per 3600 seconds", body["message"])
}

func TestRateLimitMiddlewareFailsClosedOnError(t *testing.T) {
	limiter := &fakeLimiter{err: errors.New("both paths down")}
	handler := middleware.RateLimitMiddleware(limiter, config.ScopeAuth)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimitMiddlewarePrefersUserKey(t *testing.T) {
	limiter := &fakeLimiter{decision: services.Decision{Allowed: true, Limit: 100, Window: time.Hour}}
	handler := middleware.RateLimitMiddleware(limiter, config.ScopeMe)(okHandler())

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyUserID, userID))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, "me:user:"+userID.String(), limiter.lastKey)
}

// ---------------------------------------------------------------------
// Auth middleware
// ---------------------------------------------------------------------

func TestAuthMiddlewareSetsSubjectOnContext(t *testing.T) {
	userID := uuid.New()
	jwtSvc := &fakeJWTService{goodToken: "good-token", userID: userID}

	var gotUserID uuid.UUID
	var gotToken string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = middleware.UserIDFromContext(r.Context())
		gotToken, _ = middleware.RawTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.AuthMiddleware(jwtSvc)(next)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, userID, gotUserID)
	require.Equal(t, "good-token", gotToken)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	handler := middleware.AuthMiddleware(&fakeJWTService{goodToken: "good-token"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareMapsRevokedToken(t *testing.T) {
	jwtSvc := &fakeJWTService{verifyErr: utils.ErrTokenRevoked}
	handler := middleware.AuthMiddleware(jwtSvc)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer revoked-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, utils.ErrCodeTokenRevoked, body.Error.Code)
	require.Equal(t, "Token has been revoked", body.Error.Message)
}

func TestAuthMiddlewareMapsDisabledAccount(t *testing.T) {
	jwtSvc := &fakeJWTService{verifyErr: utils.ErrAccountDisabled}
	handler := middleware.AuthMiddleware(jwtSvc)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)

	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Account is disabled", body.Error.Message)
}

func TestAuthMiddlewareDeniesOnInfrastructureError(t *testing.T) {
	jwtSvc := &fakeJWTService{verifyErr: errors.New("blacklist lookup: connection refused")}
	handler := middleware.AuthMiddleware(jwtSvc)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestExtractBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := middleware.ExtractBearerToken(req)
	require.Error(t, err)

	req.Header.Set("Authorization", "Basic abc")
	_, err = middleware.ExtractBearerToken(req)
	require.Error(t, err)

	req.Header.Set("Authorization", "Bearer ")
	_, err = middleware.ExtractBearerToken(req)
	require.Error(t, err)

	req.Header.Set("Authorization", "Bearer the-token")
	token, err := middleware.ExtractBearerToken(req)
	require.NoError(t, err)
	require.Equal(t, "the-token", token)
}
