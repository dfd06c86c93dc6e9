package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/DENNISVILL/makipartner/internal/models"
	"github.com/DENNISVILL/makipartner/internal/services"
	"github.com/DENNISVILL/makipartner/internal/utils"
)

func activeUser() *models.User {
	hash, _ := utils.HashPassword("correct horse battery")
	return &models.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Login:        "tester",
		Email:        "tester@example.com",
		PasswordHash: hash,
		CompanyID:    uuid.New(),
		CompanyName:  "Test Co",
		Timezone:     "UTC",
		Language:     "en_US",
		Active:       true,
		CreatedAt:    time.Now(),
	}
}

func TestGenerateTokenPairHasDistinctJTIs(t *testing.T) {
	user := activeUser()
	svc := services.NewJWTService(testConfig(), newFakeBlacklistRepo(), newFakeUserRepo(user))

	access, accessClaims, err := svc.GenerateToken(user.ID, models.TokenTypeAccess)
	require.NoError(t, err)
	refresh, refreshClaims, err := svc.GenerateToken(user.ID, models.TokenTypeRefresh)
	require.NoError(t, err)

	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	require.NotEqual(t, accessClaims.TokenID, refreshClaims.TokenID)
	require.Equal(t, models.TokenTypeAccess, accessClaims.TokenType)
	require.Equal(t, models.TokenTypeRefresh, refreshClaims.TokenType)
	require.True(t, refreshClaims.ExpiresAt.After(accessClaims.ExpiresAt))
}

func TestVerifyTokenRoundTrip(t *testing.T) {
	user := activeUser()
	svc := services.NewJWTService(testConfig(), newFakeBlacklistRepo(), newFakeUserRepo(user))

	token, issued, err := svc.GenerateToken(user.ID, models.TokenTypeAccess)
	require.NoError(t, err)

	claims, verifiedUser, err := svc.VerifyToken(context.Background(), token, models.TokenTypeAccess)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, issued.TokenID, claims.TokenID)
	require.Equal(t, user.Login, verifiedUser.Login)
}

func TestVerifyTokenRejectsMalformed(t *testing.T) {
	user := activeUser()
	svc := services.NewJWTService(testConfig(), newFakeBlacklistRepo(), newFakeUserRepo(user))

	_, _, err := svc.VerifyToken(context.Background(), "not-a-jwt", models.TokenTypeAccess)
	require.ErrorIs(t, err, utils.ErrMalformedToken)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	user := activeUser()
	cfg := testConfig()
	cfg.AccessTokenTTL = -time.Minute
	svc := services.NewJWTService(cfg, newFakeBlacklistRepo(), newFakeUserRepo(user))

	token, _, err := svc.GenerateToken(user.ID, models.TokenTypeAccess)
	require.NoError(t, err)

	_, _, err = svc.VerifyToken(context.Background(), token, models.TokenTypeAccess)
	require.ErrorIs(t, err, utils.ErrTokenExpired)
}

func TestVerifyTokenRejectsCrossTypeUse(t *testing.T) {
	user := activeUser()
	svc := services.NewJWTService(testConfig(), newFakeBlacklistRepo(), newFakeUserRepo(user))

	// A genuine token of the wrong type is verified with its own declared
	// type's secret, so the failure is a type mismatch, not a bad signature.
	refresh, _, err := svc.GenerateToken(user.ID, models.TokenTypeRefresh)
	require.NoError(t, err)

	_, _, err = svc.VerifyToken(context.Background(), refresh, models.TokenTypeAccess)
	require.ErrorIs(t, err, utils.ErrWrongTokenType)

	access, _, err := svc.GenerateToken(user.ID, models.TokenTypeAccess)
	require.NoError(t, err)

	_, _, err = svc.VerifyToken(context.Background(), access, models.TokenTypeRefresh)
	require.ErrorIs(t, err, utils.ErrWrongTokenType)
}

func TestVerifyTokenRejectsMismatchedTypeClaim(t *testing.T) {
	user := activeUser()
	cfg := testConfig()
	svc := services.NewJWTService(cfg, newFakeBlacklistRepo(), newFakeUserRepo(user))

	// Signed with the access secret but declaring a refresh type: the
	// declared type selects the refresh secret, so the signature fails.
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
		"type": models.TokenTypeRefresh,
		"jti":  uuid.NewString(),
	}).SignedString(cfg.AccessSecret)
	require.NoError(t, err)

	_, _, vErr := svc.VerifyToken(context.Background(), forged, models.TokenTypeAccess)
	require.ErrorIs(t, vErr, utils.ErrInvalidSignature)
}

func TestVerifyTokenRejectsUnknownTypeClaim(t *testing.T) {
	user := activeUser()
	cfg := testConfig()
	svc := services.NewJWTService(cfg, newFakeBlacklistRepo(), newFakeUserRepo(user))

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
		"type": "session",
		"jti":  uuid.NewString(),
	}).SignedString(cfg.AccessSecret)
	require.NoError(t, err)

	_, _, vErr := svc.VerifyToken(context.Background(), forged, models.TokenTypeAccess)
	require.ErrorIs(t, vErr, utils.ErrMalformedToken)
}

func TestVerifyTokenChecksBlacklistBeforeSignature(t *testing.T) {
	user := activeUser()
	blacklist := newFakeBlacklistRepo()
	svc := services.NewJWTService(testConfig(), blacklist, newFakeUserRepo(user))

	token, claims, err := svc.GenerateToken(user.ID, models.TokenTypeAccess)
	require.NoError(t, err)

	_, err = blacklist.Revoke(context.Background(), &models.BlacklistedToken{
		TokenID:   claims.TokenID,
		UserID:    user.ID,
		TokenType: models.TokenTypeAccess,
		ExpiresAt: claims.ExpiresAt,
		Reason:    models.RevocationReasonSecurity,
	})
	require.NoError(t, err)

	// Even with a tampered signature the verdict is "revoked", because the
	// blacklist is consulted before the signature is checked.
	_, _, vErr := svc.VerifyToken(context.Background(), token+"tampered", models.TokenTypeAccess)
	require.ErrorIs(t, vErr, utils.ErrTokenRevoked)
}

func TestVerifyTokenDeniesOnBlacklistError(t *testing.T) {
	user := activeUser()
	blacklist := newFakeBlacklistRepo()
	svc := services.NewJWTService(testConfig(), blacklist, newFakeUserRepo(user))

	token, _, err := svc.GenerateToken(user.ID, models.TokenTypeAccess)
	require.NoError(t, err)

	blacklist.err = errStore
	_, _, vErr := svc.VerifyToken(context.Background(), token, models.TokenTypeAccess)
	require.Error(t, vErr)
	require.NotErrorIs(t, vErr, utils.ErrTokenRevoked)
}

func TestVerifyTokenRejectsDisabledUser(t *testing.T) {
	user := activeUser()
	user.Active = false
	svc := services.NewJWTService(testConfig(), newFakeBlacklistRepo(), newFakeUserRepo(user))

	token, _, err := svc.GenerateToken(user.ID, models.TokenTypeAccess)
	require.NoError(t, err)

	_, _, vErr := svc.VerifyToken(context.Background(), token, models.TokenTypeAccess)
	require.ErrorIs(t, vErr, utils.ErrAccountDisabled)
}

func TestVerifyTokenRejectsUnknownUser(t *testing.T) {
	user := activeUser()
	svc := services.NewJWTService(testConfig(), newFakeBlacklistRepo(), newFakeUserRepo())

	token, _, err := svc.GenerateToken(user.ID, models.TokenTypeAccess)
	require.NoError(t, err)

	_, _, vErr := svc.VerifyToken(context.Background(), token, models.TokenTypeAccess)
	require.ErrorIs(t, vErr, utils.ErrUserNotFound)
}
