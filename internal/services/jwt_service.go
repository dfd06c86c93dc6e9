package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/DENNISVILL/makipartner/internal/config"
	"github.com/DENNISVILL/makipartner/internal/models"
	"github.com/DENNISVILL/makipartner/internal/repositories"
	"github.com/DENNISVILL/makipartner/internal/utils"
)

// Claims is the verified content of an accepted token.
type Claims struct {
	UserID    uuid.UUID
	TokenID   string // jti
	TokenType string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ---------------------------------------------------------------------
// JWTService interface
// ---------------------------------------------------------------------

type JWTService interface {
	// GenerateToken issues an HS256 token of the given type for the user.
	// Each type is signed with its own secret.
	GenerateToken(userID uuid.UUID, tokenType string) (token string, claims *Claims, err error)

	// VerifyToken validates a presented token and returns its claims.
	// Checks run in a fixed order: decode, blacklist, signature + expiry,
	// type, then subject. Revocation is checked before the signature so a
	// revoked token is reported as revoked even if tampered with.
	VerifyToken(ctx context.Context, tokenString, expectedType string) (*Claims, *models.User, error)

	// DecodeUnverified extracts claims without any signature or expiry
	// validation. Used by logout, which accepts expired tokens.
	DecodeUnverified(tokenString string) (*Claims, error)
}

// ---------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------

type jwtService struct {
	accessSecret    []byte
	refreshSecret   []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	blacklistRepo   repositories.TokenBlacklistRepository
	userRepo        repositories.UserRepository
}

func NewJWTService(
	cfg *config.Config,
	blacklistRepo repositories.TokenBlacklistRepository,
	userRepo repositories.UserRepository,
) JWTService {
	return &jwtService{
		accessSecret:    cfg.AccessSecret,
		refreshSecret:   cfg.RefreshSecret,
		accessTokenTTL:  cfg.AccessTokenTTL,
		refreshTokenTTL: cfg.RefreshTokenTTL,
		blacklistRepo:   blacklistRepo,
		userRepo:        userRepo,
	}
}

func (j *jwtService) secretFor(tokenType string) ([]byte, time.Duration, error) {
	switch tokenType {
	case models.TokenTypeAccess:
		return j.accessSecret, j.accessTokenTTL, nil
	case models.TokenTypeRefresh:
		return j.refreshSecret, j.refreshTokenTTL, nil
	default:
		return nil, 0, fmt.Errorf("unknown token type %q", tokenType)
	}
}

// ---------------------------------------------------------------------
// GenerateToken
// ---------------------------------------------------------------------

func (j *jwtService) GenerateToken(userID uuid.UUID, tokenType string) (string, *Claims, error) {
	secret, ttl, err := j.secretFor(tokenType)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	tokenID := uuid.NewString()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
		"type": tokenType,
		"jti":  tokenID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", nil, err
	}

	return signed, &Claims{
		UserID:    userID,
		TokenID:   tokenID,
		TokenType: tokenType,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// ---------------------------------------------------------------------
// VerifyToken
// ---------------------------------------------------------------------

func (j *jwtService) VerifyToken(ctx context.Context, tokenString, expectedType string) (*Claims, *models.User, error) {
	if _, _, err := j.secretFor(expectedType); err != nil {
		return nil, nil, err
	}

	// 1. Unverified decode to get the jti and the declared type.
	unverified, err := j.DecodeUnverified(tokenString)
	if err != nil {
		return nil, nil, utils.ErrMalformedToken
	}

	// The declared type picks the secret, so a genuine token of the wrong
	// type survives signature verification and is reported as a type
	// mismatch rather than a bad signature.
	secret, _, err := j.secretFor(unverified.TokenType)
	if err != nil {
		return nil, nil, utils.ErrMalformedToken
	}

	// 2. Blacklist, before signature verification. A store failure denies.
	revoked, err := j.blacklistRepo.IsRevoked(ctx, unverified.TokenID)
	if err != nil {
		return nil, nil, fmt.Errorf("blacklist lookup: %w", err)
	}
	if revoked {
		return nil, nil, utils.ErrTokenRevoked
	}

	// 3. Signature and expiry with the declared type's secret.
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, nil, utils.ErrTokenExpired
		}
		return nil, nil, utils.ErrInvalidSignature
	}

	claims, err := claimsFromToken(parsed)
	if err != nil {
		return nil, nil, utils.ErrMalformedToken
	}

	// 4. Declared type must match what the caller expects.
	if claims.TokenType != expectedType {
		return nil, nil, utils.ErrWrongTokenType
	}

	// 5. Subject must still exist and be active.
	user, err := j.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("user lookup: %w", err)
	}
	if user == nil {
		return nil, nil, utils.ErrUserNotFound
	}
	if !user.Active {
		return nil, nil, utils.ErrAccountDisabled
	}

	return claims, user, nil
}

// ---------------------------------------------------------------------
// DecodeUnverified
// ---------------------------------------------------------------------

func (j *jwtService) DecodeUnverified(tokenString string) (*Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, utils.ErrMalformedToken
	}
	claims, err := claimsFromToken(parsed)
	if err != nil {
		return nil, utils.ErrMalformedToken
	}
	return claims, nil
}

func claimsFromToken(token *jwt.Token) (*Claims, error) {
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}

	sub, _ := mapClaims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid sub claim: %w", err)
	}

	jti, _ := mapClaims["jti"].(string)
	if jti == "" {
		return nil, errors.New("missing jti claim")
	}

	tokenType, _ := mapClaims["type"].(string)

	c := &Claims{
		UserID:    userID,
		TokenID:   jti,
		TokenType: tokenType,
	}
	if iat, ok := mapClaims["iat"].(float64); ok {
		c.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := mapClaims["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return c, nil
}
