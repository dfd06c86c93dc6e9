package services

import (
	"context"
	"math/rand"

	"github.com/google/uuid"

	"github.com/DENNISVILL/makipartner/internal/config"
	"github.com/DENNISVILL/makipartner/internal/models"
	"github.com/DENNISVILL/makipartner/internal/repositories"
	"github.com/DENNISVILL/makipartner/internal/utils"
)

const minPasswordLength = 8

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // access token lifetime in seconds
}

// ---------------------------------------------------------------------
// AuthService interface
// ---------------------------------------------------------------------

type AuthService interface {
	Login(ctx context.Context, login, password string) (*TokenPair, *models.User, error)

	// Refresh issues a new access token against a valid refresh token.
	// The refresh token itself is not rotated.
	Refresh(ctx context.Context, refreshToken string) (accessToken string, expiresIn int64, err error)

	// Logout revokes the presented token by jti. The token is decoded
	// without signature verification so expired tokens can still be
	// invalidated. Returns true when the token was already revoked.
	Logout(ctx context.Context, tokenString string) (alreadyRevoked bool, err error)

	Me(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// ChangePassword verifies the current password, updates the hash, and
	// revokes every outstanding refresh token of the user.
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
}

// ---------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------

type authService struct {
	jwtService       JWTService
	userRepo         repositories.UserRepository
	blacklistRepo    repositories.TokenBlacklistRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	sweepProbability float64
}

func NewAuthService(
	jwtService JWTService,
	userRepo repositories.UserRepository,
	blacklistRepo repositories.TokenBlacklistRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
) AuthService {
	return &authService{
		jwtService:       jwtService,
		userRepo:         userRepo,
		blacklistRepo:    blacklistRepo,
		refreshTokenRepo: refreshTokenRepo,
		sweepProbability: cfg.SweepProbability,
	}
}

// ---------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------

func (s *authService) Login(ctx context.Context, login, password string) (*TokenPair, *models.User, error) {
	user, err := s.userRepo.GetByLogin(ctx, login)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, utils.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, nil, utils.ErrAccountDisabled
	}

	accessToken, accessClaims, err := s.jwtService.GenerateToken(user.ID, models.TokenTypeAccess)
	if err != nil {
		return nil, nil, err
	}
	refreshToken, refreshClaims, err := s.jwtService.GenerateToken(user.ID, models.TokenTypeRefresh)
	if err != nil {
		return nil, nil, err
	}

	if err := s.refreshTokenRepo.Record(ctx, &models.IssuedRefreshToken{
		ID:        uuid.New(),
		TokenID:   refreshClaims.TokenID,
		UserID:    user.ID,
		ExpiresAt: refreshClaims.ExpiresAt,
	}); err != nil {
		return nil, nil, err
	}

	if err := s.userRepo.RecordLogin(ctx, user.ID); err != nil {
		// Login still succeeds; the timestamp is advisory.
		utils.Logger.WithError(err).Warnf("Failed to record last login for user %s", user.ID)
	}

	utils.Logger.Infof("User %s logged in", user.Login)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(accessClaims.ExpiresAt.Sub(accessClaims.IssuedAt).Seconds()),
	}, user, nil
}

// ---------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, _, err := s.jwtService.VerifyToken(ctx, refreshToken, models.TokenTypeRefresh)
	if err != nil {
		return "", 0, err
	}

	accessToken, accessClaims, err := s.jwtService.GenerateToken(claims.UserID, models.TokenTypeAccess)
	if err != nil {
		return "", 0, err
	}
	return accessToken, int64(accessClaims.ExpiresAt.Sub(accessClaims.IssuedAt).Seconds()), nil
}

// ---------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------

func (s *authService) Logout(ctx context.Context, tokenString string) (bool, error) {
	claims, err := s.jwtService.DecodeUnverified(tokenString)
	if err != nil {
		return false, utils.ErrMalformedToken
	}

	revoked, err := s.blacklistRepo.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return false, err
	}
	if revoked {
		return true, nil
	}

	if _, err := s.blacklistRepo.Revoke(ctx, &models.BlacklistedToken{
		TokenID:   claims.TokenID,
		UserID:    claims.UserID,
		TokenType: claims.TokenType,
		ExpiresAt: claims.ExpiresAt,
		RevokedBy: claims.UserID.String(),
		Reason:    models.RevocationReasonLogout,
	}); err != nil {
		return false, err
	}

	s.maybeSweep(ctx)
	return false, nil
}

// maybeSweep opportunistically removes expired blacklist entries so the
// table stays small without waiting for the nightly job.
func (s *authService) maybeSweep(ctx context.Context) {
	if rand.Float64() >= s.sweepProbability {
		return
	}
	removed, err := s.blacklistRepo.SweepExpired(ctx)
	if err != nil {
		utils.Logger.WithError(err).Warn("Opportunistic blacklist sweep failed")
		return
	}
	if removed > 0 {
		utils.Logger.Infof("Opportunistic blacklist sweep removed %d expired entries", removed)
	}
}

// ---------------------------------------------------------------------
// Me
// ---------------------------------------------------------------------

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.ErrUserNotFound
	}
	return user, nil
}

// ---------------------------------------------------------------------
// ChangePassword
// ---------------------------------------------------------------------

func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return utils.ErrUserNotFound
	}
	if !utils.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return utils.ErrInvalidCurrentPassword
	}
	if len(newPassword) < minPasswordLength {
		return utils.ErrPasswordTooShort
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	// Every refresh token issued before the change stops working.
	outstanding, err := s.refreshTokenRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, rt := range outstanding {
		if _, err := s.blacklistRepo.Revoke(ctx, &models.BlacklistedToken{
			TokenID:   rt.TokenID,
			UserID:    userID,
			TokenType: models.TokenTypeRefresh,
			ExpiresAt: rt.ExpiresAt,
			RevokedBy: userID.String(),
			Reason:    models.RevocationReasonPasswordChange,
		}); err != nil {
			return err
		}
	}

	utils.Logger.Infof("User %s changed password; %d refresh tokens revoked", user.Login, len(outstanding))
	return nil
}
