package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgconn"

	"github.com/DENNISVILL/makipartner/internal/repositories"
	"github.com/DENNISVILL/makipartner/internal/utils"
)

// Retry policy: one retry on transient network errors (EOF,
// closed-connection) with a small back-off.
const cleanupRetryDelay = 3 * time.Second

// TokenCleanupService removes expired blacklist entries and refresh token
// records each night.
type TokenCleanupService interface {
	CleanupDaily(ctx context.Context) error
}

type tokenCleanupService struct {
	blacklistRepo    repositories.TokenBlacklistRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

func NewTokenCleanupService(
	blacklistRepo repositories.TokenBlacklistRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
) TokenCleanupService {
	return &tokenCleanupService{
		blacklistRepo:    blacklistRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// runWithRetry executes op(ctx) and, if it returns a transient network
// error (EOF, pgconn safe-to-retry, or the common closed-connection
// message), waits a moment then retries once.
func runWithRetry(ctx context.Context, op func(context.Context) error) error {
	if err := op(ctx); err != nil {
		if errors.Is(err, io.EOF) || pgconn.SafeToRetry(err) ||
			strings.Contains(err.Error(), "connection was closed") {
			utils.Logger.WithError(err).Warn("cleanup hit transient DB error; retrying once")
			time.Sleep(cleanupRetryDelay)
			return op(ctx)
		}
		return err
	}
	return nil
}

func (s *tokenCleanupService) CleanupDaily(ctx context.Context) error {
	logger := utils.Logger

	var removed int64
	if err := runWithRetry(ctx, func(ctx context.Context) error {
		var err error
		removed, err = s.blacklistRepo.SweepExpired(ctx)
		return err
	}); err != nil {
		logger.WithError(err).Error("Failed to sweep expired blacklisted_tokens")
		return err
	}

	if err := runWithRetry(ctx, s.refreshTokenRepo.RemoveExpired); err != nil {
		logger.WithError(err).Error("Failed to cleanup expired issued_refresh_tokens")
		return err
	}

	logger.Infof("Daily token cleanup completed; %d blacklist entries removed.", removed)
	return nil
}
