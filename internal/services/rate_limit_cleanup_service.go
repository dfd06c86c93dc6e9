package services

import (
	"context"

	"github.com/DENNISVILL/makipartner/internal/repositories"
	"github.com/DENNISVILL/makipartner/internal/utils"
)

// RateLimitCleanupService removes lapsed rate limit counter rows from the database.
type RateLimitCleanupService interface {
	CleanupDaily(ctx context.Context) error
}

type rateLimitCleanupService struct {
	repo repositories.RateLimitRepository
}

func NewRateLimitCleanupService(repo repositories.RateLimitRepository) RateLimitCleanupService {
	return &rateLimitCleanupService{repo: repo}
}

// CleanupDaily removes lapsed rate limit counters and logs any errors.
func (s *rateLimitCleanupService) CleanupDaily(ctx context.Context) error {
	logger := utils.Logger

	if err := runWithRetry(ctx, s.repo.CleanupExpired); err != nil {
		logger.WithError(err).Error("Failed to cleanup expired rate_limit_counters")
		return err
	}

	logger.Info("Daily rate limit counter cleanup completed successfully.")
	return nil
}
