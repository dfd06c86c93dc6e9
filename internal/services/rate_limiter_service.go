package services

import (
	"context"
	"fmt"
	"time"

	"github.com/DENNISVILL/makipartner/internal/config"
	"github.com/DENNISVILL/makipartner/internal/repositories"
	"github.com/DENNISVILL/makipartner/internal/utils"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed bool
	Current int
	Limit   int
	Window  time.Duration
}

// RateLimiterService admits or denies requests per caller key and scope.
type RateLimiterService interface {
	// Admit records a hit for the caller under the given scope and decides
	// whether the request may proceed. The cache fast path is tried first;
	// on a cache error the durable counter is used for this call only.
	Admit(ctx context.Context, scope, callerKey string) (Decision, error)
	// Rule returns the configured budget for a scope.
	Rule(scope string) config.RateLimitRule
}

type rateLimiterService struct {
	cache repositories.RateLimitCache // nil when Redis is not configured
	repo  repositories.RateLimitRepository
	rules map[string]config.RateLimitRule
}

func NewRateLimiterService(
	cache repositories.RateLimitCache,
	repo repositories.RateLimitRepository,
	cfg *config.Config,
) RateLimiterService {
	return &rateLimiterService{
		cache: cache,
		repo:  repo,
		rules: cfg.RateLimits,
	}
}

func (s *rateLimiterService) Rule(scope string) config.RateLimitRule {
	if rule, ok := s.rules[scope]; ok {
		return rule
	}
	// Unknown scope falls back to the most restrictive configured budget.
	return config.RateLimitRule{Limit: 5, Window: 5 * time.Minute}
}

func (s *rateLimiterService) Admit(ctx context.Context, scope, callerKey string) (Decision, error) {
	rule := s.Rule(scope)
	key := fmt.Sprintf("%s:%s", scope, callerKey)

	current, err := s.hit(ctx, key, rule.Window)
	if err != nil {
		// No count could be obtained on either path. Never default-allow.
		return Decision{Limit: rule.Limit, Window: rule.Window}, err
	}

	decision := Decision{
		Allowed: current <= rule.Limit,
		Current: current,
		Limit:   rule.Limit,
		Window:  rule.Window,
	}
	if !decision.Allowed {
		utils.Logger.Warnf("Rate limit exceeded (key: %s, count: %d, limit: %d)", key, current, rule.Limit)
	}
	return decision, nil
}

func (s *rateLimiterService) hit(ctx context.Context, key string, window time.Duration) (int, error) {
	if s.cache != nil {
		current, err := s.cache.Hit(ctx, key, window)
		if err == nil {
			return current, nil
		}
		utils.Logger.WithError(err).Warnf("Rate limit cache unavailable; falling back to database (key: %s)", key)
	}
	return s.repo.Hit(ctx, key, window)
}
