package services_test

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/DENNISVILL/makipartner/internal/config"
	"github.com/DENNISVILL/makipartner/internal/models"
)

// In-memory fakes for the repository interfaces. They are not safe for
// concurrent use; the tests drive them from a single goroutine.

var errStore = errors.New("store unavailable")

type fakeUserRepo struct {
	users      map[uuid.UUID]*models.User
	loginCount int
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	for _, u := range f.users {
		if u.Login == login {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUserRepo) RecordLogin(ctx context.Context, id uuid.UUID) error {
	f.loginCount++
	now := time.Now()
	if u, ok := f.users[id]; ok {
		u.LastLoginAt = &now
	}
	return nil
}

type fakeBlacklistRepo struct {
	entries map[string]*models.BlacklistedToken
	err     error // when set, every call fails
}

func newFakeBlacklistRepo() *fakeBlacklistRepo {
	return &fakeBlacklistRepo{entries: make(map[string]*models.BlacklistedToken)}
}

func (f *fakeBlacklistRepo) Revoke(ctx context.Context, entry *models.BlacklistedToken) (*models.BlacklistedToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	if existing, ok := f.entries[entry.TokenID]; ok {
		return existing, nil
	}
	stored := *entry
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.RevokedAt = time.Now()
	f.entries[entry.TokenID] = &stored
	return &stored, nil
}

func (f *fakeBlacklistRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	entry, ok := f.entries[tokenID]
	return ok && entry.ExpiresAt.After(time.Now()), nil
}

func (f *fakeBlacklistRepo) SweepExpired(ctx context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var removed int64
	for jti, entry := range f.entries {
		if entry.IsExpired() {
			delete(f.entries, jti)
			removed++
		}
	}
	return removed, nil
}

type fakeRefreshTokenRepo struct {
	tokens []*models.IssuedRefreshToken
}

func (f *fakeRefreshTokenRepo) Record(ctx context.Context, token *models.IssuedRefreshToken) error {
	stored := *token
	f.tokens = append(f.tokens, &stored)
	return nil
}

func (f *fakeRefreshTokenRepo) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*models.IssuedRefreshToken, error) {
	var active []*models.IssuedRefreshToken
	for _, rt := range f.tokens {
		if rt.UserID == userID && !rt.IsExpired() {
			active = append(active, rt)
		}
	}
	return active, nil
}

func (f *fakeRefreshTokenRepo) RemoveExpired(ctx context.Context) error {
	kept := f.tokens[:0]
	for _, rt := range f.tokens {
		if !rt.IsExpired() {
			kept = append(kept, rt)
		}
	}
	f.tokens = kept
	return nil
}

type rateCounter struct {
	hits        int
	windowStart time.Time
}

type fakeRateLimitRepo struct {
	counters map[string]*rateCounter
	err      error
}

func newFakeRateLimitRepo() *fakeRateLimitRepo {
	return &fakeRateLimitRepo{counters: make(map[string]*rateCounter)}
}

func (f *fakeRateLimitRepo) Hit(ctx context.Context, key string, window time.Duration) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	c, ok := f.counters[key]
	if !ok || time.Since(c.windowStart) > window {
		f.counters[key] = &rateCounter{hits: 1, windowStart: time.Now()}
		return 1, nil
	}
	c.hits++
	return c.hits, nil
}

func (f *fakeRateLimitRepo) CleanupExpired(ctx context.Context) error {
	if f.err != nil {
		return f.err
	}
	for key, c := range f.counters {
		if time.Since(c.windowStart) > 24*time.Hour {
			delete(f.counters, key)
		}
	}
	return nil
}

type fakeRateLimitCache struct {
	repo *fakeRateLimitRepo
	err  error
	hits int
}

func (f *fakeRateLimitCache) Hit(ctx context.Context, key string, window time.Duration) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.hits++
	return f.repo.Hit(ctx, key, window)
}

func testConfig() *config.Config {
	return &config.Config{
		AppName:          "gateway-test",
		AccessSecret:     []byte("test-access-secret"),
		RefreshSecret:    []byte("test-refresh-secret"),
		AccessTokenTTL:   time.Hour,
		RefreshTokenTTL:  7 * 24 * time.Hour,
		SweepProbability: 0, // deterministic tests
		RateLimits: map[string]config.RateLimitRule{
			config.ScopeAuth: {Limit: 10, Window: time.Hour},
			config.ScopeMe:   {Limit: 3, Window: time.Hour},
		},
	}
}
