package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
)

// RateLimitRepository is the durable fallback counter store.
type RateLimitRepository interface {
	// Hit atomically increments the counter for key, resetting it when the
	// window has lapsed, and returns the count inside the current window.
	Hit(ctx context.Context, key string, window time.Duration) (int, error)
	// CleanupExpired removes all counter rows whose window has lapsed.
	CleanupExpired(ctx context.Context) error
}

type rateLimitRepository struct {
	db DB
}

func NewRateLimitRepository(db DB) RateLimitRepository {
	return &rateLimitRepository{db: db}
}

func (r *rateLimitRepository) Hit(ctx context.Context, key string, window time.Duration) (int, error) {
	query := `
        INSERT INTO rate_limit_counters (key, hits, window_start)
        VALUES ($1, 1, NOW())
        ON CONFLICT (key) DO UPDATE
        SET hits = CASE
            WHEN rate_limit_counters.window_start < NOW() - $2::interval THEN 1
            ELSE rate_limit_counters.hits + 1
        END,
        window_start = CASE
            WHEN rate_limit_counters.window_start < NOW() - $2::interval THEN NOW()
            ELSE rate_limit_counters.window_start
        END
        RETURNING hits;
    `

	var hits int
	err := r.db.QueryRow(ctx, query, key, window).Scan(&hits)
	if err != nil && err != pgx.ErrNoRows {
		return 0, err
	}
	return hits, nil
}

func (r *rateLimitRepository) CleanupExpired(ctx context.Context) error {
	// A generous grace period: a row is garbage once no active window of
	// any configured size could still include it.
	query := `DELETE FROM rate_limit_counters WHERE window_start < NOW() - INTERVAL '24 hours'`
	_, err := r.db.Exec(ctx, query)
	return err
}
