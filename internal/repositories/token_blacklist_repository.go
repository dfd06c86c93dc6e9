package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/DENNISVILL/makipartner/internal/models"
)

type TokenBlacklistRepository interface {
	// Revoke blacklists a token by its JTI. Revoking an already-blacklisted
	// JTI is a no-op that returns the existing record.
	Revoke(ctx context.Context, entry *models.BlacklistedToken) (*models.BlacklistedToken, error)
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// SweepExpired deletes entries whose underlying token has expired and
	// returns how many rows were removed. Safe to run concurrently.
	SweepExpired(ctx context.Context) (int64, error)
}

type tokenBlacklistRepository struct {
	db DB
}

func NewTokenBlacklistRepository(db DB) TokenBlacklistRepository {
	return &tokenBlacklistRepository{db: db}
}

func (r *tokenBlacklistRepository) Revoke(ctx context.Context, entry *models.BlacklistedToken) (*models.BlacklistedToken, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	insert := `
        INSERT INTO blacklisted_tokens (id, token_id, user_id, token_type, expires_at, revoked_at, revoked_by, reason)
        VALUES ($1, $2, $3, $4, $5, NOW(), $6, $7)
        ON CONFLICT (token_id) DO NOTHING
        RETURNING id, token_id, user_id, token_type, expires_at, revoked_at, revoked_by, reason
    `
	row := r.db.QueryRow(ctx, insert,
		entry.ID,
		entry.TokenID,
		entry.UserID,
		entry.TokenType,
		entry.ExpiresAt,
		entry.RevokedBy,
		entry.Reason,
	)

	created, err := scanBlacklistedToken(row)
	if err != nil {
		return nil, err
	}
	if created != nil {
		return created, nil
	}

	// Conflict path: another caller already blacklisted this JTI.
	existing := `
        SELECT id, token_id, user_id, token_type, expires_at, revoked_at, revoked_by, reason
        FROM blacklisted_tokens
        WHERE token_id = $1
    `
	return scanBlacklistedToken(r.db.QueryRow(ctx, existing, entry.TokenID))
}

func (r *tokenBlacklistRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM blacklisted_tokens
            WHERE token_id = $1 AND expires_at > NOW()
        )
    `
	var exists bool
	err := r.db.QueryRow(ctx, query, tokenID).Scan(&exists)
	return exists, err
}

func (r *tokenBlacklistRepository) SweepExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM blacklisted_tokens WHERE expires_at < NOW()`
	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanBlacklistedToken(row pgx.Row) (*models.BlacklistedToken, error) {
	var bt models.BlacklistedToken
	err := row.Scan(
		&bt.ID,
		&bt.TokenID,
		&bt.UserID,
		&bt.TokenType,
		&bt.ExpiresAt,
		&bt.RevokedAt,
		&bt.RevokedBy,
		&bt.Reason,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &bt, nil
}
