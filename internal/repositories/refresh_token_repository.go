package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/DENNISVILL/makipartner/internal/models"
)

// RefreshTokenRepository tracks refresh token JTIs handed out per user.
type RefreshTokenRepository interface {
	Record(ctx context.Context, token *models.IssuedRefreshToken) error
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*models.IssuedRefreshToken, error)
	RemoveExpired(ctx context.Context) error
}

type refreshTokenRepository struct {
	db DB
}

func NewRefreshTokenRepository(db DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Record(ctx context.Context, token *models.IssuedRefreshToken) error {
	query := `
        INSERT INTO issued_refresh_tokens (id, token_id, user_id, expires_at, created_at)
        VALUES ($1, $2, $3, $4, NOW())
    `
	_, err := r.db.Exec(ctx, query,
		token.ID,
		token.TokenID,
		token.UserID,
		token.ExpiresAt,
	)
	return err
}

func (r *refreshTokenRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*models.IssuedRefreshToken, error) {
	query := `
        SELECT id, token_id, user_id, expires_at, created_at
        FROM issued_refresh_tokens
        WHERE user_id = $1 AND expires_at > NOW()
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []*models.IssuedRefreshToken
	for rows.Next() {
		var rt models.IssuedRefreshToken
		if err := rows.Scan(&rt.ID, &rt.TokenID, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, &rt)
	}
	return tokens, rows.Err()
}

func (r *refreshTokenRepository) RemoveExpired(ctx context.Context) error {
	query := `DELETE FROM issued_refresh_tokens WHERE expires_at < NOW()`
	_, err := r.db.Exec(ctx, query)
	return err
}
