package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/DENNISVILL/makipartner/internal/models"
)

type UserRepository interface {
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	RecordLogin(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

const baseSelectUser = `
	SELECT u.id, u.name, u.login, u.email, u.password_hash,
	       u.company_id, c.name, u.timezone, u.language,
	       u.active, u.last_login_at, u.created_at
	FROM users u
	JOIN companies c ON c.id = u.company_id
`

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	row := r.db.QueryRow(ctx, baseSelectUser+` WHERE u.login = $1`, login)
	return scanUser(row)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := r.db.QueryRow(ctx, baseSelectUser+` WHERE u.id = $1`, id)
	return scanUser(row)
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	query := `UPDATE users SET password_hash = $2 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, hash)
	return err
}

func (r *userRepository) RecordLogin(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET last_login_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Login,
		&u.Email,
		&u.PasswordHash,
		&u.CompanyID,
		&u.CompanyName,
		&u.Timezone,
		&u.Language,
		&u.Active,
		&u.LastLoginAt,
		&u.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
