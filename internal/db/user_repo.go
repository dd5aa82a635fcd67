package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"aitendule/internal/types"
)

// UserRepository provides data access for the users table.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository backed by the given
// database connection (pool or transaction).
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by its numeric identifier.
func (r *UserRepository) GetByID(ctx context.Context, userID int) (*types.User, error) {
	var u types.User
	err := r.db.QueryRow(ctx,
		`SELECT user_id, email, password_hash, created_at FROM users WHERE user_id = $1`,
		userID,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve user by id", err)
	}
	return &u, nil
}

// GetByEmail retrieves a user by email for credential verification.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	var u types.User
	err := r.db.QueryRow(ctx,
		`SELECT user_id, email, password_hash, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve user by email", err)
	}
	return &u, nil
}
