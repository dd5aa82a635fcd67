package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"aitendule/internal/types"
)

// LocationRepository provides data access for per-user location records.
type LocationRepository struct {
	db DBTX
}

func NewLocationRepository(db DBTX) *LocationRepository {
	return &LocationRepository{db: db}
}

// Insert stores a new location observation for the user.
func (r *LocationRepository) Insert(ctx context.Context, loc *types.UserLocation) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_locations (user_id, latitude, longitude) VALUES ($1, $2, $3)`,
		loc.UserID, loc.Latitude, loc.Longitude,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert user location", err)
	}
	return nil
}

// LatestForUser returns the most recently recorded location for the user.
func (r *LocationRepository) LatestForUser(ctx context.Context, userID int) (*types.UserLocation, error) {
	var loc types.UserLocation
	err := r.db.QueryRow(ctx,
		`SELECT user_id, latitude, longitude, created_at
		 FROM user_locations
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID,
	).Scan(&loc.UserID, &loc.Latitude, &loc.Longitude, &loc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundLocation, "no location recorded for user", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve latest location", err)
	}
	return &loc, nil
}
