package db

import (
	"context"

	"aitendule/internal/types"
)

// CityRepository provides data access for a user's saved city list.
type CityRepository struct {
	db DBTX
}

func NewCityRepository(db DBTX) *CityRepository {
	return &CityRepository{db: db}
}

// ListForUser returns the user's saved cities ordered by display order.
func (r *CityRepository) ListForUser(ctx context.Context, userID int) ([]types.City, error) {
	rows, err := r.db.Query(ctx,
		`SELECT city_id, city_name, display_order, is_favorite
		 FROM user_cities
		 WHERE user_id = $1
		 ORDER BY display_order, city_id`,
		userID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list cities", err)
	}
	defer rows.Close()

	var cities []types.City
	for rows.Next() {
		var c types.City
		if err := rows.Scan(&c.CityID, &c.CityName, &c.DisplayOrder, &c.IsFavorite); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan city row", err)
		}
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate city rows", err)
	}
	return cities, nil
}

// Add saves a city for the user at the end of the display order.
// Adding a city the user already has is a conflict.
func (r *CityRepository) Add(ctx context.Context, userID int, cityName string) error {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO user_cities (user_id, city_name, display_order)
		 SELECT $1, $2, COALESCE(MAX(display_order), 0) + 1
		 FROM user_cities WHERE user_id = $1
		 ON CONFLICT (user_id, city_name) DO NOTHING`,
		userID, cityName,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to add city", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeConflictCity, "city already saved", nil)
	}
	return nil
}

// DeleteByName removes a saved city by name.
func (r *CityRepository) DeleteByName(ctx context.Context, userID int, cityName string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM user_cities WHERE user_id = $1 AND city_name = $2`,
		userID, cityName,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete city", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundCity, "city not found", nil)
	}
	return nil
}
