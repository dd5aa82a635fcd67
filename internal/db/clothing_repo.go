package db

import (
	"context"

	"aitendule/internal/types"
)

// ClothingRepository provides data access for clothing items and the
// user choice log the training pipeline consumes.
type ClothingRepository struct {
	db DBTX
}

func NewClothingRepository(db DBTX) *ClothingRepository {
	return &ClothingRepository{db: db}
}

// ListItems returns every known clothing item ordered by category then name.
func (r *ClothingRepository) ListItems(ctx context.Context) ([]types.ClothingItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT clothing_id, name, category FROM clothing_items ORDER BY category, name`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list clothing items", err)
	}
	defer rows.Close()

	var items []types.ClothingItem
	for rows.Next() {
		var it types.ClothingItem
		if err := rows.Scan(&it.ClothingID, &it.Name, &it.Category); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan clothing item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate clothing items", err)
	}
	return items, nil
}

// SaveChoices records a set of chosen items together with the weather
// context at the time of choice. Items are upserted by (name, category)
// so repeated choices of the same garment share a clothing_id. Run this
// inside WithTx so the choice set is recorded atomically.
func (r *ClothingRepository) SaveChoices(ctx context.Context, tx DBTX, rec *types.ChoiceRecord) error {
	for _, item := range rec.Items {
		var clothingID int
		err := tx.QueryRow(ctx,
			`INSERT INTO clothing_items (name, category) VALUES ($1, $2)
			 ON CONFLICT (name, category) DO UPDATE SET name = EXCLUDED.name
			 RETURNING clothing_id`,
			item.ItemName, string(item.Category),
		).Scan(&clothingID)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalDB, "failed to upsert clothing item", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO user_clothing_choices (user_id, clothing_id, weather, temperature, is_recommended, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			rec.UserID, clothingID, rec.WeatherCondition, rec.TemperatureC, rec.IsRecommended, rec.ChosenAt,
		)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalDB, "failed to insert clothing choice", err)
		}
	}
	return nil
}

// ListHistory returns every recorded choice joined with its item,
// oldest first. This is the training dataset.
func (r *ClothingRepository) ListHistory(ctx context.Context) ([]types.HistoricalChoice, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.user_id, i.name, i.category, c.created_at, c.weather, c.temperature
		 FROM user_clothing_choices c
		 JOIN clothing_items i ON i.clothing_id = c.clothing_id
		 ORDER BY c.created_at`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list choice history", err)
	}
	defer rows.Close()

	var history []types.HistoricalChoice
	for rows.Next() {
		var h types.HistoricalChoice
		if err := rows.Scan(&h.UserID, &h.ItemName, &h.Category, &h.ChosenAt, &h.WeatherCondition, &h.TemperatureC); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan choice history row", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate choice history", err)
	}
	return history, nil
}
