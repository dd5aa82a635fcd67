package types

import "time"

// User is an account row. PasswordHash is a bcrypt hash and is never
// serialized.
type User struct {
	ID           int       `json:"user_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ClothingItem is one catalog entry. Items are unique by (name, category).
type ClothingItem struct {
	ClothingID int      `json:"clothing_id"`
	Name       string   `json:"name"`
	Category   Category `json:"category"`
}

// ChosenItem is a single per-category selection inside a choice submission.
type ChosenItem struct {
	Category Category `json:"category" validate:"required"`
	ItemName string   `json:"item_name" validate:"required"`
}

// ChoiceRecord captures one submitted outfit: the per-category chosen item
// names plus the weather context shown to the user at choice time. This is
// the feedback channel that eventually becomes new training data.
type ChoiceRecord struct {
	UserID           int
	Items            []ChosenItem
	WeatherCondition string
	TemperatureC     float64
	IsRecommended    bool
	ChosenAt         time.Time
}

// UserLocation is a recorded device position for a user.
type UserLocation struct {
	UserID    int       `json:"user_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

// City is a saved city in a user's weather list.
type City struct {
	CityID       int    `json:"city_id"`
	CityName     string `json:"city_name"`
	DisplayOrder int    `json:"display_order"`
	IsFavorite   bool   `json:"is_favorite"`
}
