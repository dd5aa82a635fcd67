package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"aitendule/internal/core"
	"aitendule/internal/db"
	"aitendule/internal/types"
)

// ChoiceSaver persists a choice set inside a transaction.
type ChoiceSaver interface {
	SaveChoices(ctx context.Context, tx db.DBTX, rec *types.ChoiceRecord) error
}

// TxRunner runs fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx db.DBTX) error) error
}

// ChosenItemRequest is one selected garment in a choice submission.
type ChosenItemRequest struct {
	Category string `json:"category" validate:"required"`
	ItemName string `json:"item_name" validate:"required"`
}

// SaveChoicesRequest is the request body for POST /api/v1/users/{id}/choices.
type SaveChoicesRequest struct {
	Items         []ChosenItemRequest `json:"items" validate:"required,min=1,dive"`
	Weather       string              `json:"weather" validate:"required"`
	Temperature   float64             `json:"temperature"`
	IsRecommended bool                `json:"is_recommended"`
}

// ChoiceHandler records which garments the user actually wore. These
// records become the next training run's dataset.
type ChoiceHandler struct {
	choices   ChoiceSaver
	tx        TxRunner
	validator *core.Validator
	logger    *slog.Logger
}

func NewChoiceHandler(choices ChoiceSaver, tx TxRunner, v *core.Validator, l *slog.Logger) *ChoiceHandler {
	if l == nil {
		l = slog.Default()
	}
	return &ChoiceHandler{choices: choices, tx: tx, validator: v, logger: l}
}

// RegisterRoutes mounts choice routes on the provided chi.Router.
func (h *ChoiceHandler) RegisterRoutes(r chi.Router) {
	r.Post("/users/{id}/choices", h.Save)
}

// Save handles POST /api/v1/users/{id}/choices. All items in a submission
// are recorded atomically: either the whole outfit is stored or none of it.
func (h *ChoiceHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	var req SaveChoicesRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		core.Error(w, r, err)
		return
	}

	items := make([]types.ChosenItem, 0, len(req.Items))
	for _, item := range req.Items {
		category, ok := types.CanonicalCategory(item.Category)
		if !ok {
			core.Error(w, r, types.NewAppErrorWithDetails(
				types.ErrCodeValidationCategory,
				"unknown clothing category",
				nil,
				map[string]any{"category": item.Category},
			))
			return
		}
		items = append(items, types.ChosenItem{Category: category, ItemName: item.ItemName})
	}

	record := &types.ChoiceRecord{
		UserID:           userID,
		Items:            items,
		WeatherCondition: req.Weather,
		TemperatureC:     req.Temperature,
		IsRecommended:    req.IsRecommended,
		ChosenAt:         time.Now().UTC(),
	}

	err = h.tx.WithTx(r.Context(), func(tx db.DBTX) error {
		return h.choices.SaveChoices(r.Context(), tx, record)
	})
	if err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.Info("choices recorded",
		slog.Int("user_id", userID),
		slog.Int("items", len(items)),
		slog.Bool("is_recommended", req.IsRecommended),
	)

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: map[string]any{
		"recorded": len(items),
	}})
}
