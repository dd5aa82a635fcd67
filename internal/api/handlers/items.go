package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aitendule/internal/core"
	"aitendule/internal/types"
)

// ItemLister provides the clothing item catalog.
type ItemLister interface {
	ListItems(ctx context.Context) ([]types.ClothingItem, error)
}

// ItemsHandler serves the clothing item catalog the frontend picker uses.
type ItemsHandler struct {
	items  ItemLister
	logger *slog.Logger
}

func NewItemsHandler(items ItemLister, l *slog.Logger) *ItemsHandler {
	if l == nil {
		l = slog.Default()
	}
	return &ItemsHandler{items: items, logger: l}
}

// RegisterRoutes mounts item routes on the provided chi.Router.
func (h *ItemsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/clothing-items", h.List)
}

// List handles GET /api/v1/clothing-items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.ListItems(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if items == nil {
		items = []types.ClothingItem{}
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: items})
}
