package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"aitendule/internal/types"
)

// asAppError unwraps err into a *types.AppError.
func asAppError(err error) (*types.AppError, bool) {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// userIDParam extracts and validates the {id} path parameter.
func userIDParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, types.NewAppError(
			types.ErrCodeValidationInvalidUserID,
			"user id must be a positive integer",
			err,
		)
	}
	return id, nil
}
