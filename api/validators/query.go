package validators

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/pagination"
)

// UUIDParam parses a UUID path parameter by name.
func UUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be a valid UUID", name)
	}
	return id, nil
}

// PaginationParams reads limit and cursor query parameters. The limit is
// clamped later by the repository layer.
func PaginationParams(r *http.Request) (pagination.Params, error) {
	params := pagination.Params{Cursor: r.URL.Query().Get("cursor")}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return pagination.Params{}, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer")
		}
		params.Limit = limit
	}
	return params, nil
}
