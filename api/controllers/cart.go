package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/amitrajput-dev/zelora-backend/api/middleware"
	"github.com/amitrajput-dev/zelora-backend/api/responses"
	"github.com/amitrajput-dev/zelora-backend/api/validators"
	"github.com/amitrajput-dev/zelora-backend/internal/cart"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/logger"
)

// CartController manages the caller's cart.
type CartController struct {
	svc cart.Service
	log *logger.Logger
}

func NewCartController(svc cart.Service, log *logger.Logger) *CartController {
	return &CartController{svc: svc, log: log}
}

func authedUser(r *http.Request) (uuid.UUID, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return userID, nil
}

type cartLineRequest struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	VariantID *uuid.UUID `json:"variant_id"`
	Quantity  int        `json:"quantity" validate:"required,gt=0"`
}

type cartRemoveRequest struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	VariantID *uuid.UUID `json:"variant_id"`
}

func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	view, err := c.svc.Get(r.Context(), userID)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, view)
}

func (c *CartController) Add(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	var req cartLineRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	view, err := c.svc.Add(r.Context(), userID, cart.AddInput{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, view)
}

func (c *CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	var req cartLineRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	view, err := c.svc.UpdateQuantity(r.Context(), userID, cart.UpdateInput{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, view)
}

func (c *CartController) Remove(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	var req cartRemoveRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	view, err := c.svc.Remove(r.Context(), userID, cart.RemoveInput{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
	})
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, view)
}

func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	view, err := c.svc.Clear(r.Context(), userID)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, view)
}
