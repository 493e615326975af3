package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/amitrajput-dev/zelora-backend/api/responses"
	"github.com/amitrajput-dev/zelora-backend/api/validators"
	"github.com/amitrajput-dev/zelora-backend/internal/users"
	"github.com/amitrajput-dev/zelora-backend/pkg/logger"
)

// UserController covers profile, address book, favorites and wallet credit.
type UserController struct {
	svc users.Service
	log *logger.Logger
}

func NewUserController(svc users.Service, log *logger.Logger) *UserController {
	return &UserController{svc: svc, log: log}
}

func (c *UserController) Profile(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	user, err := c.svc.GetProfile(r.Context(), userID)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, user)
}

type addressRequest struct {
	RecipientName  string  `json:"recipient_name" validate:"required,max=120"`
	RecipientPhone string  `json:"recipient_phone" validate:"required,min=7,max=20"`
	Line1          string  `json:"line1" validate:"required,max=200"`
	Line2          *string `json:"line2" validate:"omitempty,max=200"`
	City           string  `json:"city" validate:"required,max=80"`
	State          string  `json:"state" validate:"required,max=80"`
	PostalCode     string  `json:"postal_code" validate:"required,max=16"`
	Country        string  `json:"country" validate:"required,max=80"`
	IsDefault      bool    `json:"is_default"`
}

func (req addressRequest) toInput() users.AddressInput {
	return users.AddressInput{
		RecipientName:  req.RecipientName,
		RecipientPhone: req.RecipientPhone,
		Line1:          req.Line1,
		Line2:          req.Line2,
		City:           req.City,
		State:          req.State,
		PostalCode:     req.PostalCode,
		Country:        req.Country,
		IsDefault:      req.IsDefault,
	}
}

func (c *UserController) ListAddresses(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	addresses, err := c.svc.ListAddresses(r.Context(), userID)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, addresses)
}

func (c *UserController) AddAddress(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	var req addressRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	address, err := c.svc.AddAddress(r.Context(), userID, req.toInput())
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, address)
}

func (c *UserController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	addressID, err := validators.UUIDParam(r, "addressID")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	var req addressRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	address, err := c.svc.UpdateAddress(r.Context(), userID, addressID, req.toInput())
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, address)
}

func (c *UserController) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	addressID, err := validators.UUIDParam(r, "addressID")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	if err := c.svc.DeleteAddress(r.Context(), userID, addressID); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, map[string]bool{"deleted": true})
}

// ToggleFavorite flips a product in or out of the caller's favorites.
func (c *UserController) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	productID, err := validators.UUIDParam(r, "productID")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	favorited, err := c.svc.ToggleFavorite(r.Context(), userID, productID)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, map[string]bool{"favorited": favorited})
}

func (c *UserController) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	favorites, err := c.svc.ListFavorites(r.Context(), userID)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, favorites)
}

type creditWalletRequest struct {
	UserID      uuid.UUID `json:"user_id" validate:"required"`
	AmountCents int       `json:"amount_cents" validate:"required,gt=0"`
}

// CreditWallet is the admin hook to grant wallet balance.
func (c *UserController) CreditWallet(w http.ResponseWriter, r *http.Request) {
	var req creditWalletRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	if err := c.svc.CreditWallet(r.Context(), req.UserID, req.AmountCents); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, map[string]bool{"credited": true})
}
