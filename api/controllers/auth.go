package controllers

import (
	"net/http"

	"github.com/amitrajput-dev/zelora-backend/api/responses"
	"github.com/amitrajput-dev/zelora-backend/api/validators"
	"github.com/amitrajput-dev/zelora-backend/internal/auth"
	"github.com/amitrajput-dev/zelora-backend/pkg/logger"
)

// AuthController handles registration and login.
type AuthController struct {
	svc auth.Service
	log *logger.Logger
}

func NewAuthController(svc auth.Service, log *logger.Logger) *AuthController {
	return &AuthController{svc: svc, log: log}
}

type registerRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=120"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,min=7,max=20"`
	Password   string `json:"password" validate:"required,min=8,max=128"`
	ReferredBy string `json:"referred_by" validate:"omitempty,max=16"`
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	resp, err := c.svc.Register(r.Context(), auth.RegisterRequest{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Password:   req.Password,
		ReferredBy: req.ReferredBy,
	})
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, resp)
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	resp, err := c.svc.Login(r.Context(), auth.LoginRequest{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, resp)
}
