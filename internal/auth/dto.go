package auth

import (
	"time"

	"github.com/amitrajput-dev/zelora-backend/pkg/enums"
	"github.com/google/uuid"
)

// RegisterRequest carries the validated registration payload.
type RegisterRequest struct {
	Name       string
	Email      string
	Phone      string
	Password   string
	ReferredBy string
}

// LoginRequest authenticates by email or phone.
type LoginRequest struct {
	Identifier string
	Password   string
}

// UserSummary is the public user surface returned with tokens.
type UserSummary struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	Role         enums.UserRole `json:"role"`
	ReferralCode string         `json:"referral_code"`
	WalletCents  int            `json:"wallet_cents"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuthResponse bundles the access token with the authenticated user.
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserSummary `json:"user"`
}
