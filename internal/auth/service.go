package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgauth "github.com/amitrajput-dev/zelora-backend/pkg/auth"
	"github.com/amitrajput-dev/zelora-backend/pkg/config"
	"github.com/amitrajput-dev/zelora-backend/pkg/db"
	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	"github.com/amitrajput-dev/zelora-backend/pkg/enums"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/security"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid credentials"

const referralCodeLength = 8

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
}

type userRepository interface {
	FindByEmailOrPhone(ctx context.Context, identifier string) (*models.User, error)
	FindByReferralCode(ctx context.Context, code string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

type service struct {
	users       userRepository
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{
		users:       params.UserRepo,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	phone := strings.TrimSpace(req.Phone)
	if name == "" || email == "" || phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, email, and phone are required")
	}
	if len(req.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var referredBy *string
	if code := strings.ToUpper(strings.TrimSpace(req.ReferredBy)); code != "" {
		referrer, err := s.users.FindByReferralCode(ctx, code)
		switch {
		case err == nil:
			referredBy = &referrer.ReferralCode
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Unknown referral codes are ignored rather than rejected.
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve referral code")
		}
	}

	referralCode, err := security.GenerateCode(referralCodeLength)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate referral code")
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         enums.UserRoleBuyer,
		ReferralCode: referralCode,
		ReferredBy:   referredBy,
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email or phone already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	return s.issueToken(created)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "identifier and password are required")
	}

	user, err := s.users.FindByEmailOrPhone(ctx, strings.ToLower(identifier))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	return s.issueToken(user)
}

func (s *service) issueToken(user *models.User) (*AuthResponse, error) {
	now := time.Now().UTC()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &AuthResponse{
		Token:     token,
		ExpiresAt: now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
		User: UserSummary{
			ID:           user.ID,
			Name:         user.Name,
			Email:        user.Email,
			Phone:        user.Phone,
			Role:         user.Role,
			ReferralCode: user.ReferralCode,
			WalletCents:  user.WalletCents,
			CreatedAt:    user.CreatedAt,
		},
	}, nil
}
