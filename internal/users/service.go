package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/amitrajput-dev/zelora-backend/pkg/db"
	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes profile, address book, favorites, and wallet operations.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	AddAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*models.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input AddressInput) (*models.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error
	ToggleFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.Product, error)
	CreditWallet(ctx context.Context, userID uuid.UUID, amountCents int) error
}

// AddressInput carries a full address payload; writes are whole-row.
type AddressInput struct {
	RecipientName  string
	RecipientPhone string
	Line1          string
	Line2          *string
	City           string
	State          string
	PostalCode     string
	Country        string
	IsDefault      bool
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a users service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

func (s *service) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	addresses, err := s.repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
	}
	return addresses, nil
}

// AddAddress inserts a new address. The user's first address always becomes
// the default; an explicit default clears the previous one.
func (s *service) AddAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*models.Address, error) {
	if err := validateAddressInput(input); err != nil {
		return nil, err
	}

	var created *models.Address
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.ListAddresses(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
		}

		isDefault := input.IsDefault || len(existing) == 0
		if isDefault && len(existing) > 0 {
			if err := repo.ClearDefaultAddresses(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear defaults")
			}
		}

		address := addressFromInput(userID, input)
		address.IsDefault = isDefault
		if err := repo.CreateAddress(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create address")
		}
		created = address
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input AddressInput) (*models.Address, error) {
	if err := validateAddressInput(input); err != nil {
		return nil, err
	}

	var updated *models.Address
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		address, err := repo.FindAddress(ctx, userID, addressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
		}

		// Demoting the only default is not allowed; the book must keep one.
		if address.IsDefault && !input.IsDefault {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "set another address as default first")
		}

		if input.IsDefault && !address.IsDefault {
			if err := repo.ClearDefaultAddresses(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear defaults")
			}
		}

		address.RecipientName = input.RecipientName
		address.RecipientPhone = input.RecipientPhone
		address.Line1 = input.Line1
		address.Line2 = input.Line2
		address.City = input.City
		address.State = input.State
		address.PostalCode = input.PostalCode
		if input.Country != "" {
			address.Country = input.Country
		}
		address.IsDefault = input.IsDefault || address.IsDefault

		if err := repo.SaveAddress(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save address")
		}
		updated = address
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteAddress removes an address; deleting the default promotes the oldest
// remaining address so exactly one default survives.
func (s *service) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		address, err := repo.FindAddress(ctx, userID, addressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
		}

		deleted, err := repo.DeleteAddress(ctx, userID, addressID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete address")
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}

		if !address.IsDefault {
			return nil
		}

		oldest, err := repo.OldestAddress(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // book is empty now
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find replacement default")
		}
		oldest.IsDefault = true
		if err := repo.SaveAddress(ctx, oldest); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "promote default")
		}
		return nil
	})
}

// ToggleFavorite flips the favorite state and reports whether the product is
// now favorited.
func (s *service) ToggleFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var product models.Product
	err := s.repo.db.WithContext(ctx).
		Where("deleted_at IS NULL AND is_active = ?", true).
		First(&product, "id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	_, err = s.repo.FindWishlistItem(ctx, userID, productID)
	switch {
	case err == nil:
		if err := s.repo.RemoveWishlistItem(ctx, userID, productID); err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove favorite")
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		item := &models.WishlistItem{UserID: userID, ProductID: productID}
		if err := s.repo.AddWishlistItem(ctx, item); err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add favorite")
		}
		return true, nil
	default:
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load favorite")
	}
}

func (s *service) ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	products, err := s.repo.ListFavoriteProducts(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list favorites")
	}
	return products, nil
}

// CreditWallet adds funds to the user's wallet (admin adjustments).
func (s *service) CreditWallet(ctx context.Context, userID uuid.UUID, amountCents int) error {
	if amountCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}
	ok, err := s.repo.AdjustWallet(ctx, userID, amountCents)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "credit wallet")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}

func validateAddressInput(input AddressInput) error {
	if input.RecipientName == "" || input.RecipientPhone == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient name and phone are required")
	}
	if input.Line1 == "" || input.City == "" || input.State == "" || input.PostalCode == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address line1, city, state, and postal code are required")
	}
	return nil
}

func addressFromInput(userID uuid.UUID, input AddressInput) *models.Address {
	address := &models.Address{
		UserID:         userID,
		RecipientName:  input.RecipientName,
		RecipientPhone: input.RecipientPhone,
		Line1:          input.Line1,
		Line2:          input.Line2,
		City:           input.City,
		State:          input.State,
		PostalCode:     input.PostalCode,
		Country:        input.Country,
	}
	if address.Country == "" {
		address.Country = "IN"
	}
	return address
}

// ShippingAddressFromModel converts a stored address into the order snapshot.
func ShippingAddressFromModel(a *models.Address) types.ShippingAddress {
	line2 := ""
	if a.Line2 != nil {
		line2 = *a.Line2
	}
	return types.ShippingAddress{
		RecipientName:  a.RecipientName,
		RecipientPhone: a.RecipientPhone,
		Line1:          a.Line1,
		Line2:          line2,
		City:           a.City,
		State:          a.State,
		PostalCode:     a.PostalCode,
		Country:        a.Country,
	}
}
