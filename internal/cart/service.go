package cart

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

// Service exposes the per-user cart operations.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	Add(ctx context.Context, userID uuid.UUID, input AddInput) (*View, error)
	UpdateQuantity(ctx context.Context, userID uuid.UUID, input UpdateInput) (*View, error)
	Remove(ctx context.Context, userID uuid.UUID, input RemoveInput) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID) (*View, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a cart service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return s.buildView(ctx, cart.ID)
}

// Add merges quantity into an existing line or creates a new one.
func (s *service) Add(ctx context.Context, userID uuid.UUID, input AddInput) (*View, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var cartID uuid.UUID
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.GetOrCreate(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		cartID = cart.ID

		_, snapshot, err := resolveLine(ctx, repo, input.ProductID, input.VariantID)
		if err != nil {
			return err
		}

		line, err := repo.FindLine(ctx, cart.ID, input.ProductID, input.VariantID)
		switch {
		case err == nil:
			line.Quantity += input.Quantity
			line.Variant = snapshot
			if err := repo.SaveLine(ctx, line); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "merge cart line")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item := &models.CartItem{
				CartID:    cart.ID,
				ProductID: input.ProductID,
				VariantID: input.VariantID,
				Variant:   snapshot,
				Quantity:  input.Quantity,
			}
			if err := repo.CreateLine(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart line")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find cart line")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, cartID)
}

// UpdateQuantity sets an absolute quantity on an existing line.
func (s *service) UpdateQuantity(ctx context.Context, userID uuid.UUID, input UpdateInput) (*View, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	line, err := s.repo.FindLine(ctx, cart.ID, input.ProductID, input.VariantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find cart line")
	}

	line.Quantity = input.Quantity
	if err := s.repo.SaveLine(ctx, line); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart line")
	}
	return s.buildView(ctx, cart.ID)
}

func (s *service) Remove(ctx context.Context, userID uuid.UUID, input RemoveInput) (*View, error) {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	line, err := s.repo.FindLine(ctx, cart.ID, input.ProductID, input.VariantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find cart line")
	}

	if _, err := s.repo.DeleteLine(ctx, line.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart line")
	}
	return s.buildView(ctx, cart.ID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*View, error) {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if err := s.repo.Clear(ctx, cart.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return s.buildView(ctx, cart.ID)
}

// resolveLine validates the product/variant pair and returns the current
// variant snapshot for storage on the line.
func resolveLine(ctx context.Context, repo *Repository, productID uuid.UUID, variantID *uuid.UUID) (*models.Product, *types.VariantSnapshot, error) {
	product, err := repo.LoadProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not available")
	}

	if variantID == nil {
		if product.HasVariants() {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "variant selection required for this product")
		}
		return product, nil, nil
	}

	variant := product.VariantByID(*variantID)
	if variant == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	snapshot := &types.VariantSnapshot{Size: variant.Size, PriceCents: variant.PriceCents}
	if variant.SKU != nil {
		snapshot.SKU = *variant.SKU
	}
	return product, snapshot, nil
}

// buildView repopulates every line with live catalog data. Lines whose
// product disappeared are shown inactive rather than silently dropped.
func (s *service) buildView(ctx context.Context, cartID uuid.UUID) (*View, error) {
	lines, err := s.repo.ListLines(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart lines")
	}

	view := &View{CartID: cartID, Lines: make([]LineView, 0, len(lines))}
	for _, line := range lines {
		lv := LineView{
			LineID:    line.ID,
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Variant:   line.Variant,
			Quantity:  line.Quantity,
		}

		product, err := s.repo.LoadProduct(ctx, line.ProductID)
		switch {
		case err == nil:
			lv.Title = product.Title
			lv.Slug = product.Slug
			lv.IsActive = product.IsActive
			if len(product.Images) > 0 {
				lv.ImageURL = product.Images[0].URL
			}
			if line.VariantID != nil {
				if variant := product.VariantByID(*line.VariantID); variant != nil {
					lv.UnitPriceCents = variant.PriceCents
					lv.AvailableStock = variant.Stock
					snapshot := &types.VariantSnapshot{Size: variant.Size, PriceCents: variant.PriceCents}
					if variant.SKU != nil {
						snapshot.SKU = *variant.SKU
					}
					lv.Variant = snapshot
				} else {
					lv.IsActive = false
					if line.Variant != nil {
						lv.UnitPriceCents = line.Variant.PriceCents
					}
				}
			} else if product.PriceCents != nil {
				lv.UnitPriceCents = *product.PriceCents
				lv.AvailableStock = product.Stock
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			lv.IsActive = false
			if line.Variant != nil {
				lv.UnitPriceCents = line.Variant.PriceCents
			}
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "populate cart line")
		}

		lv.SubtotalCents = lv.UnitPriceCents * lv.Quantity
		view.Lines = append(view.Lines, lv)
		if lv.IsActive {
			view.SubtotalCents += lv.SubtotalCents
			view.ItemCount += lv.Quantity
		}
	}
	return view, nil
}
