package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amitrajput-dev/zelora-backend/pkg/db"
	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes catalog management and read operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	GetProduct(ctx context.Context, idOrSlug string) (*models.Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]models.Product, string, error)
	ListLowStock(ctx context.Context) ([]models.Product, error)
}

// VariantInput describes one size/price/stock row for a product.
type VariantInput struct {
	Size       string
	SKU        *string
	PriceCents int
	Stock      int
}

// ImageInput carries externally hosted image metadata.
type ImageInput struct {
	URL      string
	PublicID string
	Position int
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Title             string
	Description       *string
	Category          *string
	Brand             *string
	PriceCents        *int
	Stock             int
	LowStockThreshold *int
	IsActive          *bool
	Variants          []VariantInput
	Images            []ImageInput
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Title             *string
	Description       *string
	Category          *string
	Brand             *string
	PriceCents        *int
	Stock             *int
	LowStockThreshold *int
	IsActive          *bool
	Variants          *[]VariantInput
	Images            *[]ImageInput
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product title is required")
	}
	if len(input.Variants) == 0 && input.PriceCents == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price is required for products without variants")
	}
	if err := validateVariants(input.Variants); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, s.repo, input.Title, uuid.Nil)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Title:       input.Title,
		Slug:        slug,
		Description: input.Description,
		Category:    input.Category,
		Brand:       input.Brand,
		PriceCents:  input.PriceCents,
		Stock:       input.Stock,
		IsActive:    true,
	}
	if input.LowStockThreshold != nil {
		product.LowStockThreshold = *input.LowStockThreshold
	} else {
		product.LowStockThreshold = 10
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	for _, v := range input.Variants {
		product.Variants = append(product.Variants, models.ProductVariant{
			Size:       v.Size,
			SKU:        v.SKU,
			PriceCents: v.PriceCents,
			Stock:      v.Stock,
		})
	}
	for _, img := range input.Images {
		product.Images = append(product.Images, models.ProductImage{
			URL:      img.URL,
			PublicID: img.PublicID,
			Position: img.Position,
		})
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	var updated *models.Product
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}

		if input.Title != nil && *input.Title != product.Title {
			product.Title = *input.Title
			slug, err := s.uniqueSlug(ctx, repo, product.Title, product.ID)
			if err != nil {
				return err
			}
			product.Slug = slug
		}
		if input.Description != nil {
			product.Description = input.Description
		}
		if input.Category != nil {
			product.Category = input.Category
		}
		if input.Brand != nil {
			product.Brand = input.Brand
		}
		if input.PriceCents != nil {
			product.PriceCents = input.PriceCents
		}
		if input.Stock != nil {
			product.Stock = *input.Stock
		}
		if input.LowStockThreshold != nil {
			product.LowStockThreshold = *input.LowStockThreshold
		}
		if input.IsActive != nil {
			product.IsActive = *input.IsActive
		}

		if input.Variants != nil {
			if err := validateVariants(*input.Variants); err != nil {
				return err
			}
			variants := mergeVariants(product, *input.Variants)
			if err := repo.SyncVariants(ctx, product.ID, variants); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sync variants")
			}
			product.Variants = variants
		}
		if input.Images != nil {
			images := make([]models.ProductImage, 0, len(*input.Images))
			for _, img := range *input.Images {
				images = append(images, models.ProductImage{
					ProductID: product.ID,
					URL:       img.URL,
					PublicID:  img.PublicID,
					Position:  img.Position,
				})
			}
			if err := repo.ReplaceImages(ctx, product.ID, images); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace images")
			}
			product.Images = images
		}

		// Save without clobbering the freshly replaced associations.
		if err := tx.WithContext(ctx).Omit("Variants", "Images").Save(product).Error; err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product slug already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if err := s.repo.SoftDelete(ctx, productID, time.Now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}

// GetProduct accepts either a product id or a slug.
func (s *service) GetProduct(ctx context.Context, idOrSlug string) (*models.Product, error) {
	if idOrSlug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product identifier required")
	}

	var (
		product *models.Product
		err     error
	)
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		product, err = s.repo.FindByID(ctx, id)
	} else {
		product, err = s.repo.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter) ([]models.Product, string, error) {
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	page, more := pagination.TrimPage(products, filter.Page.Limit)
	nextCursor := ""
	if more && len(page) > 0 {
		last := page[len(page)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nextCursor, nil
}

func (s *service) ListLowStock(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list low stock")
	}
	return products, nil
}

// uniqueSlug appends a numeric suffix until the slug is free; the excluded id
// lets updates keep their own slug.
func (s *service) uniqueSlug(ctx context.Context, repo *Repository, title string, exclude uuid.UUID) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "product"
	}
	candidate := base
	for i := 2; ; i++ {
		taken, err := repo.SlugExists(ctx, candidate, exclude)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// mergeVariants carries the ids and sold counters of surviving rows into the
// submitted set, matched by SKU first and size second. Cart lines reference
// variants by id, so a routine price or stock edit must not reissue them.
func mergeVariants(product *models.Product, inputs []VariantInput) []models.ProductVariant {
	bySize := make(map[string]models.ProductVariant, len(product.Variants))
	bySKU := make(map[string]models.ProductVariant)
	for _, v := range product.Variants {
		bySize[v.Size] = v
		if v.SKU != nil && *v.SKU != "" {
			bySKU[*v.SKU] = v
		}
	}

	claimed := make(map[uuid.UUID]bool, len(product.Variants))
	out := make([]models.ProductVariant, 0, len(inputs))
	for _, in := range inputs {
		row := models.ProductVariant{
			ProductID:  product.ID,
			Size:       in.Size,
			SKU:        in.SKU,
			PriceCents: in.PriceCents,
			Stock:      in.Stock,
		}
		prev, matched := models.ProductVariant{}, false
		if in.SKU != nil && *in.SKU != "" {
			prev, matched = bySKU[*in.SKU]
		}
		if !matched {
			prev, matched = bySize[in.Size]
		}
		if matched && !claimed[prev.ID] {
			claimed[prev.ID] = true
			row.ID = prev.ID
			row.Sold = prev.Sold
			row.CreatedAt = prev.CreatedAt
		}
		out = append(out, row)
	}
	return out
}

func validateVariants(variants []VariantInput) error {
	seen := map[string]struct{}{}
	for _, v := range variants {
		if v.Size == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant size is required")
		}
		if v.PriceCents < 0 || v.Stock < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant price and stock must be non-negative")
		}
		if _, dup := seen[v.Size]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate variant size %q", v.Size))
		}
		seen[v.Size] = struct{}{}
	}
	return nil
}
