package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	"github.com/amitrajput-dev/zelora-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows the public product listing.
type ListFilter struct {
	Category      string
	Brand         string
	Search        string
	IncludeHidden bool
	Page          pagination.Params
}

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) scope(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("deleted_at IS NULL")
}

// FindByID loads the product with variants and images.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.scope(ctx).
		Preload("Variants").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySlug loads a product by its URL slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.scope(ctx).
		Preload("Variants").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&product, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// SlugExists reports whether the slug is already taken by another product.
func (r *Repository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns a cursor page of products matching the filter.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	q := r.scope(ctx).Preload("Variants").Preload("Images")
	if !filter.IncludeHidden {
		q = q.Where("is_active = ?", true)
	}
	if cat := strings.TrimSpace(filter.Category); cat != "" {
		q = q.Where("category = ?", cat)
	}
	if brand := strings.TrimSpace(filter.Brand); brand != "" {
		q = q.Where("brand = ?", brand)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(slug) LIKE ?", like, like)
	}

	cursor, err := pagination.ParseCursor(filter.Page.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var products []models.Product
	err = q.Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(filter.Page.Limit)).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Create inserts the product with its variants and images.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves the product row.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// SyncVariants reconciles the stored variant rows with the given set. Rows
// carrying an id are updated in place so cart lines keep resolving them; rows
// without one are inserted, and anything absent from the set is removed.
func (r *Repository) SyncVariants(ctx context.Context, productID uuid.UUID, variants []models.ProductVariant) error {
	tx := r.db.WithContext(ctx)

	keep := make([]uuid.UUID, 0, len(variants))
	for _, v := range variants {
		if v.ID != uuid.Nil {
			keep = append(keep, v.ID)
		}
	}
	del := tx.Where("product_id = ?", productID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN ?", keep)
	}
	if err := del.Delete(&models.ProductVariant{}).Error; err != nil {
		return err
	}

	for i := range variants {
		if err := tx.Save(&variants[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// ReplaceImages swaps the product's image metadata rows.
func (r *Repository) ReplaceImages(ctx context.Context, productID uuid.UUID, images []models.ProductImage) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductImage{}).Error; err != nil {
		return err
	}
	if len(images) == 0 {
		return nil
	}
	return tx.Create(&images).Error
}

// SoftDelete marks the product deleted and hides it from listings.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID, now time.Time) error {
	result := r.scope(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{"deleted_at": now, "is_active": false})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListLowStock returns active products at or below their low-stock threshold.
// Products with variants compare the summed variant stock.
func (r *Repository) ListLowStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.scope(ctx).
		Preload("Variants").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	low := products[:0]
	for _, p := range products {
		if p.AggregateStock() <= p.LowStockThreshold {
			low = append(low, p)
		}
	}
	return low, nil
}
