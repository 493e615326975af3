package catalog

import (
	"testing"

	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.ProductImage{},
	); err != nil {
		t.Fatalf("migrate catalog tables: %v", err)
	}
	return conn
}

func intPtr(v int) *int { return &v }

func mustCreateTestProduct(t *testing.T, conn *gorm.DB, title string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Title:      title,
		Slug:       Slugify(title) + "-" + uuid.NewString()[:8],
		PriceCents: intPtr(49900),
		Stock:      stock,
		IsActive:   true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}
