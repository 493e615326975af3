package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/amitrajput-dev/zelora-backend/pkg/db"
	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *db.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:cart_%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.ProductVariant{},
		&models.ProductImage{},
		&models.Cart{},
		&models.CartItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db.FromConn(gdb)
}

func newTestService(t *testing.T) (Service, *Repository, *db.Client) {
	t.Helper()

	client := newTestDB(t)
	repo := NewRepository(client.DB())
	svc, err := NewService(repo, client)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, client
}

func intPtr(v int) *int { return &v }

func mustCreateProduct(t *testing.T, client *db.Client, title string, priceCents int, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		Title:      title,
		Slug:       fmt.Sprintf("%s-%s", title, uuid.NewString()[:8]),
		PriceCents: intPtr(priceCents),
		Stock:      stock,
		IsActive:   true,
	}
	if err := client.DB().Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func mustCreateVariantProduct(t *testing.T, client *db.Client, title string) *models.Product {
	t.Helper()

	product := &models.Product{
		Title:    title,
		Slug:     fmt.Sprintf("%s-%s", title, uuid.NewString()[:8]),
		IsActive: true,
		Variants: []models.ProductVariant{
			{Size: "M", PriceCents: 1999, Stock: 10},
			{Size: "L", PriceCents: 2199, Stock: 4},
		},
	}
	if err := client.DB().Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func TestAddMergesQuantityOnSameLine(t *testing.T) {
	t.Parallel()

	svc, _, client := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := mustCreateProduct(t, client, "canvas-tote", 1499, 20)

	if _, err := svc.Add(ctx, userID, AddInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	view, err := svc.Add(ctx, userID, AddInput{ProductID: product.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(view.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(view.Lines))
	}
	line := view.Lines[0]
	if line.Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", line.Quantity)
	}
	if line.UnitPriceCents != 1499 {
		t.Fatalf("expected unit price 1499, got %d", line.UnitPriceCents)
	}
	if view.SubtotalCents != 5*1499 {
		t.Fatalf("expected subtotal %d, got %d", 5*1499, view.SubtotalCents)
	}
	if view.ItemCount != 5 {
		t.Fatalf("expected item count 5, got %d", view.ItemCount)
	}
}

func TestAddVariantLinesAreDistinct(t *testing.T) {
	t.Parallel()

	svc, _, client := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := mustCreateVariantProduct(t, client, "graphic-tee")

	var reloaded models.Product
	if err := client.DB().Preload("Variants").First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	mediumID := reloaded.Variants[0].ID
	largeID := reloaded.Variants[1].ID

	if _, err := svc.Add(ctx, userID, AddInput{ProductID: product.ID, VariantID: &mediumID, Quantity: 1}); err != nil {
		t.Fatalf("add medium: %v", err)
	}
	view, err := svc.Add(ctx, userID, AddInput{ProductID: product.ID, VariantID: &largeID, Quantity: 2})
	if err != nil {
		t.Fatalf("add large: %v", err)
	}

	if len(view.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(view.Lines))
	}
	for _, line := range view.Lines {
		if line.Variant == nil {
			t.Fatalf("expected variant snapshot on line %s", line.LineID)
		}
	}
	if view.SubtotalCents != 1999+2*2199 {
		t.Fatalf("unexpected subtotal %d", view.SubtotalCents)
	}
}

func TestAddRequiresVariantSelection(t *testing.T) {
	t.Parallel()

	svc, _, client := newTestService(t)
	ctx := context.Background()
	product := mustCreateVariantProduct(t, client, "hooded-sweatshirt")

	_, err := svc.Add(ctx, uuid.New(), AddInput{ProductID: product.ID, Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddRejectsInvalidQuantityAndUnknownProduct(t *testing.T) {
	t.Parallel()

	svc, _, client := newTestService(t)
	ctx := context.Background()
	product := mustCreateProduct(t, client, "enamel-mug", 899, 5)

	_, err := svc.Add(ctx, uuid.New(), AddInput{ProductID: product.ID, Quantity: 0})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}

	_, err = svc.Add(ctx, uuid.New(), AddInput{ProductID: uuid.New(), Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
}

func TestAddRejectsInactiveProduct(t *testing.T) {
	t.Parallel()

	svc, _, client := newTestService(t)
	ctx := context.Background()
	product := mustCreateProduct(t, client, "retired-cap", 1299, 5)
	if err := client.DB().Model(product).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product: %v", err)
	}

	_, err := svc.Add(ctx, uuid.New(), AddInput{ProductID: product.ID, Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateQuantity(t *testing.T) {
	t.Parallel()

	svc, _, client := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := mustCreateProduct(t, client, "linen-shirt", 2499, 10)

	if _, err := svc.Add(ctx, userID, AddInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}

	view, err := svc.UpdateQuantity(ctx, userID, UpdateInput{ProductID: product.ID, Quantity: 7})
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if view.Lines[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", view.Lines[0].Quantity)
	}

	_, err = svc.UpdateQuantity(ctx, userID, UpdateInput{ProductID: product.ID, Quantity: 0})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}

	_, err = svc.UpdateQuantity(ctx, userID, UpdateInput{ProductID: uuid.New(), Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for missing line, got %v", err)
	}
}

func TestRemoveTargetsOnlyMatchingLine(t *testing.T) {
	t.Parallel()

	svc, _, client := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := mustCreateVariantProduct(t, client, "zip-jacket")

	var reloaded models.Product
	if err := client.DB().Preload("Variants").First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	mediumID := reloaded.Variants[0].ID
	largeID := reloaded.Variants[1].ID

	if _, err := svc.Add(ctx, userID, AddInput{ProductID: product.ID, VariantID: &mediumID, Quantity: 1}); err != nil {
		t.Fatalf("add medium: %v", err)
	}
	if _, err := svc.Add(ctx, userID, AddInput{ProductID: product.ID, VariantID: &largeID, Quantity: 1}); err != nil {
		t.Fatalf("add large: %v", err)
	}

	view, err := svc.Remove(ctx, userID, RemoveInput{ProductID: product.ID, VariantID: &mediumID})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(view.Lines) != 1 {
		t.Fatalf("expected 1 remaining line, got %d", len(view.Lines))
	}
	if view.Lines[0].VariantID == nil || *view.Lines[0].VariantID != largeID {
		t.Fatalf("expected large variant to remain")
	}

	_, err = svc.Remove(ctx, userID, RemoveInput{ProductID: product.ID, VariantID: &mediumID})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for already removed line, got %v", err)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	t.Parallel()

	svc, _, client := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	first := mustCreateProduct(t, client, "notebook", 599, 50)
	second := mustCreateProduct(t, client, "gel-pen", 199, 50)

	if _, err := svc.Add(ctx, userID, AddInput{ProductID: first.ID, Quantity: 2}); err != nil {
		t.Fatalf("add first: %v", err)
	}
	if _, err := svc.Add(ctx, userID, AddInput{ProductID: second.ID, Quantity: 4}); err != nil {
		t.Fatalf("add second: %v", err)
	}

	view, err := svc.Clear(ctx, userID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(view.Lines) != 0 || view.SubtotalCents != 0 || view.ItemCount != 0 {
		t.Fatalf("expected empty cart, got %+v", view)
	}
}

func TestViewRepopulatesLivePriceAndStock(t *testing.T) {
	t.Parallel()

	svc, _, client := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := mustCreateProduct(t, client, "desk-lamp", 3499, 8)

	if _, err := svc.Add(ctx, userID, AddInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	updates := map[string]any{"price_cents": 2999, "stock": 3}
	if err := client.DB().Model(product).Updates(updates).Error; err != nil {
		t.Fatalf("reprice product: %v", err)
	}

	view, err := svc.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	line := view.Lines[0]
	if line.UnitPriceCents != 2999 {
		t.Fatalf("expected repopulated price 2999, got %d", line.UnitPriceCents)
	}
	if line.AvailableStock != 3 {
		t.Fatalf("expected repopulated stock 3, got %d", line.AvailableStock)
	}
}

func TestViewFlagsDeactivatedProductLines(t *testing.T) {
	t.Parallel()

	svc, _, client := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	keep := mustCreateProduct(t, client, "water-bottle", 999, 10)
	gone := mustCreateProduct(t, client, "clearance-scarf", 799, 10)

	if _, err := svc.Add(ctx, userID, AddInput{ProductID: keep.ID, Quantity: 1}); err != nil {
		t.Fatalf("add keep: %v", err)
	}
	if _, err := svc.Add(ctx, userID, AddInput{ProductID: gone.ID, Quantity: 2}); err != nil {
		t.Fatalf("add gone: %v", err)
	}

	if err := client.DB().Model(gone).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	view, err := svc.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(view.Lines) != 2 {
		t.Fatalf("expected both lines retained, got %d", len(view.Lines))
	}
	if view.SubtotalCents != 999 {
		t.Fatalf("expected inactive line excluded from subtotal, got %d", view.SubtotalCents)
	}
	if view.ItemCount != 1 {
		t.Fatalf("expected inactive line excluded from item count, got %d", view.ItemCount)
	}
}
