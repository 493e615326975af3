package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/amitrajput-dev/zelora-backend/pkg/db"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/pagination"
	"github.com/google/uuid"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	conn := newTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, db.FromConn(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Classic White Tee":      "classic-white-tee",
		"  Électric Blue! 2.0  ": "lectric-blue-2-0",
		"---":                    "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCreateProductGeneratesUniqueSlug(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateProduct(ctx, CreateProductInput{Title: "Classic White Tee", PriceCents: intPtr(19900), Stock: 10})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if first.Slug != "classic-white-tee" {
		t.Fatalf("unexpected slug %q", first.Slug)
	}

	second, err := svc.CreateProduct(ctx, CreateProductInput{Title: "Classic White Tee", PriceCents: intPtr(20900), Stock: 5})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.Slug != "classic-white-tee-2" {
		t.Fatalf("expected suffixed slug, got %q", second.Slug)
	}
}

func TestCreateProductRequiresPriceWithoutVariants(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.CreateProduct(context.Background(), CreateProductInput{Title: "No Price"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateProductWithVariants(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, CreateProductInput{
		Title: "Runner Sneakers",
		Variants: []VariantInput{
			{Size: "41", PriceCents: 59900, Stock: 3},
			{Size: "42", PriceCents: 59900, Stock: 2},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(product.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(product.Variants))
	}
	if product.AggregateStock() != 5 {
		t.Fatalf("expected aggregate stock 5, got %d", product.AggregateStock())
	}

	_, err = svc.CreateProduct(ctx, CreateProductInput{
		Title: "Dup Sizes",
		Variants: []VariantInput{
			{Size: "M", PriceCents: 100, Stock: 1},
			{Size: "M", PriceCents: 100, Stock: 1},
		},
	})
	if err == nil {
		t.Fatal("expected duplicate size rejection")
	}
}

func TestUpdateProductTitleRegeneratesSlug(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, CreateProductInput{Title: "Old Name", PriceCents: intPtr(1000), Stock: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "Brand New Name"
	updated, err := svc.UpdateProduct(ctx, product.ID, UpdateProductInput{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Slug != "brand-new-name" {
		t.Fatalf("expected regenerated slug, got %q", updated.Slug)
	}
}

func TestUpdateProductKeepsVariantIDs(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, CreateProductInput{
		Title: "Runner Sneakers",
		Variants: []VariantInput{
			{Size: "41", PriceCents: 59900, Stock: 3},
			{Size: "42", PriceCents: 59900, Stock: 2},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var keepID uuid.UUID
	for _, v := range product.Variants {
		if v.Size == "41" {
			keepID = v.ID
		}
	}
	if keepID == uuid.Nil {
		t.Fatal("variant 41 missing after create")
	}

	// A price and stock edit plus one new size: cart lines holding the
	// surviving variant's id must keep resolving it.
	_, err = svc.UpdateProduct(ctx, product.ID, UpdateProductInput{
		Variants: &[]VariantInput{
			{Size: "41", PriceCents: 54900, Stock: 8},
			{Size: "43", PriceCents: 59900, Stock: 4},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	reloaded, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(reloaded.Variants))
	}
	for _, v := range reloaded.Variants {
		switch v.Size {
		case "41":
			if v.ID != keepID {
				t.Fatalf("variant 41 was reissued: %s != %s", v.ID, keepID)
			}
			if v.PriceCents != 54900 || v.Stock != 8 {
				t.Fatalf("variant 41 not updated: %d/%d", v.PriceCents, v.Stock)
			}
		case "43":
			if v.ID == uuid.Nil || v.ID == keepID {
				t.Fatalf("variant 43 got a bad id: %s", v.ID)
			}
		default:
			t.Fatalf("unexpected surviving size %q", v.Size)
		}
	}
}

func TestDeleteProductHidesFromReads(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, CreateProductInput{Title: "Short Lived", PriceCents: intPtr(1000), Stock: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteProduct(ctx, product.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.GetProduct(ctx, product.ID.String()); err == nil {
		t.Fatal("expected not found after delete")
	}
	if err := svc.DeleteProduct(ctx, product.ID); err == nil {
		t.Fatal("expected second delete to report not found")
	}
	if err := svc.DeleteProduct(ctx, uuid.New()); err == nil {
		t.Fatal("expected unknown id to report not found")
	}
}

func TestGetProductBySlug(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{Title: "Leather Belt", PriceCents: intPtr(2500), Stock: 4})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := svc.GetProduct(ctx, "leather-belt")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if found.ID != created.ID {
		t.Fatal("slug lookup returned wrong product")
	}
}

func TestListProductsFiltersAndPaginates(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		title := "Paged Product " + strings.Repeat("x", i+1)
		if _, err := svc.CreateProduct(ctx, CreateProductInput{Title: title, PriceCents: intPtr(1000), Stock: 1}); err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	page, cursor, err := svc.ListProducts(ctx, ListFilter{Page: pagination.Params{Limit: 3}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 3 || cursor == "" {
		t.Fatalf("expected first page of 3 with cursor, got %d %q", len(page), cursor)
	}

	rest, next, err := svc.ListProducts(ctx, ListFilter{Page: pagination.Params{Limit: 3, Cursor: cursor}})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(rest) != 2 || next != "" {
		t.Fatalf("expected final page of 2, got %d %q", len(rest), next)
	}
}

func TestListLowStock(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)
	ctx := context.Background()

	low, err := svc.CreateProduct(ctx, CreateProductInput{Title: "Low Stock Cap", PriceCents: intPtr(900), Stock: 2, LowStockThreshold: intPtr(5)})
	if err != nil {
		t.Fatalf("create low: %v", err)
	}
	if _, err := svc.CreateProduct(ctx, CreateProductInput{Title: "Healthy Stock Cap", PriceCents: intPtr(900), Stock: 50, LowStockThreshold: intPtr(5)}); err != nil {
		t.Fatalf("create healthy: %v", err)
	}

	report, err := repo.ListLowStock(ctx)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(report) != 1 || report[0].ID != low.ID {
		t.Fatalf("unexpected low stock report: %d rows", len(report))
	}
}
