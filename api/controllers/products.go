package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amitrajput-dev/zelora-backend/api/responses"
	"github.com/amitrajput-dev/zelora-backend/api/validators"
	"github.com/amitrajput-dev/zelora-backend/internal/catalog"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/logger"
)

// ProductController serves the public catalog plus the admin management
// surface.
type ProductController struct {
	svc catalog.Service
	log *logger.Logger
}

func NewProductController(svc catalog.Service, log *logger.Logger) *ProductController {
	return &ProductController{svc: svc, log: log}
}

type variantPayload struct {
	Size       string  `json:"size" validate:"required,max=32"`
	SKU        *string `json:"sku" validate:"omitempty,max=64"`
	PriceCents int     `json:"price_cents" validate:"gt=0"`
	Stock      int     `json:"stock" validate:"gte=0"`
}

type imagePayload struct {
	URL      string `json:"url" validate:"required,url"`
	PublicID string `json:"public_id" validate:"omitempty,max=128"`
	Position int    `json:"position" validate:"gte=0"`
}

type createProductRequest struct {
	Title             string           `json:"title" validate:"required,min=2,max=200"`
	Description       *string          `json:"description"`
	Category          *string          `json:"category" validate:"omitempty,max=64"`
	Brand             *string          `json:"brand" validate:"omitempty,max=64"`
	PriceCents        *int             `json:"price_cents" validate:"omitempty,gt=0"`
	Stock             int              `json:"stock" validate:"gte=0"`
	LowStockThreshold *int             `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	IsActive          *bool            `json:"is_active"`
	Variants          []variantPayload `json:"variants" validate:"omitempty,dive"`
	Images            []imagePayload   `json:"images" validate:"omitempty,dive"`
}

type updateProductRequest struct {
	Title             *string           `json:"title" validate:"omitempty,min=2,max=200"`
	Description       *string           `json:"description"`
	Category          *string           `json:"category" validate:"omitempty,max=64"`
	Brand             *string           `json:"brand" validate:"omitempty,max=64"`
	PriceCents        *int              `json:"price_cents" validate:"omitempty,gt=0"`
	Stock             *int              `json:"stock" validate:"omitempty,gte=0"`
	LowStockThreshold *int              `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	IsActive          *bool             `json:"is_active"`
	Variants          *[]variantPayload `json:"variants" validate:"omitempty,dive"`
	Images            *[]imagePayload   `json:"images" validate:"omitempty,dive"`
}

func variantInputs(payloads []variantPayload) []catalog.VariantInput {
	out := make([]catalog.VariantInput, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, catalog.VariantInput{Size: p.Size, SKU: p.SKU, PriceCents: p.PriceCents, Stock: p.Stock})
	}
	return out
}

func imageInputs(payloads []imagePayload) []catalog.ImageInput {
	out := make([]catalog.ImageInput, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, catalog.ImageInput{URL: p.URL, PublicID: p.PublicID, Position: p.Position})
	}
	return out
}

// List serves the public, paginated catalog with optional filters.
func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, false)
}

// AdminList includes hidden products.
func (c *ProductController) AdminList(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, true)
}

func (c *ProductController) list(w http.ResponseWriter, r *http.Request, includeHidden bool) {
	page, err := validators.PaginationParams(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	query := r.URL.Query()
	products, next, err := c.svc.ListProducts(r.Context(), catalog.ListFilter{
		Category:      query.Get("category"),
		Brand:         query.Get("brand"),
		Search:        query.Get("q"),
		IncludeHidden: includeHidden,
		Page:          page,
	})
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{
		"products":    products,
		"next_cursor": next,
	})
}

// Get resolves a product by UUID or slug.
func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "idOrSlug")
	if idOrSlug == "" {
		responses.WriteError(w, r, c.log, pkgerrors.New(pkgerrors.CodeValidation, "product identifier is required"))
		return
	}

	product, err := c.svc.GetProduct(r.Context(), idOrSlug)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, product)
}

func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	product, err := c.svc.CreateProduct(r.Context(), catalog.CreateProductInput{
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		Brand:             req.Brand,
		PriceCents:        req.PriceCents,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		IsActive:          req.IsActive,
		Variants:          variantInputs(req.Variants),
		Images:            imageInputs(req.Images),
	})
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, product)
}

func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	productID, err := validators.UUIDParam(r, "productID")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	var req updateProductRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	input := catalog.UpdateProductInput{
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		Brand:             req.Brand,
		PriceCents:        req.PriceCents,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		IsActive:          req.IsActive,
	}
	if req.Variants != nil {
		variants := variantInputs(*req.Variants)
		input.Variants = &variants
	}
	if req.Images != nil {
		images := imageInputs(*req.Images)
		input.Images = &images
	}

	product, err := c.svc.UpdateProduct(r.Context(), productID, input)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, product)
}

func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	productID, err := validators.UUIDParam(r, "productID")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	if err := c.svc.DeleteProduct(r.Context(), productID); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, map[string]bool{"deleted": true})
}

// LowStock lists products at or below their low stock threshold.
func (c *ProductController) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := c.svc.ListLowStock(r.Context())
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, products)
}
