package catalog

import (
	"context"

	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockRequest asks for qty units of a product or one of its variants.
type StockRequest struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Qty       int
}

// StockResult reports the outcome of a single reservation attempt.
type StockResult struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Reserved  bool
	Reason    string
}

// ReserveStock decrements stock and increments sold for each request using a
// conditional update, so concurrent checkouts cannot push stock negative.
// Callers run this inside a transaction and roll back when any line fails.
func ReserveStock(ctx context.Context, tx *gorm.DB, requests []StockRequest) ([]StockResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stock reservation requires a transaction")
	}

	results := make([]StockResult, 0, len(requests))
	for _, req := range requests {
		if req.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation qty must be positive")
		}

		var result *gorm.DB
		if req.VariantID != nil {
			result = tx.WithContext(ctx).Model(&models.ProductVariant{}).
				Where("id = ? AND product_id = ? AND stock >= ?", *req.VariantID, req.ProductID, req.Qty).
				Updates(map[string]any{
					"stock": gorm.Expr("stock - ?", req.Qty),
					"sold":  gorm.Expr("sold + ?", req.Qty),
				})
		} else {
			result = tx.WithContext(ctx).Model(&models.Product{}).
				Where("id = ? AND stock >= ?", req.ProductID, req.Qty).
				Updates(map[string]any{
					"stock": gorm.Expr("stock - ?", req.Qty),
					"sold":  gorm.Expr("sold + ?", req.Qty),
				})
		}
		if result.Error != nil {
			return nil, result.Error
		}

		entry := StockResult{ProductID: req.ProductID, VariantID: req.VariantID, Reserved: result.RowsAffected == 1}
		if !entry.Reserved {
			entry.Reason = "insufficient stock"
		}
		results = append(results, entry)
	}
	return results, nil
}

// ReleaseStock reverses a prior reservation, restoring stock and sold counters.
func ReleaseStock(ctx context.Context, tx *gorm.DB, requests []StockRequest) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "stock release requires a transaction")
	}

	for _, req := range requests {
		if req.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "release qty must be positive")
		}

		var result *gorm.DB
		if req.VariantID != nil {
			result = tx.WithContext(ctx).Model(&models.ProductVariant{}).
				Where("id = ? AND product_id = ?", *req.VariantID, req.ProductID).
				Updates(map[string]any{
					"stock": gorm.Expr("stock + ?", req.Qty),
					"sold":  gorm.Expr("sold - ?", req.Qty),
				})
		} else {
			result = tx.WithContext(ctx).Model(&models.Product{}).
				Where("id = ?", req.ProductID).
				Updates(map[string]any{
					"stock": gorm.Expr("stock + ?", req.Qty),
					"sold":  gorm.Expr("sold - ?", req.Qty),
				})
		}
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product for stock release not found")
		}
	}
	return nil
}
