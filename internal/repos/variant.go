package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitmirror/fitmirror-backend/internal/logger"
	"github.com/fitmirror/fitmirror-backend/internal/types"
)

type ProductVariantRepo interface {
	Create(ctx context.Context, tx *gorm.DB, variants []*types.ProductVariant) ([]*types.ProductVariant, error)
	ListInStockByProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) ([]*types.ProductVariant, error)
	ListInStockByProductAndSize(ctx context.Context, tx *gorm.DB, productID uuid.UUID, sizeName string) ([]*types.ProductVariant, error)
	ListWithInventory(ctx context.Context, tx *gorm.DB) ([]*types.ProductVariant, error)
}

type productVariantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductVariantRepo(db *gorm.DB, baseLog *logger.Logger) ProductVariantRepo {
	repoLog := baseLog.With("repo", "ProductVariantRepo")
	return &productVariantRepo{db: db, log: repoLog}
}

func (vr *productVariantRepo) Create(ctx context.Context, tx *gorm.DB, variants []*types.ProductVariant) ([]*types.ProductVariant, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	if len(variants) == 0 {
		return []*types.ProductVariant{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

func (vr *productVariantRepo) ListInStockByProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) ([]*types.ProductVariant, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	var results []*types.ProductVariant
	if err := transaction.WithContext(ctx).
		Joins("JOIN inventory ON inventory.variant_id = product_variant.id AND inventory.quantity > 0").
		Where("product_variant.product_id = ?", productID).
		Preload("Size").
		Preload("Color").
		Preload("Inventory").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (vr *productVariantRepo) ListInStockByProductAndSize(ctx context.Context, tx *gorm.DB, productID uuid.UUID, sizeName string) ([]*types.ProductVariant, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	var results []*types.ProductVariant
	if err := transaction.WithContext(ctx).
		Joins("JOIN inventory ON inventory.variant_id = product_variant.id AND inventory.quantity > 0").
		Joins("JOIN size ON size.id = product_variant.size_id").
		Where("product_variant.product_id = ? AND size.name = ?", productID, sizeName).
		Preload("Size").
		Preload("Color").
		Preload("Inventory").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (vr *productVariantRepo) ListWithInventory(ctx context.Context, tx *gorm.DB) ([]*types.ProductVariant, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	var results []*types.ProductVariant
	if err := transaction.WithContext(ctx).
		Preload("Product").
		Preload("Size").
		Preload("Color").
		Preload("Inventory").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
