package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitmirror/fitmirror-backend/internal/logger"
	"github.com/fitmirror/fitmirror-backend/internal/types"
)

// ProductFilter narrows catalog listings. Zero values mean "no filter".
type ProductFilter struct {
	Category string
	Gender   string
	Search   string
}

type ProductRepo interface {
	Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error)
	GetByID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*types.Product, error)
	ListByGender(ctx context.Context, tx *gorm.DB, gender string) ([]*types.Product, error)
	ListFiltered(ctx context.Context, tx *gorm.DB, filter ProductFilter) ([]*types.Product, error)
	DistinctCategories(ctx context.Context, tx *gorm.DB) ([]string, error)
	DistinctGenders(ctx context.Context, tx *gorm.DB) ([]string, error)
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	repoLog := baseLog.With("repo", "ProductRepo")
	return &productRepo{db: db, log: repoLog}
}

func (pr *productRepo) Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if len(products) == 0 {
		return []*types.Product{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (pr *productRepo) GetByID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var result types.Product
	if err := transaction.WithContext(ctx).
		Preload("Variants").
		Preload("Variants.Size").
		Preload("Variants.Color").
		Preload("Variants.Inventory").
		Where("id = ?", productID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// ListByGender returns products for the requested gender plus gender-neutral
// products, in stable catalog order.
func (pr *productRepo) ListByGender(ctx context.Context, tx *gorm.DB, gender string) ([]*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.Product
	if err := transaction.WithContext(ctx).
		Where("gender = ? OR gender = ?", gender, types.GenderUnisex).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *productRepo) ListFiltered(ctx context.Context, tx *gorm.DB, filter ProductFilter) ([]*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	query := transaction.WithContext(ctx).Model(&types.Product{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Gender != "" {
		query = query.Where("gender = ? OR gender = ?", filter.Gender, types.GenderUnisex)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	var results []*types.Product
	if err := query.Order("name ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *productRepo) DistinctCategories(ctx context.Context, tx *gorm.DB) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var categories []string
	if err := transaction.WithContext(ctx).
		Model(&types.Product{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (pr *productRepo) DistinctGenders(ctx context.Context, tx *gorm.DB) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var genders []string
	if err := transaction.WithContext(ctx).
		Model(&types.Product{}).
		Distinct("gender").
		Order("gender ASC").
		Pluck("gender", &genders).Error; err != nil {
		return nil, err
	}
	return genders, nil
}
