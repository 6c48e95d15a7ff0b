package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/fitmirror/fitmirror-backend/internal/logger"
	"github.com/fitmirror/fitmirror-backend/internal/types"
)

type SizeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sizes []*types.Size) ([]*types.Size, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Size, error)
	ListNames(ctx context.Context, tx *gorm.DB) ([]string, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Size, error)
}

type sizeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSizeRepo(db *gorm.DB, baseLog *logger.Logger) SizeRepo {
	repoLog := baseLog.With("repo", "SizeRepo")
	return &sizeRepo{db: db, log: repoLog}
}

func (sr *sizeRepo) Create(ctx context.Context, tx *gorm.DB, sizes []*types.Size) ([]*types.Size, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if len(sizes) == 0 {
		return []*types.Size{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&sizes).Error; err != nil {
		return nil, err
	}
	return sizes, nil
}

func (sr *sizeRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Size, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.Size
	if err := transaction.WithContext(ctx).
		Order("sort_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *sizeRepo) ListNames(ctx context.Context, tx *gorm.DB) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var names []string
	if err := transaction.WithContext(ctx).
		Model(&types.Size{}).
		Order("sort_order ASC").
		Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

func (sr *sizeRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Size, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var result types.Size
	if err := transaction.WithContext(ctx).
		Where("name = ?", name).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
