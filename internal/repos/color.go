package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/fitmirror/fitmirror-backend/internal/logger"
	"github.com/fitmirror/fitmirror-backend/internal/types"
)

type ColorRepo interface {
	Create(ctx context.Context, tx *gorm.DB, colors []*types.Color) ([]*types.Color, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Color, error)
	GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Color, error)
}

type colorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewColorRepo(db *gorm.DB, baseLog *logger.Logger) ColorRepo {
	repoLog := baseLog.With("repo", "ColorRepo")
	return &colorRepo{db: db, log: repoLog}
}

func (cr *colorRepo) Create(ctx context.Context, tx *gorm.DB, colors []*types.Color) ([]*types.Color, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if len(colors) == 0 {
		return []*types.Color{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&colors).Error; err != nil {
		return nil, err
	}
	return colors, nil
}

func (cr *colorRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Color, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.Color
	if err := transaction.WithContext(ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *colorRepo) GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Color, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.Color
	if len(names) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("name IN ?", names).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
