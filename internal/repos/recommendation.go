package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitmirror/fitmirror-backend/internal/logger"
	"github.com/fitmirror/fitmirror-backend/internal/types"
)

type RecommendationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, recs []*types.Recommendation) ([]*types.Recommendation, error)
	ListByScanID(ctx context.Context, tx *gorm.DB, scanID uuid.UUID) ([]*types.Recommendation, error)
}

type recommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRepo {
	repoLog := baseLog.With("repo", "RecommendationRepo")
	return &recommendationRepo{db: db, log: repoLog}
}

func (rr *recommendationRepo) Create(ctx context.Context, tx *gorm.DB, recs []*types.Recommendation) ([]*types.Recommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	if len(recs) == 0 {
		return []*types.Recommendation{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (rr *recommendationRepo) ListByScanID(ctx context.Context, tx *gorm.DB, scanID uuid.UUID) ([]*types.Recommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var results []*types.Recommendation
	if err := transaction.WithContext(ctx).
		Where("body_scan_id = ?", scanID).
		Order("priority DESC").
		Preload("Product").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
