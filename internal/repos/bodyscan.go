package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitmirror/fitmirror-backend/internal/logger"
	"github.com/fitmirror/fitmirror-backend/internal/types"
)

type BodyScanRepo interface {
	Create(ctx context.Context, tx *gorm.DB, scans []*types.BodyScan) ([]*types.BodyScan, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.BodyScan, error)
}

type bodyScanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBodyScanRepo(db *gorm.DB, baseLog *logger.Logger) BodyScanRepo {
	repoLog := baseLog.With("repo", "BodyScanRepo")
	return &bodyScanRepo{db: db, log: repoLog}
}

func (br *bodyScanRepo) Create(ctx context.Context, tx *gorm.DB, scans []*types.BodyScan) ([]*types.BodyScan, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	if len(scans) == 0 {
		return []*types.BodyScan{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&scans).Error; err != nil {
		return nil, err
	}
	return scans, nil
}

func (br *bodyScanRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.BodyScan, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	var result types.BodyScan
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
