package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nathards133/apiless/internal/model"
)

// AlertRepository is the notification store for cash-limit alerts.
type AlertRepository interface {
	Create(ctx context.Context, a *model.LimitAlert) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]model.LimitAlert, error)
}

type alertRepo struct{ db *gorm.DB }

func NewAlertRepository(db *gorm.DB) AlertRepository { return &alertRepo{db: db} }

func (r *alertRepo) Create(ctx context.Context, a *model.LimitAlert) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *alertRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]model.LimitAlert, error) {
	var alerts []model.LimitAlert
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&alerts).Error
	return alerts, err
}
