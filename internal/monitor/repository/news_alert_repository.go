package repository

import (
	"context"

	"golang-market-alert/internal/entity"

	"gorm.io/gorm"
)

// NewsAlertRepository stores delivered alerts.
type NewsAlertRepository interface {
	Create(ctx context.Context, alert *entity.NewsAlert) error
	ListRecent(ctx context.Context, limit int) ([]entity.NewsAlert, error)
}

type newsAlertRepository struct {
	db *gorm.DB
}

func NewNewsAlertRepository(db *gorm.DB) NewsAlertRepository {
	return &newsAlertRepository{db: db}
}

func (r *newsAlertRepository) Create(ctx context.Context, alert *entity.NewsAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *newsAlertRepository) ListRecent(ctx context.Context, limit int) ([]entity.NewsAlert, error) {
	var alerts []entity.NewsAlert
	err := r.db.WithContext(ctx).
		Order("sent_at DESC").
		Limit(limit).
		Find(&alerts).Error
	return alerts, err
}

// nopNewsAlertRepository is used when no database is configured.
type nopNewsAlertRepository struct{}

func NewNopNewsAlertRepository() NewsAlertRepository {
	return nopNewsAlertRepository{}
}

func (nopNewsAlertRepository) Create(context.Context, *entity.NewsAlert) error { return nil }

func (nopNewsAlertRepository) ListRecent(context.Context, int) ([]entity.NewsAlert, error) {
	return []entity.NewsAlert{}, nil
}
