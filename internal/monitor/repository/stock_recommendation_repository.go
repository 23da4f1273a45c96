package repository

import (
	"context"

	"golang-market-alert/internal/entity"

	"gorm.io/gorm"
)

type StockRecommendationRepository interface {
	Create(ctx context.Context, rec *entity.StockRecommendation) error
	LatestBySymbol(ctx context.Context, symbol string) (*entity.StockRecommendation, error)
}

type stockRecommendationRepository struct {
	db *gorm.DB
}

func NewStockRecommendationRepository(db *gorm.DB) StockRecommendationRepository {
	return &stockRecommendationRepository{db: db}
}

func (r *stockRecommendationRepository) Create(ctx context.Context, rec *entity.StockRecommendation) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *stockRecommendationRepository) LatestBySymbol(ctx context.Context, symbol string) (*entity.StockRecommendation, error) {
	var rec entity.StockRecommendation
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("created_at DESC").
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

type nopStockRecommendationRepository struct{}

func NewNopStockRecommendationRepository() StockRecommendationRepository {
	return nopStockRecommendationRepository{}
}

func (nopStockRecommendationRepository) Create(context.Context, *entity.StockRecommendation) error {
	return nil
}

func (nopStockRecommendationRepository) LatestBySymbol(context.Context, string) (*entity.StockRecommendation, error) {
	return nil, gorm.ErrRecordNotFound
}
