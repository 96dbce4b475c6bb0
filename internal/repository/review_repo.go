package repository

import (
	"context"

	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewRepository defines the interface for data access of Review entities
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	Get(ctx context.Context, userID, productID uuid.UUID) (*model.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, offset, limit int) ([]model.Review, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// RatingStats returns count and sum of ratings for a product, used to
	// recompute the product's aggregate after a review write.
	RatingStats(ctx context.Context, productID uuid.UUID) (count int64, sum int64, err error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	return GetDB(ctx, r.db).Create(review).Error
}

func (r *reviewRepository) Get(ctx context.Context, userID, productID uuid.UUID) (*model.Review, error) {
	var review model.Review
	if err := GetDB(ctx, r.db).First(&review, "user_id = ? AND product_id = ?", userID, productID).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID, offset, limit int) ([]model.Review, int64, error) {
	var reviews []model.Review
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Review{}).Where("product_id = ?", productID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&reviews).Error; err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Review{}).Error
}

func (r *reviewRepository) RatingStats(ctx context.Context, productID uuid.UUID) (int64, int64, error) {
	var stats struct {
		Count int64
		Sum   int64
	}
	err := GetDB(ctx, r.db).Model(&model.Review{}).
		Select("COUNT(*) AS count, COALESCE(SUM(rating), 0) AS sum").
		Where("product_id = ?", productID).
		Scan(&stats).Error
	if err != nil {
		return 0, 0, err
	}
	return stats.Count, stats.Sum, nil
}
