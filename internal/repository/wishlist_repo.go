package repository

import (
	"context"

	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WishlistRepository defines the interface for data access of wishlist items
type WishlistRepository interface {
	Add(ctx context.Context, item *model.WishlistItem) error
	Get(ctx context.Context, userID, productID uuid.UUID) (*model.WishlistItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.WishlistItem, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) Add(ctx context.Context, item *model.WishlistItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *wishlistRepository) Get(ctx context.Context, userID, productID uuid.UUID) (*model.WishlistItem, error) {
	var item model.WishlistItem
	if err := GetDB(ctx, r.db).First(&item, "user_id = ? AND product_id = ?", userID, productID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *wishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.WishlistItem, error) {
	var items []model.WishlistItem
	if err := GetDB(ctx, r.db).Preload("Product").Where("user_id = ?", userID).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *wishlistRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&model.WishlistItem{}).Error
}
