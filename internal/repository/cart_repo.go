package repository

import (
	"context"

	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository defines the interface for data access of Cart entities
type CartRepository interface {
	Create(ctx context.Context, cart *model.Cart) error
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	Update(ctx context.Context, cart *model.Cart) error
	AddItem(ctx context.Context, item *model.CartItem) error
	GetItem(ctx context.Context, cartID, productID uuid.UUID) (*model.CartItem, error)
	UpdateItem(ctx context.Context, item *model.CartItem) error
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(ctx context.Context, cart *model.Cart) error {
	return GetDB(ctx, r.db).Create(cart).Error
}

func (r *cartRepository) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	var cart model.Cart
	err := GetDB(ctx, r.db).
		Preload("Items.Product").
		Preload("Coupon").
		First(&cart, "user_id = ? AND status = ?", userID, model.CartStatusActive).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) Update(ctx context.Context, cart *model.Cart) error {
	return GetDB(ctx, r.db).Save(cart).Error
}

func (r *cartRepository) AddItem(ctx context.Context, item *model.CartItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *cartRepository) GetItem(ctx context.Context, cartID, productID uuid.UUID) (*model.CartItem, error) {
	var item model.CartItem
	if err := GetDB(ctx, r.db).First(&item, "cart_id = ? AND product_id = ?", cartID, productID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) UpdateItem(ctx context.Context, item *model.CartItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&model.CartItem{}).Error
}
