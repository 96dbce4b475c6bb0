package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/model"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/repository"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WishlistItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url"`
	AddedAt   string          `json:"added_at"`
}

type WishlistService interface {
	List(ctx context.Context, userID uuid.UUID) ([]WishlistItemResponse, error)
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	// MoveToCart removes the product from the wishlist and adds it to the
	// user's cart in one transaction.
	MoveToCart(ctx context.Context, userID, productID uuid.UUID) error
}

type wishlistService struct {
	repo        repository.WishlistRepository
	productRepo repository.ProductRepository
	cartService CartService
	txManager   repository.TransactionManager
}

func NewWishlistService(
	repo repository.WishlistRepository,
	productRepo repository.ProductRepository,
	cartService CartService,
	txManager repository.TransactionManager,
) WishlistService {
	return &wishlistService{
		repo:        repo,
		productRepo: productRepo,
		cartService: cartService,
		txManager:   txManager,
	}
}

func (s *wishlistService) List(ctx context.Context, userID uuid.UUID) ([]WishlistItemResponse, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}

	result := make([]WishlistItemResponse, 0, len(items))
	for _, item := range items {
		result = append(result, WishlistItemResponse{
			ProductID: item.ProductID,
			Title:     item.Product.Title,
			Price:     item.Product.Price,
			ImageURL:  item.Product.ImageURL,
			AddedAt:   item.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, nil
}

func (s *wishlistService) Add(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("product not found")
		}
		return fmt.Errorf("failed to fetch product: %w", err)
	}

	if _, err := s.repo.Get(ctx, userID, productID); err == nil {
		return apperr.Conflict("product already in wishlist")
	}

	item := &model.WishlistItem{UserID: userID, ProductID: productID}
	if err := s.repo.Add(ctx, item); err != nil {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return nil
}

func (s *wishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.repo.Get(ctx, userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("product not in wishlist")
		}
		return fmt.Errorf("failed to fetch wishlist item: %w", err)
	}

	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	return nil
}

func (s *wishlistService) MoveToCart(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.repo.Get(ctx, userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("product not in wishlist")
		}
		return fmt.Errorf("failed to fetch wishlist item: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.cartService.AddItem(txCtx, userID, AddCartItemRequest{ProductID: productID, Quantity: 1}); err != nil {
			return err
		}
		return s.repo.Remove(txCtx, userID, productID)
	})
}
