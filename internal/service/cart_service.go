package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/model"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/repository"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

type CartItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartResponse struct {
	ID         uuid.UUID          `json:"id"`
	Items      []CartItemResponse `json:"items"`
	CouponCode string             `json:"coupon_code,omitempty"`
	Subtotal   decimal.Decimal    `json:"subtotal"`
	Discount   decimal.Decimal    `json:"discount"`
	Total      decimal.Decimal    `json:"total"`
}

// --- Interface ---

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartResponse, error)
	AddItem(ctx context.Context, userID uuid.UUID, req AddCartItemRequest) (*CartResponse, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, req UpdateCartItemRequest) (*CartResponse, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartResponse, error)
	ApplyCoupon(ctx context.Context, userID uuid.UUID, req ApplyCouponRequest) (*CartResponse, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	couponRepo  repository.CouponRepository
	txManager   repository.TransactionManager
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	txManager repository.TransactionManager,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

// getOrCreateCart returns the user's ACTIVE cart, creating one on first use.
func (s *cartService) getOrCreateCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetActiveByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}

	cart = &model.Cart{UserID: userID, Status: model.CartStatusActive}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toCartResponse(cart), nil
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req AddCartItemRequest) (*CartResponse, error) {
	if req.Quantity < 1 {
		return nil, apperr.BadRequest("quantity must be at least 1")
	}

	if _, err := s.productRepo.GetByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		cart, err := s.getOrCreateCart(txCtx, userID)
		if err != nil {
			return err
		}

		// Adding an already-carted product bumps its quantity instead
		existing, err := s.cartRepo.GetItem(txCtx, cart.ID, req.ProductID)
		if err == nil {
			existing.Quantity += req.Quantity
			return s.cartRepo.UpdateItem(txCtx, existing)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to fetch cart item: %w", err)
		}

		item := &model.CartItem{CartID: cart.ID, ProductID: req.ProductID, Quantity: req.Quantity}
		return s.cartRepo.AddItem(txCtx, item)
	})
	if err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

func (s *cartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, req UpdateCartItemRequest) (*CartResponse, error) {
	if req.Quantity < 1 {
		return nil, apperr.BadRequest("quantity must be at least 1")
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.GetItem(ctx, cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product not in cart")
		}
		return nil, fmt.Errorf("failed to fetch cart item: %w", err)
	}

	item.Quantity = req.Quantity
	if err := s.cartRepo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.GetCart(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartResponse, error) {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.cartRepo.GetItem(ctx, cart.ID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product not in cart")
		}
		return nil, fmt.Errorf("failed to fetch cart item: %w", err)
	}

	if err := s.cartRepo.RemoveItem(ctx, cart.ID, productID); err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return s.GetCart(ctx, userID)
}

func (s *cartService) ApplyCoupon(ctx context.Context, userID uuid.UUID, req ApplyCouponRequest) (*CartResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, apperr.BadRequest("coupon code is required")
	}

	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.BadRequest("unknown coupon code")
		}
		return nil, fmt.Errorf("failed to fetch coupon: %w", err)
	}
	if !coupon.Active {
		return nil, apperr.BadRequest("coupon is no longer active")
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.CouponID = &coupon.ID
	if err := s.cartRepo.Update(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to apply coupon: %w", err)
	}

	return s.GetCart(ctx, userID)
}

// --- Helpers ---

func toCartResponse(cart *model.Cart) *CartResponse {
	resp := &CartResponse{
		ID:       cart.ID,
		Items:    make([]CartItemResponse, 0, len(cart.Items)),
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
	}

	for _, item := range cart.Items {
		lineTotal := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		resp.Items = append(resp.Items, CartItemResponse{
			ProductID: item.ProductID,
			Title:     item.Product.Title,
			UnitPrice: item.Product.Price,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
		})
		resp.Subtotal = resp.Subtotal.Add(lineTotal)
	}

	if cart.Coupon != nil && cart.Coupon.Active {
		resp.CouponCode = cart.Coupon.Code
		resp.Discount = resp.Subtotal.Mul(cart.Coupon.DiscountPct).Div(decimal.NewFromInt(100)).Round(2)
	}
	resp.Total = resp.Subtotal.Sub(resp.Discount)

	return resp
}
