package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/model"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/repository"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateCouponRequest struct {
	Code        string          `json:"code" binding:"required"`
	DiscountPct decimal.Decimal `json:"discount_pct" binding:"required"`
}

type CouponResponse struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	Active      bool            `json:"active"`
	CreatedAt   string          `json:"created_at"`
}

type CouponService interface {
	Create(ctx context.Context, req CreateCouponRequest) (*CouponResponse, error)
	List(ctx context.Context, offset, limit int) ([]CouponResponse, int64, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type couponService struct {
	repo repository.CouponRepository
}

func NewCouponService(repo repository.CouponRepository) CouponService {
	return &couponService{repo: repo}
}

func toCouponResponse(c *model.Coupon) *CouponResponse {
	return &CouponResponse{
		ID:          c.ID,
		Code:        c.Code,
		DiscountPct: c.DiscountPct,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

func (s *couponService) Create(ctx context.Context, req CreateCouponRequest) (*CouponResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, apperr.BadRequest("coupon code is required")
	}
	if req.DiscountPct.LessThanOrEqual(decimal.Zero) || req.DiscountPct.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperr.BadRequest("discount_pct must be between 0 and 100")
	}

	if _, err := s.repo.GetByCode(ctx, code); err == nil {
		return nil, apperr.Conflict("coupon %q already exists", code)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check coupon code: %w", err)
	}

	coupon := &model.Coupon{Code: code, DiscountPct: req.DiscountPct, Active: true}
	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	return toCouponResponse(coupon), nil
}

func (s *couponService) List(ctx context.Context, offset, limit int) ([]CouponResponse, int64, error) {
	coupons, total, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}

	result := make([]CouponResponse, 0, len(coupons))
	for i := range coupons {
		result = append(result, *toCouponResponse(&coupons[i]))
	}
	return result, total, nil
}

func (s *couponService) Deactivate(ctx context.Context, id uuid.UUID) error {
	coupon, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("coupon not found")
		}
		return fmt.Errorf("failed to fetch coupon: %w", err)
	}

	coupon.Active = false
	if err := s.repo.Update(ctx, coupon); err != nil {
		return fmt.Errorf("failed to deactivate coupon: %w", err)
	}
	return nil
}

func (s *couponService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("coupon not found")
		}
		return fmt.Errorf("failed to fetch coupon: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	return nil
}
