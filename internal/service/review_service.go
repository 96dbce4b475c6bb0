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

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt string    `json:"created_at"`
}

type ReviewService interface {
	Create(ctx context.Context, userID, productID uuid.UUID, req CreateReviewRequest) (*ReviewResponse, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, offset, limit int) ([]ReviewResponse, int64, error)
}

type reviewService struct {
	repo        repository.ReviewRepository
	productRepo repository.ProductRepository
	txManager   repository.TransactionManager
}

func NewReviewService(
	repo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	txManager repository.TransactionManager,
) ReviewService {
	return &reviewService{repo: repo, productRepo: productRepo, txManager: txManager}
}

func toReviewResponse(r *model.Review) *ReviewResponse {
	resp := &ReviewResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
	if r.User != nil {
		resp.Username = r.User.Username
	}
	return resp
}

// Create records a review and recomputes the product's rating aggregate in the
// same transaction, so readers never see a review without its effect.
func (s *reviewService) Create(ctx context.Context, userID, productID uuid.UUID, req CreateReviewRequest) (*ReviewResponse, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperr.BadRequest("rating must be between 1 and 5")
	}

	if _, err := s.repo.Get(ctx, userID, productID); err == nil {
		return nil, apperr.Conflict("product already reviewed")
	}

	review := &model.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err := s.productRepo.GetByID(txCtx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product not found")
			}
			return fmt.Errorf("failed to fetch product: %w", err)
		}

		if err := s.repo.Create(txCtx, review); err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}

		count, sum, err := s.repo.RatingStats(txCtx, productID)
		if err != nil {
			return fmt.Errorf("failed to compute rating stats: %w", err)
		}

		product.RatingCount = int(count)
		if count > 0 {
			product.RatingAvg = decimal.NewFromInt(sum).Div(decimal.NewFromInt(count)).Round(2)
		} else {
			product.RatingAvg = decimal.Zero
		}
		if err := s.productRepo.Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update product rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toReviewResponse(review), nil
}

func (s *reviewService) ListByProduct(ctx context.Context, productID uuid.UUID, offset, limit int) ([]ReviewResponse, int64, error) {
	reviews, total, err := s.repo.ListByProduct(ctx, productID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}

	result := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		result = append(result, *toReviewResponse(&reviews[i]))
	}
	return result, total, nil
}
