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

// DTOs for Request validation
type CreateProductRequest struct {
	Title       string          `json:"title" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	CategoryID  uuid.UUID       `json:"category_id" binding:"required"`
}

type UpdateProductRequest struct {
	Title       string          `json:"title" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	CategoryID  uuid.UUID       `json:"category_id" binding:"required"`
}

// DTO for returning Product in API responses
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	CategoryID  uuid.UUID       `json:"category_id"`
	Category    string          `json:"category,omitempty"`
	RatingAvg   decimal.Decimal `json:"rating_avg"`
	RatingCount int             `json:"rating_count"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// ProductService defines the interface for business logic related to Product
type ProductService interface {
	Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error)
	List(ctx context.Context, offset, limit int) ([]ProductResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService returns a new instance of ProductService
func NewProductService(repo repository.ProductRepository, categoryRepo repository.CategoryRepository) ProductService {
	return &productService{repo: repo, categoryRepo: categoryRepo}
}

func toProductResponse(p *model.Product) *ProductResponse {
	resp := &ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		CategoryID:  p.CategoryID,
		RatingAvg:   p.RatingAvg,
		RatingCount: p.RatingCount,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
	if p.Category != nil {
		resp.Category = p.Category.Name
	}
	return resp
}

func (s *productService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.BadRequest("product title is required")
	}
	if req.Price.IsNegative() {
		return nil, apperr.BadRequest("product price must not be negative")
	}

	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("category not found")
		}
		return nil, fmt.Errorf("failed to fetch category: %w", err)
	}

	if _, err := s.repo.GetByTitle(ctx, title); err == nil {
		return nil, apperr.Conflict("product %q already exists", title)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check product title: %w", err)
	}

	product := &model.Product{
		Title:       title,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
		RatingAvg:   decimal.Zero,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return toProductResponse(product), nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	return toProductResponse(product), nil
}

func (s *productService) List(ctx context.Context, offset, limit int) ([]ProductResponse, int64, error) {
	products, total, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	result := make([]ProductResponse, 0, len(products))
	for i := range products {
		result = append(result, *toProductResponse(&products[i]))
	}
	return result, total, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.BadRequest("product title is required")
	}
	if req.Price.IsNegative() {
		return nil, apperr.BadRequest("product price must not be negative")
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}

	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("category not found")
		}
		return nil, fmt.Errorf("failed to fetch category: %w", err)
	}

	if existing, err := s.repo.GetByTitle(ctx, title); err == nil && existing.ID != id {
		return nil, apperr.Conflict("product %q already exists", title)
	}

	product.Title = title
	product.Price = req.Price
	product.Description = req.Description
	product.ImageURL = req.ImageURL
	product.CategoryID = req.CategoryID
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return toProductResponse(product), nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("product not found")
		}
		return fmt.Errorf("failed to fetch product: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
