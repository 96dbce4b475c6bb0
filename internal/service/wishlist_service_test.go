package service

import (
	"context"
	"testing"

	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/database"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/model"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/repository"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type wishlistFixture struct {
	db        *gorm.DB
	wishlists WishlistService
	carts     CartService
	customer  *model.User
	product   *ProductResponse
}

func setupWishlistFixture(t *testing.T) *wishlistFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	txManager := repository.NewTransactionManager(db)

	categories := NewCategoryService(categoryRepo)
	products := NewProductService(productRepo, categoryRepo)
	carts := NewCartService(cartRepo, productRepo, couponRepo, txManager)
	wishlists := NewWishlistService(wishlistRepo, productRepo, carts, txManager)

	ctx := context.Background()
	cat, err := categories.Create(ctx, CreateCategoryRequest{Name: "Wearables"})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	prod, err := products.Create(ctx, CreateProductRequest{
		Title:      "Smartwatch",
		Price:      decimal.RequireFromString("129.00"),
		CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}

	customer := &model.User{Username: "wisher", Email: "w@store.test", Password: "x", Role: model.RoleCustomer}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}

	return &wishlistFixture{db: db, wishlists: wishlists, carts: carts, customer: customer, product: prod}
}

func TestWishlistAddListRemove(t *testing.T) {
	f := setupWishlistFixture(t)
	ctx := context.Background()

	if err := f.wishlists.Add(ctx, f.customer.ID, f.product.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := f.wishlists.Add(ctx, f.customer.ID, f.product.ID); !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("duplicate add: expected conflict, got %v", err)
	}
	if err := f.wishlists.Add(ctx, f.customer.ID, uuid.New()); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("unknown product: expected not found, got %v", err)
	}

	items, err := f.wishlists.List(ctx, f.customer.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Smartwatch" {
		t.Fatalf("unexpected wishlist: %+v", items)
	}

	if err := f.wishlists.Remove(ctx, f.customer.ID, f.product.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := f.wishlists.Remove(ctx, f.customer.ID, f.product.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("second remove: expected not found, got %v", err)
	}
}

func TestWishlistMoveToCart(t *testing.T) {
	f := setupWishlistFixture(t)
	ctx := context.Background()

	if err := f.wishlists.Add(ctx, f.customer.ID, f.product.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := f.wishlists.MoveToCart(ctx, f.customer.ID, f.product.ID); err != nil {
		t.Fatalf("move to cart: %v", err)
	}

	items, err := f.wishlists.List(ctx, f.customer.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("moved product still wishlisted")
	}

	cart, err := f.carts.GetCart(ctx, f.customer.ID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].ProductID != f.product.ID || cart.Items[0].Quantity != 1 {
		t.Fatalf("cart does not hold the moved product: %+v", cart.Items)
	}

	if err := f.wishlists.MoveToCart(ctx, f.customer.ID, f.product.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("second move: expected not found, got %v", err)
	}
}
