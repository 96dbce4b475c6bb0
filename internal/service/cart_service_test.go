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

type cartFixture struct {
	db       *gorm.DB
	carts    CartService
	coupons  CouponService
	customer *model.User
	product  *ProductResponse
}

func setupCartFixture(t *testing.T) *cartFixture {
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
	txManager := repository.NewTransactionManager(db)

	categories := NewCategoryService(categoryRepo)
	products := NewProductService(productRepo, categoryRepo)
	carts := NewCartService(cartRepo, productRepo, couponRepo, txManager)
	coupons := NewCouponService(couponRepo)

	ctx := context.Background()
	cat, err := categories.Create(ctx, CreateCategoryRequest{Name: "Audio"})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	prod, err := products.Create(ctx, CreateProductRequest{
		Title:      "Headphones",
		Price:      decimal.RequireFromString("19.99"),
		CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}

	customer := &model.User{Username: "shopper", Email: "s@store.test", Password: "x", Role: model.RoleCustomer}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}

	return &cartFixture{db: db, carts: carts, coupons: coupons, customer: customer, product: prod}
}

func TestCartTotalsWithCoupon(t *testing.T) {
	f := setupCartFixture(t)
	ctx := context.Background()

	cart, err := f.carts.AddItem(ctx, f.customer.ID, AddCartItemRequest{ProductID: f.product.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if !cart.Subtotal.Equal(decimal.RequireFromString("59.97")) {
		t.Fatalf("subtotal: got %s", cart.Subtotal)
	}
	if !cart.Total.Equal(cart.Subtotal) {
		t.Fatalf("total without coupon must equal subtotal")
	}

	if _, err := f.coupons.Create(ctx, CreateCouponRequest{Code: "save15", DiscountPct: decimal.NewFromInt(15)}); err != nil {
		t.Fatalf("create coupon: %v", err)
	}

	// Codes apply case-insensitively
	cart, err = f.carts.ApplyCoupon(ctx, f.customer.ID, ApplyCouponRequest{Code: "Save15"})
	if err != nil {
		t.Fatalf("apply coupon: %v", err)
	}
	if cart.CouponCode != "SAVE15" {
		t.Fatalf("coupon code: got %q", cart.CouponCode)
	}
	// 15% of 59.97 is 8.9955, rounded to 9.00
	if !cart.Discount.Equal(decimal.RequireFromString("9.00")) {
		t.Fatalf("discount: got %s", cart.Discount)
	}
	if !cart.Total.Equal(decimal.RequireFromString("50.97")) {
		t.Fatalf("total: got %s", cart.Total)
	}
}

func TestCartAddExistingBumpsQuantity(t *testing.T) {
	f := setupCartFixture(t)
	ctx := context.Background()

	if _, err := f.carts.AddItem(ctx, f.customer.ID, AddCartItemRequest{ProductID: f.product.ID, Quantity: 1}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	cart, err := f.carts.AddItem(ctx, f.customer.ID, AddCartItemRequest{ProductID: f.product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected a single line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 3 {
		t.Fatalf("quantity: got %d", cart.Items[0].Quantity)
	}
}

func TestCartRejectsUnknownProductAndCoupon(t *testing.T) {
	f := setupCartFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, f.customer.ID, AddCartItemRequest{ProductID: uuid.New(), Quantity: 1})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("unknown product: expected not found, got %v", err)
	}

	_, err = f.carts.ApplyCoupon(ctx, f.customer.ID, ApplyCouponRequest{Code: "NOPE"})
	if !apperr.IsKind(err, apperr.KindBadRequest) {
		t.Fatalf("unknown coupon: expected bad request, got %v", err)
	}

	// Deactivated coupons no longer apply
	created, err := f.coupons.Create(ctx, CreateCouponRequest{Code: "OLD10", DiscountPct: decimal.NewFromInt(10)})
	if err != nil {
		t.Fatalf("create coupon: %v", err)
	}
	if err := f.coupons.Deactivate(ctx, created.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	_, err = f.carts.ApplyCoupon(ctx, f.customer.ID, ApplyCouponRequest{Code: "OLD10"})
	if !apperr.IsKind(err, apperr.KindBadRequest) {
		t.Fatalf("inactive coupon: expected bad request, got %v", err)
	}
}

func TestCartRemoveItem(t *testing.T) {
	f := setupCartFixture(t)
	ctx := context.Background()

	if _, err := f.carts.AddItem(ctx, f.customer.ID, AddCartItemRequest{ProductID: f.product.ID, Quantity: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := f.carts.RemoveItem(ctx, f.customer.ID, f.product.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart.Items))
	}
	if !cart.Total.IsZero() {
		t.Fatalf("empty cart total: got %s", cart.Total)
	}

	_, err = f.carts.RemoveItem(ctx, f.customer.ID, f.product.ID)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("removing absent line: expected not found, got %v", err)
	}
}
