package service

import (
	"context"
	"testing"

	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/database"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/middleware"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/model"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/repository"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/pkg/apperr"

	"github.com/glebarez/sqlite"
	jwt "github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

func setupUserService(t *testing.T) UserService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewUserService(repository.NewUserRepository(db))
}

func TestSignUpAlwaysCreatesCustomer(t *testing.T) {
	users := setupUserService(t)
	ctx := context.Background()

	created, err := users.SignUp(ctx, SignUpRequest{Username: "alice", Email: "alice@store.test", Password: "secret1"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if created.Role != model.RoleCustomer {
		t.Fatalf("self-signup role: got %s", created.Role)
	}

	_, err = users.SignUp(ctx, SignUpRequest{Username: "alice", Email: "other@store.test", Password: "secret1"})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("duplicate username: expected conflict, got %v", err)
	}
	_, err = users.SignUp(ctx, SignUpRequest{Username: "alice2", Email: "alice@store.test", Password: "secret1"})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("duplicate email: expected conflict, got %v", err)
	}
}

func TestLoginIssuesUsableToken(t *testing.T) {
	users := setupUserService(t)
	ctx := context.Background()

	created, err := users.CreateUser(ctx, CreateUserRequest{Username: "bob", Email: "bob@store.test", Password: "secret1", Role: model.RoleEmployee})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	tok, err := users.Login(ctx, LoginUserRequest{Email: "bob@store.test", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	parsed, err := jwt.Parse(tok.Token, func(token *jwt.Token) (interface{}, error) {
		return middleware.GetJWTSecret(), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != created.ID.String() {
		t.Fatalf("token sub: got %v", claims["sub"])
	}
	if claims["role"] != model.RoleEmployee {
		t.Fatalf("token role: got %v", claims["role"])
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	users := setupUserService(t)
	ctx := context.Background()

	if _, err := users.CreateUser(ctx, CreateUserRequest{Username: "carol", Email: "carol@store.test", Password: "secret1", Role: model.RoleCustomer}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if _, err := users.Login(ctx, LoginUserRequest{Email: "carol@store.test", Password: "wrong"}); err == nil {
		t.Fatalf("wrong password accepted")
	}
	if _, err := users.Login(ctx, LoginUserRequest{Email: "nobody@store.test", Password: "secret1"}); err == nil {
		t.Fatalf("unknown email accepted")
	}
}
