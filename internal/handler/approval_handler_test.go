package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/database"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/middleware"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/model"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/repository"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type approvalAPI struct {
	router   *gin.Engine
	db       *gorm.DB
	employee *model.User
	admin    *model.User
}

func setupApprovalAPI(t *testing.T) *approvalAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	approvalRepo := repository.NewApprovalJobRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	categories := service.NewCategoryService(categoryRepo)
	products := service.NewProductService(productRepo, categoryRepo)
	codec := service.NewPayloadCodec()
	table, err := service.NewDispatchTable(codec, categories, products)
	if err != nil {
		t.Fatalf("dispatch table: %v", err)
	}
	approvals := service.NewApprovalService(approvalRepo, auditRepo, codec, table, txManager, nil)

	router := gin.New()
	NewApprovalHandler(approvals).RegisterRoutes(router.Group(""))

	api := &approvalAPI{
		router:   router,
		db:       db,
		employee: &model.User{Username: "employee1", Email: "e1@store.test", Password: "x", Role: model.RoleEmployee},
		admin:    &model.User{Username: "admin1", Email: "a1@store.test", Password: "x", Role: model.RoleAdmin},
	}
	if err := db.Create(api.employee).Error; err != nil {
		t.Fatalf("create employee: %v", err)
	}
	if err := db.Create(api.admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return api
}

func signToken(t *testing.T, user *model.User) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(middleware.GetJWTSecret())
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func (a *approvalAPI) do(t *testing.T, method, path, body string, as *model.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+signToken(t, as))
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *approvalAPI) submitCategory(t *testing.T, name string) uuid.UUID {
	t.Helper()
	body := `{"entity_type":"CATEGORY","operation":"CREATE","payload":{"name":"` + name + `"}}`
	w := a.do(t, http.MethodPost, "/api/approval-jobs", body, a.employee)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d; body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			ID     uuid.UUID `json:"id"`
			Status string    `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse submit response: %v", err)
	}
	if resp.Data.Status != model.ApprovalPending {
		t.Fatalf("expected PENDING, got %s", resp.Data.Status)
	}
	return resp.Data.ID
}

func TestApprovalEndpointsRequireAuth(t *testing.T) {
	a := setupApprovalAPI(t)

	w := a.do(t, http.MethodPost, "/api/approval-jobs", `{}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated submit: expected 401, got %d", w.Code)
	}

	// The pending queue is admin-only
	w = a.do(t, http.MethodGet, "/api/approval-jobs", "", a.employee)
	if w.Code != http.StatusForbidden {
		t.Fatalf("employee list: expected 403, got %d", w.Code)
	}

	// Deciding is admin-only
	w = a.do(t, http.MethodPut, "/api/approval-jobs/"+uuid.NewString()+"/decision", `{"approve":true}`, a.employee)
	if w.Code != http.StatusForbidden {
		t.Fatalf("employee decide: expected 403, got %d", w.Code)
	}
}

func TestApprovalSubmitAndApproveOverHTTP(t *testing.T) {
	a := setupApprovalAPI(t)

	jobID := a.submitCategory(t, "Electronics")

	w := a.do(t, http.MethodGet, "/api/approval-jobs", "", a.admin)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), jobID.String()) {
		t.Fatalf("pending list missing job: %s", w.Body.String())
	}

	w = a.do(t, http.MethodPut, "/api/approval-jobs/"+jobID.String()+"/decision", `{"approve":true}`, a.admin)
	if w.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d; body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"status":"APPROVED"`) {
		t.Fatalf("decision response: %s", w.Body.String())
	}

	var count int64
	a.db.Model(&model.Category{}).Where("name = ?", "Electronics").Count(&count)
	if count != 1 {
		t.Fatalf("approved category not created")
	}

	// Terminal: a second decision conflicts
	w = a.do(t, http.MethodPut, "/api/approval-jobs/"+jobID.String()+"/decision", `{"approve":false,"reason":"late"}`, a.admin)
	if w.Code != http.StatusConflict {
		t.Fatalf("re-decide: expected 409, got %d", w.Code)
	}
}

func TestApprovalRejectOverHTTP(t *testing.T) {
	a := setupApprovalAPI(t)

	jobID := a.submitCategory(t, "Books")

	// Rejecting without a reason is a 400
	w := a.do(t, http.MethodPut, "/api/approval-jobs/"+jobID.String()+"/decision", `{"approve":false}`, a.admin)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank reason: expected 400, got %d", w.Code)
	}

	w = a.do(t, http.MethodPut, "/api/approval-jobs/"+jobID.String()+"/decision", `{"approve":false,"reason":"not needed"}`, a.admin)
	if w.Code != http.StatusOK {
		t.Fatalf("reject: expected 200, got %d; body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"status":"REJECTED"`) {
		t.Fatalf("decision response: %s", w.Body.String())
	}

	var count int64
	a.db.Model(&model.Category{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejection created a category")
	}
}

func TestApprovalGetByIDAndBadIDs(t *testing.T) {
	a := setupApprovalAPI(t)

	jobID := a.submitCategory(t, "Toys")

	w := a.do(t, http.MethodGet, "/api/approval-jobs/"+jobID.String(), "", a.employee)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}

	w = a.do(t, http.MethodGet, "/api/approval-jobs/not-a-uuid", "", a.employee)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", w.Code)
	}

	w = a.do(t, http.MethodPut, "/api/approval-jobs/"+uuid.NewString()+"/decision", `{"approve":true}`, a.admin)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown job: expected 404, got %d", w.Code)
	}
}
