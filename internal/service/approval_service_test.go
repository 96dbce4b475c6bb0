package service

import (
	"context"
	"encoding/json"
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

type approvalFixture struct {
	db         *gorm.DB
	approvals  ApprovalService
	categories CategoryService
	products   ProductService
	employee   *model.User
	admin      *model.User
}

// setupApprovalFixture wires the full approval engine over in-memory sqlite:
// real repositories, real domain services, real dispatch table, no hub.
func setupApprovalFixture(t *testing.T) *approvalFixture {
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
	approvalRepo := repository.NewApprovalJobRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	categories := NewCategoryService(categoryRepo)
	products := NewProductService(productRepo, categoryRepo)

	codec := NewPayloadCodec()
	table, err := NewDispatchTable(codec, categories, products)
	if err != nil {
		t.Fatalf("build dispatch table: %v", err)
	}

	approvals := NewApprovalService(approvalRepo, auditRepo, codec, table, txManager, nil)

	f := &approvalFixture{
		db:         db,
		approvals:  approvals,
		categories: categories,
		products:   products,
		employee:   &model.User{Username: "employee1", Email: "e1@store.test", Password: "x", Role: model.RoleEmployee},
		admin:      &model.User{Username: "admin1", Email: "a1@store.test", Password: "x", Role: model.RoleAdmin},
	}
	if err := db.Create(f.employee).Error; err != nil {
		t.Fatalf("create employee: %v", err)
	}
	if err := db.Create(f.admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return f
}

func (f *approvalFixture) submitCategoryCreate(t *testing.T, name string) *ApprovalJobResponse {
	t.Helper()
	payload, _ := json.Marshal(CreateCategoryPayload{Name: name})
	job, err := f.approvals.Submit(context.Background(), f.employee.ID, &SubmitApprovalRequest{
		EntityType: model.EntityTypeCategory,
		Operation:  model.OperationCreate,
		Payload:    payload,
	})
	if err != nil {
		t.Fatalf("submit category create: %v", err)
	}
	return job
}

func TestSubmitCreatesPendingJob(t *testing.T) {
	f := setupApprovalFixture(t)

	job := f.submitCategoryCreate(t, "Electronics")

	if job.Status != model.ApprovalPending {
		t.Fatalf("expected PENDING, got %s", job.Status)
	}
	if job.RequestedBy != f.employee.ID {
		t.Fatalf("requested_by mismatch: %s", job.RequestedBy)
	}
	if job.DecidedBy != nil || job.DecidedAt != nil {
		t.Fatalf("fresh job must not carry decision fields")
	}

	// Submission must cause no catalog mutation
	var count int64
	f.db.Model(&model.Category{}).Count(&count)
	if count != 0 {
		t.Fatalf("submission mutated the catalog: %d categories", count)
	}

	pending, total, err := f.approvals.ListPending(context.Background(), 0, 20)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if total != 1 || len(pending) != 1 || pending[0].ID != job.ID {
		t.Fatalf("pending list does not reflect the new job: total=%d", total)
	}

	// Submission is audited
	var audits int64
	f.db.Model(&model.AuditLog{}).Where("action = ?", model.ActionSubmitApprovalJob).Count(&audits)
	if audits != 1 {
		t.Fatalf("expected 1 submit audit entry, got %d", audits)
	}
}

func TestSubmitValidation(t *testing.T) {
	f := setupApprovalFixture(t)
	ctx := context.Background()
	payload, _ := json.Marshal(CreateCategoryPayload{Name: "Books"})

	cases := []struct {
		name string
		req  *SubmitApprovalRequest
	}{
		{"nil request", nil},
		{"ungoverned pair", &SubmitApprovalRequest{EntityType: "USER", Operation: model.OperationCreate, Payload: payload}},
		{"delete without target", &SubmitApprovalRequest{EntityType: model.EntityTypeCategory, Operation: model.OperationDelete}},
		{"update without target", &SubmitApprovalRequest{EntityType: model.EntityTypeCategory, Operation: model.OperationUpdate, Payload: payload}},
		{"create without payload", &SubmitApprovalRequest{EntityType: model.EntityTypeCategory, Operation: model.OperationCreate}},
		{"unknown payload field", &SubmitApprovalRequest{EntityType: model.EntityTypeCategory, Operation: model.OperationCreate, Payload: json.RawMessage(`{"name":"x","color":"red"}`)}},
		{"unparseable payload", &SubmitApprovalRequest{EntityType: model.EntityTypeCategory, Operation: model.OperationCreate, Payload: json.RawMessage(`{"name":`)}},
	}
	for _, tc := range cases {
		_, err := f.approvals.Submit(ctx, f.employee.ID, tc.req)
		if !apperr.IsKind(err, apperr.KindBadRequest) {
			t.Errorf("%s: expected bad request, got %v", tc.name, err)
		}
	}

	_, err := f.approvals.Submit(ctx, uuid.Nil, &SubmitApprovalRequest{EntityType: model.EntityTypeCategory, Operation: model.OperationCreate, Payload: payload})
	if !apperr.IsKind(err, apperr.KindBadRequest) {
		t.Errorf("nil requester: expected bad request, got %v", err)
	}

	// Nothing above may have persisted a job
	var count int64
	f.db.Model(&model.ApprovalJob{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected submissions persisted %d jobs", count)
	}
}

func TestApproveExecutesSideEffect(t *testing.T) {
	f := setupApprovalFixture(t)
	ctx := context.Background()

	job := f.submitCategoryCreate(t, "Electronics")

	decided, err := f.approvals.Decide(ctx, job.ID, f.admin.ID, &DecisionRequest{Approve: true})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if decided.Status != model.ApprovalApproved {
		t.Fatalf("expected APPROVED, got %s", decided.Status)
	}
	if decided.DecidedBy == nil || *decided.DecidedBy != f.admin.ID {
		t.Fatalf("decided_by not recorded")
	}
	if decided.DecidedAt == nil {
		t.Fatalf("decided_at not recorded")
	}

	var cat model.Category
	if err := f.db.First(&cat, "name = ?", "Electronics").Error; err != nil {
		t.Fatalf("approved category was not created: %v", err)
	}

	// Decided jobs leave the pending queue
	_, total, err := f.approvals.ListPending(ctx, 0, 20)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if total != 0 {
		t.Fatalf("decided job still pending: total=%d", total)
	}

	var audits int64
	f.db.Model(&model.AuditLog{}).Where("action = ?", model.ActionApproveJob).Count(&audits)
	if audits != 1 {
		t.Fatalf("expected 1 approve audit entry, got %d", audits)
	}
}

func TestRejectLeavesCatalogUntouched(t *testing.T) {
	f := setupApprovalFixture(t)
	ctx := context.Background()

	job := f.submitCategoryCreate(t, "Electronics")

	// Blank reason is not a rejection
	_, err := f.approvals.Decide(ctx, job.ID, f.admin.ID, &DecisionRequest{Approve: false, Reason: "   "})
	if !apperr.IsKind(err, apperr.KindBadRequest) {
		t.Fatalf("blank reason: expected bad request, got %v", err)
	}

	decided, err := f.approvals.Decide(ctx, job.ID, f.admin.ID, &DecisionRequest{Approve: false, Reason: "duplicate of existing request"})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if decided.Status != model.ApprovalRejected {
		t.Fatalf("expected REJECTED, got %s", decided.Status)
	}
	if decided.Reason != "duplicate of existing request" {
		t.Fatalf("rejection reason not stored: %q", decided.Reason)
	}

	var count int64
	f.db.Model(&model.Category{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejection mutated the catalog: %d categories", count)
	}
}

func TestSelfApprovalForbidden(t *testing.T) {
	f := setupApprovalFixture(t)
	ctx := context.Background()

	job := f.submitCategoryCreate(t, "Electronics")

	_, err := f.approvals.Decide(ctx, job.ID, f.employee.ID, &DecisionRequest{Approve: true})
	if !apperr.IsKind(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request on self-approval, got %v", err)
	}

	got, err := f.approvals.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != model.ApprovalPending {
		t.Fatalf("self-approval attempt changed status to %s", got.Status)
	}
}

func TestDecideIsTerminal(t *testing.T) {
	f := setupApprovalFixture(t)
	ctx := context.Background()

	job := f.submitCategoryCreate(t, "Electronics")

	if _, err := f.approvals.Decide(ctx, job.ID, f.admin.ID, &DecisionRequest{Approve: true}); err != nil {
		t.Fatalf("first decision: %v", err)
	}

	// Second decision of either direction conflicts
	_, err := f.approvals.Decide(ctx, job.ID, f.admin.ID, &DecisionRequest{Approve: false, Reason: "changed my mind"})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict on re-decision, got %v", err)
	}
	_, err = f.approvals.Decide(ctx, job.ID, f.admin.ID, &DecisionRequest{Approve: true})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict on repeated approval, got %v", err)
	}

	// The side effect ran exactly once
	var count int64
	f.db.Model(&model.Category{}).Where("name = ?", "Electronics").Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly 1 category, got %d", count)
	}
}

func TestDecideUnknownJob(t *testing.T) {
	f := setupApprovalFixture(t)

	_, err := f.approvals.Decide(context.Background(), uuid.New(), f.admin.ID, &DecisionRequest{Approve: true})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDispatchFailureRollsBackDecision(t *testing.T) {
	f := setupApprovalFixture(t)
	ctx := context.Background()

	// Product create pointing at a category that does not exist: the dispatch
	// fails at decision time with the domain service's own error.
	payload, _ := json.Marshal(CreateProductPayload{
		Title:      "Ghost Keyboard",
		Price:      decimal.NewFromFloat(59.99),
		CategoryID: uuid.New(),
	})
	job, err := f.approvals.Submit(ctx, f.employee.ID, &SubmitApprovalRequest{
		EntityType: model.EntityTypeProduct,
		Operation:  model.OperationCreate,
		Payload:    payload,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err = f.approvals.Decide(ctx, job.ID, f.admin.ID, &DecisionRequest{Approve: true})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected the domain service's not-found to pass through, got %v", err)
	}

	// The failed approval rolled back: job is still pending and decidable
	got, err := f.approvals.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != model.ApprovalPending {
		t.Fatalf("failed approval left status %s", got.Status)
	}
	if got.DecidedBy != nil {
		t.Fatalf("failed approval recorded a decider")
	}

	_, total, err := f.approvals.ListPending(ctx, 0, 20)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if total != 1 {
		t.Fatalf("failed approval removed the job from the queue: total=%d", total)
	}

	// A later reject of the same job still works
	if _, err := f.approvals.Decide(ctx, job.ID, f.admin.ID, &DecisionRequest{Approve: false, Reason: "category missing"}); err != nil {
		t.Fatalf("reject after failed approval: %v", err)
	}
}

func TestApprovedUpdateAndDeleteFlow(t *testing.T) {
	f := setupApprovalFixture(t)
	ctx := context.Background()

	created, err := f.categories.Create(ctx, CreateCategoryRequest{Name: "Gaming"})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}

	// Approved UPDATE renames the category
	payload, _ := json.Marshal(UpdateCategoryPayload{Name: "Gaming Gear"})
	job, err := f.approvals.Submit(ctx, f.employee.ID, &SubmitApprovalRequest{
		EntityType: model.EntityTypeCategory,
		Operation:  model.OperationUpdate,
		TargetID:   &created.ID,
		Payload:    payload,
	})
	if err != nil {
		t.Fatalf("submit update: %v", err)
	}
	if _, err := f.approvals.Decide(ctx, job.ID, f.admin.ID, &DecisionRequest{Approve: true}); err != nil {
		t.Fatalf("approve update: %v", err)
	}
	after, err := f.categories.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("reload category: %v", err)
	}
	if after.Name != "Gaming Gear" {
		t.Fatalf("approved update did not apply: %q", after.Name)
	}

	// Approved DELETE removes it
	job, err = f.approvals.Submit(ctx, f.employee.ID, &SubmitApprovalRequest{
		EntityType: model.EntityTypeCategory,
		Operation:  model.OperationDelete,
		TargetID:   &created.ID,
	})
	if err != nil {
		t.Fatalf("submit delete: %v", err)
	}
	if _, err := f.approvals.Decide(ctx, job.ID, f.admin.ID, &DecisionRequest{Approve: true}); err != nil {
		t.Fatalf("approve delete: %v", err)
	}
	if _, err := f.categories.GetByID(ctx, created.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("approved delete did not apply: %v", err)
	}
}
