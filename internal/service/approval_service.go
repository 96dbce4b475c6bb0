package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/model"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/repository"
	ws "github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/websocket"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type SubmitApprovalRequest struct {
	EntityType string          `json:"entity_type" binding:"required,oneof=CATEGORY PRODUCT"`
	Operation  string          `json:"operation" binding:"required,oneof=CREATE UPDATE DELETE"`
	TargetID   *uuid.UUID      `json:"target_id"`
	Payload    json.RawMessage `json:"payload"`
	Reason     string          `json:"reason"`
}

type DecisionRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

type ApprovalJobResponse struct {
	ID            uuid.UUID  `json:"id"`
	EntityType    string     `json:"entity_type"`
	Operation     string     `json:"operation"`
	Status        string     `json:"status"`
	RequestedBy   uuid.UUID  `json:"requested_by"`
	RequesterName string     `json:"requester_name,omitempty"`
	DecidedBy     *uuid.UUID `json:"decided_by,omitempty"`
	DeciderName   string     `json:"decider_name,omitempty"`
	RequestedAt   string     `json:"requested_at"`
	DecidedAt     *string    `json:"decided_at,omitempty"`
	TargetID      *uuid.UUID `json:"target_id,omitempty"`
	Reason        string     `json:"reason,omitempty"`
}

// --- Interface ---

// ApprovalService orchestrates the approval job workflow: employees submit
// governed mutations, administrators decide them, and an approval replays the
// captured payload against the owning domain service inside one transaction so
// the decision record and its side effect are atomic.
type ApprovalService interface {
	Submit(ctx context.Context, requesterID uuid.UUID, req *SubmitApprovalRequest) (*ApprovalJobResponse, error)
	Decide(ctx context.Context, jobID, deciderID uuid.UUID, decision *DecisionRequest) (*ApprovalJobResponse, error)
	ListPending(ctx context.Context, offset, limit int) ([]ApprovalJobResponse, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ApprovalJobResponse, error)
}

type approvalService struct {
	repo      repository.ApprovalJobRepository
	auditRepo repository.AuditRepository
	codec     *PayloadCodec
	table     *DispatchTable
	txManager repository.TransactionManager
	hub       *ws.Hub
}

// NewApprovalService wires the approval engine. The hub is optional; pass nil
// in contexts without realtime notifications (tests).
func NewApprovalService(
	repo repository.ApprovalJobRepository,
	auditRepo repository.AuditRepository,
	codec *PayloadCodec,
	table *DispatchTable,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) ApprovalService {
	return &approvalService{
		repo:      repo,
		auditRepo: auditRepo,
		codec:     codec,
		table:     table,
		txManager: txManager,
		hub:       hub,
	}
}

func needsTarget(operation string) bool {
	return operation == model.OperationUpdate || operation == model.OperationDelete
}

func needsPayload(operation string) bool {
	return operation == model.OperationCreate || operation == model.OperationUpdate
}

// --- Implementation ---

func (s *approvalService) Submit(ctx context.Context, requesterID uuid.UUID, req *SubmitApprovalRequest) (*ApprovalJobResponse, error) {
	if req == nil {
		return nil, apperr.BadRequest("request is required")
	}
	if requesterID == uuid.Nil {
		return nil, apperr.BadRequest("requester id is required")
	}
	if !s.table.Governed(req.EntityType, req.Operation) {
		return nil, apperr.BadRequest("operation %s/%s is not governed", req.EntityType, req.Operation)
	}
	if needsTarget(req.Operation) && req.TargetID == nil {
		return nil, apperr.BadRequest("target_id is required for %s", req.Operation)
	}
	if needsPayload(req.Operation) && len(req.Payload) == 0 {
		return nil, apperr.BadRequest("payload is required for %s", req.Operation)
	}

	job := &model.ApprovalJob{
		EntityType:  req.EntityType,
		Operation:   req.Operation,
		Status:      model.ApprovalPending,
		RequestedBy: requesterID,
		RequestedAt: time.Now().UTC(),
		Reason:      req.Reason,
	}
	if needsTarget(req.Operation) {
		job.TargetID = req.TargetID
	}

	// Validate the payload before anything is persisted: decode against the
	// registered shape, then store the canonical re-encoding.
	if needsPayload(req.Operation) {
		decoded, err := s.codec.Decode(req.EntityType, req.Operation, string(req.Payload))
		if err != nil {
			return nil, apperr.Wrap(apperr.KindBadRequest, "invalid payload", err)
		}
		envelope, err := s.codec.Encode(req.EntityType, req.Operation, decoded)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindBadRequest, "invalid payload", err)
		}
		job.PayloadJSON = envelope
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.repo.Create(txCtx, job); createErr != nil {
			return fmt.Errorf("failed to create approval job: %w", createErr)
		}
		return s.writeAudit(txCtx, model.ActionSubmitApprovalJob, requesterID, job)
	})
	if err != nil {
		return nil, err
	}

	resp := toApprovalJobResponse(job)
	s.notify("approval.submitted", resp)
	return resp, nil
}

func (s *approvalService) Decide(ctx context.Context, jobID, deciderID uuid.UUID, decision *DecisionRequest) (*ApprovalJobResponse, error) {
	if decision == nil {
		return nil, apperr.BadRequest("decision is required")
	}
	if deciderID == uuid.Nil {
		return nil, apperr.BadRequest("decider id is required")
	}

	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("approval job not found")
		}
		return nil, fmt.Errorf("failed to fetch approval job: %w", err)
	}

	if job.Decided() {
		return nil, apperr.Conflict("approval job is already decided")
	}
	if deciderID == job.RequestedBy {
		return nil, apperr.BadRequest("cannot decide own request")
	}
	if !decision.Approve && strings.TrimSpace(decision.Reason) == "" {
		return nil, apperr.BadRequest("reason is required when rejecting")
	}

	status := model.ApprovalRejected
	if decision.Approve {
		status = model.ApprovalApproved
	}
	now := time.Now().UTC()

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// Compare-and-set on status: of two racing deciders exactly one flips
		// the row, the other sees a conflict. The pre-check above is only a
		// fast path; this is the authoritative guard.
		ok, casErr := s.repo.MarkDecided(txCtx, jobID, status, deciderID, now, decision.Reason)
		if casErr != nil {
			return fmt.Errorf("failed to update approval job: %w", casErr)
		}
		if !ok {
			return apperr.Conflict("approval job is already decided")
		}

		if decision.Approve {
			var payload interface{}
			if job.PayloadJSON != "" {
				decoded, decErr := s.codec.Decode(job.EntityType, job.Operation, job.PayloadJSON)
				if decErr != nil {
					// Stored envelope no longer decodes — schema drift since
					// submission. Refuse the approval; the job stays pending.
					return apperr.Wrap(apperr.KindBadRequest, "stored payload no longer decodes", decErr)
				}
				payload = decoded
			}

			// Dispatch errors pass through unchanged and roll back the
			// decision along with any partial effect.
			if dispErr := s.table.Dispatch(txCtx, job.EntityType, job.Operation, job.TargetID, payload); dispErr != nil {
				return dispErr
			}
		}

		action := model.ActionRejectJob
		if decision.Approve {
			action = model.ActionApproveJob
		}
		return s.writeAudit(txCtx, action, deciderID, job)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByIDWithRelations(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload approval job: %w", err)
	}

	resp := toApprovalJobResponse(updated)
	s.notify("approval.decided", resp)
	return resp, nil
}

func (s *approvalService) ListPending(ctx context.Context, offset, limit int) ([]ApprovalJobResponse, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	jobs, total, err := s.repo.ListPending(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending approval jobs: %w", err)
	}

	result := make([]ApprovalJobResponse, 0, len(jobs))
	for i := range jobs {
		result = append(result, *toApprovalJobResponse(&jobs[i]))
	}
	return result, total, nil
}

func (s *approvalService) GetByID(ctx context.Context, id uuid.UUID) (*ApprovalJobResponse, error) {
	job, err := s.repo.FindByIDWithRelations(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("approval job not found")
		}
		return nil, fmt.Errorf("failed to fetch approval job: %w", err)
	}
	return toApprovalJobResponse(job), nil
}

func (s *approvalService) writeAudit(ctx context.Context, action string, userID uuid.UUID, job *model.ApprovalJob) error {
	details, _ := json.Marshal(map[string]interface{}{
		"entity_type": job.EntityType,
		"operation":   job.Operation,
		"target_id":   job.TargetID,
	})
	entry := &model.AuditLog{
		UserID:     &userID,
		Action:     action,
		EntityID:   job.ID.String(),
		EntityName: job.EntityType + "/" + job.Operation,
		Details:    string(details),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// notify pushes an approval event to connected admin dashboards.
func (s *approvalService) notify(event string, job *ApprovalJobResponse) {
	if s.hub == nil {
		return
	}
	s.hub.Notify(event, job)
}

// --- Helpers ---

func toApprovalJobResponse(j *model.ApprovalJob) *ApprovalJobResponse {
	resp := &ApprovalJobResponse{
		ID:          j.ID,
		EntityType:  j.EntityType,
		Operation:   j.Operation,
		Status:      j.Status,
		RequestedBy: j.RequestedBy,
		DecidedBy:   j.DecidedBy,
		RequestedAt: j.RequestedAt.Format(time.RFC3339),
		TargetID:    j.TargetID,
		Reason:      j.Reason,
	}
	if j.Requester != nil {
		resp.RequesterName = j.Requester.Username
	}
	if j.Decider != nil {
		resp.DeciderName = j.Decider.Username
	}
	if j.DecidedAt != nil {
		s := j.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &s
	}
	return resp
}
