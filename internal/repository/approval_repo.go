package repository

import (
	"context"
	"time"

	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalJobRepository persists approval jobs. It carries no business rules;
// the approval service owns all state-machine decisions.
type ApprovalJobRepository interface {
	Create(ctx context.Context, job *model.ApprovalJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalJob, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ApprovalJob, error)
	ListPending(ctx context.Context, offset, limit int) ([]model.ApprovalJob, int64, error)
	// MarkDecided flips a PENDING job to the given terminal status. The update is
	// a compare-and-set on status, so of two racing deciders exactly one sees
	// decided=true; the loser must treat the job as already decided.
	MarkDecided(ctx context.Context, id uuid.UUID, status string, decidedBy uuid.UUID, decidedAt time.Time, reason string) (bool, error)
}

type approvalJobRepository struct {
	db *gorm.DB
}

func NewApprovalJobRepository(db *gorm.DB) ApprovalJobRepository {
	return &approvalJobRepository{db: db}
}

func (r *approvalJobRepository) Create(ctx context.Context, job *model.ApprovalJob) error {
	return GetDB(ctx, r.db).Create(job).Error
}

func (r *approvalJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalJob, error) {
	var job model.ApprovalJob
	if err := GetDB(ctx, r.db).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *approvalJobRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ApprovalJob, error) {
	var job model.ApprovalJob
	if err := GetDB(ctx, r.db).Preload("Requester").Preload("Decider").First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// ListPending returns pending jobs oldest-first so administrators triage in submission order.
func (r *approvalJobRepository) ListPending(ctx context.Context, offset, limit int) ([]model.ApprovalJob, int64, error) {
	var jobs []model.ApprovalJob
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.ApprovalJob{}).Where("status = ?", model.ApprovalPending).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Requester").
		Where("status = ?", model.ApprovalPending).
		Order("requested_at ASC").
		Offset(offset).Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

func (r *approvalJobRepository) MarkDecided(ctx context.Context, id uuid.UUID, status string, decidedBy uuid.UUID, decidedAt time.Time, reason string) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.ApprovalJob{}).
		Where("id = ? AND status = ?", id, model.ApprovalPending).
		Updates(map[string]interface{}{
			"status":     status,
			"decided_by": decidedBy,
			"decided_at": decidedAt,
			"reason":     reason,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
