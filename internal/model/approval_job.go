package model

import (
	"time"

	"github.com/google/uuid"
)

// EntityType enum constants — the kinds of domain objects under approval governance
const (
	EntityTypeCategory = "CATEGORY"
	EntityTypeProduct  = "PRODUCT"
)

// Operation enum constants
const (
	OperationCreate = "CREATE"
	OperationUpdate = "UPDATE"
	OperationDelete = "DELETE"
)

// ApprovalJob status constants. A job is PENDING until exactly one decision
// moves it to APPROVED or REJECTED; both are terminal.
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// ApprovalJob records a governed mutation requested by an employee and awaiting
// an administrator's decision. The typed submission payload is kept as a neutral
// JSON envelope so the table stays schema-stable as governed types are added.
// Jobs are never deleted by the workflow — they double as an audit trail.
type ApprovalJob struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EntityType  string     `gorm:"type:varchar(30);not null;index" json:"entity_type"` // CATEGORY, PRODUCT
	Operation   string     `gorm:"type:varchar(30);not null;index" json:"operation"`   // CREATE, UPDATE, DELETE
	Status      string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	RequestedBy uuid.UUID  `gorm:"type:uuid;not null;index" json:"requested_by"`
	Requester   *User      `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	DecidedBy   *uuid.UUID `gorm:"type:uuid" json:"decided_by"`
	Decider     *User      `gorm:"foreignKey:DecidedBy" json:"decider,omitempty"`
	RequestedAt time.Time  `gorm:"not null" json:"requested_at"`
	DecidedAt   *time.Time `json:"decided_at"`
	TargetID    *uuid.UUID `gorm:"type:uuid;index" json:"target_id"`    // entity acted upon; required for UPDATE/DELETE
	PayloadJSON string     `gorm:"type:jsonb" json:"payload_json"`      // envelope; required for CREATE/UPDATE
	Reason      string     `gorm:"type:text" json:"reason"`             // required when rejecting
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Decided reports whether the job has reached a terminal status.
func (j *ApprovalJob) Decided() bool {
	return j.Status != ApprovalPending
}
