package request

import (
	"time"

	domain "approval-engine/internal/domain/request"
	"approval-engine/internal/sla"
)

type SubmitInput struct {
	RequesterID     string
	TransactionType string
	Amount          float64
	Currency        string
	DepartmentID    *string
	Priority        domain.Priority
	IsUrgent        bool
}

type ActInput struct {
	RequestID  string
	LevelOrder int
	ActorID    string
	Decision   domain.Decision
	Comments   string
}

type LevelDTO struct {
	LevelOrder       int               `json:"level_order"`
	AuthorityID      string            `json:"authority_id"`
	AuthorityCode    string            `json:"authority_code"`
	ApproverPersonID string            `json:"approver_person_id,omitempty"`
	ApproverName     string            `json:"approver_name,omitempty"`
	ViaDelegation    bool              `json:"via_delegation"`
	Status           string            `json:"status"`
	ActivatedAt      *time.Time        `json:"activated_at,omitempty"`
	DueAt            *time.Time        `json:"due_at,omitempty"`
	ActedAt          *time.Time        `json:"acted_at,omitempty"`
	Comments         string            `json:"comments,omitempty"`
	SLAStatus        sla.DerivedStatus `json:"sla_status,omitempty"`
}

type RequestDTO struct {
	RequestID       string            `json:"request_id"`
	RequesterID     string            `json:"requester_id"`
	TransactionType string            `json:"transaction_type"`
	Amount          float64           `json:"amount"`
	Currency        string            `json:"currency"`
	DepartmentID    *string           `json:"department_id,omitempty"`
	Status          string            `json:"status"`
	CurrentLevel    int               `json:"current_level"`
	Priority        string            `json:"priority"`
	IsUrgent        bool              `json:"is_urgent"`
	Levels          []LevelDTO        `json:"levels"`
	SLAStatus       sla.DerivedStatus `json:"sla_status,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
}
