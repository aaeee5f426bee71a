package request

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("approval request not found")
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrStaleLevel means the acted-on level is no longer the active pending
	// level; a concurrent actor or the scheduler already advanced it.
	ErrStaleLevel       = errors.New("stale level")
	ErrUnauthorized     = errors.New("actor is not the resolved approver")
	ErrCommentsRequired = errors.New("comments are mandatory on rejection")
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusCancelled  Status = "cancelled"
	// StatusEscalated is a transient sub-state of in_progress: the active
	// level was force-advanced by an SLA breach.
	StatusEscalated Status = "escalated"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

type LevelStatus string

const (
	LevelPending  LevelStatus = "pending"
	LevelApproved LevelStatus = "approved"
	LevelRejected LevelStatus = "rejected"
	LevelSkipped  LevelStatus = "skipped"
	LevelWaiting  LevelStatus = "waiting"
)

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ApprovalRequest owns the lifecycle of one transaction's approval chain.
// While the chain is live exactly one level is pending; everything before it
// is terminal and everything after it is waiting.
type ApprovalRequest struct {
	ID              uint64         `gorm:"primaryKey;column:id" json:"-"`
	RequestID       string         `gorm:"size:32;uniqueIndex:ux_approval_requests_request_id" json:"request_id"`
	RequesterID     string         `gorm:"size:32;index" json:"requester_id"`
	TransactionType string         `gorm:"size:64" json:"transaction_type"`
	Amount          float64        `gorm:"type:decimal(18,2)" json:"amount"`
	Currency        string         `gorm:"size:8" json:"currency"`
	DepartmentID    *string        `gorm:"size:32" json:"department_id,omitempty"`
	Status          Status         `gorm:"size:16;index" json:"status"`
	CurrentLevel    int            `gorm:"column:current_level" json:"current_level"`
	Priority        Priority       `gorm:"size:16" json:"priority"`
	IsUrgent        bool           `gorm:"column:is_urgent" json:"is_urgent"`
	Levels          []Level        `gorm:"foreignKey:RequestID;references:ID" json:"levels"`
	CompletedAt     *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ApprovalRequest) TableName() string { return "approval_requests" }

// LevelByOrder returns the level with the given 1-based order, or nil.
func (r *ApprovalRequest) LevelByOrder(order int) *Level {
	for i := range r.Levels {
		if r.Levels[i].LevelOrder == order {
			return &r.Levels[i]
		}
	}
	return nil
}

// LastLevel returns the highest level order in the chain.
func (r *ApprovalRequest) LastLevel() int {
	last := 0
	for i := range r.Levels {
		if r.Levels[i].LevelOrder > last {
			last = r.Levels[i].LevelOrder
		}
	}
	return last
}

// Level is one step of the chain, bound to one Authority. Authority identity
// and approver are snapshotted at activation time; authorization at act time
// re-resolves against live delegation state.
type Level struct {
	ID               uint64      `gorm:"primaryKey;column:id" json:"-"`
	RequestID        uint64      `gorm:"column:request_id;index" json:"-"`
	LevelOrder       int         `gorm:"column:level_order" json:"level_order"`
	AuthorityID      string      `gorm:"size:32" json:"authority_id"`
	AuthorityCode    string      `gorm:"size:64" json:"authority_code"`
	ApproverPersonID string      `gorm:"size:32" json:"approver_person_id,omitempty"`
	ViaDelegation    bool        `gorm:"column:via_delegation" json:"via_delegation"`
	Status           LevelStatus `gorm:"size:16;index" json:"status"`
	SLASeconds       int64       `gorm:"column:sla_seconds" json:"sla_seconds"`
	ActivatedAt      *time.Time  `gorm:"column:activated_at" json:"activated_at,omitempty"`
	DueAt            *time.Time  `gorm:"column:due_at" json:"due_at,omitempty"`
	ActedAt          *time.Time  `gorm:"column:acted_at" json:"acted_at,omitempty"`
	Comments         string      `gorm:"type:text" json:"comments,omitempty"`
	CreatedAt        time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Level) TableName() string { return "approval_request_levels" }

// SLA returns the level's service window as a duration.
func (l *Level) SLA() time.Duration { return time.Duration(l.SLASeconds) * time.Second }
