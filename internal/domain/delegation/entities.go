package delegation

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

var (
	ErrNotFound            = errors.New("delegation not found")
	ErrConstraintViolation = errors.New("delegation constraint violation")
	ErrInvalidStatus       = errors.New("delegation is not in a status that allows this operation")
)

// Violation wraps ErrConstraintViolation with the specific rule that failed,
// so callers see the violated invariant by name.
func Violation(rule string) error {
	return fmt.Errorf("%w: %s", ErrConstraintViolation, rule)
}

type Type string

const (
	// TypeFull transfers the entire authority as-is.
	TypeFull Type = "full"
	// TypePartial transfers the authority under a tighter amount ceiling.
	TypePartial Type = "partial"
	// TypeSpecific transfers only a subset of transaction types.
	TypeSpecific Type = "specific"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusRevoked Status = "revoked"
	StatusRejected Status = "rejected"
)

// Delegation is a time-boxed, constrained reassignment of an Authority's
// exercise from one of its holders to another person.
type Delegation struct {
	ID                       uint64                      `gorm:"primaryKey;column:id" json:"-"`
	DelegationID             string                      `gorm:"size:32;uniqueIndex:ux_delegations_delegation_id" json:"delegation_id"`
	AuthorityID              uint64                      `gorm:"column:authority_id;index" json:"-"`
	DelegatorHolderID        uint64                      `gorm:"column:delegator_holder_id;index" json:"-"`
	DelegateePersonID        string                      `gorm:"size:32;index" json:"delegatee_person_id"`
	Type                     Type                        `gorm:"size:16" json:"type"`
	StartDate                time.Time                   `gorm:"column:start_date" json:"start_date"`
	EndDate                  time.Time                   `gorm:"column:end_date" json:"end_date"`
	MaxAmount                *float64                    `gorm:"type:decimal(18,2)" json:"max_amount,omitempty"`
	AllowedTransactionTypes  datatypes.JSONSlice[string] `gorm:"column:allowed_transaction_types" json:"allowed_transaction_types,omitempty"`
	ExcludedTransactionTypes datatypes.JSONSlice[string] `gorm:"column:excluded_transaction_types" json:"excluded_transaction_types,omitempty"`
	Status                   Status                      `gorm:"size:16;index" json:"status"`
	AllowSubDelegation       bool                        `gorm:"column:allow_sub_delegation;default:false" json:"allow_sub_delegation"`
	RequiresNotification     bool                        `gorm:"column:requires_notification" json:"requires_notification"`
	Reason                   string                      `gorm:"type:text" json:"reason,omitempty"`
	ApprovedAt               *time.Time                  `gorm:"column:approved_at" json:"approved_at,omitempty"`
	RevokedAt                *time.Time                  `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
	RevokedBy                *string                     `gorm:"size:32" json:"revoked_by,omitempty"`
	RevokeReason             string                      `gorm:"type:text" json:"revoke_reason,omitempty"`
	CreatedAt                time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Delegation) TableName() string { return "delegations" }

// WindowContains reports whether t falls inside [StartDate, EndDate].
func (d *Delegation) WindowContains(t time.Time) bool {
	return !t.Before(d.StartDate) && !t.After(d.EndDate)
}

// Overlaps reports whether [start, end] intersects the delegation's window.
func (d *Delegation) Overlaps(start, end time.Time) bool {
	return !start.After(d.EndDate) && !end.Before(d.StartDate)
}

// AllowsType applies the allowed/excluded sets to a transaction type. An empty
// allowed set means "whatever the source authority covers".
func (d *Delegation) AllowsType(txType string) bool {
	for _, t := range d.ExcludedTransactionTypes {
		if t == txType {
			return false
		}
	}
	if len(d.AllowedTransactionTypes) == 0 {
		return true
	}
	for _, t := range d.AllowedTransactionTypes {
		if t == txType {
			return true
		}
	}
	return false
}
