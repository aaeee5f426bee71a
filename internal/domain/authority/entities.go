package authority

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("authority not found")
	ErrHolderNotFound = errors.New("authority holder not found")
	ErrInvalidBounds  = errors.New("min_amount must not exceed max_amount")
	ErrPrimaryExists  = errors.New("authority already has a primary holder for this period")
)

type Type string

const (
	TypeFinancial   Type = "financial"
	TypeOperational Type = "operational"
	TypeHR          Type = "hr"
	TypeProcurement Type = "procurement"
	TypeLegal       Type = "legal"
	TypeIT          Type = "it"
	TypeAdmin       Type = "admin"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Rank maps a risk level onto an ordinal for sorting; higher is riskier.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskCritical:
		return 4
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	}
	return 0
}

// Authority is a named, bounded grant of approval power over a class of
// transactions. Amount bounds are optional; a nil MaxAmount means unbounded.
type Authority struct {
	ID               uint64                      `gorm:"primaryKey;column:id" json:"-"`
	AuthorityID      string                      `gorm:"size:32;uniqueIndex:ux_authorities_authority_id" json:"authority_id"`
	Name             string                      `gorm:"size:255" json:"name"`
	Code             string                      `gorm:"size:64;uniqueIndex:ux_authorities_code" json:"code"`
	Type             Type                        `gorm:"size:32" json:"type"`
	TransactionTypes datatypes.JSONSlice[string] `gorm:"column:transaction_types" json:"transaction_types"`
	MinAmount        *float64                    `gorm:"type:decimal(18,2)" json:"min_amount,omitempty"`
	MaxAmount        *float64                    `gorm:"type:decimal(18,2)" json:"max_amount,omitempty"`
	Currency         string                      `gorm:"size:8" json:"currency"`
	RiskLevel        RiskLevel                   `gorm:"size:16" json:"risk_level"`
	DepartmentID     *string                     `gorm:"size:32" json:"department_id,omitempty"`
	SLAHours         int                         `gorm:"column:sla_hours" json:"sla_hours"`
	Active           bool                        `gorm:"default:true" json:"active"`
	CreatedAt        time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt              `gorm:"index" json:"-"`
}

func (Authority) TableName() string { return "authorities" }

// Covers reports whether the authority applies to the transaction type.
func (a *Authority) Covers(txType string) bool {
	for _, t := range a.TransactionTypes {
		if t == txType {
			return true
		}
	}
	return false
}

// AdmitsAmount reports whether amount falls inside the authority's bounds.
func (a *Authority) AdmitsAmount(amount float64) bool {
	if a.MinAmount != nil && amount < *a.MinAmount {
		return false
	}
	if a.MaxAmount != nil && amount > *a.MaxAmount {
		return false
	}
	return true
}

// Holder links a person to an Authority for a validity window.
type Holder struct {
	ID                uint64     `gorm:"primaryKey;column:id" json:"-"`
	HolderID          string     `gorm:"size:32;uniqueIndex:ux_authority_holders_holder_id" json:"holder_id"`
	AuthorityID       uint64     `gorm:"column:authority_id;index" json:"-"`
	PersonID          string     `gorm:"size:32;index" json:"person_id"`
	IsPrimary         bool       `gorm:"column:is_primary" json:"is_primary"`
	CanDelegate       bool       `gorm:"column:can_delegate" json:"can_delegate"`
	MaxDelegationDays int        `gorm:"column:max_delegation_days" json:"max_delegation_days"`
	ValidFrom         time.Time  `gorm:"column:valid_from" json:"valid_from"`
	ValidTo           *time.Time `gorm:"column:valid_to" json:"valid_to,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Holder) TableName() string { return "authority_holders" }

// ActiveAt reports whether the holder's validity window contains t.
func (h *Holder) ActiveAt(t time.Time) bool {
	if t.Before(h.ValidFrom) {
		return false
	}
	if h.ValidTo != nil && t.After(*h.ValidTo) {
		return false
	}
	return true
}
