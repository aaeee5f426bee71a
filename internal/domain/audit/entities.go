package audit

import (
	"time"

	"gorm.io/datatypes"
)

type EntityKind string

const (
	KindRequest    EntityKind = "request"
	KindDelegation EntityKind = "delegation"
	KindAuthority  EntityKind = "authority"
)

// ActorSystem is the actor recorded on autonomously-triggered transitions.
const ActorSystem = "system:sla-scheduler"

// Entry is one append-only audit record. Entries are never mutated or
// deleted; this table is the system of record for external reporting.
type Entry struct {
	ID         uint64         `gorm:"primaryKey;column:id" json:"-"`
	EntryID    string         `gorm:"size:32;uniqueIndex:ux_audit_entries_entry_id" json:"entry_id"`
	EntityKind EntityKind     `gorm:"size:16;index:idx_audit_entity" json:"entity_kind"`
	EntityID   string         `gorm:"size:32;index:idx_audit_entity" json:"entity_id"`
	Action     string         `gorm:"size:64" json:"action"`
	ActorID    string         `gorm:"size:64" json:"actor_id"`
	FromStatus string         `gorm:"size:16" json:"from_status,omitempty"`
	ToStatus   string         `gorm:"size:16" json:"to_status,omitempty"`
	Detail     string         `gorm:"type:text" json:"detail,omitempty"`
	Metadata   datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (Entry) TableName() string { return "audit_entries" }
