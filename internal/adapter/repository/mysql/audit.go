package mysql

import (
	"context"

	auditDomain "approval-engine/internal/domain/audit"

	"gorm.io/gorm"
)

// AuditRepository only ever inserts and reads; there is deliberately no
// update or delete path to the audit table.
type AuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) *AuditRepository { return &AuditRepository{db: db} }

func (r *AuditRepository) Append(ctx context.Context, e *auditDomain.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *AuditRepository) ListByEntity(ctx context.Context, kind auditDomain.EntityKind, entityID string) ([]auditDomain.Entry, error) {
	var out []auditDomain.Entry
	res := r.db.WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ?", kind, entityID).
		Order("id").
		Find(&out)
	return out, res.Error
}
