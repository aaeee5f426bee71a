package mysql

import (
	"context"
	"errors"
	"time"

	delDomain "approval-engine/internal/domain/delegation"

	"gorm.io/gorm"
)

type DelegationRepository struct{ db *gorm.DB }

func NewDelegationRepository(db *gorm.DB) *DelegationRepository { return &DelegationRepository{db: db} }

func (r *DelegationRepository) Create(ctx context.Context, d *delDomain.Delegation) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DelegationRepository) GetByDelegationID(ctx context.Context, delegationID string) (*delDomain.Delegation, error) {
	var out delDomain.Delegation
	res := r.db.WithContext(ctx).Where("delegation_id = ?", delegationID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, delDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *DelegationRepository) Save(ctx context.Context, d *delDomain.Delegation) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *DelegationRepository) ListByAuthorityAndDelegator(ctx context.Context, authorityID, delegatorHolderID uint64, statuses []delDomain.Status) ([]delDomain.Delegation, error) {
	var out []delDomain.Delegation
	res := r.db.WithContext(ctx).
		Where("authority_id = ? AND delegator_holder_id = ? AND status IN ?", authorityID, delegatorHolderID, statuses).
		Order("start_date").
		Find(&out)
	return out, res.Error
}

func (r *DelegationRepository) ListActiveByAuthority(ctx context.Context, authorityID uint64) ([]delDomain.Delegation, error) {
	var out []delDomain.Delegation
	res := r.db.WithContext(ctx).
		Where("authority_id = ? AND status = ?", authorityID, delDomain.StatusActive).
		Order("approved_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *DelegationRepository) ListActiveEndedBefore(ctx context.Context, cutoff time.Time) ([]delDomain.Delegation, error) {
	var out []delDomain.Delegation
	res := r.db.WithContext(ctx).
		Where("status = ? AND end_date < ?", delDomain.StatusActive, cutoff).
		Order("end_date").
		Find(&out)
	return out, res.Error
}
