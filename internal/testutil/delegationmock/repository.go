package delegationmock

import (
	"context"
	"time"

	domain "approval-engine/internal/domain/delegation"
)

// Repo is a function-backed mock that satisfies delegation.Repository.
type Repo struct {
	CreateFn                      func(ctx context.Context, d *domain.Delegation) error
	GetByDelegationIDFn           func(ctx context.Context, delegationID string) (*domain.Delegation, error)
	SaveFn                        func(ctx context.Context, d *domain.Delegation) error
	ListByAuthorityAndDelegatorFn func(ctx context.Context, authorityID, delegatorHolderID uint64, statuses []domain.Status) ([]domain.Delegation, error)
	ListActiveByAuthorityFn       func(ctx context.Context, authorityID uint64) ([]domain.Delegation, error)
	ListActiveEndedBeforeFn       func(ctx context.Context, cutoff time.Time) ([]domain.Delegation, error)
}

func (m *Repo) Create(ctx context.Context, d *domain.Delegation) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}
func (m *Repo) GetByDelegationID(ctx context.Context, delegationID string) (*domain.Delegation, error) {
	if m.GetByDelegationIDFn != nil {
		return m.GetByDelegationIDFn(ctx, delegationID)
	}
	return nil, domain.ErrNotFound
}
func (m *Repo) Save(ctx context.Context, d *domain.Delegation) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, d)
	}
	return nil
}
func (m *Repo) ListByAuthorityAndDelegator(ctx context.Context, authorityID, delegatorHolderID uint64, statuses []domain.Status) ([]domain.Delegation, error) {
	if m.ListByAuthorityAndDelegatorFn != nil {
		return m.ListByAuthorityAndDelegatorFn(ctx, authorityID, delegatorHolderID, statuses)
	}
	return nil, nil
}
func (m *Repo) ListActiveByAuthority(ctx context.Context, authorityID uint64) ([]domain.Delegation, error) {
	if m.ListActiveByAuthorityFn != nil {
		return m.ListActiveByAuthorityFn(ctx, authorityID)
	}
	return nil, nil
}
func (m *Repo) ListActiveEndedBefore(ctx context.Context, cutoff time.Time) ([]domain.Delegation, error) {
	if m.ListActiveEndedBeforeFn != nil {
		return m.ListActiveEndedBeforeFn(ctx, cutoff)
	}
	return nil, nil
}
