package requestmock

import (
	"context"
	"time"

	domain "approval-engine/internal/domain/request"
)

// Repo is a function-backed mock that satisfies request.Repository.
type Repo struct {
	CreateFn                  func(ctx context.Context, r *domain.ApprovalRequest) error
	GetByRequestIDFn          func(ctx context.Context, requestID string) (*domain.ApprovalRequest, error)
	GetByRequestIDForUpdateFn func(ctx context.Context, requestID string) (*domain.ApprovalRequest, error)
	SaveFn                    func(ctx context.Context, r *domain.ApprovalRequest) error
	SaveLevelFn               func(ctx context.Context, l *domain.Level) error
	ListDuePendingFn          func(ctx context.Context, now time.Time, limit int) ([]domain.DueLevel, error)
}

func (m *Repo) Create(ctx context.Context, r *domain.ApprovalRequest) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}
func (m *Repo) GetByRequestID(ctx context.Context, requestID string) (*domain.ApprovalRequest, error) {
	if m.GetByRequestIDFn != nil {
		return m.GetByRequestIDFn(ctx, requestID)
	}
	return nil, domain.ErrNotFound
}
func (m *Repo) GetByRequestIDForUpdate(ctx context.Context, requestID string) (*domain.ApprovalRequest, error) {
	if m.GetByRequestIDForUpdateFn != nil {
		return m.GetByRequestIDForUpdateFn(ctx, requestID)
	}
	return m.GetByRequestID(ctx, requestID)
}
func (m *Repo) Save(ctx context.Context, r *domain.ApprovalRequest) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, r)
	}
	return nil
}
func (m *Repo) SaveLevel(ctx context.Context, l *domain.Level) error {
	if m.SaveLevelFn != nil {
		return m.SaveLevelFn(ctx, l)
	}
	return nil
}
func (m *Repo) ListDuePending(ctx context.Context, now time.Time, limit int) ([]domain.DueLevel, error) {
	if m.ListDuePendingFn != nil {
		return m.ListDuePendingFn(ctx, now, limit)
	}
	return nil, nil
}
