package authoritymock

import (
	"context"

	domain "approval-engine/internal/domain/authority"
)

// Repo is a function-backed mock that satisfies authority.Repository.
type Repo struct {
	CreateFn                    func(ctx context.Context, a *domain.Authority) error
	GetByAuthorityIDFn          func(ctx context.Context, authorityID string) (*domain.Authority, error)
	GetByAuthorityIDForUpdateFn func(ctx context.Context, authorityID string) (*domain.Authority, error)
	GetByCodeFn                 func(ctx context.Context, code string) (*domain.Authority, error)
	ListActiveFn                func(ctx context.Context) ([]domain.Authority, error)
	CreateHolderFn              func(ctx context.Context, h *domain.Holder) error
	GetHolderByHolderIDFn       func(ctx context.Context, holderID string) (*domain.Holder, error)
	ListHoldersByAuthorityFn    func(ctx context.Context, authorityID uint64) ([]domain.Holder, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Authority) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}
func (m *Repo) GetByAuthorityID(ctx context.Context, authorityID string) (*domain.Authority, error) {
	if m.GetByAuthorityIDFn != nil {
		return m.GetByAuthorityIDFn(ctx, authorityID)
	}
	return nil, domain.ErrNotFound
}
func (m *Repo) GetByAuthorityIDForUpdate(ctx context.Context, authorityID string) (*domain.Authority, error) {
	if m.GetByAuthorityIDForUpdateFn != nil {
		return m.GetByAuthorityIDForUpdateFn(ctx, authorityID)
	}
	return m.GetByAuthorityID(ctx, authorityID)
}
func (m *Repo) GetByCode(ctx context.Context, code string) (*domain.Authority, error) {
	if m.GetByCodeFn != nil {
		return m.GetByCodeFn(ctx, code)
	}
	return nil, domain.ErrNotFound
}
func (m *Repo) ListActive(ctx context.Context) ([]domain.Authority, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx)
	}
	return nil, nil
}
func (m *Repo) CreateHolder(ctx context.Context, h *domain.Holder) error {
	if m.CreateHolderFn != nil {
		return m.CreateHolderFn(ctx, h)
	}
	return nil
}
func (m *Repo) GetHolderByHolderID(ctx context.Context, holderID string) (*domain.Holder, error) {
	if m.GetHolderByHolderIDFn != nil {
		return m.GetHolderByHolderIDFn(ctx, holderID)
	}
	return nil, domain.ErrHolderNotFound
}
func (m *Repo) ListHoldersByAuthority(ctx context.Context, authorityID uint64) ([]domain.Holder, error) {
	if m.ListHoldersByAuthorityFn != nil {
		return m.ListHoldersByAuthorityFn(ctx, authorityID)
	}
	return nil, nil
}
