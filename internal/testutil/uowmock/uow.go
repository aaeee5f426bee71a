package uowmock

import (
	"context"
	"errors"

	"approval-engine/internal/domain/authority"
	"approval-engine/internal/domain/delegation"
	"approval-engine/internal/domain/request"
	"approval-engine/internal/domain/uow"
)

// UoW is a pass-through UnitOfWork for tests: no transaction, no locking,
// just the provided repo bundle. Locked reads degrade to plain reads.
type UoW struct {
	Repos uow.Repos

	// AuthorityByIDFn resolves an authority by numeric PK for
	// WithinDelegationTx; wire it when tests exercise that path.
	AuthorityByIDFn func(ctx context.Context, id uint64) (*authority.Authority, error)
}

func (u *UoW) WithinTx(_ context.Context, fn func(r uow.Repos) error) error {
	return fn(u.Repos)
}

func (u *UoW) WithinRequestTx(ctx context.Context, requestID string, fn func(r uow.Repos, req *request.ApprovalRequest) error) error {
	req, err := u.Repos.Requests.GetByRequestIDForUpdate(ctx, requestID)
	if err != nil {
		return err
	}
	return fn(u.Repos, req)
}

func (u *UoW) WithinAuthorityTx(ctx context.Context, authorityID string, fn func(r uow.Repos, a *authority.Authority) error) error {
	a, err := u.Repos.Authorities.GetByAuthorityIDForUpdate(ctx, authorityID)
	if err != nil {
		return err
	}
	return fn(u.Repos, a)
}

func (u *UoW) WithinDelegationTx(ctx context.Context, delegationID string, fn func(r uow.Repos, d *delegation.Delegation, a *authority.Authority) error) error {
	d, err := u.Repos.Delegations.GetByDelegationID(ctx, delegationID)
	if err != nil {
		return err
	}
	if u.AuthorityByIDFn == nil {
		return errors.New("uowmock: AuthorityByIDFn not wired")
	}
	a, err := u.AuthorityByIDFn(ctx, d.AuthorityID)
	if err != nil {
		return err
	}
	return fn(u.Repos, d, a)
}
