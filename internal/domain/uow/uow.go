package uow

import (
	"context"

	"approval-engine/internal/domain/audit"
	"approval-engine/internal/domain/authority"
	"approval-engine/internal/domain/delegation"
	"approval-engine/internal/domain/request"
)

type Repos struct {
	Authorities authority.Repository
	Delegations delegation.Repository
	Requests    request.Repository
	Audit       audit.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the request row first, then pass it in. Act and
	// escalate both enter through here, so whichever arrives first wins.
	WithinRequestTx(ctx context.Context, requestID string, fn func(r Repos, req *request.ApprovalRequest) error) error
	// convenience: lock the authority row first; delegation writes serialize
	// per-authority to keep active windows non-overlapping.
	WithinAuthorityTx(ctx context.Context, authorityID string, fn func(r Repos, a *authority.Authority) error) error
	// convenience: resolve a delegation, lock its authority row, then reload
	// the delegation inside the lock.
	WithinDelegationTx(ctx context.Context, delegationID string, fn func(r Repos, d *delegation.Delegation, a *authority.Authority) error) error
}
