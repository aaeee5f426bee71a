package delegation

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, d *Delegation) error
	GetByDelegationID(ctx context.Context, delegationID string) (*Delegation, error)
	Save(ctx context.Context, d *Delegation) error

	// ListByAuthorityAndDelegator returns the delegations a delegator has on an
	// authority in any of the given statuses (overlap checks).
	ListByAuthorityAndDelegator(ctx context.Context, authorityID, delegatorHolderID uint64, statuses []Status) ([]Delegation, error)

	// ListActiveByAuthority returns delegations with status=active on the
	// authority, most recently approved first.
	ListActiveByAuthority(ctx context.Context, authorityID uint64) ([]Delegation, error)

	// ListActiveEndedBefore returns active delegations whose window closed
	// before cutoff (expiry sweep).
	ListActiveEndedBefore(ctx context.Context, cutoff time.Time) ([]Delegation, error)
}
