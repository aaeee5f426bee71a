package mysql

import (
	"context"

	"approval-engine/internal/domain/authority"
	"approval-engine/internal/domain/delegation"
	"approval-engine/internal/domain/request"
	"approval-engine/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Authorities: NewAuthorityRepository(tx),
		Delegations: NewDelegationRepository(tx),
		Requests:    NewRequestRepository(tx),
		Audit:       NewAuditRepository(tx),
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
}

func (u *GormUoW) WithinRequestTx(ctx context.Context, requestID string, fn func(r uow.Repos, req *request.ApprovalRequest) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// lock the request row up-front; act and escalate serialize here
		req, err := r.Requests.GetByRequestIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		return fn(r, req)
	})
}

func (u *GormUoW) WithinAuthorityTx(ctx context.Context, authorityID string, fn func(r uow.Repos, a *authority.Authority) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// lock the authority row; delegation windows stay non-overlapping
		a, err := r.Authorities.GetByAuthorityIDForUpdate(ctx, authorityID)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}

func (u *GormUoW) WithinDelegationTx(ctx context.Context, delegationID string, fn func(r uow.Repos, d *delegation.Delegation, a *authority.Authority) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dels := NewDelegationRepository(tx)
		d, err := dels.GetByDelegationID(ctx, delegationID)
		if err != nil {
			return err
		}
		// take the authority lock first, then reload the delegation inside it
		a, err := NewAuthorityRepository(tx).getByIDForUpdate(ctx, d.AuthorityID)
		if err != nil {
			return err
		}
		d, err = dels.GetByDelegationID(ctx, delegationID)
		if err != nil {
			return err
		}
		return fn(repos(tx), d, a)
	})
}
