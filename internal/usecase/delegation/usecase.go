package delegation

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"approval-engine/internal/domain/audit"
	"approval-engine/internal/domain/authority"
	domain "approval-engine/internal/domain/delegation"
	"approval-engine/internal/domain/uow"
	"approval-engine/internal/notify"
	"approval-engine/pkg/id"
)

// Usecase owns the delegation lifecycle: pending → active → expired, with
// revoked and rejected as the other exits. It is a state machine of its own,
// independent of any ApprovalRequest.
type Usecase struct {
	uow      uow.UnitOfWork
	notifier notify.Dispatcher
	log      *logrus.Logger
	now      func() time.Time
}

func NewUsecase(u uow.UnitOfWork, notifier notify.Dispatcher, log *logrus.Logger) *Usecase {
	return &Usecase{uow: u, notifier: notifier, log: log, now: func() time.Time { return time.Now().UTC() }}
}

type CreateInput struct {
	DelegatorHolderID        string
	DelegateePersonID        string
	AuthorityID              string
	Type                     domain.Type
	StartDate                time.Time
	EndDate                  time.Time
	MaxAmount                *float64
	AllowedTransactionTypes  []string
	ExcludedTransactionTypes []string
	AllowSubDelegation       bool
	RequiresNotification     bool
	Reason                   string
	ActorID                  string
}

// Create validates the grant against its source authority and holder, checks
// the window against every live delegation of the same (authority, delegator)
// pair under the authority row lock, and records it as pending.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (*domain.Delegation, error) {
	d := &domain.Delegation{
		DelegationID:             id.NewID32(),
		DelegateePersonID:        in.DelegateePersonID,
		Type:                     in.Type,
		StartDate:                in.StartDate,
		EndDate:                  in.EndDate,
		MaxAmount:                in.MaxAmount,
		AllowedTransactionTypes:  in.AllowedTransactionTypes,
		ExcludedTransactionTypes: in.ExcludedTransactionTypes,
		Status:                   domain.StatusPending,
		AllowSubDelegation:       in.AllowSubDelegation,
		RequiresNotification:     in.RequiresNotification,
		Reason:                   in.Reason,
	}

	err := u.uow.WithinAuthorityTx(ctx, in.AuthorityID, func(r uow.Repos, a *authority.Authority) error {
		holder, err := r.Authorities.GetHolderByHolderID(ctx, in.DelegatorHolderID)
		if err != nil {
			return err
		}
		if holder.AuthorityID != a.ID {
			return domain.Violation("delegator does not hold this authority")
		}
		if err := validateGrant(a, holder, d); err != nil {
			return err
		}

		live, err := r.Delegations.ListByAuthorityAndDelegator(ctx, a.ID, holder.ID,
			[]domain.Status{domain.StatusPending, domain.StatusActive})
		if err != nil {
			return err
		}
		for i := range live {
			if live[i].Overlaps(d.StartDate, d.EndDate) {
				return domain.Violation(fmt.Sprintf("window overlaps delegation %s", live[i].DelegationID))
			}
		}

		d.AuthorityID = a.ID
		d.DelegatorHolderID = holder.ID
		if err := r.Delegations.Create(ctx, d); err != nil {
			return err
		}
		return u.appendAudit(ctx, r, d, "delegation_created", in.ActorID, "", string(domain.StatusPending), in.Reason)
	})
	if err != nil {
		return nil, err
	}

	if d.RequiresNotification {
		_ = u.notifier.Dispatch(ctx, notify.Event{
			Kind:         notify.KindDelegationCreated,
			DelegationID: d.DelegationID,
			Recipient:    d.DelegateePersonID,
			Detail:       fmt.Sprintf("delegation window %s to %s", d.StartDate.Format(time.RFC3339), d.EndDate.Format(time.RFC3339)),
		})
	}
	return d, nil
}

// validateGrant enforces that a delegation never grants a broader scope than
// its source authority, and respects the holder's delegation rights.
func validateGrant(a *authority.Authority, holder *authority.Holder, d *domain.Delegation) error {
	if !holder.CanDelegate {
		return domain.Violation("holder is not allowed to delegate")
	}
	if !d.EndDate.After(d.StartDate) {
		return domain.Violation("end_date must be after start_date")
	}
	if holder.MaxDelegationDays > 0 {
		max := time.Duration(holder.MaxDelegationDays) * 24 * time.Hour
		if d.EndDate.Sub(d.StartDate) > max {
			return domain.Violation(fmt.Sprintf("window exceeds holder's max_delegation_days (%d)", holder.MaxDelegationDays))
		}
	}
	if d.MaxAmount != nil && a.MaxAmount != nil && *d.MaxAmount > *a.MaxAmount {
		return domain.Violation("max_amount exceeds the source authority's bound")
	}
	for _, t := range d.AllowedTransactionTypes {
		if !a.Covers(t) {
			return domain.Violation(fmt.Sprintf("transaction type %q is outside the source authority", t))
		}
	}
	switch d.Type {
	case domain.TypeFull:
		if d.MaxAmount != nil || len(d.AllowedTransactionTypes) > 0 {
			return domain.Violation("full delegation carries no extra constraints")
		}
	case domain.TypePartial:
		if d.MaxAmount == nil {
			return domain.Violation("partial delegation requires max_amount")
		}
	case domain.TypeSpecific:
		if len(d.AllowedTransactionTypes) == 0 {
			return domain.Violation("specific delegation requires allowed transaction types")
		}
	default:
		return domain.Violation(fmt.Sprintf("unknown delegation type %q", d.Type))
	}
	return nil
}

// Approve moves a pending delegation to active. The overlap invariant is
// re-checked under the lock: the window may have been taken since creation.
func (u *Usecase) Approve(ctx context.Context, delegationID, actorID string) (*domain.Delegation, error) {
	var out *domain.Delegation
	err := u.uow.WithinDelegationTx(ctx, delegationID, func(r uow.Repos, d *domain.Delegation, a *authority.Authority) error {
		if d.Status != domain.StatusPending {
			return fmt.Errorf("%w: %s", domain.ErrInvalidStatus, d.Status)
		}
		live, err := r.Delegations.ListByAuthorityAndDelegator(ctx, d.AuthorityID, d.DelegatorHolderID,
			[]domain.Status{domain.StatusActive})
		if err != nil {
			return err
		}
		for i := range live {
			if live[i].ID != d.ID && live[i].Overlaps(d.StartDate, d.EndDate) {
				return domain.Violation(fmt.Sprintf("window overlaps active delegation %s", live[i].DelegationID))
			}
		}
		now := u.now()
		d.Status = domain.StatusActive
		d.ApprovedAt = &now
		if err := r.Delegations.Save(ctx, d); err != nil {
			return err
		}
		if err := u.appendAudit(ctx, r, d, "delegation_approved", actorID, string(domain.StatusPending), string(domain.StatusActive), ""); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reject closes a pending delegation without it ever taking effect.
func (u *Usecase) Reject(ctx context.Context, delegationID, actorID, reason string) (*domain.Delegation, error) {
	return u.close(ctx, delegationID, actorID, reason, domain.StatusRejected,
		[]domain.Status{domain.StatusPending}, "delegation_rejected")
}

// Revoke withdraws a pending or active delegation. A reason is mandatory.
func (u *Usecase) Revoke(ctx context.Context, delegationID, actorID, reason string) (*domain.Delegation, error) {
	if reason == "" {
		return nil, domain.Violation("revocation requires a reason")
	}
	return u.close(ctx, delegationID, actorID, reason, domain.StatusRevoked,
		[]domain.Status{domain.StatusPending, domain.StatusActive}, "delegation_revoked")
}

func (u *Usecase) close(ctx context.Context, delegationID, actorID, reason string, to domain.Status, from []domain.Status, action string) (*domain.Delegation, error) {
	var out *domain.Delegation
	err := u.uow.WithinDelegationTx(ctx, delegationID, func(r uow.Repos, d *domain.Delegation, _ *authority.Authority) error {
		legal := false
		for _, s := range from {
			if d.Status == s {
				legal = true
			}
		}
		if !legal {
			return fmt.Errorf("%w: %s", domain.ErrInvalidStatus, d.Status)
		}
		prev := d.Status
		now := u.now()
		d.Status = to
		if to == domain.StatusRevoked {
			d.RevokedAt = &now
			d.RevokedBy = &actorID
			d.RevokeReason = reason
		}
		if err := r.Delegations.Save(ctx, d); err != nil {
			return err
		}
		if err := u.appendAudit(ctx, r, d, action, actorID, string(prev), string(to), reason); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExpireOverdue marks active delegations whose window has closed as expired.
// The resolver already ignores them; this sweep keeps stored status and audit
// history in line with the calendar.
func (u *Usecase) ExpireOverdue(ctx context.Context, now time.Time) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		overdue, err := r.Delegations.ListActiveEndedBefore(ctx, now)
		if err != nil {
			return err
		}
		for i := range overdue {
			d := &overdue[i]
			d.Status = domain.StatusExpired
			if err := r.Delegations.Save(ctx, d); err != nil {
				return err
			}
			if err := u.appendAudit(ctx, r, d, "delegation_expired", audit.ActorSystem,
				string(domain.StatusActive), string(domain.StatusExpired), ""); err != nil {
				return err
			}
			u.log.WithField("delegation_id", d.DelegationID).Info("delegation expired")
		}
		return nil
	})
}

// Get returns a delegation by public id.
func (u *Usecase) Get(ctx context.Context, delegationID string) (*domain.Delegation, error) {
	var out *domain.Delegation
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		out, err = r.Delegations.GetByDelegationID(ctx, delegationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Usecase) appendAudit(ctx context.Context, r uow.Repos, d *domain.Delegation, action, actor, from, to, detail string) error {
	return r.Audit.Append(ctx, &audit.Entry{
		EntryID:    id.NewID32(),
		EntityKind: audit.KindDelegation,
		EntityID:   d.DelegationID,
		Action:     action,
		ActorID:    actor,
		FromStatus: from,
		ToStatus:   to,
		Detail:     detail,
	})
}
