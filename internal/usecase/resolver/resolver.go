package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"approval-engine/internal/domain/authority"
	"approval-engine/internal/domain/delegation"
)

var ErrNoPrimaryHolder = errors.New("no primary holder is valid at the requested time")

// ResolvedHolder is the answer to "who may exercise this authority right
// now". Constraints are the effective ones: the authority's own, tightened by
// the delegation when one applies.
type ResolvedHolder struct {
	PersonID         string   `json:"person_id"`
	HolderID         string   `json:"holder_id"`
	ViaDelegation    bool     `json:"via_delegation"`
	DelegationID     string   `json:"delegation_id,omitempty"`
	MaxAmount        *float64 `json:"max_amount,omitempty"`
	TransactionTypes []string `json:"transaction_types"`
}

// Service resolves the effective holder of an authority at a point in time.
// It is a pure read over holder and delegation state; it keeps no "current
// holder" pointer anywhere.
type Service struct {
	authorities authority.Repository
	delegations delegation.Repository
	log         *logrus.Logger
}

func NewService(authorities authority.Repository, delegations delegation.Repository, log *logrus.Logger) *Service {
	return &Service{authorities: authorities, delegations: delegations, log: log}
}

// CurrentHolder resolves the effective holder at `at`. An active delegation
// whose window contains `at` overlays the primary holder; a delegation past
// its end date is simply not there (expiry is a fallback, not an error).
func (s *Service) CurrentHolder(ctx context.Context, authorityID string, at time.Time) (*ResolvedHolder, error) {
	a, err := s.authorities.GetByAuthorityID(ctx, authorityID)
	if err != nil {
		return nil, err
	}
	primary, err := s.primaryAt(ctx, a, at)
	if err != nil {
		return nil, err
	}

	d, err := s.activeDelegationAt(ctx, a, primary, at)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return s.primaryResolution(a, primary), nil
	}

	return &ResolvedHolder{
		PersonID:         d.DelegateePersonID,
		HolderID:         primary.HolderID,
		ViaDelegation:    true,
		DelegationID:     d.DelegationID,
		MaxAmount:        minCeiling(a.MaxAmount, d.MaxAmount),
		TransactionTypes: effectiveTypes(a, d),
	}, nil
}

// CurrentHolderFor resolves the holder for a concrete transaction. When the
// active delegation does not cover the transaction (amount above its ceiling,
// or type outside its sets), exercise falls back to the primary holder.
func (s *Service) CurrentHolderFor(ctx context.Context, authorityID string, at time.Time, txType string, amount float64) (*ResolvedHolder, error) {
	res, err := s.CurrentHolder(ctx, authorityID, at)
	if err != nil {
		return nil, err
	}
	if !res.ViaDelegation {
		return res, nil
	}
	if res.MaxAmount != nil && amount > *res.MaxAmount {
		return s.fallbackToPrimary(ctx, authorityID, at)
	}
	if !containsType(res.TransactionTypes, txType) {
		return s.fallbackToPrimary(ctx, authorityID, at)
	}
	return res, nil
}

func (s *Service) fallbackToPrimary(ctx context.Context, authorityID string, at time.Time) (*ResolvedHolder, error) {
	a, err := s.authorities.GetByAuthorityID(ctx, authorityID)
	if err != nil {
		return nil, err
	}
	primary, err := s.primaryAt(ctx, a, at)
	if err != nil {
		return nil, err
	}
	return s.primaryResolution(a, primary), nil
}

func (s *Service) primaryAt(ctx context.Context, a *authority.Authority, at time.Time) (*authority.Holder, error) {
	holders, err := s.authorities.ListHoldersByAuthority(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	for i := range holders {
		if holders[i].IsPrimary && holders[i].ActiveAt(at) {
			return &holders[i], nil
		}
	}
	return nil, ErrNoPrimaryHolder
}

// activeDelegationAt picks the delegation in force at `at`, if any. Two
// overlapping active delegations must not happen under normal operation; the
// most recently approved one wins and the condition is logged.
func (s *Service) activeDelegationAt(ctx context.Context, a *authority.Authority, primary *authority.Holder, at time.Time) (*delegation.Delegation, error) {
	dels, err := s.delegations.ListActiveByAuthority(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	var inForce []delegation.Delegation
	for i := range dels {
		if dels[i].WindowContains(at) {
			inForce = append(inForce, dels[i])
		}
	}
	if len(inForce) == 0 {
		return nil, nil
	}
	if len(inForce) > 1 {
		s.log.WithFields(logrus.Fields{
			"authority_id": a.AuthorityID,
			"count":        len(inForce),
		}).Warn("multiple active delegations in force; picking most recently approved")
	}
	winner := &inForce[0]
	for i := range inForce {
		if laterApproved(&inForce[i], winner) {
			winner = &inForce[i]
		}
	}
	return winner, nil
}

func (s *Service) primaryResolution(a *authority.Authority, primary *authority.Holder) *ResolvedHolder {
	return &ResolvedHolder{
		PersonID:         primary.PersonID,
		HolderID:         primary.HolderID,
		MaxAmount:        a.MaxAmount,
		TransactionTypes: append([]string(nil), a.TransactionTypes...),
	}
}

func laterApproved(a, b *delegation.Delegation) bool {
	switch {
	case a.ApprovedAt == nil:
		return false
	case b.ApprovedAt == nil:
		return true
	default:
		return a.ApprovedAt.After(*b.ApprovedAt)
	}
}

func minCeiling(a, b *float64) *float64 {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case *b < *a:
		return b
	default:
		return a
	}
}

// effectiveTypes intersects the authority's type set with the delegation's
// allowed set and removes its exclusions.
func effectiveTypes(a *authority.Authority, d *delegation.Delegation) []string {
	out := make([]string, 0, len(a.TransactionTypes))
	for _, t := range a.TransactionTypes {
		if d.AllowsType(t) {
			out = append(out, t)
		}
	}
	return out
}

func containsType(set []string, t string) bool {
	for _, s := range set {
		if s == t {
			return true
		}
	}
	return false
}
