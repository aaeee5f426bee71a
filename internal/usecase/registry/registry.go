package registry

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"approval-engine/internal/domain/audit"
	"approval-engine/internal/domain/authority"
	"approval-engine/internal/domain/uow"
	"approval-engine/pkg/id"
)

var (
	// ErrNoAuthorityDefined: no active authority covers the transaction type
	// at all. Configuration gap, surfaced to the submitter, never retried.
	ErrNoAuthorityDefined = errors.New("no authority defined for transaction type")
	// ErrNoWorkflowMatch: authorities exist for the type but none admits the
	// amount (above every tier's ceiling).
	ErrNoWorkflowMatch = errors.New("no workflow matches transaction")
)

// Transaction is the subset of a business transaction the engine routes on.
type Transaction struct {
	Type         string
	Amount       float64
	Currency     string
	DepartmentID *string
}

// LevelDef is one step of a selected workflow: the tier authority plus its
// service window.
type LevelDef struct {
	Authority authority.Authority
	SLA       time.Duration
}

// WorkflowDefinition is an ordered chain of levels, ascending by tier ceiling.
type WorkflowDefinition struct {
	Levels []LevelDef
}

type Service struct {
	authorities     authority.Repository
	uow             uow.UnitOfWork
	log             *logrus.Logger
	defaultSLAHours int
}

func NewService(authorities authority.Repository, u uow.UnitOfWork, log *logrus.Logger, defaultSLAHours int) *Service {
	if defaultSLAHours <= 0 {
		defaultSLAHours = 48
	}
	return &Service{authorities: authorities, uow: u, log: log, defaultSLAHours: defaultSLAHours}
}

// ResolveAuthorities returns the candidate tiers for a transaction: active
// authorities covering its type, compatible with its department, whose floor
// admits the amount. Ordered by ascending ceiling (unbounded last), then
// descending risk.
func (s *Service) ResolveAuthorities(ctx context.Context, txType string, amount float64, departmentID *string) ([]authority.Authority, error) {
	all, err := s.authorities.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	typeCovered := false
	var candidates []authority.Authority
	for _, a := range all {
		if !a.Covers(txType) {
			continue
		}
		typeCovered = true
		if a.DepartmentID != nil && departmentID != nil && *a.DepartmentID != *departmentID {
			continue
		}
		if a.MinAmount != nil && amount < *a.MinAmount {
			continue
		}
		candidates = append(candidates, a)
	}
	if !typeCovered {
		return nil, ErrNoAuthorityDefined
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := candidates[i].MaxAmount, candidates[j].MaxAmount
		switch {
		case ci == nil && cj == nil:
			return candidates[i].RiskLevel.Rank() > candidates[j].RiskLevel.Rank()
		case ci == nil:
			return false
		case cj == nil:
			return true
		case *ci != *cj:
			return *ci < *cj
		default:
			return candidates[i].RiskLevel.Rank() > candidates[j].RiskLevel.Rank()
		}
	})
	return candidates, nil
}

// SelectWorkflow builds the level chain for a transaction: every tier from
// the lowest ceiling up to and including the first tier that covers the
// amount. Low-value transactions short-circuit at level 1; high-value ones
// collect every tier's sign-off. No covering tier means no workflow.
func (s *Service) SelectWorkflow(ctx context.Context, tx Transaction) (*WorkflowDefinition, error) {
	tiers, err := s.ResolveAuthorities(ctx, tx.Type, tx.Amount, tx.DepartmentID)
	if err != nil {
		return nil, err
	}

	var wf WorkflowDefinition
	for _, tier := range tiers {
		wf.Levels = append(wf.Levels, LevelDef{Authority: tier, SLA: s.slaFor(tier)})
		if tier.MaxAmount == nil || tx.Amount <= *tier.MaxAmount {
			return &wf, nil
		}
	}
	return nil, ErrNoWorkflowMatch
}

func (s *Service) slaFor(a authority.Authority) time.Duration {
	hours := a.SLAHours
	if hours <= 0 {
		hours = s.defaultSLAHours
	}
	return time.Duration(hours) * time.Hour
}

// ---- administration ----

type CreateAuthorityInput struct {
	Name             string
	Code             string
	Type             authority.Type
	TransactionTypes []string
	MinAmount        *float64
	MaxAmount        *float64
	Currency         string
	RiskLevel        authority.RiskLevel
	DepartmentID     *string
	SLAHours         int
	ActorID          string
}

func (s *Service) CreateAuthority(ctx context.Context, in CreateAuthorityInput) (*authority.Authority, error) {
	if in.MinAmount != nil && in.MaxAmount != nil && *in.MinAmount > *in.MaxAmount {
		return nil, authority.ErrInvalidBounds
	}

	a := &authority.Authority{
		AuthorityID:      id.NewID32(),
		Name:             in.Name,
		Code:             in.Code,
		Type:             in.Type,
		TransactionTypes: in.TransactionTypes,
		MinAmount:        in.MinAmount,
		MaxAmount:        in.MaxAmount,
		Currency:         in.Currency,
		RiskLevel:        in.RiskLevel,
		DepartmentID:     in.DepartmentID,
		SLAHours:         in.SLAHours,
		Active:           true,
	}
	err := s.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Authorities.Create(ctx, a); err != nil {
			return err
		}
		return r.Audit.Append(ctx, &audit.Entry{
			EntryID:    id.NewID32(),
			EntityKind: audit.KindAuthority,
			EntityID:   a.AuthorityID,
			Action:     "authority_created",
			ActorID:    in.ActorID,
			ToStatus:   "active",
			Detail:     "authority " + a.Code + " created",
		})
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

type AssignHolderInput struct {
	AuthorityID       string
	PersonID          string
	IsPrimary         bool
	CanDelegate       bool
	MaxDelegationDays int
	ValidFrom         time.Time
	ValidTo           *time.Time
	ActorID           string
}

// AssignHolder attaches a person to an authority. The single-primary
// invariant is checked under the authority row lock.
func (s *Service) AssignHolder(ctx context.Context, in AssignHolderInput) (*authority.Holder, error) {
	h := &authority.Holder{
		HolderID:          id.NewID32(),
		PersonID:          in.PersonID,
		IsPrimary:         in.IsPrimary,
		CanDelegate:       in.CanDelegate,
		MaxDelegationDays: in.MaxDelegationDays,
		ValidFrom:         in.ValidFrom,
		ValidTo:           in.ValidTo,
	}
	err := s.uow.WithinAuthorityTx(ctx, in.AuthorityID, func(r uow.Repos, a *authority.Authority) error {
		if in.IsPrimary {
			existing, err := r.Authorities.ListHoldersByAuthority(ctx, a.ID)
			if err != nil {
				return err
			}
			for i := range existing {
				if existing[i].IsPrimary && windowsOverlap(&existing[i], h) {
					return authority.ErrPrimaryExists
				}
			}
		}
		h.AuthorityID = a.ID
		if err := r.Authorities.CreateHolder(ctx, h); err != nil {
			return err
		}
		return r.Audit.Append(ctx, &audit.Entry{
			EntryID:    id.NewID32(),
			EntityKind: audit.KindAuthority,
			EntityID:   a.AuthorityID,
			Action:     "holder_assigned",
			ActorID:    in.ActorID,
			Detail:     "person " + in.PersonID + " assigned as holder",
		})
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func windowsOverlap(a, b *authority.Holder) bool {
	if a.ValidTo != nil && b.ValidFrom.After(*a.ValidTo) {
		return false
	}
	if b.ValidTo != nil && a.ValidFrom.After(*b.ValidTo) {
		return false
	}
	return true
}
