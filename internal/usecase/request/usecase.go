package request

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"approval-engine/internal/directory"
	"approval-engine/internal/domain/audit"
	domain "approval-engine/internal/domain/request"
	"approval-engine/internal/domain/uow"
	"approval-engine/internal/notify"
	"approval-engine/internal/sla"
	"approval-engine/internal/usecase/registry"
	"approval-engine/internal/usecase/resolver"
	"approval-engine/pkg/id"
)

// Usecase owns the approval request state machine. Every mutation runs inside
// WithinRequestTx: the request row is locked, the transition and its audit
// entries commit together or not at all.
type Usecase struct {
	uow            uow.UnitOfWork
	registry       *registry.Service
	resolver       *resolver.Service
	people         directory.Directory
	notifier       notify.Dispatcher
	log            *logrus.Logger
	atRiskFraction float64
	now            func() time.Time
}

func NewUsecase(u uow.UnitOfWork, reg *registry.Service, res *resolver.Service, people directory.Directory, notifier notify.Dispatcher, log *logrus.Logger, atRiskFraction float64) *Usecase {
	return &Usecase{
		uow:            u,
		registry:       reg,
		resolver:       res,
		people:         people,
		notifier:       notifier,
		log:            log,
		atRiskFraction: atRiskFraction,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Submit selects a workflow, instantiates the level chain and arms level 1.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*RequestDTO, error) {
	wf, err := u.registry.SelectWorkflow(ctx, registry.Transaction{
		Type:         in.TransactionType,
		Amount:       in.Amount,
		Currency:     in.Currency,
		DepartmentID: in.DepartmentID,
	})
	if err != nil {
		return nil, err
	}

	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}
	req := &domain.ApprovalRequest{
		RequestID:       id.NewID32(),
		RequesterID:     in.RequesterID,
		TransactionType: in.TransactionType,
		Amount:          in.Amount,
		Currency:        in.Currency,
		DepartmentID:    in.DepartmentID,
		Status:          domain.StatusDraft,
		CurrentLevel:    0,
		Priority:        priority,
		IsUrgent:        in.IsUrgent,
	}
	for i, lvl := range wf.Levels {
		req.Levels = append(req.Levels, domain.Level{
			LevelOrder:    i + 1,
			AuthorityID:   lvl.Authority.AuthorityID,
			AuthorityCode: lvl.Authority.Code,
			Status:        domain.LevelWaiting,
			SLASeconds:    int64(lvl.SLA / time.Second),
		})
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		now := u.now()

		// submission resolves level 1's approver before anything is written;
		// an unresolvable chain must not leave a half-created request behind.
		first := &req.Levels[0]
		res, err := u.resolver.CurrentHolderFor(ctx, first.AuthorityID, now, req.TransactionType, req.Amount)
		if err != nil {
			return err
		}

		if err := r.Requests.Create(ctx, req); err != nil {
			return err
		}
		if err := u.appendAudit(ctx, r, req, "request_created", req.RequesterID, "", string(domain.StatusDraft), ""); err != nil {
			return err
		}

		req.Status = domain.StatusPending
		req.CurrentLevel = 1
		u.armLevel(first, res, now)
		if err := r.Requests.Save(ctx, req); err != nil {
			return err
		}
		if err := r.Requests.SaveLevel(ctx, first); err != nil {
			return err
		}
		if err := u.appendAudit(ctx, r, req, "request_submitted", req.RequesterID, string(domain.StatusDraft), string(domain.StatusPending), ""); err != nil {
			return err
		}
		return u.appendAudit(ctx, r, req, "level_armed", req.RequesterID, "", string(domain.LevelPending),
			fmt.Sprintf("level 1 armed; approver %s; due %s", first.ApproverPersonID, first.DueAt.Format(time.RFC3339)))
	})
	if err != nil {
		return nil, err
	}
	return u.toDTO(ctx, req), nil
}

// Act records an approver decision on the active level.
func (u *Usecase) Act(ctx context.Context, in ActInput) (*RequestDTO, error) {
	var out *RequestDTO
	err := u.uow.WithinRequestTx(ctx, in.RequestID, func(r uow.Repos, req *domain.ApprovalRequest) error {
		if req.Status.Terminal() {
			return fmt.Errorf("%w: request is %s", domain.ErrInvalidTransition, req.Status)
		}
		lvl := req.LevelByOrder(in.LevelOrder)
		if lvl == nil {
			return fmt.Errorf("%w: level %d does not exist", domain.ErrInvalidTransition, in.LevelOrder)
		}
		if in.LevelOrder != req.CurrentLevel || lvl.Status != domain.LevelPending {
			return fmt.Errorf("%w: level %d is %s, active level is %d", domain.ErrStaleLevel, in.LevelOrder, lvl.Status, req.CurrentLevel)
		}

		now := u.now()
		res, err := u.resolver.CurrentHolderFor(ctx, lvl.AuthorityID, now, req.TransactionType, req.Amount)
		if err != nil {
			return err
		}
		if res.PersonID != in.ActorID {
			return fmt.Errorf("%w: current approver for level %d is %s", domain.ErrUnauthorized, in.LevelOrder, res.PersonID)
		}

		switch in.Decision {
		case domain.DecisionApproved:
			if err := u.approveLevel(ctx, r, req, lvl, in.ActorID, in.Comments, now); err != nil {
				return err
			}
		case domain.DecisionRejected:
			if in.Comments == "" {
				return domain.ErrCommentsRequired
			}
			if err := u.rejectLevel(ctx, r, req, lvl, in.ActorID, in.Comments, now); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown decision %q", domain.ErrInvalidTransition, in.Decision)
		}

		if err := r.Requests.Save(ctx, req); err != nil {
			return err
		}
		out = u.toDTO(ctx, req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Usecase) approveLevel(ctx context.Context, r uow.Repos, req *domain.ApprovalRequest, lvl *domain.Level, actor, comments string, now time.Time) error {
	lvl.Status = domain.LevelApproved
	lvl.ActedAt = &now
	lvl.Comments = comments
	if err := r.Requests.SaveLevel(ctx, lvl); err != nil {
		return err
	}
	if err := u.appendAudit(ctx, r, req, "level_approved", actor, string(domain.LevelPending), string(domain.LevelApproved),
		fmt.Sprintf("level %d approved", lvl.LevelOrder)); err != nil {
		return err
	}

	if lvl.LevelOrder == req.LastLevel() {
		prev := req.Status
		req.Status = domain.StatusApproved
		req.CompletedAt = &now
		return u.appendAudit(ctx, r, req, "request_approved", actor, string(prev), string(domain.StatusApproved), "")
	}
	return u.advance(ctx, r, req, actor, now)
}

func (u *Usecase) rejectLevel(ctx context.Context, r uow.Repos, req *domain.ApprovalRequest, lvl *domain.Level, actor, comments string, now time.Time) error {
	lvl.Status = domain.LevelRejected
	lvl.ActedAt = &now
	lvl.Comments = comments
	if err := r.Requests.SaveLevel(ctx, lvl); err != nil {
		return err
	}
	if err := u.appendAudit(ctx, r, req, "level_rejected", actor, string(domain.LevelPending), string(domain.LevelRejected), comments); err != nil {
		return err
	}

	// a rejected chain admits no further action
	for i := range req.Levels {
		if req.Levels[i].LevelOrder > lvl.LevelOrder {
			req.Levels[i].Status = domain.LevelSkipped
			if err := r.Requests.SaveLevel(ctx, &req.Levels[i]); err != nil {
				return err
			}
		}
	}
	prev := req.Status
	req.Status = domain.StatusRejected
	req.CompletedAt = &now
	return u.appendAudit(ctx, r, req, "request_rejected", actor, string(prev), string(domain.StatusRejected), comments)
}

// advance arms the next level, re-resolving its approver at activation time.
func (u *Usecase) advance(ctx context.Context, r uow.Repos, req *domain.ApprovalRequest, actor string, now time.Time) error {
	req.CurrentLevel++
	next := req.LevelByOrder(req.CurrentLevel)
	if next == nil {
		return fmt.Errorf("%w: level %d missing", domain.ErrInvalidTransition, req.CurrentLevel)
	}
	res, err := u.resolver.CurrentHolderFor(ctx, next.AuthorityID, now, req.TransactionType, req.Amount)
	if err != nil {
		return err
	}
	u.armLevel(next, res, now)
	if err := r.Requests.SaveLevel(ctx, next); err != nil {
		return err
	}
	prev := req.Status
	req.Status = domain.StatusInProgress
	if err := u.appendAudit(ctx, r, req, "level_armed", actor, "", string(domain.LevelPending),
		fmt.Sprintf("level %d armed; approver %s; due %s", next.LevelOrder, next.ApproverPersonID, next.DueAt.Format(time.RFC3339))); err != nil {
		return err
	}
	if prev == domain.StatusEscalated {
		return u.appendAudit(ctx, r, req, "escalation_cleared", actor, string(domain.StatusEscalated), string(domain.StatusInProgress), "")
	}
	return nil
}

func (u *Usecase) armLevel(lvl *domain.Level, res *resolver.ResolvedHolder, now time.Time) {
	due := now.Add(lvl.SLA())
	lvl.ApproverPersonID = res.PersonID
	lvl.ViaDelegation = res.ViaDelegation
	lvl.Status = domain.LevelPending
	lvl.ActivatedAt = &now
	lvl.DueAt = &due
}

// Cancel is legal only while level 1 is still pending and untouched.
func (u *Usecase) Cancel(ctx context.Context, requestID, actorID string) (*RequestDTO, error) {
	var out *RequestDTO
	err := u.uow.WithinRequestTx(ctx, requestID, func(r uow.Repos, req *domain.ApprovalRequest) error {
		if actorID != req.RequesterID {
			return fmt.Errorf("%w: only requester %s may cancel", domain.ErrUnauthorized, req.RequesterID)
		}
		first := req.LevelByOrder(1)
		if req.Status != domain.StatusPending || req.CurrentLevel != 1 || first == nil || first.Status != domain.LevelPending {
			return fmt.Errorf("%w: cancellation is only legal before any level acts", domain.ErrInvalidTransition)
		}

		now := u.now()
		for i := range req.Levels {
			req.Levels[i].Status = domain.LevelSkipped
			if err := r.Requests.SaveLevel(ctx, &req.Levels[i]); err != nil {
				return err
			}
		}
		req.Status = domain.StatusCancelled
		req.CompletedAt = &now
		if err := r.Requests.Save(ctx, req); err != nil {
			return err
		}
		if err := u.appendAudit(ctx, r, req, "request_cancelled", actorID, string(domain.StatusPending), string(domain.StatusCancelled), ""); err != nil {
			return err
		}
		out = u.toDTO(ctx, req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Escalate force-advances a breached level. Scheduler-only entry point; a
// level that is no longer pending makes this a no-op with no audit entry, so
// a second breach check after escalation changes nothing.
func (u *Usecase) Escalate(ctx context.Context, requestID string, levelOrder int) error {
	var escalatedTo string
	err := u.uow.WithinRequestTx(ctx, requestID, func(r uow.Repos, req *domain.ApprovalRequest) error {
		if req.Status.Terminal() {
			return nil
		}
		lvl := req.LevelByOrder(levelOrder)
		if lvl == nil || levelOrder != req.CurrentLevel || lvl.Status != domain.LevelPending {
			return nil
		}

		now := u.now()
		lvl.Status = domain.LevelSkipped
		lvl.ActedAt = &now
		lvl.Comments = "auto-skipped: SLA breached with no decision"
		if err := r.Requests.SaveLevel(ctx, lvl); err != nil {
			return err
		}
		if err := u.appendAudit(ctx, r, req, "sla_breached", audit.ActorSystem, string(domain.LevelPending), string(domain.LevelSkipped),
			fmt.Sprintf("level %d due at %s", lvl.LevelOrder, lvl.DueAt.Format(time.RFC3339))); err != nil {
			return err
		}

		prev := req.Status
		req.Status = domain.StatusEscalated
		if err := u.appendAudit(ctx, r, req, "request_escalated", audit.ActorSystem, string(prev), string(domain.StatusEscalated), ""); err != nil {
			return err
		}

		if lvl.LevelOrder < req.LastLevel() {
			if err := u.advance(ctx, r, req, audit.ActorSystem, now); err != nil {
				return err
			}
			next := req.LevelByOrder(req.CurrentLevel)
			escalatedTo = next.ApproverPersonID
		}
		// final-level breach leaves the request escalated: nothing above this
		// tier exists to advance into, and nothing auto-approves on timeout.
		return r.Requests.Save(ctx, req)
	})
	if err != nil {
		return err
	}
	if escalatedTo != "" {
		_ = u.notifier.Dispatch(ctx, notify.Event{
			Kind:      notify.KindEscalation,
			RequestID: requestID,
			Recipient: escalatedTo,
			Detail:    fmt.Sprintf("level %d breached its SLA; the request now awaits you", levelOrder),
		})
	}
	return nil
}

// Status returns the request with per-level and overall derived SLA status.
func (u *Usecase) Status(ctx context.Context, requestID string) (*RequestDTO, error) {
	var req *domain.ApprovalRequest
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		req, err = r.Requests.GetByRequestID(ctx, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u.toDTO(ctx, req), nil
}

func (u *Usecase) appendAudit(ctx context.Context, r uow.Repos, req *domain.ApprovalRequest, action, actor, from, to, detail string) error {
	return r.Audit.Append(ctx, &audit.Entry{
		EntryID:    id.NewID32(),
		EntityKind: audit.KindRequest,
		EntityID:   req.RequestID,
		Action:     action,
		ActorID:    actor,
		FromStatus: from,
		ToStatus:   to,
		Detail:     detail,
	})
}

func (u *Usecase) toDTO(ctx context.Context, req *domain.ApprovalRequest) *RequestDTO {
	now := u.now()
	dto := &RequestDTO{
		RequestID:       req.RequestID,
		RequesterID:     req.RequesterID,
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		Currency:        req.Currency,
		DepartmentID:    req.DepartmentID,
		Status:          string(req.Status),
		CurrentLevel:    req.CurrentLevel,
		Priority:        string(req.Priority),
		IsUrgent:        req.IsUrgent,
		CreatedAt:       req.CreatedAt,
		CompletedAt:     req.CompletedAt,
	}
	for i := range req.Levels {
		l := &req.Levels[i]
		ld := LevelDTO{
			LevelOrder:       l.LevelOrder,
			AuthorityID:      l.AuthorityID,
			AuthorityCode:    l.AuthorityCode,
			ApproverPersonID: l.ApproverPersonID,
			ViaDelegation:    l.ViaDelegation,
			Status:           string(l.Status),
			ActivatedAt:      l.ActivatedAt,
			DueAt:            l.DueAt,
			ActedAt:          l.ActedAt,
			Comments:         l.Comments,
		}
		if l.ApproverPersonID != "" && u.people != nil {
			if p, err := u.people.Lookup(ctx, l.ApproverPersonID); err == nil {
				ld.ApproverName = p.Name
			}
		}
		if l.Status == domain.LevelPending && l.ActivatedAt != nil && l.DueAt != nil {
			ld.SLAStatus = sla.Status(*l.ActivatedAt, *l.DueAt, now, u.atRiskFraction)
			dto.SLAStatus = ld.SLAStatus
		}
		dto.Levels = append(dto.Levels, ld)
	}
	return dto
}
