package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	authDomain "approval-engine/internal/domain/authority"
	delDomain "approval-engine/internal/domain/delegation"
	reqDomain "approval-engine/internal/domain/request"
	"approval-engine/internal/domain/uow"
	"approval-engine/internal/notify"
	"approval-engine/internal/testutil/auditmock"
	"approval-engine/internal/testutil/authoritymock"
	"approval-engine/internal/testutil/delegationmock"
	"approval-engine/internal/testutil/requestmock"
	"approval-engine/internal/testutil/uowmock"
	delUC "approval-engine/internal/usecase/delegation"
	"approval-engine/internal/usecase/registry"
	reqUC "approval-engine/internal/usecase/request"
	"approval-engine/internal/usecase/resolver"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// -------- helpers --------

const (
	tAuthority = "a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1"
	tHolder    = "a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2"
	tApprover  = "b1b1b1b1b1b1b1b1b1b1b1b1b1b1b1b1"
	tRequester = "c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0"
	tStranger  = "c9c9c9c9c9c9c9c9c9c9c9c9c9c9c9c9"
)

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func amt(v float64) *float64 { return &v }

// engine is a fully wired in-memory engine: one authority tier with one
// primary holder who may delegate.
type engine struct {
	requestUC    *reqUC.Usecase
	delegationUC *delUC.Usecase
	requests     map[string]*reqDomain.ApprovalRequest
	delegations  []*delDomain.Delegation
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	auth := &authDomain.Authority{
		ID: 1, AuthorityID: tAuthority, Code: "PO-DIR",
		TransactionTypes: []string{"purchase_order"},
		MaxAmount:        amt(100_000), RiskLevel: authDomain.RiskMedium,
		SLAHours: 48, Active: true,
	}
	holder := &authDomain.Holder{
		ID: 10, HolderID: tHolder, AuthorityID: 1, PersonID: tApprover,
		IsPrimary: true, CanDelegate: true, MaxDelegationDays: 30,
		ValidFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	eng := &engine{requests: map[string]*reqDomain.ApprovalRequest{}}
	auths := &authoritymock.Repo{
		ListActiveFn: func(ctx context.Context) ([]authDomain.Authority, error) {
			return []authDomain.Authority{*auth}, nil
		},
		GetByAuthorityIDFn: func(ctx context.Context, id string) (*authDomain.Authority, error) {
			if id == tAuthority {
				return auth, nil
			}
			return nil, authDomain.ErrNotFound
		},
		GetHolderByHolderIDFn: func(ctx context.Context, id string) (*authDomain.Holder, error) {
			if id == tHolder {
				return holder, nil
			}
			return nil, authDomain.ErrHolderNotFound
		},
		ListHoldersByAuthorityFn: func(ctx context.Context, id uint64) ([]authDomain.Holder, error) {
			return []authDomain.Holder{*holder}, nil
		},
	}
	dels := &delegationmock.Repo{
		CreateFn: func(ctx context.Context, d *delDomain.Delegation) error {
			d.ID = uint64(len(eng.delegations) + 1)
			eng.delegations = append(eng.delegations, d)
			return nil
		},
		GetByDelegationIDFn: func(ctx context.Context, id string) (*delDomain.Delegation, error) {
			for _, d := range eng.delegations {
				if d.DelegationID == id {
					return d, nil
				}
			}
			return nil, delDomain.ErrNotFound
		},
		ListByAuthorityAndDelegatorFn: func(ctx context.Context, authorityID, delegatorHolderID uint64, statuses []delDomain.Status) ([]delDomain.Delegation, error) {
			var out []delDomain.Delegation
			for _, d := range eng.delegations {
				for _, s := range statuses {
					if d.AuthorityID == authorityID && d.DelegatorHolderID == delegatorHolderID && d.Status == s {
						out = append(out, *d)
					}
				}
			}
			return out, nil
		},
	}
	reqRepo := &requestmock.Repo{
		CreateFn: func(ctx context.Context, r *reqDomain.ApprovalRequest) error {
			eng.requests[r.RequestID] = r
			return nil
		},
		GetByRequestIDFn: func(ctx context.Context, id string) (*reqDomain.ApprovalRequest, error) {
			if r, ok := eng.requests[id]; ok {
				return r, nil
			}
			return nil, reqDomain.ErrNotFound
		},
	}
	u := &uowmock.UoW{
		Repos: uow.Repos{Authorities: auths, Delegations: dels, Requests: reqRepo, Audit: &auditmock.Repo{}},
		AuthorityByIDFn: func(ctx context.Context, id uint64) (*authDomain.Authority, error) {
			if id == auth.ID {
				return auth, nil
			}
			return nil, authDomain.ErrNotFound
		},
	}

	reg := registry.NewService(auths, u, log, 48)
	res := resolver.NewService(auths, dels, log)
	dispatcher := &notify.LogDispatcher{Log: log}
	eng.requestUC = reqUC.NewUsecase(u, reg, res, nil, dispatcher, log, 0.2)
	eng.delegationUC = delUC.NewUsecase(u, dispatcher, log)
	return eng
}
