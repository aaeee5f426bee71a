package registry

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	domain "approval-engine/internal/domain/authority"
	"approval-engine/internal/testutil/authoritymock"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func f(v float64) *float64 { return &v }

func tierFixture() []domain.Authority {
	return []domain.Authority{
		{
			ID: 1, AuthorityID: "a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1", Code: "PO-MGR",
			TransactionTypes: []string{"purchase_order"},
			MaxAmount:        f(10_000), RiskLevel: domain.RiskLow, SLAHours: 24, Active: true,
		},
		{
			ID: 2, AuthorityID: "a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2", Code: "PO-DIR",
			TransactionTypes: []string{"purchase_order"},
			MaxAmount:        f(100_000), RiskLevel: domain.RiskMedium, SLAHours: 48, Active: true,
		},
		{
			ID: 3, AuthorityID: "a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3", Code: "PO-CFO",
			TransactionTypes: []string{"purchase_order"},
			MaxAmount:        f(1_000_000), RiskLevel: domain.RiskCritical, SLAHours: 72, Active: true,
		},
	}
}

func newService(tiers []domain.Authority) *Service {
	repo := &authoritymock.Repo{
		ListActiveFn: func(ctx context.Context) ([]domain.Authority, error) { return tiers, nil },
	}
	return NewService(repo, nil, testLogger(), 48)
}

func TestResolveAuthorities_OrderedByCeiling(t *testing.T) {
	// hand the tiers over shuffled; resolution must re-order them
	tiers := tierFixture()
	shuffled := []domain.Authority{tiers[2], tiers[0], tiers[1]}
	svc := newService(shuffled)

	got, err := svc.ResolveAuthorities(context.Background(), "purchase_order", 5_000, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 tiers, got %d", len(got))
	}
	for i, code := range []string{"PO-MGR", "PO-DIR", "PO-CFO"} {
		if got[i].Code != code {
			t.Fatalf("tier %d: want %s, got %s", i, code, got[i].Code)
		}
	}
}

func TestResolveAuthorities_UnknownType(t *testing.T) {
	svc := newService(tierFixture())
	_, err := svc.ResolveAuthorities(context.Background(), "leave_request", 100, nil)
	if !errors.Is(err, ErrNoAuthorityDefined) {
		t.Fatalf("want ErrNoAuthorityDefined, got %v", err)
	}
}

func TestResolveAuthorities_DepartmentFilter(t *testing.T) {
	dept := "d1d1d1d1d1d1d1d1d1d1d1d1d1d1d1d1"
	other := "d2d2d2d2d2d2d2d2d2d2d2d2d2d2d2d2"
	tiers := tierFixture()
	tiers[0].DepartmentID = &dept
	svc := newService(tiers)

	got, err := svc.ResolveAuthorities(context.Background(), "purchase_order", 5_000, &other)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, a := range got {
		if a.Code == "PO-MGR" {
			t.Fatal("department-bound tier must be filtered out")
		}
	}
}

func TestSelectWorkflow_LowValueShortCircuits(t *testing.T) {
	svc := newService(tierFixture())
	wf, err := svc.SelectWorkflow(context.Background(), Transaction{Type: "purchase_order", Amount: 5_000})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(wf.Levels) != 1 || wf.Levels[0].Authority.Code != "PO-MGR" {
		t.Fatalf("want single PO-MGR level, got %+v", wf.Levels)
	}
	if wf.Levels[0].SLA != 24*time.Hour {
		t.Fatalf("want 24h SLA, got %s", wf.Levels[0].SLA)
	}
}

func TestSelectWorkflow_HighValueCollectsEveryTier(t *testing.T) {
	svc := newService(tierFixture())
	wf, err := svc.SelectWorkflow(context.Background(), Transaction{Type: "purchase_order", Amount: 500_000})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(wf.Levels) != 3 {
		t.Fatalf("want 3 levels, got %d", len(wf.Levels))
	}
	if wf.Levels[2].Authority.Code != "PO-CFO" {
		t.Fatalf("final sign-off must be the top tier, got %s", wf.Levels[2].Authority.Code)
	}
}

func TestSelectWorkflow_AboveEveryTier(t *testing.T) {
	// single bounded authority, amount over its ceiling: nothing can approve
	tiers := []domain.Authority{{
		ID: 1, AuthorityID: "a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1", Code: "PO-APPROVE",
		TransactionTypes: []string{"purchase_order"},
		MinAmount:        f(0), MaxAmount: f(100_000), RiskLevel: domain.RiskMedium, Active: true,
	}}
	svc := newService(tiers)
	_, err := svc.SelectWorkflow(context.Background(), Transaction{Type: "purchase_order", Amount: 150_000})
	if !errors.Is(err, ErrNoWorkflowMatch) {
		t.Fatalf("want ErrNoWorkflowMatch, got %v", err)
	}
}

func TestSelectWorkflow_UnboundedTierBacksStop(t *testing.T) {
	tiers := tierFixture()
	tiers[2].MaxAmount = nil // CFO tier unbounded
	svc := newService(tiers)
	wf, err := svc.SelectWorkflow(context.Background(), Transaction{Type: "purchase_order", Amount: 5_000_000})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(wf.Levels) != 3 {
		t.Fatalf("want 3 levels ending at the unbounded tier, got %d", len(wf.Levels))
	}
}

func TestSelectWorkflow_DefaultSLA(t *testing.T) {
	tiers := tierFixture()
	tiers[0].SLAHours = 0
	svc := newService(tiers)
	wf, err := svc.SelectWorkflow(context.Background(), Transaction{Type: "purchase_order", Amount: 1_000})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if wf.Levels[0].SLA != 48*time.Hour {
		t.Fatalf("want default 48h SLA, got %s", wf.Levels[0].SLA)
	}
}
