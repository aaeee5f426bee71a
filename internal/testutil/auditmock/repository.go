package auditmock

import (
	"context"
	"sync"

	domain "approval-engine/internal/domain/audit"
)

// Repo is an in-memory append-only audit log for tests. It records every
// entry so assertions can inspect the trail.
type Repo struct {
	mu      sync.Mutex
	Entries []domain.Entry

	AppendFn func(ctx context.Context, e *domain.Entry) error
}

func (m *Repo) Append(ctx context.Context, e *domain.Entry) error {
	if m.AppendFn != nil {
		if err := m.AppendFn(ctx, e); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, *e)
	return nil
}

func (m *Repo) ListByEntity(_ context.Context, kind domain.EntityKind, entityID string) ([]domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Entry
	for _, e := range m.Entries {
		if e.EntityKind == kind && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Actions returns the ordered action names of everything appended.
func (m *Repo) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		out = append(out, e.Action)
	}
	return out
}

// CountAction returns how many entries carry the given action.
func (m *Repo) CountAction(action string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Entries {
		if e.Action == action {
			n++
		}
	}
	return n
}
