package directory

import (
	"context"
	"sync"
)

// Person carries display fields only; authorization never reads these.
type Person struct {
	PersonID    string `json:"person_id"`
	Name        string `json:"name"`
	Designation string `json:"designation,omitempty"`
	Department  string `json:"department,omitempty"`
}

// Directory is the inbound view of the identity service.
type Directory interface {
	Lookup(ctx context.Context, personID string) (*Person, error)
}

// Static is an in-memory directory for deployments without the identity
// service and for tests. Unknown people resolve to a bare Person rather than
// an error; display data is best-effort.
type Static struct {
	mu     sync.RWMutex
	people map[string]Person
}

func NewStatic() *Static { return &Static{people: map[string]Person{}} }

func (s *Static) Register(p Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.people[p.PersonID] = p
}

func (s *Static) Lookup(_ context.Context, personID string) (*Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.people[personID]; ok {
		cp := p
		return &cp, nil
	}
	return &Person{PersonID: personID}, nil
}
