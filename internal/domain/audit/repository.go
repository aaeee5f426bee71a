package audit

import "context"

// Repository is append-only on purpose: no update or delete methods exist.
type Repository interface {
	Append(ctx context.Context, e *Entry) error
	ListByEntity(ctx context.Context, kind EntityKind, entityID string) ([]Entry, error)
}
