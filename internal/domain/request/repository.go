package request

import (
	"context"
	"time"
)

// DueLevel identifies a pending level whose due date has passed.
type DueLevel struct {
	RequestID  string
	LevelOrder int
}

type Repository interface {
	// Create inserts the request together with its levels.
	Create(ctx context.Context, r *ApprovalRequest) error
	GetByRequestID(ctx context.Context, requestID string) (*ApprovalRequest, error)
	// GetByRequestIDForUpdate locks the request row; act/escalate serialize on it.
	GetByRequestIDForUpdate(ctx context.Context, requestID string) (*ApprovalRequest, error)
	Save(ctx context.Context, r *ApprovalRequest) error
	SaveLevel(ctx context.Context, l *Level) error
	// ListDuePending returns pending levels of live requests with due_at <= now.
	ListDuePending(ctx context.Context, now time.Time, limit int) ([]DueLevel, error)
}
