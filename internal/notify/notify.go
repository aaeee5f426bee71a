package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Event kinds fired by the engine.
const (
	KindEscalation        = "escalation"
	KindDelegationCreated = "delegation_created"
)

type Event struct {
	Kind         string `json:"kind"`
	RequestID    string `json:"request_id,omitempty"`
	DelegationID string `json:"delegation_id,omitempty"`
	Recipient    string `json:"recipient"`
	Detail       string `json:"detail,omitempty"`
}

// Dispatcher is the outbound port to the notification system. The real
// dispatcher lives outside this service; the engine only emits events.
type Dispatcher interface {
	Dispatch(ctx context.Context, e Event) error
}

// LogDispatcher writes events to the log. Used when no external dispatcher is
// wired, and as the default in tests.
type LogDispatcher struct{ Log *logrus.Logger }

func (d *LogDispatcher) Dispatch(_ context.Context, e Event) error {
	d.Log.WithFields(logrus.Fields{
		"kind":          e.Kind,
		"request_id":    e.RequestID,
		"delegation_id": e.DelegationID,
		"recipient":     e.Recipient,
	}).Info("notification dispatched")
	return nil
}
