package admins

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventAdministratorCreated       ActivityEventType = "administrator.created"
	ActivityEventAdministratorUpdated       ActivityEventType = "administrator.updated"
	ActivityEventAdministratorStatusChanged ActivityEventType = "administrator.status.changed"
	ActivityEventAdministratorPasswordReset ActivityEventType = "administrator.password.reset"
	ActivityEventAdministratorDeleted       ActivityEventType = "administrator.deleted"
)

// ActorRef identifies who triggered an action.
type ActorRef struct {
	ID   string
	Type string
}

// ActorFromProfile builds an ActorRef for the acting administrator
func ActorFromProfile(p Profile) ActorRef {
	if p.ID == "" && p.Username == "" {
		return ActorRef{Type: "system"}
	}
	id := p.ID
	if id == "" {
		id = p.Username
	}
	return ActorRef{ID: id, Type: "administrator"}
}

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType       ActivityEventType
	Actor           ActorRef
	AdministratorID string
	FromStatus      AdministratorStatus
	ToStatus        AdministratorStatus
	Metadata        map[string]any
	OccurredAt      time.Time
}

// ActivitySink consumes activity events for auditing purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// recordActivity is best effort, sink failures are logged only
func recordActivity(ctx context.Context, sink ActivitySink, logger Logger, event ActivityEvent) {
	if event.Actor == (ActorRef{}) {
		event.Actor = ActorRef{Type: "system"}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := normalizeActivitySink(sink).Record(ctx, event); err != nil && logger != nil {
		logger.Warn("activity sink error", "event", event.EventType, "error", err)
	}
}
