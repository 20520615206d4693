package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Actions of admin audit events.
const (
	ActionCreated    = "created"
	ActionUpdated    = "updated"
	ActionArchived   = "archived"
	ActionUnarchived = "unarchived"
	ActionDeleted    = "deleted"
)

// Event is an audit record of an admin mutation.
type Event struct {
	ID        string      `json:"id"`
	Entity    string      `json:"entity"`
	Action    string      `json:"action"`
	EntityID  int         `json:"entity_id"`
	Actor     string      `json:"actor,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"` // UTC
}

func NewEvent(ctx context.Context, entity, action string, entityID int, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Entity:    entity,
		Action:    action,
		EntityID:  entityID,
		Actor:     ActorFromContext(ctx),
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// RoutingKey is "<entity>.<action>", e.g. "tutor.archived".
func (e Event) RoutingKey() string {
	return e.Entity + "." + e.Action
}

// EventPublisher is any service that can publish audit events.
type EventPublisher interface {
	// Publish never fails the caller's operation; delivery errors are logged.
	Publish(ctx context.Context, events ...Event)
}

type actorKey struct{}

// WithActor attaches the username of the authenticated admin to `ctx`.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}
