package eventsvc

import (
	"context"
	"sync"

	"github.com/trezcool/tutorhub/core"
)

// ConsolePublisher logs events; used when no broker is configured.
type ConsolePublisher struct {
	logger core.Logger
}

var _ core.EventPublisher = (*ConsolePublisher)(nil)

func NewConsolePublisher(logger core.Logger) *ConsolePublisher {
	return &ConsolePublisher{logger: logger}
}

func (p *ConsolePublisher) Publish(_ context.Context, events ...core.Event) {
	for _, evt := range events {
		p.logger.Info("event "+evt.RoutingKey(), map[string]interface{}{
			"event_id":  evt.ID,
			"entity_id": evt.EntityID,
			"actor":     evt.Actor,
		})
	}
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []core.Event
}

var _ core.EventPublisher = (*Recorder)(nil)

func (r *Recorder) Publish(_ context.Context, events ...core.Event) {
	r.mu.Lock()
	r.events = append(r.events, events...)
	r.mu.Unlock()
}

func (r *Recorder) Events() []core.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Event(nil), r.events...)
}

// RoutingKeys lists the routing keys of recorded events, in publishing order.
func (r *Recorder) RoutingKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.events))
	for _, evt := range r.events {
		keys = append(keys, evt.RoutingKey())
	}
	return keys
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
