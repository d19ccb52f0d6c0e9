//go:build unit || e2e

package eventtest

import (
	"context"
	"sync"

	"parking-lot-manager/internal/domain/event"
)

// Recorder is an in-process EventPublisher that keeps everything it receives.
type Recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, events ...event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *Recorder) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Types() []event.Type {
	var out []event.Type
	for _, e := range r.Events() {
		out = append(out, e.Type)
	}
	return out
}

func (r *Recorder) OfType(t event.Type) []event.Event {
	var out []event.Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
