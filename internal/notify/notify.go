// Package notify defines the fire-and-forget event sink used by game services.
package notify

import (
	"sync"

	"github.com/mcoot/aicardgame-go/internal/model"
)

// Sink delivers events to players. Notify must never block the caller.
type Sink interface {
	Notify(event model.Event)
}

// Discard drops every event
type Discard struct{}

func (Discard) Notify(model.Event) {}

// Recorder keeps every event in memory for tests
type Recorder struct {
	mu     sync.Mutex
	events []model.Event
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Event(nil), r.events...)
}

// OfType returns recorded events of the given type for a player
func (r *Recorder) OfType(playerID model.PlayerID, t model.EventType) []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Event
	for _, e := range r.events {
		if e.PlayerID == playerID && e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
