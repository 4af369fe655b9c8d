// Package events defines the named notifications emitted by the
// adjudication engine and the sinks that can receive them.
//
// Sinks are fire-and-forget: an emitter never reports failure back to the
// operation that produced the event.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Event names.
const (
	ItemCreated    = "item_created"
	ItemFound      = "item_found"
	ItemDeleted    = "item_deleted"
	IssueCreated   = "issue_created"
	IssueApproved  = "issue_approved"
	IssueRejected  = "issue_rejected"
	MatchConfirmed = "match_confirmed"
)

// Event is a single notification about a state change.
type Event struct {
	Name    string    `json:"name"`
	ItemID  string    `json:"item_id,omitempty"`
	IssueID string    `json:"issue_id,omitempty"`
	ActorID string    `json:"actor_id,omitempty"`
	At      time.Time `json:"at"`
}

// Emitter receives events.
type Emitter interface {
	Emit(ctx context.Context, e Event)
}

// Discard drops every event.
var Discard Emitter = discard{}

type discard struct{}

func (discard) Emit(context.Context, Event) {}

// Multi fans an event out to several emitters in order.
type Multi []Emitter

func (m Multi) Emit(ctx context.Context, e Event) {
	for _, em := range m {
		em.Emit(ctx, e)
	}
}

// Logger writes events to a structured logger.
type Logger struct {
	Log *slog.Logger
}

func (l Logger) Emit(ctx context.Context, e Event) {
	log := l.Log
	if log == nil {
		log = slog.Default()
	}
	log.InfoContext(ctx, "event", "name", e.Name, "item", e.ItemID, "issue", e.IssueID, "actor", e.ActorID)
}

// Recorder keeps emitted events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names returns the names of the recorded events in emission order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.Name
	}
	return names
}
