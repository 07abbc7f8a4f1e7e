// Package core holds the small, shared primitives used throughout the
// statechart runtime: events and their priority, kept close to the shape
// anggasct/fluo's original pkg/core.Event used before this codebase moved
// the mutable engine itself into pkg/machine.
package core

import (
	"time"

	"github.com/google/uuid"
)

// EventPriority defines the priority level of an event.
type EventPriority int

const (
	// LowPriority events are processed last when multiple events are pending.
	LowPriority EventPriority = iota
	// NormalPriority is the default priority for events.
	NormalPriority
	// HighPriority events are processed before normal and low priority events.
	HighPriority
	// CriticalPriority events are processed immediately.
	CriticalPriority
)

// Event represents a statechart event with an optional payload and
// metadata. Name is the discriminant used for transition matching.
type Event struct {
	Name      string
	Data      any
	Timestamp time.Time
	ID        string
	Priority  EventPriority
	Metadata  map[string]any
}

// NewEvent creates a new event with the given name.
func NewEvent(name string) Event {
	return Event{
		Name:      name,
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Priority:  NormalPriority,
	}
}

// NewEventWithData creates a new event with a name and payload.
func NewEventWithData(name string, data any) Event {
	e := NewEvent(name)
	e.Data = data
	return e
}

// WithPriority sets the event's priority and returns it for chaining.
func (e Event) WithPriority(p EventPriority) Event {
	e.Priority = p
	return e
}

// WithMetadata returns a copy of e with the given metadata key set.
func (e Event) WithMetadata(key string, val any) Event {
	meta := make(map[string]any, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		meta[k] = v
	}
	meta[key] = val
	e.Metadata = meta
	return e
}

// GetMetadata retrieves metadata from the event.
func (e Event) GetMetadata(key string) any {
	if e.Metadata == nil {
		return nil
	}
	return e.Metadata[key]
}

// Discriminant returns the string used to key transitions and the
// transition cache on this event's type. It deliberately excludes Data,
// ID and Timestamp, which do not participate in transition matching.
func (e Event) Discriminant() string {
	return e.Name
}
