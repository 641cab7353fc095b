// Package observe is the event side-channel for the resolution engine.
// Components publish structured events instead of writing to a global
// logger; the host decides where they go.
package observe

import (
	"github.com/charmbracelet/log"
)

// Kind classifies an event.
type Kind string

const (
	KindRebuildStart  Kind = "rebuild.start"
	KindRebuildDone   Kind = "rebuild.done"
	KindRebuildFailed Kind = "rebuild.failed"
	KindSourceMissing Kind = "source.missing"
	KindSourceBad     Kind = "source.malformed"
	KindRootSkipped   Kind = "root.skipped"
	KindConflict      Kind = "location.conflict"
)

// Event is a single diagnostic emitted by the engine.
type Event struct {
	Kind     Kind
	Scope    string
	Location string
	Err      error
	Count    int // schemas in the finished set, rebuild.done only
}

// Sink receives events. Implementations must be safe for concurrent use.
type Sink interface {
	Publish(Event)
}

// NopSink discards everything. It is the library default.
type NopSink struct{}

func (NopSink) Publish(Event) {}

// LogSink forwards events to a charmbracelet logger at debug level,
// except failures which go to error level.
type LogSink struct {
	Logger *log.Logger
}

func (s LogSink) Publish(e Event) {
	kv := make([]any, 0, 8)
	if e.Scope != "" {
		kv = append(kv, "scope", e.Scope)
	}
	if e.Location != "" {
		kv = append(kv, "location", e.Location)
	}
	if e.Kind == KindRebuildDone {
		kv = append(kv, "schemas", e.Count)
	}
	if e.Err != nil {
		kv = append(kv, "err", e.Err)
	}

	switch e.Kind {
	case KindRebuildFailed, KindConflict:
		s.Logger.Error(string(e.Kind), kv...)
	default:
		s.Logger.Debug(string(e.Kind), kv...)
	}
}
