package events

import (
	"sync"

	"go.uber.org/zap"
)

// Sink receives emitted events. Emit must not call back into the engine.
type Sink interface {
	Emit(e Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(e Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// MemSink records events in memory.
type MemSink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemSink creates an empty recording sink.
func NewMemSink() *MemSink { return &MemSink{} }

// Emit records e.
func (s *MemSink) Emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// Events returns a copy of all recorded events.
func (s *MemSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Named returns the recorded events whose Name is name.
func (s *MemSink) Named(name string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.Name() == name {
			out = append(out, e)
		}
	}
	return out
}

// Reset drops all recorded events.
func (s *MemSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

// LogSink writes each event to a zap logger at info level.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink that logs to l.
func NewLogSink(l *zap.Logger) *LogSink {
	return &LogSink{logger: l}
}

// Emit logs e with its topic.
func (s *LogSink) Emit(e Event) {
	s.logger.Info("event",
		zap.String("name", e.Name()),
		zap.String("topic", Topic(e).Hex()),
		zap.Any("data", e),
	)
}

// Multi fans events out to every sink in order.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(e Event) {
		for _, s := range sinks {
			s.Emit(e)
		}
	})
}
