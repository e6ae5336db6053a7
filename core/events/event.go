package events

// Event is a structured state change produced by an engine operation.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (RPC, indexers,
// accounting pipelines).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies Emitter while discarding everything. Engines default
// to it so event wiring stays optional.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Recorder is an Emitter that retains every event in order. It exists for
// tests and for hosts that drain events after each operation.
type Recorder struct {
	Events []Event
}

// Emit appends the event to the recorded sequence.
func (r *Recorder) Emit(evt Event) {
	if r == nil || evt == nil {
		return
	}
	r.Events = append(r.Events, evt)
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	if r != nil {
		r.Events = r.Events[:0]
	}
}
