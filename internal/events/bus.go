package events

// Bus fans events out to subscribers in subscription order.
// It is not safe for concurrent use; the case core is single-threaded.
type Bus struct {
	subscribers []func(Event)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for every future event.
func (b *Bus) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	b.subscribers = append(b.subscribers, fn)
}

// Publish implements Sink.
func (b *Bus) Publish(e Event) {
	for _, fn := range b.subscribers {
		fn(e)
	}
}

// Recorder keeps every published event. Used by tests and the headless runner.
type Recorder struct {
	Events []Event
}

// Publish implements Sink.
func (r *Recorder) Publish(e Event) {
	r.Events = append(r.Events, e)
}

// Count returns how many recorded events have the given kind.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind() == kind {
			n++
		}
	}
	return n
}

// Last returns the most recent event of the given kind, or nil.
func (r *Recorder) Last(kind string) Event {
	for i := len(r.Events) - 1; i >= 0; i-- {
		if r.Events[i].Kind() == kind {
			return r.Events[i]
		}
	}
	return nil
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.Events = nil
}
