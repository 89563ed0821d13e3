package media

import (
	"sync"
	"time"
)

// Player-level event types observed by the UI layer.
type EventType string

const (
	EventSourceChange         EventType = "source-change"
	EventSourcesChange        EventType = "sources-change"
	EventMediaTypeChange      EventType = "media-type-change"
	EventProviderChange       EventType = "provider-change"
	EventProviderLoaderChange EventType = "provider-loader-change"
	EventStreamTypeChange     EventType = "stream-type-change"
	EventDurationChange       EventType = "duration-change"
	EventPlayFail             EventType = "play-fail"
	EventFullscreenError      EventType = "fullscreen-error"
)

// Event carries a state-change notification. Trigger, when set, is the
// attributed causing request. Err is set on failure events.
type Event struct {
	Type    EventType
	Detail  any
	Trigger *Request
	Err     error
	Time    time.Time
}

type eventSub struct {
	id int
	fn func(Event)
}

// Dispatcher fans player-level events out to registered listeners.
// Dispatch is synchronous: a handler returning means every listener has
// observed the event.
type Dispatcher struct {
	mu     sync.Mutex
	nextID int
	typed  map[EventType][]eventSub
	all    []eventSub
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{typed: make(map[EventType][]eventSub)}
}

// Subscribe registers fn for one event type. The returned function
// removes the registration.
func (d *Dispatcher) Subscribe(t EventType, fn func(Event)) (off func()) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.typed[t] = append(d.typed[t], eventSub{id: id, fn: fn})
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		subs := d.typed[t]
		for i, s := range subs {
			if s.id == id {
				d.typed[t] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// SubscribeAll registers fn for every event.
func (d *Dispatcher) SubscribeAll(fn func(Event)) (off func()) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.all = append(d.all, eventSub{id: id, fn: fn})
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, s := range d.all {
			if s.id == id {
				d.all = append(d.all[:i:i], d.all[i+1:]...)
				return
			}
		}
	}
}

// Dispatch delivers ev to all matching listeners. A zero Time is
// stamped with the current time.
func (d *Dispatcher) Dispatch(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	d.mu.Lock()
	fns := make([]func(Event), 0, len(d.typed[ev.Type])+len(d.all))
	for _, s := range d.typed[ev.Type] {
		fns = append(fns, s.fn)
	}
	for _, s := range d.all {
		fns = append(fns, s.fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
