// Package events provides the transient notifications raised by the front end
// and a fan-out that delivers them to registered receivers.
package events

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification for display.
type Kind string

// Set of notification kinds.
const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindFailure Kind = "failure"
)

// Duration is how long a notification stays on screen.
const Duration = 3 * time.Second

// Set of background colors used by the dashboard.
const (
	ColorFailure = "rgba(231, 76, 60, 0.2)"
	ColorSuccess = "rgba(46, 204, 113, 0.2)"
	ColorInfo    = "rgba(52, 152, 219, 0.2)"
	ColorMined   = "rgba(12, 236, 105, 0.2)"
	ColorDark    = "rgba(52, 73, 94, 0.2)"
	ColorLight   = "rgba(241, 196, 15, 0.2)"
)

// Event is a non-blocking, auto-dismissing notification.
type Event struct {
	ID         string `json:"id"`
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	Color      string `json:"color"`
	DurationMS int64  `json:"duration_ms"`
}

// New constructs an event of the specified kind and color.
func New(kind Kind, message string, color string) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		Message:    message,
		Color:      color,
		DurationMS: Duration.Milliseconds(),
	}
}

// Failure constructs a failure event with the default color.
func Failure(message string) Event {
	return New(KindFailure, message, ColorFailure)
}

// Success constructs a success event with the specified color.
func Success(message string, color string) Event {
	return New(KindSuccess, message, color)
}

// Info constructs an informational event with the specified color.
func Info(message string, color string) Event {
	return New(KindInfo, message, color)
}

// String implements the fmt.Stringer interface.
func (e Event) String() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// =============================================================================

// Notifier is the behavior required to raise a notification. Implementations
// must not block the caller.
type Notifier interface {
	Notify(evt Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(evt Event)

// Notify implements the Notifier interface.
func (f NotifierFunc) Notify(evt Event) {
	f(evt)
}

// =============================================================================

// Events maintains a mapping of unique id and channels so goroutines
// can register and receive events.
type Events struct {
	m  map[string]chan Event
	mu sync.RWMutex
}

// NewEvents constructs an events for registering and receiving events.
func NewEvents() *Events {
	return &Events{
		m: make(map[string]chan Event),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used
// to receive events.
func (evt *Events) Acquire(id string) <-chan Event {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if exists {
		return ch
	}

	// Since an event will be dropped if the websocket receiver is
	// not ready to receive, this arbitrary buffer should give the receiver
	// enough time to not lose an event. Websocket send could take long.
	const eventBuffer = 100

	evt.m[id] = make(chan Event, eventBuffer)
	return evt.m[id]
}

// Release closes and removes the channel that was provided by
// the call to Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(ch)
	return nil
}

// Notify implements the Notifier interface by sending the event to every
// registered channel.
func (evt *Events) Notify(e Event) {
	evt.Send(e)
}

// Send signals an event to every registered channel. Send will not block
// waiting for a receiver on any given channel.
func (evt *Events) Send(e Event) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.m {
		select {
		case ch <- e:
		default:
		}
	}
}

// =============================================================================

// Recorder keeps every event it is notified with. It is used by the CLI to
// replay notifications and by tests to inspect them.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Notify implements the Notifier interface.
func (r *Recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := make([]Event, len(r.events))
	copy(cpy, r.events)
	return cpy
}

// Messages returns the messages of the recorded events in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := make([]string, len(r.events))
	for i, e := range r.events {
		msgs[i] = e.Message
	}
	return msgs
}

// Count returns the number of recorded events with the specified message.
func (r *Recorder) Count(message string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	for _, e := range r.events {
		if e.Message == message {
			n++
		}
	}
	return n
}

// Reset drops the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = nil
}
