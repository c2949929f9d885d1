package window

import "image"

// ID is an opaque window identifier assigned by the window system.
// X11 window IDs fit in 32 bits; other systems may use the full width.
type ID uint64

// EventKind labels a focus-transition notification. The set is closed:
// adapters must map whatever their window system reports onto one of
// these tags, or KindUnknown.
type EventKind string

const (
	KindForeground    EventKind = "foreground"
	KindMinimizeStart EventKind = "minimize_start"
	KindMinimizeEnd   EventKind = "minimize_end"
	KindTitleChange   EventKind = "title_change"
	KindCreate        EventKind = "create"
	KindDestroy       EventKind = "destroy"
	KindHide          EventKind = "hide"
	KindFocus         EventKind = "focus"
	KindClosing       EventKind = "closing"
	KindUnknown       EventKind = "unknown"
)

// Valid reports whether k is one of the known kinds.
func (k EventKind) Valid() bool {
	switch k {
	case KindForeground, KindMinimizeStart, KindMinimizeEnd, KindTitleChange,
		KindCreate, KindDestroy, KindHide, KindFocus, KindClosing, KindUnknown:
		return true
	}
	return false
}

func (k EventKind) String() string {
	return string(k)
}

// Notification is one observed focus transition, emitted by an adapter.
type Notification struct {
	Kind    EventKind
	AppName string
	AppPath string
	Title   string
	Window  ID
}

// Sink receives notifications from an adapter. Publish is called from the
// adapter's own goroutine and must never block or panic, whatever the
// state of the consumer.
type Sink interface {
	Publish(n Notification)
}

// Subscription is the cancellable handle returned by Monitor.Watch.
type Subscription interface {
	// Stop detaches the sink from the window system. Idempotent.
	Stop()
}

// Monitor watches the window system for focus transitions and delivers
// them to a registered sink.
type Monitor interface {
	// Watch registers sink and begins delivery. It fails when the native
	// hook cannot be set up, which callers treat as fatal at startup.
	Watch(sink Sink) (Subscription, error)

	// IsAvailable checks whether this monitor can run on the current system
	IsAvailable() bool

	// Close cleans up any resources used by the monitor
	Close() error
}

// Capturer grabs the pixel content of a window. CaptureWindow is a
// blocking call; callers are expected to run it off their hot path.
type Capturer interface {
	CaptureWindow(id ID) (*image.RGBA, error)
}

// Adapter bundles the two capabilities a window-system integration
// provides: focus monitoring and frame capture.
type Adapter interface {
	Monitor
	Capturer
}
