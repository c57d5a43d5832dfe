package ui

// EventKind names an outward notification. Events are fire-and-forget,
// delivered synchronously in emission order to the registered observer.
type EventKind string

const (
	EventReady            EventKind = "ready"
	EventFrameChanged     EventKind = "frame_changed"
	EventAnimationStopped EventKind = "animation_stopped"
	EventScatterComplete  EventKind = "scatter_complete"
	EventFadeComplete     EventKind = "fade_complete"
	EventAction           EventKind = "action"
	EventError            EventKind = "error"
)

type Event struct {
	Kind   EventKind
	Frame  string // frame_changed
	Index  int    // frame_changed
	Action string // action: the configured custom action name
	Err    error  // error
}
