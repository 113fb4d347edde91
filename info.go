package hsm

// Info is the immutable descriptor passed to every entry, exit, transition,
// guard, and dynamic-selector callback. It exposes read-only accessors
// rather than a live Machine pointer, per the design note to avoid handlers
// reaching back into machine internals.
type Info struct {
	from, to *State
	event    eventIdentity
	isInner  bool
	data     any
}

// From is the state being left. For exit handlers it is the exiting state
// itself; for entry handlers, including the synthetic entry calls made while
// activating a freshly entered composite state's child machine chain, it is
// the original outer from-state (see dispatch.go).
func (i Info) From() *State { return i.from }

// To is the state being entered (for entry handlers, the state itself; for
// exit handlers, the overall destination of the transition).
func (i Info) To() *State { return i.to }

// Event identifies the event that triggered this dispatch.
func (i Info) Event() eventIdentity { return i.event }

// IsInner reports whether this is an inner-self transition, in which case
// only the transition handler runs (no entry/exit).
func (i Info) IsInner() bool { return i.isInner }

// Data returns the event payload, or nil for untyped events and handler
// calls with no associated payload.
func (i Info) Data() any { return i.data }

// TypedData type-asserts Info's payload to T, returning the zero value of T
// if the payload is absent or of a different type.
func TypedData[T any](i Info) T {
	v, _ := i.data.(T)
	return v
}
