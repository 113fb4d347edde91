package hsm

import (
	"fmt"

	"github.com/google/uuid"
)

// Component identifies which kind of user-supplied callback raised a fault.
type Component int

const (
	ComponentEntry Component = iota
	ComponentExit
	ComponentTransition
	ComponentGuard
	ComponentDynamic
)

func (c Component) String() string {
	switch c {
	case ComponentEntry:
		return "entry"
	case ComponentExit:
		return "exit"
	case ComponentTransition:
		return "transition"
	case ComponentGuard:
		return "guard"
	case ComponentDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// StateMachineFault is the record a kernel latches onto once a handler,
// guard, or dynamic selector panics. It persists until Reset.
type StateMachineFault struct {
	ID        uuid.UUID
	Machine   *Machine
	Component Component
	Inner     error
	From, To  *State
	Event     eventIdentity
}

func (f *StateMachineFault) Error() string {
	return fmt.Sprintf("hsm: %s handler failed during %s -> %s on event %q: %v",
		f.Component, stateName(f.From), stateName(f.To), eventName(f.Event), f.Inner)
}

func (f *StateMachineFault) Unwrap() error { return f.Inner }

func stateName(s *State) string {
	if s == nil {
		return "<nil>"
	}
	return s.name
}

func eventName(e eventIdentity) string {
	if e == nil {
		return "<none>"
	}
	return e.Name()
}

// TransitionNotFoundError is returned by Fire when no transition matches
// the event anywhere in the currently active hierarchy.
type TransitionNotFoundError struct {
	From    *State
	Event   eventIdentity
	Machine *Machine
}

func (e *TransitionNotFoundError) Error() string {
	return fmt.Sprintf("hsm: no transition found for event %q from state %s", eventName(e.Event), stateName(e.From))
}

// TransitionFailedError is returned by the fire call whose handler chain
// raised the fault now latched onto the kernel.
type TransitionFailedError struct {
	Fault *StateMachineFault
}

func (e *TransitionFailedError) Error() string {
	return "hsm: transition failed: " + e.Fault.Error()
}

func (e *TransitionFailedError) Unwrap() error { return e.Fault }

// MachineFaultedError is returned by any operation attempted on a kernel
// that already carries a fault, except Reset.
type MachineFaultedError struct {
	Fault *StateMachineFault
}

func (e *MachineFaultedError) Error() string {
	return "hsm: machine faulted: " + e.Fault.Error()
}

func (e *MachineFaultedError) Unwrap() error { return e.Fault }

// InvalidStateError is returned when firing against a machine tree whose
// root has no current state (initial state never set, or not yet active).
type InvalidStateError struct {
	Machine *Machine
	Reason  string
}

func (e *InvalidStateError) Error() string {
	return "hsm: invalid state: " + e.Reason
}

// AlreadyInitializedError is panicked by a second call to CreateInitialState
// on the same machine. Like the teacher's builder panics, this is a
// programmer error caught at construction time, not a runtime fault.
type AlreadyInitializedError struct {
	Machine *Machine
	Reason  string
}

func (e *AlreadyInitializedError) Error() string {
	return "hsm: already initialized: " + e.Reason
}
