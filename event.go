package hsm

// eventIdentity is the sealed identity contract an event presents to the
// dispatcher: a stable id usable as a transition-table key, plus a name for
// diagnostics. Only types in this package implement it: UntypedEvent,
// Event[T], and the placeholder ForceTransition uses when given no event.
type eventIdentity interface {
	Name() string
	eventID() uint64
}

type eventBase struct {
	id   uint64
	name string
}

func (e eventBase) Name() string    { return e.name }
func (e eventBase) eventID() uint64 { return e.id }

// UntypedEvent is an event with no payload. It is bound to exactly one
// machine tree (via its kernel) at construction and carries no state of its
// own between fires.
type UntypedEvent struct {
	eventBase
	kernel *Kernel
}

// NewEvent declares a new untyped event on the tree rooted at root.
func NewEvent(root *Machine, name string) *UntypedEvent {
	k := root.kernel
	e := &UntypedEvent{eventBase: eventBase{id: k.nextEventID, name: name}, kernel: k}
	k.nextEventID++
	return e
}

// TryFire attempts delivery, returning false (with a nil error) if no
// transition claims the event anywhere in the active hierarchy. A non-nil
// error means a precondition failed (MachineFaulted, InvalidState) or the
// handler chain this fire triggered itself faulted (TransitionFailed).
func (e *UntypedEvent) TryFire() (bool, error) {
	return e.kernel.dispatch(e, nil, MethodTryFire, false, nil)
}

// Fire attempts delivery and raises TransitionNotFoundError if nothing
// claimed the event.
func (e *UntypedEvent) Fire() error {
	found, err := e.kernel.dispatch(e, nil, MethodFire, false, nil)
	if err != nil {
		return err
	}
	if !found {
		return &TransitionNotFoundError{From: e.kernel.root.CurrentStateRecursive(), Event: e, Machine: e.kernel.root}
	}
	return nil
}

// Event is an event carrying a typed payload of type T.
type Event[T any] struct {
	eventBase
	kernel *Kernel
}

// NewTypedEvent declares a new typed event on the tree rooted at root.
func NewTypedEvent[T any](root *Machine, name string) *Event[T] {
	k := root.kernel
	e := &Event[T]{eventBase: eventBase{id: k.nextEventID, name: name}, kernel: k}
	k.nextEventID++
	return e
}

// TryFire attempts delivery with the given payload. See UntypedEvent.TryFire.
func (e *Event[T]) TryFire(data T) (bool, error) {
	return e.kernel.dispatch(e, data, MethodTryFire, false, nil)
}

// Fire attempts delivery with the given payload. See UntypedEvent.Fire.
func (e *Event[T]) Fire(data T) error {
	found, err := e.kernel.dispatch(e, data, MethodFire, false, nil)
	if err != nil {
		return err
	}
	if !found {
		return &TransitionNotFoundError{From: e.kernel.root.CurrentStateRecursive(), Event: e, Machine: e.kernel.root}
	}
	return nil
}
