package hsm

import "errors"

// ErrOperationIncomplete is returned by FireOperation when the fire
// succeeds but the tree did not land on the expected success state.
var ErrOperationIncomplete = errors.New("hsm: operation did not reach the expected success state")

// FireOperation fires a typed event and checks that the tree's current
// leaf state afterward is exactly successState, giving callers a way to
// treat "fired, but some guard routed elsewhere" as a distinct outcome
// from both a hard error and a fully successful operation.
func FireOperation[T any](event *Event[T], data T, successState *State) error {
	if err := event.Fire(data); err != nil {
		return err
	}
	if event.kernel.root.CurrentStateRecursive() != successState {
		return ErrOperationIncomplete
	}
	return nil
}

// FireUntypedOperation is the UntypedEvent counterpart of FireOperation.
func FireUntypedOperation(event *UntypedEvent, successState *State) error {
	if err := event.Fire(); err != nil {
		return err
	}
	if event.kernel.root.CurrentStateRecursive() != successState {
		return ErrOperationIncomplete
	}
	return nil
}
