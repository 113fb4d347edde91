package hsm

import (
	"context"
	"fmt"
)

// dispatch is the single entry point every Fire/TryFire call funnels
// through. It enforces run-to-completion: a fire that arrives while
// another is already executing (typically from inside a handler) is
// queued and reported as provisionally "found", draining in FIFO order
// once the outer fire finishes (spec.md §5).
func (k *Kernel) dispatch(ev eventIdentity, data any, method DispatchMethod, forced bool, forcedTarget *State) (bool, error) {
	if k.fault != nil {
		return false, &MachineFaultedError{Fault: k.fault}
	}
	if k.root == nil || k.root.current == nil {
		return false, &InvalidStateError{Machine: k.root, Reason: "no active state"}
	}

	attempt := func() (bool, *StateMachineFault) {
		if forced {
			return k.executeForced(forcedTarget, ev, data)
		}
		return k.executeSearch(ev, data)
	}

	if k.executing {
		k.queue = append(k.queue, queuedFire{run: attempt})
		if k.metrics != nil {
			k.metrics.ObserveQueueDepth(len(k.queue))
		}
		return true, nil
	}

	run := func() (bool, error) {
		k.executing = true
		found, err := k.runAttempt(attempt)
		k.executing = false
		k.drainQueue()
		return found, err
	}

	var finish func(found bool, err error)
	ctx := context.Background()
	if k.tracer != nil {
		ctx, finish = k.tracer.StartDispatch(ctx, ev.Name())
	}

	var found bool
	var err error
	if k.synchronizer != nil {
		found, err = k.synchronizer.FireEvent(run, method)
	} else {
		found, err = run()
	}

	if k.metrics != nil {
		if err != nil {
			k.metrics.ObserveFault()
		} else {
			k.metrics.ObserveFire(found)
		}
	}
	if finish != nil {
		finish(found, err)
	}
	_ = ctx
	return found, err
}

// runAttempt executes fn, latching any resulting fault onto the kernel
// and translating it into a TransitionFailedError.
func (k *Kernel) runAttempt(fn func() (bool, *StateMachineFault)) (bool, error) {
	found, fault := fn()
	if fault != nil {
		k.fault = fault
		return found, &TransitionFailedError{Fault: fault}
	}
	return found, nil
}

// drainQueue runs every fire queued while the kernel was executing, in
// the order they arrived, stopping early if one of them faults.
func (k *Kernel) drainQueue() {
	for len(k.queue) > 0 && k.fault == nil {
		next := k.queue[0]
		k.queue = k.queue[1:]
		k.executing = true
		_, err := k.runAttempt(next.run)
		k.executing = false
		if err != nil {
			return
		}
	}
}

// executeSearch walks from the deepest active leaf state up through its
// ancestors (crossing machine boundaries transparently) looking for the
// first transition registered for ev whose guard (if any) passes.
func (k *Kernel) executeSearch(ev eventIdentity, data any) (bool, *StateMachineFault) {
	leaf := k.root.CurrentStateRecursive()
	for s := leaf; s != nil; s = parentStateOf(s) {
		cands := s.transitions[ev.eventID()]
		for _, t := range cands {
			target := t.target
			if t.kind == kindDynamic {
				info := Info{from: s, event: ev, data: data}
				sel, fault := k.invokeSelector(t.selector, info)
				if fault != nil {
					return false, fault
				}
				if sel == nil {
					continue
				}
				target = sel
			}
			if t.guard != nil {
				info := Info{from: s, to: target, event: ev, data: data, isInner: t.kind == kindInner}
				ok, fault := k.invokeGuard(t.guard, info)
				if fault != nil {
					return false, fault
				}
				if !ok {
					continue
				}
			}
			return k.performTransition(leaf, target, t, ev, data)
		}
	}
	return false, nil
}

// executeForced synthesizes a forced transition from the current leaf
// state directly to target, bypassing the transition table entirely
// (spec.md §4.4).
func (k *Kernel) executeForced(target *State, ev eventIdentity, data any) (bool, *StateMachineFault) {
	from := k.root.CurrentStateRecursive()
	t := &Transition{kind: kindForced, target: target, event: ev}
	return k.performTransition(from, target, t, ev, data)
}

// performTransition runs the exit chain, the transition handler, and the
// entry chain (or, for inner transitions, just the handler), updating
// current pointers as it goes.
func (k *Kernel) performTransition(from, to *State, t *Transition, ev eventIdentity, data any) (bool, *StateMachineFault) {
	if t.kind == kindInner {
		info := Info{from: from, to: from, event: ev, data: data, isInner: true}
		if fault := k.invokeHandler(t.handler, info, ComponentTransition); fault != nil {
			return false, fault
		}
		return true, nil
	}

	var lca *State
	if from == to {
		lca = parentStateOf(from)
	} else {
		lca = computeLCA(from, to)
	}

	for _, s := range chainAbove(from, lca) {
		info := Info{from: s, to: to, event: ev, data: data}
		if fault := k.invokeHandler(s.exit, info, ComponentExit); fault != nil {
			return false, fault
		}
		s.machine.current = nil
	}

	handlerInfo := Info{from: from, to: to, event: ev, data: data}
	if fault := k.invokeHandler(t.handler, handlerInfo, ComponentTransition); fault != nil {
		return false, fault
	}

	entryChain := chainAbove(to, lca)
	for i := len(entryChain) - 1; i >= 0; i-- {
		s := entryChain[i]
		s.machine.current = s
		info := Info{from: from, to: s, event: ev, data: data}
		if fault := k.invokeHandler(s.entry, info, ComponentEntry); fault != nil {
			return false, fault
		}
	}

	if to.child != nil {
		if fault := k.activateChildChain(to.child, from, ev, data); fault != nil {
			return false, fault
		}
	}

	return true, nil
}

// activateChildChain enters the initial-state chain of a freshly entered
// composite state's child machine, recursing into further nested
// composite states. The Info.From carried to every synthesized entry
// call is the outer transition's original from-state, not nil, so
// handlers can always see where the overall transition started.
func (k *Kernel) activateChildChain(m *Machine, originalFrom *State, ev eventIdentity, data any) *StateMachineFault {
	s := m.initial
	if s == nil {
		return nil
	}
	m.current = s
	info := Info{from: originalFrom, to: s, event: ev, data: data}
	if fault := k.invokeHandler(s.entry, info, ComponentEntry); fault != nil {
		return fault
	}
	if s.child != nil {
		return k.activateChildChain(s.child, originalFrom, ev, data)
	}
	return nil
}

// chainAbove returns the states from leaf up to (but not including) lca,
// leaf-first. A nil lca means "all the way to the root of leaf's tree".
func chainAbove(leaf, lca *State) []*State {
	var chain []*State
	for s := leaf; s != nil && s != lca; s = parentStateOf(s) {
		chain = append(chain, s)
	}
	return chain
}

// parentStateOf returns the composite state owning s's machine, or nil
// if s's machine is a tree root.
func parentStateOf(s *State) *State {
	return s.machine.parent
}

// computeLCA finds the least common ancestor of from and to across
// machine boundaries. A nil result means the two states share no common
// ancestor within the tree (they live in different top-level branches),
// which correctly drives an exit-to-root-then-enter sequence.
func computeLCA(from, to *State) *State {
	fromChain := chainToRootReversed(from)
	toChain := chainToRootReversed(to)
	var lca *State
	for i := 0; i < len(fromChain) && i < len(toChain); i++ {
		if fromChain[i] != toChain[i] {
			break
		}
		lca = fromChain[i]
	}
	return lca
}

func chainToRootReversed(s *State) []*State {
	var chain []*State
	for cur := s; cur != nil; cur = parentStateOf(cur) {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func (k *Kernel) invokeGuard(g func(Info) bool, info Info) (ok bool, fault *StateMachineFault) {
	defer func() {
		if r := recover(); r != nil {
			fault = k.newFault(ComponentGuard, info, r)
		}
	}()
	return g(info), nil
}

func (k *Kernel) invokeSelector(sel func(Info) *State, info Info) (target *State, fault *StateMachineFault) {
	defer func() {
		if r := recover(); r != nil {
			fault = k.newFault(ComponentDynamic, info, r)
		}
	}()
	return sel(info), nil
}

func (k *Kernel) invokeHandler(h func(Info), info Info, c Component) (fault *StateMachineFault) {
	if h == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			fault = k.newFault(c, info, r)
		}
	}()
	h(info)
	return nil
}

func (k *Kernel) newFault(c Component, info Info, r any) *StateMachineFault {
	err, ok := r.(error)
	if !ok {
		err = fmt.Errorf("%v", r)
	}
	return &StateMachineFault{
		ID:        newKernelID(),
		Machine:   k.root,
		Component: c,
		Inner:     err,
		From:      info.from,
		To:        info.to,
		Event:     info.event,
	}
}

// ForceTransition bypasses the transition table and drives the machine
// tree directly from its current leaf state to target, running the
// usual exit/entry sequence with ev as the associated event (nil is
// valid when no particular event is being impersonated).
func (m *Machine) ForceTransition(target *State, ev eventIdentity) error {
	k := m.TopmostMachine().kernel
	if ev == nil {
		ev = forcedEventPlaceholder
	}
	found, err := k.dispatch(ev, nil, MethodFire, true, target)
	if err != nil {
		return err
	}
	if !found {
		return &TransitionNotFoundError{From: k.root.CurrentStateRecursive(), Event: ev, Machine: k.root}
	}
	return nil
}

var forcedEventPlaceholder eventIdentity = &eventBase{id: ^uint64(0), name: "<forced>"}
