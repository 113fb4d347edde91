package hsm

// transitionKind tags the four variants spec.md §3 describes. The
// dispatcher switches on this tag once rather than using polymorphic
// dispatch, per the design note in spec.md §9.
type transitionKind int

const (
	kindNormal transitionKind = iota
	kindInner
	kindDynamic
	kindForced
)

// Transition is a rule keyed on an event at a source state. Normal and
// dynamic transitions carry a destination (static or computed); inner
// transitions target their own source; forced transitions are synthesized
// on the fly by Machine.ForceTransition and never live in a state's table.
type Transition struct {
	kind     transitionKind
	event    eventIdentity
	target   *State
	selector func(Info) *State
	guard    func(Info) bool
	handler  func(Info)
}

// TransitionBuilder is the fluent, deliberately thin construction surface
// named (but not elaborated) by spec.md §1/§6. Unlike the teacher's
// StateBuilder/TransitionBuilder, it does not support combining multiple
// guards or actions on one transition — spec.md §3 specifies exactly one
// guard and one handler per transition.
type TransitionBuilder struct {
	src *State
	t   *Transition
}

// TransitionOn begins declaring a transition out of s for the given event.
func (s *State) TransitionOn(event eventIdentity) *TransitionBuilder {
	return &TransitionBuilder{src: s, t: &Transition{kind: kindNormal, event: event}}
}

// To makes this a normal transition to dst.
func (tb *TransitionBuilder) To(dst *State) *TransitionBuilder {
	tb.t.kind = kindNormal
	tb.t.target = dst
	return tb
}

// ToDynamic makes this a dynamic transition: sel is invoked at fire time to
// compute the destination. A nil result is treated as "not found" at this
// level, exactly like a failed guard (spec.md §4.2).
func (tb *TransitionBuilder) ToDynamic(sel func(Info) *State) *TransitionBuilder {
	tb.t.kind = kindDynamic
	tb.t.selector = sel
	return tb
}

// ToInner makes this an inner-self transition: from == to, but exit/entry
// are suppressed and only the handler runs.
func (tb *TransitionBuilder) ToInner() *TransitionBuilder {
	tb.t.kind = kindInner
	tb.t.target = tb.src
	return tb
}

// ToSelf makes this a normal self-transition: from == to, with the full
// exit/handler/entry sequence (see spec.md §4.3's self-transition rule).
func (tb *TransitionBuilder) ToSelf() *TransitionBuilder {
	tb.t.kind = kindNormal
	tb.t.target = tb.src
	return tb
}

// WithGuard attaches a guard predicate. A guard that returns false causes
// the search to continue at the next ancestor (spec.md §4.2).
func (tb *TransitionBuilder) WithGuard(g func(Info) bool) *TransitionBuilder {
	tb.t.guard = g
	return tb
}

// WithHandler attaches the transition handler, run after exit and before
// entry (or, for inner transitions, the only thing that runs).
func (tb *TransitionBuilder) WithHandler(h func(Info)) *TransitionBuilder {
	tb.t.handler = h
	return tb
}

// Build registers the transition on its source state's event table and
// returns it.
func (tb *TransitionBuilder) Build() *Transition {
	if tb.t.kind == kindNormal && tb.t.target == nil {
		panic("hsm: transition out of state " + tb.src.name + " has no target; call To, ToSelf, or ToInner before Build")
	}
	if tb.t.kind == kindDynamic && tb.t.selector == nil {
		panic("hsm: dynamic transition out of state " + tb.src.name + " has no selector")
	}
	id := tb.t.event.eventID()
	tb.src.transitions[id] = append(tb.src.transitions[id], tb.t)
	return tb.t
}

// AddTransition is a convenience for TransitionOn(event).To(dst).Build().
func (s *State) AddTransition(event eventIdentity, dst *State) *Transition {
	return s.TransitionOn(event).To(dst).Build()
}
