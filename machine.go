package hsm

import orderedmap "github.com/wk8/go-ordered-map/v2"

// Machine is one node in the tree of machines: the root machine has no
// parent state, every composite state's child machine has its owning
// State as parent. States are held in an ordered map so iteration order
// (used by Reset, deactivation, and Dump) matches declaration order
// rather than Go's randomized map order.
type Machine struct {
	name   string
	kernel *Kernel

	parent *State

	initial *State
	current *State

	states *orderedmap.OrderedMap[string, *State]
}

// NewRootMachine creates a new, independent machine tree with its own
// Kernel. This is the entry point for building a state chart.
func NewRootMachine(name string) *Machine {
	k := &Kernel{id: newKernelID()}
	m := newMachine(name, k, nil)
	k.root = m
	return m
}

func newMachine(name string, k *Kernel, parent *State) *Machine {
	m := &Machine{
		name:   name,
		kernel: k,
		parent: parent,
		states: orderedmap.New[string, *State](),
	}
	k.machines = append(k.machines, m)
	return m
}

// Name returns the machine's declared name.
func (m *Machine) Name() string { return m.name }

// String satisfies fmt.Stringer with the bare name.
func (m *Machine) String() string { return m.name }

// Kernel returns the shared dispatch kernel for this machine's tree.
func (m *Machine) Kernel() *Kernel { return m.kernel }

// ParentState returns the composite state that owns this machine, or nil
// for the root machine.
func (m *Machine) ParentState() *State { return m.parent }

// CreateState declares a new, non-initial state on m.
func (m *Machine) CreateState(name string) *State {
	s := &State{
		name:        name,
		machine:     m,
		transitions: make(map[uint64][]*Transition),
	}
	m.states.Set(name, s)
	return s
}

// CreateInitialState declares m's initial state and activates it (and,
// transitively, every descendant machine that is allowed to be active).
// Activation here is bookkeeping only: it sets current pointers per the
// active/inactive invariant without invoking any entry or exit handler,
// exactly like Reset (see cascadeActivate).
//
// Panics if m already has an initial state.
func (m *Machine) CreateInitialState(name string) *State {
	if m.initial != nil {
		panic(&AlreadyInitializedError{Machine: m, Reason: "machine " + m.name + " already has an initial state " + m.initial.name})
	}
	s := m.CreateState(name)
	m.initial = s
	m.cascadeActivate()
	return s
}

// CurrentState returns m's own current state, or nil if m is not active.
func (m *Machine) CurrentState() *State { return m.current }

// CurrentStateRecursive walks down through nested composite states and
// returns the deepest active leaf state of this machine's tree.
func (m *Machine) CurrentStateRecursive() *State {
	s := m.current
	for s != nil && s.child != nil && s.child.current != nil {
		s = s.child.current
	}
	return s
}

// IsActive reports whether m currently has a current state.
func (m *Machine) IsActive() bool { return m.current != nil }

// IsChildOf reports whether m is other, or nested (at any depth) inside a
// composite state belonging to other.
func (m *Machine) IsChildOf(other *Machine) bool {
	for cur := m; cur != nil; cur = parentMachineOf(cur) {
		if cur == other {
			return true
		}
	}
	return false
}

// TopmostMachine walks up to the root of m's tree.
func (m *Machine) TopmostMachine() *Machine {
	cur := m
	for cur.parent != nil {
		cur = cur.parent.machine
	}
	return cur
}

func parentMachineOf(m *Machine) *Machine {
	if m.parent == nil {
		return nil
	}
	return m.parent.machine
}

// Reset restores every machine in the tree to its freshly constructed,
// initial-state configuration: no entry/exit handlers run, and any
// latched fault is cleared along with the pending dispatch queue. If a
// Synchronizer is installed, the reset body runs under it.
func (m *Machine) Reset() {
	root := m.TopmostMachine()
	k := root.kernel
	body := func() {
		k.fault = nil
		k.queue = nil
		k.executing = false
		for _, mm := range k.machines {
			mm.cascadeActivate()
		}
	}
	if k.synchronizer != nil {
		k.synchronizer.Reset(body)
		return
	}
	body()
}

// isAllowedActive reports whether m is permitted to have a current state
// right now: the root machine always is; a nested machine is only when
// its owning state is itself the current state of its parent machine.
func (m *Machine) isAllowedActive() bool {
	if m.parent == nil {
		return true
	}
	return m.parent.machine.current == m.parent
}

// cascadeActivate sets m.current per the active/inactive invariant
// (without invoking handlers) and recurses into the child machine of the
// newly current state, or deactivates the whole subtree if m is not
// allowed to be active.
func (m *Machine) cascadeActivate() {
	if !m.isAllowedActive() {
		m.deactivateTree()
		return
	}
	m.current = m.initial
	if m.current != nil && m.current.child != nil {
		m.current.child.cascadeActivate()
	}
}

// deactivateTree nils out current for m and every nested machine beneath
// it, regardless of which state used to be current.
func (m *Machine) deactivateTree() {
	m.current = nil
	for pair := m.states.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.child != nil {
			pair.Value.child.deactivateTree()
		}
	}
}
