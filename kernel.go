package hsm

import "github.com/google/uuid"

// DispatchMethod distinguishes Fire from TryFire for Synchronizer hooks;
// it never changes dispatch semantics itself.
type DispatchMethod int

const (
	MethodFire DispatchMethod = iota
	MethodTryFire
)

// Synchronizer lets an embedder adapt dispatch to its own threading
// model, e.g. marshaling onto a single event-loop goroutine. dispatch
// invokes it around the whole attempt (search-or-forced plus queue
// drain trigger); it must eventually call run and return its result
// unchanged, though it may defer run and return early (see SPEC_FULL.md
// S9) as long as run is still eventually invoked under the kernel's own
// reentrancy guard.
type Synchronizer interface {
	FireEvent(run func() (bool, error), method DispatchMethod) (bool, error)
	Reset(action func())
}

// MetricsRecorder observes dispatch outcomes without participating in
// them. All methods must be safe to call even when nil receivers are
// avoided by the kernel's own nil checks.
type MetricsRecorder interface {
	ObserveFire(found bool)
	ObserveFault()
	ObserveQueueDepth(depth int)
}

type queuedFire struct {
	run func() (bool, *StateMachineFault)
}

// Kernel is the shared dispatch core for one machine tree: the fault
// latch, the reentrant dispatch queue, and the counter used to mint
// stable event identities. States and machines are compared by plain
// pointer identity, not by id. Every Machine and State in a tree shares
// exactly one Kernel, reached via Machine.kernel.
type Kernel struct {
	id   uuid.UUID
	root *Machine

	machines []*Machine

	fault     *StateMachineFault
	executing bool
	queue     []queuedFire

	synchronizer Synchronizer
	metrics      MetricsRecorder
	tracer       Tracer

	nextEventID uint64
}

func newKernelID() uuid.UUID { return uuid.New() }

// ID returns the kernel's stable identity, useful for correlating faults
// and trace spans across a long-running process.
func (k *Kernel) ID() uuid.UUID { return k.id }

// Fault returns the currently latched fault, or nil if the tree is
// healthy.
func (k *Kernel) Fault() *StateMachineFault { return k.fault }

// SetSynchronizer installs (or clears, with nil) the threading adapter.
func (k *Kernel) SetSynchronizer(s Synchronizer) { k.synchronizer = s }

// SetMetricsRecorder installs (or clears, with nil) the metrics hook.
func (k *Kernel) SetMetricsRecorder(r MetricsRecorder) { k.metrics = r }

// SetTracer installs (or clears, with nil) the tracing hook.
func (k *Kernel) SetTracer(t Tracer) { k.tracer = t }
