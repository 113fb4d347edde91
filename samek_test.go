package hsm_test

// Ported from the classic nested-state example in Miro Samek's
// "Practical Statecharts in C/C++" (states s0/s1/s11/s2/s21/s211), recast
// onto a machine-per-composite-state tree instead of one flat state list.
// A trimmed subset of the book's events (A, G, H) is enough to exercise
// guarded self-transitions, transitions onto a composite ancestor, and deep cross-branch
// jumps across several levels of nesting.

import (
	"testing"

	"github.com/latticehsm/hsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samekFixture struct {
	m             *hsm.Machine
	s0, s1, s11   *hsm.State
	s2, s21, s211 *hsm.State
	evA, evG, evH *hsm.UntypedEvent
	foo           bool
	log           []string
	infos         map[string]hsm.Info
}

func buildSamek() *samekFixture {
	f := &samekFixture{infos: make(map[string]hsm.Info)}
	trace := func(name string) func(hsm.Info) {
		return func(i hsm.Info) {
			f.log = append(f.log, name)
			f.infos[name] = i
		}
	}

	f.m = hsm.NewRootMachine("samek")
	f.s0 = f.m.CreateInitialState("s0").WithEntry(trace("enter s0")).WithExit(trace("exit s0"))

	s0inner := f.s0.CreateChildMachine("s0-inner")
	f.s1 = s0inner.CreateInitialState("s1").WithEntry(trace("enter s1")).WithExit(trace("exit s1"))
	f.s2 = s0inner.CreateState("s2").WithEntry(trace("enter s2")).WithExit(trace("exit s2"))

	s1inner := f.s1.CreateChildMachine("s1-inner")
	f.s11 = s1inner.CreateInitialState("s11").WithEntry(trace("enter s11")).WithExit(trace("exit s11"))

	s2inner := f.s2.CreateChildMachine("s2-inner")
	f.s21 = s2inner.CreateInitialState("s21").WithEntry(trace("enter s21")).WithExit(trace("exit s21"))

	s21inner := f.s21.CreateChildMachine("s21-inner")
	f.s211 = s21inner.CreateInitialState("s211").WithEntry(trace("enter s211")).WithExit(trace("exit s211"))

	f.evA = hsm.NewEvent(f.m, "A")
	f.evG = hsm.NewEvent(f.m, "G")
	f.evH = hsm.NewEvent(f.m, "H")

	f.s1.TransitionOn(f.evA).To(f.s1).Build() // s1 is the LCA: only its child chain exits/re-enters
	f.s11.AddTransition(f.evG, f.s211)

	f.s21.TransitionOn(f.evH).
		To(f.s21).
		WithGuard(func(hsm.Info) bool { return !f.foo }).
		WithHandler(func(hsm.Info) { f.foo = true }).
		Build()

	return f
}

func TestSamekInitialDescendsToDeepestInitialState(t *testing.T) {
	f := buildSamek()
	assert.Equal(t, f.s11, f.m.CurrentStateRecursive())
	assert.Empty(t, f.log, "construction-time activation must not invoke entry handlers")
}

func TestSamekSelfTransitionOnAncestorOfCurrentLeaf(t *testing.T) {
	f := buildSamek()
	f.log = nil

	require.NoError(t, f.evA.Fire())

	assert.Equal(t, []string{"exit s11", "enter s11"}, f.log,
		"s1 is the LCA of leaf s11 and target s1, so s1 itself is never exited or re-entered; "+
			"only its child chain tears down and rebuilds via s1's initial state")
	assert.Equal(t, f.s11, f.s1.ChildMachine().CurrentState())
}

func TestSamekDeepCrossBranchTransition(t *testing.T) {
	f := buildSamek()
	f.log = nil

	require.NoError(t, f.evG.Fire())

	assert.Equal(t, []string{"exit s11", "exit s1", "enter s2", "enter s21", "enter s211"}, f.log)
	assert.Equal(t, f.s211, f.m.CurrentStateRecursive())

	// Each exit handler must see itself as From, not the overall leaf the
	// transition started from; each entry handler must see itself as To,
	// not the overall destination the transition ended at.
	assert.Equal(t, f.s11, f.infos["exit s11"].From())
	assert.Equal(t, f.s211, f.infos["exit s11"].To())
	assert.Equal(t, f.s1, f.infos["exit s1"].From())
	assert.Equal(t, f.s211, f.infos["exit s1"].To())

	assert.Equal(t, f.s11, f.infos["enter s2"].From())
	assert.Equal(t, f.s2, f.infos["enter s2"].To())
	assert.Equal(t, f.s11, f.infos["enter s21"].From())
	assert.Equal(t, f.s21, f.infos["enter s21"].To())
	assert.Equal(t, f.s11, f.infos["enter s211"].From())
	assert.Equal(t, f.s211, f.infos["enter s211"].To())
}

func TestSamekGuardedSelfTransitionOnCompositeReentersViaItsInitialChain(t *testing.T) {
	f := buildSamek()
	require.NoError(t, f.evG.Fire())
	f.log = nil

	require.NoError(t, f.evH.Fire())

	assert.True(t, f.foo)
	assert.Equal(t, []string{"exit s211", "enter s211"}, f.log,
		"a self-transition matched at s21 while s211 is active exits only down to s21's "+
			"initial chain and re-enters it, since s21 itself is the LCA")
	assert.Equal(t, f.s211, f.m.CurrentStateRecursive())
}

func TestSamekGuardFailureLeavesEventUnhandled(t *testing.T) {
	f := buildSamek()
	require.NoError(t, f.evG.Fire())
	require.NoError(t, f.evH.Fire())
	require.True(t, f.foo)

	found, err := f.evH.TryFire()
	require.NoError(t, err)
	assert.False(t, found, "with foo already true the guard fails and no ancestor of s21 claims H")
}
