package fwsm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comalice/fwsm"
)

const (
	trGo fwsm.Trigger = iota + 1
	trBack
	trOther
)

// trace records the names of the behaviors it hands out, in call order.
type trace struct {
	calls []string
}

func (tr *trace) action(name string) fwsm.Action {
	return fwsm.ActionFunc(func(*fwsm.Descriptor) {
		tr.calls = append(tr.calls, name)
	})
}

func (tr *trace) guard(name string, result *bool) fwsm.Guard {
	return fwsm.GuardFunc(func(*fwsm.Descriptor) bool {
		tr.calls = append(tr.calls, name)
		return *result
	})
}

func (tr *trace) reset() { tr.calls = nil }

// recordingObserver keeps every notification it receives.
type recordingObserver struct {
	transitions []fwsm.Transition
	errs        []fwsm.ErrCode
}

func (o *recordingObserver) OnTransition(_ *fwsm.Descriptor, tr fwsm.Transition) {
	o.transitions = append(o.transitions, tr)
}

func (o *recordingObserver) OnError(_ *fwsm.Descriptor, code fwsm.ErrCode) {
	o.errs = append(o.errs, code)
}

// newTwoStates returns an initialized descriptor with states S0 (1) and
// S1 (2) and one transition S0 -> S1 on trGo using guard slot 1 and action
// slot 1. Slot 1 is left unbound.
func newTwoStates(t *testing.T, opts ...fwsm.Option) *fwsm.Descriptor {
	t.Helper()
	d := fwsm.New(fwsm.Sizes{States: 2, Transitions: 2, Actions: 2, Guards: 2}, opts...)
	fwsm.Init(d)
	d.AddState(1, fwsm.StateSpec{NumOut: 1})
	d.AddState(2, fwsm.StateSpec{})
	d.AddTrans(fwsm.TransSpec{Source: fwsm.Initial, Dest: fwsm.StateVertex(1)})
	d.AddTrans(fwsm.TransSpec{
		Trigger: trGo,
		Source:  fwsm.StateVertex(1),
		Dest:    fwsm.StateVertex(2),
		Guard:   fwsm.SlotOf(1),
		Action:  fwsm.SlotOf(1),
	})
	require.Equal(t, fwsm.ErrNone, d.ErrCode())
	return d
}

// newBoundTwoStates is newTwoStates with slot 1 bound to an action and a
// guard that always passes.
func newBoundTwoStates(t *testing.T, opts ...fwsm.Option) *fwsm.Descriptor {
	t.Helper()
	d := newTwoStates(t, opts...)
	d.SetAction(1, fwsm.NoAction)
	d.SetGuard(1, fwsm.AlwaysTrue)
	require.Equal(t, fwsm.ErrNone, d.Check())
	return d
}
