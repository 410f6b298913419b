package fwsm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/fwsm"
)

func TestStartRunsInitialTransitionAndEntry(t *testing.T) {
	t.Parallel()

	var tr trace
	obs := &recordingObserver{}
	b := fwsm.NewBuilder("door").
		Action("init", tr.action("init")).
		Action("enter", tr.action("closed.entry"))
	b.Initial("closed", "init")
	b.State("closed").Entry("enter")

	d, err := b.Build(fwsm.WithObserver(obs))
	require.NoError(t, err)

	d.Start()
	assert.Equal(t, []string{"init", "closed.entry"}, tr.calls)
	assert.Equal(t, b.StateID("closed"), d.CurState())
	assert.True(t, d.IsStarted())
	assert.Zero(t, d.TransCnt())
	require.Len(t, obs.transitions, 1)
	assert.Equal(t, fwsm.Transition{Trigger: fwsm.Execute, Index: 0, From: 0, To: b.StateID("closed")}, obs.transitions[0])

	tr.reset()
	d.Start()
	assert.Empty(t, tr.calls)
}

func TestTransitionActionOrder(t *testing.T) {
	t.Parallel()

	var tr trace
	b := fwsm.NewBuilder("door")
	for _, name := range []string{"closed.entry", "closed.do", "closed.exit", "move", "open.entry"} {
		b.Action(name, tr.action(name))
	}
	b.Initial("closed", "")
	b.State("closed").
		Entry("closed.entry").
		Do("closed.do").
		Exit("closed.exit").
		On("push", "open", "", "move")
	b.State("open").Entry("open.entry")

	d, err := b.Build()
	require.NoError(t, err)
	push := b.Trigger("push")

	d.Start()
	d.Execute()
	d.MakeTrans(push)

	assert.Equal(t, []string{
		"closed.entry",
		"closed.do",
		"closed.exit", "move", "open.entry",
	}, tr.calls)
	assert.Equal(t, b.StateID("open"), d.CurState())
	assert.Equal(t, uint64(1), d.TransCnt())
}

func TestFirstEnabledTransitionFires(t *testing.T) {
	t.Parallel()

	no, yes := false, true
	var tr trace
	b := fwsm.NewBuilder("pick").
		Guard("no", tr.guard("no", &no)).
		Guard("yes", tr.guard("yes", &yes))
	b.Initial("a", "")
	b.State("a").
		On("other", "d", "", "").
		On("go", "b", "no", "").
		On("go", "c", "yes", "").
		On("go", "d", "", "")
	b.State("b")
	b.State("c")
	b.State("d")

	d, err := b.Build()
	require.NoError(t, err)

	d.Start()
	d.MakeTrans(fwsm.Trigger(99))
	assert.Equal(t, b.StateID("a"), d.CurState())
	assert.Empty(t, tr.calls)

	d.MakeTrans(b.Trigger("go"))
	assert.Equal(t, b.StateID("c"), d.CurState())
	assert.Equal(t, []string{"no", "yes"}, tr.calls)
	assert.Equal(t, 2, d.TransCursor(fwsm.StateVertex(b.StateID("a"))))
}

func TestExecuteCounters(t *testing.T) {
	t.Parallel()

	ready := false
	var tr trace
	b := fwsm.NewBuilder("counter").Guard("ready", tr.guard("ready", &ready))
	b.Initial("wait", "")
	b.State("wait").OnExecute("run", "ready", "")
	b.State("run")

	d, err := b.Build()
	require.NoError(t, err)

	d.Start()
	for range 3 {
		d.Execute()
	}
	assert.Equal(t, uint64(3), d.ExecCnt())
	assert.Equal(t, uint64(3), d.StateExecCnt())
	assert.Equal(t, b.StateID("wait"), d.CurState())

	ready = true
	d.Execute()
	assert.Equal(t, b.StateID("run"), d.CurState())
	assert.Equal(t, uint64(4), d.ExecCnt())
	assert.Zero(t, d.StateExecCnt())
	assert.Equal(t, uint64(1), d.TransCnt())

	d.Execute()
	assert.Equal(t, uint64(5), d.ExecCnt())
	assert.Equal(t, uint64(1), d.StateExecCnt())
}

func TestFinalPseudoStateStopsMachine(t *testing.T) {
	t.Parallel()

	var tr trace
	b := fwsm.NewBuilder("job").
		Action("exit", tr.action("exit")).
		Action("bye", tr.action("bye"))
	b.Initial("work", "")
	b.State("work").Exit("exit").On("done", fwsm.FinalName, "", "bye")

	d, err := b.Build()
	require.NoError(t, err)

	d.Start()
	d.Execute()
	d.MakeTrans(b.Trigger("done"))
	assert.False(t, d.IsStarted())
	assert.Equal(t, []string{"exit", "bye"}, tr.calls)
	assert.Equal(t, uint64(1), d.TransCnt())

	d.Execute()
	assert.Equal(t, uint64(1), d.ExecCnt())

	d.Start()
	assert.True(t, d.IsStarted())
	assert.Zero(t, d.ExecCnt())
	assert.Zero(t, d.TransCnt())
}

func TestChoicePseudoState(t *testing.T) {
	t.Parallel()

	high, low := false, true
	var tr trace
	obs := &recordingObserver{}
	b := fwsm.NewBuilder("level").
		Guard("high", tr.guard("high", &high)).
		Guard("low", tr.guard("low", &low)).
		Action("toLow", tr.action("toLow"))
	b.Initial("measure", "")
	b.State("measure").On("go", "pick", "", "")
	b.State("hi").On("go", "pick", "", "")
	b.State("lo").On("go", "pick", "", "")
	b.Choice("pick").
		Branch("hi", "high", "").
		Branch("lo", "low", "toLow")

	d, err := b.Build(fwsm.WithObserver(obs))
	require.NoError(t, err)
	goTr := b.Trigger("go")

	d.Start()
	d.MakeTrans(goTr)
	assert.Equal(t, b.StateID("lo"), d.CurState())
	assert.Equal(t, []string{"high", "low", "toLow"}, tr.calls)
	assert.Equal(t, 1, d.TransCursor(fwsm.ChoiceVertex(b.ChoiceID("pick"))))
	require.Len(t, obs.transitions, 2)
	assert.Equal(t, fwsm.Transition{
		Trigger: goTr,
		Index:   1,
		From:    b.StateID("measure"),
		To:      b.StateID("lo"),
		Via:     b.ChoiceID("pick"),
	}, obs.transitions[1])

	low = false
	d.MakeTrans(goTr)
	assert.False(t, d.IsStarted())
	assert.Equal(t, fwsm.ErrTransErr, d.ErrCode())
	assert.Equal(t, fwsm.StatusError, d.Status())
	assert.Equal(t, []fwsm.ErrCode{fwsm.ErrTransErr}, obs.errs)

	high = true
	d.Start()
	assert.False(t, d.IsStarted())
}

func TestInitialTransitionIntoChoice(t *testing.T) {
	t.Parallel()

	warm := true
	b := fwsm.NewBuilder("boot").Guard("warm", fwsm.GuardFunc(func(*fwsm.Descriptor) bool { return warm }))
	b.Initial("mode", "")
	b.Choice("mode").Branch("resume", "warm", "").Else("cold", "")
	b.State("resume")
	b.State("cold")

	d, err := b.Build()
	require.NoError(t, err)
	d.Start()
	assert.Equal(t, b.StateID("resume"), d.CurState())
	assert.Zero(t, d.TransCnt())

	d.Stop()
	warm = false
	d.Start()
	assert.Equal(t, b.StateID("cold"), d.CurState())
}

func TestStop(t *testing.T) {
	t.Parallel()

	var tr trace
	b := fwsm.NewBuilder("stop").Action("exit", tr.action("exit"))
	b.Initial("a", "")
	b.State("a").Exit("exit")

	d, err := b.Build()
	require.NoError(t, err)

	d.Stop()
	assert.Empty(t, tr.calls)

	d.Start()
	d.Execute()
	d.Stop()
	assert.Equal(t, []string{"exit"}, tr.calls)
	assert.False(t, d.IsStarted())
	assert.Equal(t, uint64(1), d.ExecCnt())

	d.Stop()
	assert.Equal(t, []string{"exit"}, tr.calls)
}

// newLamp returns a machine off <-> on where on embeds a machine
// idle <-> busy. Both machines share the trigger list.
func newLamp(t *testing.T, tr *trace) (*fwsm.Builder, *fwsm.Builder, *fwsm.Descriptor) {
	t.Helper()
	triggers := []string{"power", "work", "rest"}

	ib := fwsm.NewBuilder("inner").DeclareTriggers(triggers...)
	for _, name := range []string{"idle.entry", "idle.exit", "busy.entry", "busy.exit", "busy.do"} {
		ib.Action(name, tr.action(name))
	}
	ib.Initial("idle", "")
	ib.State("idle").Entry("idle.entry").Exit("idle.exit").On("work", "busy", "", "")
	ib.State("busy").Entry("busy.entry").Exit("busy.exit").Do("busy.do").On("rest", "idle", "", "")
	inner, err := ib.Build()
	require.NoError(t, err)

	ob := fwsm.NewBuilder("outer").DeclareTriggers(triggers...)
	for _, name := range []string{"on.entry", "on.exit", "on.do"} {
		ob.Action(name, tr.action(name))
	}
	ob.Initial("off", "")
	ob.State("off").On("power", "on", "", "")
	ob.State("on").
		Composite(inner).
		Entry("on.entry").
		Exit("on.exit").
		Do("on.do").
		On("power", "off", "", "")
	outer, err := ob.Build()
	require.NoError(t, err)
	return ob, ib, outer
}

func TestEmbeddedMachine(t *testing.T) {
	t.Parallel()

	var tr trace
	ob, ib, d := newLamp(t, &tr)
	inner := d.Embedded(ob.StateID("on"))
	require.NotNil(t, inner)
	power, work := ob.Trigger("power"), ob.Trigger("work")

	d.Start()
	_, ok := d.CurStateEmb()
	assert.False(t, ok)

	d.MakeTrans(power)
	assert.Equal(t, []string{"on.entry", "idle.entry"}, tr.calls)
	emb, ok := d.CurStateEmb()
	require.True(t, ok)
	assert.Equal(t, ib.StateID("idle"), emb)

	tr.reset()
	d.MakeTrans(work)
	assert.Equal(t, []string{"idle.exit", "busy.entry"}, tr.calls)
	assert.Equal(t, ob.StateID("on"), d.CurState())
	assert.Equal(t, uint64(1), d.TransCnt())
	assert.Equal(t, uint64(1), inner.TransCnt())

	tr.reset()
	d.Execute()
	assert.Equal(t, []string{"on.do", "busy.do"}, tr.calls)
	assert.Equal(t, uint64(1), inner.ExecCnt())

	tr.reset()
	d.MakeTrans(power)
	assert.Equal(t, []string{"busy.exit", "on.exit"}, tr.calls)
	assert.Equal(t, ob.StateID("off"), d.CurState())
	assert.False(t, inner.IsStarted())

	tr.reset()
	d.MakeTrans(power)
	d.Stop()
	assert.Equal(t, []string{"on.entry", "idle.entry", "idle.exit", "on.exit"}, tr.calls)
	assert.False(t, inner.IsStarted())
}

func TestDerivedHierarchiesRunIndependently(t *testing.T) {
	t.Parallel()

	var tr trace
	ob, ib, base := newLamp(t, &tr)
	power, work := ob.Trigger("power"), ob.Trigger("work")

	a := fwsm.DeriveRec(base)
	b := fwsm.DeriveRec(base)
	require.Equal(t, fwsm.ErrNone, a.CheckRec())

	a.Start()
	b.Start()
	a.MakeTrans(power)
	b.MakeTrans(power)
	a.MakeTrans(work)

	ea, _ := a.CurStateEmb()
	eb, _ := b.CurStateEmb()
	assert.Equal(t, ib.StateID("busy"), ea)
	assert.Equal(t, ib.StateID("idle"), eb)
	assert.False(t, base.IsStarted())
	assert.False(t, base.Embedded(ob.StateID("on")).IsStarted())
}

func TestReentrantCommandIsRejected(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	b := fwsm.NewBuilder("loop")
	goTr := b.Trigger("go")
	b.Action("again", fwsm.ActionFunc(func(d *fwsm.Descriptor) { d.MakeTrans(goTr) }))
	b.Action("halt", fwsm.ActionFunc(func(d *fwsm.Descriptor) { d.Stop() }))
	b.Initial("a", "")
	b.State("a").On("go", "b", "", "").On("halt", "a", "", "halt")
	b.State("b").Entry("again")

	t.Run("make trans", func(t *testing.T) {
		d, err := b.Build(fwsm.WithObserver(obs))
		require.NoError(t, err)
		d.Start()
		d.MakeTrans(goTr)
		assert.Equal(t, fwsm.ErrReentrant, d.ErrCode())
		assert.Equal(t, b.StateID("b"), d.CurState())
		assert.Equal(t, fwsm.StatusError, d.Status())
		assert.Contains(t, obs.errs, fwsm.ErrReentrant)
	})

	t.Run("stop", func(t *testing.T) {
		d, err := b.Build()
		require.NoError(t, err)
		d.Start()
		d.MakeTrans(b.Trigger("halt"))
		assert.Equal(t, fwsm.ErrReentrant, d.ErrCode())
		assert.True(t, d.IsStarted())
	})
}

func TestUnboundBehaviorAtRunTime(t *testing.T) {
	t.Parallel()

	t.Run("action", func(t *testing.T) {
		d := newTwoStates(t)
		d.SetGuard(1, fwsm.AlwaysTrue)
		d.Start()
		d.MakeTrans(trGo)
		assert.Equal(t, fwsm.ErrUnboundAction, d.ErrCode())
		assert.Equal(t, fwsm.StateID(1), d.CurState())
		assert.Zero(t, d.TransCnt())

		d.MakeTrans(trGo)
		d.Execute()
		assert.Zero(t, d.ExecCnt())
	})

	t.Run("guard", func(t *testing.T) {
		d := newTwoStates(t)
		d.SetAction(1, fwsm.NoAction)
		d.Start()
		d.MakeTrans(trGo)
		assert.Equal(t, fwsm.ErrUnboundGuard, d.ErrCode())
		assert.Equal(t, fwsm.StateID(1), d.CurState())
	})

	t.Run("stop still exits", func(t *testing.T) {
		d := newTwoStates(t)
		d.SetAction(1, fwsm.NoAction)
		d.Start()
		d.MakeTrans(trGo)
		d.Stop()
		assert.False(t, d.IsStarted())
		assert.Equal(t, fwsm.ErrUnboundGuard, d.ErrCode())
	})
}

func TestStartWithoutInitialTransition(t *testing.T) {
	t.Parallel()

	d := fwsm.New(fwsm.Sizes{States: 1, Transitions: 1, Actions: 1, Guards: 1})
	fwsm.Init(d)
	d.AddState(1, fwsm.StateSpec{})
	d.Start()
	assert.Equal(t, fwsm.ErrNullTrans, d.ErrCode())
	assert.False(t, d.IsStarted())
}

func TestExecuteDoesNotAllocate(t *testing.T) {
	var ticks int
	b := fwsm.NewBuilder("pingpong").
		Action("tick", fwsm.ActionFunc(func(*fwsm.Descriptor) { ticks++ })).
		Guard("even", fwsm.GuardFunc(func(*fwsm.Descriptor) bool { return ticks%2 == 0 }))
	b.Initial("ping", "")
	b.State("ping").Do("tick").OnExecute("pong", "even", "tick")
	b.State("pong").Do("tick").OnExecute("ping", "", "").On("kick", "ping", "", "")

	d, err := b.Build()
	require.NoError(t, err)
	d.Start()
	kick := b.Trigger("kick")

	allocs := testing.AllocsPerRun(1000, func() {
		d.Execute()
		d.MakeTrans(kick)
	})
	assert.Zero(t, allocs)
	assert.Equal(t, fwsm.ErrNone, d.ErrCode())
	assert.Positive(t, d.TransCnt())
}
