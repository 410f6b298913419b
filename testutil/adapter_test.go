package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/fwsm"
)

func newDoor(t *testing.T, rec *Recorder, locked *bool) (*fwsm.Descriptor, map[string]fwsm.Trigger) {
	t.Helper()

	b := fwsm.NewBuilder("door").
		DeclareTriggers("open", "close").
		Action("swing", rec.Action("swing")).
		Action("bang", rec.Action("bang")).
		Guard("unlocked", fwsm.GuardFunc(func(*fwsm.Descriptor) bool { return !*locked }))
	b.Initial("closed", "")
	b.State("closed").Exit("swing").On("open", "opened", "unlocked", "")
	b.State("opened").Entry("swing").On("close", "closed", "", "bang")
	d, err := b.Build()
	require.NoError(t, err)
	return d, b.Triggers()
}

func TestDrivers(t *testing.T) {
	t.Parallel()

	drivers := map[string]func(d *fwsm.Descriptor) Driver{
		"direct": func(d *fwsm.Descriptor) Driver { return NewDirectDriver(d) },
		"tick":   func(d *fwsm.Descriptor) Driver { return NewTickDriver(d) },
	}
	for name, newDriver := range drivers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec := &Recorder{}
			locked := true
			d, tr := newDoor(t, rec, &locked)
			drv := newDriver(d)

			require.NoError(t, drv.Start(context.Background()))
			assert.Equal(t, fwsm.StateID(1), drv.CurState())

			require.NoError(t, drv.Send(tr["open"]))
			require.NoError(t, drv.Settle())
			assert.Equal(t, fwsm.StateID(1), drv.CurState())

			locked = false
			require.NoError(t, drv.Send(tr["open"]))
			require.NoError(t, drv.Send(tr["close"]))
			require.NoError(t, drv.Settle())
			assert.Equal(t, fwsm.StateID(1), drv.CurState())
			assert.Equal(t, []string{"swing", "swing", "bang"}, rec.Log())
			assert.Equal(t, uint64(2), drv.Descriptor().TransCnt())

			require.NoError(t, drv.Stop())
			assert.False(t, d.IsStarted())
		})
	}
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	rec := &Recorder{}
	ok := false
	rec.Action("a").Run(nil)
	assert.False(t, rec.Guard("g", &ok).Eval(nil))
	assert.Equal(t, []string{"a", "g?"}, rec.Log())

	rec.Reset()
	assert.Empty(t, rec.Log())
}

func TestTickDriverQueuesUntilSettle(t *testing.T) {
	t.Parallel()

	rec := &Recorder{}
	locked := false
	d, tr := newDoor(t, rec, &locked)
	drv := NewTickDriver(d)
	require.NoError(t, drv.Start(context.Background()))

	require.NoError(t, drv.Send(tr["open"]))
	assert.Equal(t, fwsm.StateID(1), drv.CurState())
	require.NoError(t, drv.Settle())
	assert.Equal(t, fwsm.StateID(2), drv.CurState())
	assert.Equal(t, uint64(1), drv.Runtime().TickNumber())
}
