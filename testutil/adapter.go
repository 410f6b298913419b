// Package testutil helps testing fwsm machines: drivers that run the same
// scenario directly or through the realtime runtime, and a recorder for
// actions and guards.
package testutil

import (
	"context"

	"github.com/comalice/fwsm"
	"github.com/comalice/fwsm/realtime"
)

// Driver runs one machine. The same test can run against every Driver.
type Driver interface {
	Start(ctx context.Context) error
	Stop() error
	Send(tr fwsm.Trigger) error
	// Settle makes every trigger sent so far take effect.
	Settle() error
	CurState() fwsm.StateID
	Descriptor() *fwsm.Descriptor
}

// DirectDriver calls the descriptor itself; triggers take effect at once.
type DirectDriver struct {
	d *fwsm.Descriptor
}

// NewDirectDriver creates a DirectDriver for d.
func NewDirectDriver(d *fwsm.Descriptor) *DirectDriver {
	return &DirectDriver{d: d}
}

func (a *DirectDriver) Start(context.Context) error {
	a.d.Start()
	return a.d.Err()
}

func (a *DirectDriver) Stop() error {
	a.d.Stop()
	return a.d.Err()
}

func (a *DirectDriver) Send(tr fwsm.Trigger) error {
	a.d.MakeTrans(tr)
	return a.d.Err()
}

func (a *DirectDriver) Settle() error                { return a.d.Err() }
func (a *DirectDriver) CurState() fwsm.StateID       { return a.d.CurState() }
func (a *DirectDriver) Descriptor() *fwsm.Descriptor { return a.d }

// TickDriver queues triggers in a realtime runtime and delivers them with
// one Tick per Settle. No ticker runs, so scenarios stay deterministic.
type TickDriver struct {
	rt *realtime.Runtime
	d  *fwsm.Descriptor
}

// NewTickDriver creates a TickDriver for d. Execute is only sent when a
// test sends it explicitly.
func NewTickDriver(d *fwsm.Descriptor) *TickDriver {
	rt := realtime.NewRuntime(realtime.Config{NoExecute: true})
	// the runtime is fresh, so the name cannot clash
	_ = rt.Add("machine", d)
	return &TickDriver{rt: rt, d: d}
}

func (a *TickDriver) Start(context.Context) error {
	a.rt.StartMachines()
	return a.d.Err()
}

func (a *TickDriver) Stop() error {
	a.rt.StopMachines()
	return a.d.Err()
}

func (a *TickDriver) Send(tr fwsm.Trigger) error {
	return a.rt.Send("machine", tr)
}

func (a *TickDriver) Settle() error {
	a.rt.Tick()
	return a.d.Err()
}

func (a *TickDriver) CurState() fwsm.StateID       { return a.d.CurState() }
func (a *TickDriver) Descriptor() *fwsm.Descriptor { return a.d }

// Runtime exposes the underlying runtime.
func (a *TickDriver) Runtime() *realtime.Runtime { return a.rt }
