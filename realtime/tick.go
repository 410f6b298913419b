package realtime

import (
	"log/slog"

	"github.com/comalice/fwsm"
)

// Tick runs one tick and returns the number of triggers it delivered.
func (rt *Runtime) Tick() int {
	cmds := rt.collect()
	sortCommands(cmds)

	rt.mu.Lock()
	defer rt.mu.Unlock()
	delivered := 0
	for _, c := range cmds {
		if c.Machine == "" {
			for _, name := range rt.names {
				rt.machines[name].MakeTrans(c.Trigger)
			}
			delivered++
			continue
		}
		if d, ok := rt.machines[c.Machine]; ok {
			d.MakeTrans(c.Trigger)
			delivered++
		}
	}
	if !rt.cfg.NoExecute {
		for _, name := range rt.names {
			rt.machines[name].Execute()
		}
	}
	rt.tickNum++
	rt.report()
	return delivered
}

// collect atomically takes the queued commands.
func (rt *Runtime) collect() []Command {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	cmds := rt.batch
	rt.batch = make([]Command, 0, cap(rt.batch))
	return cmds
}

// report logs each machine's error code once, when it first appears. The
// code of a machine is the first error found in its hierarchy, so failures
// of embedded machines are reported under the outermost machine's name.
func (rt *Runtime) report() {
	for _, name := range rt.names {
		code, path := firstError(rt.machines[name], name)
		if code == rt.reported[name] {
			continue
		}
		rt.reported[name] = code
		if code != fwsm.ErrNone {
			rt.log.Error("machine failed",
				slog.String("machine", name),
				slog.String("path", path),
				slog.Any("error", code),
				slog.Uint64("tick", rt.tickNum),
			)
		}
	}
}

// firstError searches d and then its embedded machines, depth first, for an
// error code. path names the failing machine relative to d.
func firstError(d *fwsm.Descriptor, path string) (fwsm.ErrCode, string) {
	if code := d.ErrCode(); code != fwsm.ErrNone {
		return code, path
	}
	t := d.Table()
	if t == nil {
		return fwsm.ErrNone, path
	}
	for id := fwsm.StateID(1); int(id) <= t.NumStates(); id++ {
		esm := d.Embedded(id)
		if esm == nil {
			continue
		}
		if code, p := firstError(esm, path+"/"+esm.Name()); code != fwsm.ErrNone {
			return code, p
		}
	}
	return fwsm.ErrNone, path
}
