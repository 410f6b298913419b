package fwsm

// Init resets a descriptor created by New to its pristine configuration:
// every vertex cursor is 0, every embedded link is unset, every transition
// is unconfigured, action slot 0 holds NoAction and guard slot 0 holds
// AlwaysTrue, and all other slots are unset. Counters, current state and
// error code are cleared as well.
//
// Init must not be used on a derived descriptor, whose table belongs to its
// base: in that case it records ErrNotOwner (ErrNoTable if the descriptor is
// unbound) and changes nothing else.
func Init(d *Descriptor) {
	if d.table == nil {
		d.errCode = ErrNoTable
		return
	}
	if !d.owner {
		d.errCode = ErrNotOwner
		return
	}
	d.table.reset()
	for i := range d.cursors {
		d.cursors[i] = 0
	}
	for i := range d.esm {
		d.esm[i] = nil
	}
	d.reg.reset()

	d.cur = 0
	d.execCnt = 0
	d.stateExecCnt = 0
	d.transCnt = 0
	d.errCode = ErrNone
	d.running = false
	d.locked = false
}

// InitDer configures d as a derivation of base. On success d walks base's
// table and invokes base's registry (both shared, not copied) while owning
// its own counters, current state, cursors and embedded links. The error
// code of base is carried over to d.
//
// If d does not declare the same number of action and guard slots as base,
// InitDer records ErrWrongNumActions or ErrWrongNumGuards in d and leaves it
// otherwise untouched, and so unbound.
func InitDer(d, base *Descriptor) {
	if d.nActions != base.nActions {
		d.errCode = ErrWrongNumActions
		return
	}
	if d.nGuards != base.nGuards {
		d.errCode = ErrWrongNumGuards
		return
	}
	if base.table == nil {
		d.errCode = ErrNoTable
		return
	}

	t := base.table
	d.table = t
	d.reg = base.reg
	d.owner = false
	d.ownsReg = false
	d.derived = true

	d.esm = resize(d.esm, len(t.states))
	for i := range d.esm {
		d.esm[i] = nil
	}
	d.cursors = resizeInts(d.cursors, 1+len(t.states)+len(t.choices))
	for i := range d.cursors {
		d.cursors[i] = 0
	}

	d.errCode = base.errCode
	d.execCnt = 0
	d.stateExecCnt = 0
	d.transCnt = 0
	d.cur = 0
	d.running = false
	d.locked = false
}

// Derive returns a new descriptor derived from base.
func Derive(base *Descriptor, opts ...Option) *Descriptor {
	d := NewDer(base.nActions, base.nGuards, opts...)
	InitDer(d, base)
	return d
}

// DeriveRec derives base and, recursively, every machine embedded in it, so
// the result owns a complete hierarchy of runtime blocks. Embedded instances
// keep the names and observers of their bases and share the data of the
// outermost instance, if it has any.
func DeriveRec(base *Descriptor, opts ...Option) *Descriptor {
	d := Derive(base, opts...)
	for i, esm := range base.esm {
		if esm == nil {
			continue
		}
		data := d.data
		if data == nil {
			data = esm.data
		}
		d.Embed(StateID(i+1), DeriveRec(esm, WithName(esm.name), WithObserver(esm.observer), WithData(data)))
	}
	return d
}

func resize(s []*Descriptor, n int) []*Descriptor {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]*Descriptor, n)
}

func resizeInts(s []int, n int) []int {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]int, n)
}
