package fwsm

// Start executes the initial transition and enters its destination. It does
// nothing if the machine is already started, unbound or in error.
//
// Start zeroes the counters and the runtime transition cursors. After the
// first Start the table can no longer be configured through d.
func (d *Descriptor) Start() {
	if d.table == nil {
		return
	}
	if d.running {
		d.fail(ErrReentrant)
		return
	}
	if d.errCode != ErrNone || d.cur != 0 {
		return
	}
	d.running = true
	d.locked = true
	d.execCnt = 0
	d.stateExecCnt = 0
	d.transCnt = 0
	for i := range d.cursors {
		d.cursors[i] = 0
	}

	t := d.table
	if len(t.trans) == 0 || !t.trans[0].action.bound {
		d.fail(ErrNullTrans)
		d.running = false
		return
	}
	if d.act(t.trans[0].action) {
		d.arrive(Execute, 0, 0, t.trans[0].dest)
	}
	d.running = false
}

// Stop stops the embedded machine of the current state, runs the exit action
// of the current state and leaves the machine with no current state. It
// does nothing if the machine is already stopped.
func (d *Descriptor) Stop() {
	if d.running {
		d.fail(ErrReentrant)
		return
	}
	if d.cur == 0 {
		return
	}
	d.running = true
	if esm := d.esm[d.cur-1]; esm != nil {
		esm.Stop()
	}
	d.act(d.table.states[d.cur-1].exit)
	d.cur = 0
	d.running = false
}

// Execute sends the Execute trigger. It is equivalent to MakeTrans(Execute).
func (d *Descriptor) Execute() {
	d.MakeTrans(Execute)
}

// MakeTrans sends trigger tr to the machine and runs it to completion.
//
// For the Execute trigger the execution counters are incremented and the
// do-action of the current state runs first. The trigger is then passed to
// the machine embedded in the current state, if any. Finally the outgoing
// transitions of the current state are checked in table order and the first
// one with a matching trigger and a true guard fires.
//
// MakeTrans is ignored when the machine is stopped or in error.
func (d *Descriptor) MakeTrans(tr Trigger) {
	if d.running {
		d.fail(ErrReentrant)
		return
	}
	if d.cur == 0 || d.errCode != ErrNone {
		return
	}
	d.running = true
	d.makeTrans(tr)
	d.running = false
}

func (d *Descriptor) makeTrans(tr Trigger) {
	t := d.table
	s := &t.states[d.cur-1]
	if tr == Execute {
		d.execCnt++
		d.stateExecCnt++
		if !d.act(s.do) {
			return
		}
	}
	if esm := d.esm[d.cur-1]; esm != nil {
		esm.MakeTrans(tr)
	}

	vi := int(d.cur)
	for k := 0; k < s.nOut; k++ {
		i := s.firstOut + k
		if t.trans[i].trigger != tr {
			continue
		}
		d.cursors[vi] = k
		enabled, ok := d.eval(t.trans[i].guard)
		if !ok {
			return
		}
		if enabled {
			d.fire(tr, i)
			return
		}
	}
}

// fire executes transition i out of the current state.
func (d *Descriptor) fire(tr Trigger, i int) {
	t := d.table
	from := d.cur
	if esm := d.esm[from-1]; esm != nil {
		esm.Stop()
	}
	if !d.act(t.states[from-1].exit) {
		return
	}
	if !d.act(t.trans[i].action) {
		return
	}
	d.transCnt++
	d.arrive(tr, i, from, t.trans[i].dest)
}

// arrive completes a transition at dest. Through a choice it takes the first
// branch whose guard is true.
func (d *Descriptor) arrive(tr Trigger, i int, from StateID, dest Vertex) {
	if dest.kind != VertexChoice {
		d.land(Transition{Trigger: tr, Index: i, From: from}, dest)
		return
	}

	t := d.table
	c := &t.choices[dest.id-1]
	vi := len(t.states) + dest.id
	for k := 0; k < c.nOut; k++ {
		br := &t.trans[c.firstOut+k]
		d.cursors[vi] = k
		enabled, ok := d.eval(br.guard)
		if !ok {
			return
		}
		if !enabled {
			continue
		}
		if !d.act(br.action) {
			return
		}
		d.land(Transition{Trigger: tr, Index: i, From: from, Via: ChoiceID(dest.id)}, br.dest)
		return
	}
	d.cur = 0
	d.fail(ErrTransErr)
}

// land moves the machine into a proper state or the final pseudo-state and
// notifies the observer.
func (d *Descriptor) land(n Transition, dest Vertex) {
	switch dest.kind {
	case VertexState:
		id := StateID(dest.id)
		d.cur = id
		d.stateExecCnt = 0
		if !d.act(d.table.states[id-1].entry) {
			return
		}
		if esm := d.esm[id-1]; esm != nil {
			esm.Start()
		}
		n.To = id
	case VertexFinal:
		d.cur = 0
	default:
		d.cur = 0
		d.fail(ErrIllTransDest)
		return
	}
	if d.observer != nil {
		d.observer.OnTransition(d, n)
	}
}

// act runs the action in slot s. It reports false if the slot is unbound or
// the action left the descriptor in error.
func (d *Descriptor) act(s Slot) bool {
	i := s.idx
	if !s.bound || i < 0 || i >= len(d.reg.actions) || d.reg.actions[i] == nil {
		d.fail(ErrUnboundAction)
		return false
	}
	d.reg.actions[i].Run(d)
	return d.errCode == ErrNone
}

// eval evaluates the guard in slot s. ok is false if the slot is unbound or
// the guard left the descriptor in error.
func (d *Descriptor) eval(s Slot) (enabled, ok bool) {
	i := s.idx
	if !s.bound || i < 0 || i >= len(d.reg.guards) || d.reg.guards[i] == nil {
		d.fail(ErrUnboundGuard)
		return false, false
	}
	enabled = d.reg.guards[i].Eval(d)
	return enabled, d.errCode == ErrNone
}
