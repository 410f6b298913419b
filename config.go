package fwsm

// StateSpec configures a proper state. Unset action slots default to Dummy.
type StateSpec struct {
	Kind   StateKind
	NumOut int
	Entry  Slot
	Do     Slot
	Exit   Slot
}

// TransSpec configures a transition. The trigger of the initial transition
// and of transitions out of a choice is ignored. Unset guard and action
// slots default to Dummy.
type TransSpec struct {
	Trigger Trigger
	Source  Vertex
	Dest    Vertex
	Guard   Slot
	Action  Slot
}

// configurable reports whether d may still write its table. Failures are
// recorded in the error code.
func (d *Descriptor) configurable() bool {
	switch {
	case d.table == nil:
		d.errCode = ErrNoTable
		return false
	case !d.owner || d.locked:
		d.errCode = ErrConfigLocked
		return false
	}
	return true
}

func orDummy(s Slot) Slot {
	if !s.bound {
		return Dummy
	}
	return s
}

func (d *Descriptor) validAction(s Slot) bool {
	return !s.bound || (s.idx >= 0 && s.idx < d.nActions)
}

func (d *Descriptor) validGuard(s Slot) bool {
	return !s.bound || (s.idx >= 0 && s.idx < d.nGuards)
}

// SetAction binds action slot i (1 <= i < NumActions). Descriptors derived
// from d see the new binding.
func (d *Descriptor) SetAction(i int, a Action) {
	if !d.configurable() {
		return
	}
	if i < 1 || i >= d.nActions {
		d.errCode = ErrIllSlot
		return
	}
	if a == nil {
		d.errCode = ErrUnboundAction
		return
	}
	d.reg.actions[i] = a
}

// SetGuard binds guard slot i (1 <= i < NumGuards).
func (d *Descriptor) SetGuard(i int, g Guard) {
	if !d.configurable() {
		return
	}
	if i < 1 || i >= d.nGuards {
		d.errCode = ErrIllSlot
		return
	}
	if g == nil {
		d.errCode = ErrUnboundGuard
		return
	}
	d.reg.guards[i] = g
}

// OverrideAction rebinds action slot i of a derived descriptor. The first
// override gives d a private copy of the registry, so the base and its other
// derivations are not affected.
func (d *Descriptor) OverrideAction(i int, a Action) {
	if !d.overridable() {
		return
	}
	if i < 1 || i >= d.nActions {
		d.errCode = ErrIllSlot
		return
	}
	if a == nil {
		d.errCode = ErrUnboundAction
		return
	}
	d.ownRegistry()
	d.reg.actions[i] = a
}

// OverrideGuard rebinds guard slot i of a derived descriptor.
func (d *Descriptor) OverrideGuard(i int, g Guard) {
	if !d.overridable() {
		return
	}
	if i < 1 || i >= d.nGuards {
		d.errCode = ErrIllSlot
		return
	}
	if g == nil {
		d.errCode = ErrUnboundGuard
		return
	}
	d.ownRegistry()
	d.reg.guards[i] = g
}

func (d *Descriptor) overridable() bool {
	switch {
	case d.table == nil:
		d.errCode = ErrNoTable
		return false
	case !d.derived:
		d.errCode = ErrNotDerived
		return false
	case d.locked:
		d.errCode = ErrConfigLocked
		return false
	}
	return true
}

func (d *Descriptor) ownRegistry() {
	if !d.ownsReg {
		d.reg = d.reg.clone()
		d.ownsReg = true
	}
}

// AddState defines state id and reserves spec.NumOut consecutive
// transition positions for its outgoing transitions.
func (d *Descriptor) AddState(id StateID, spec StateSpec) {
	if !d.configurable() {
		return
	}
	t := d.table
	switch {
	case id < 1 || int(id) > len(t.states):
		d.errCode = ErrIllStateID
		return
	case t.states[id-1].defined:
		d.errCode = ErrStateIDInUse
		return
	case spec.NumOut < 0:
		d.errCode = ErrNegOutTrans
		return
	case t.alloc+spec.NumOut > len(t.trans):
		d.errCode = ErrTooManyTrans
		return
	case !d.validAction(spec.Entry) || !d.validAction(spec.Do) || !d.validAction(spec.Exit):
		d.errCode = ErrIllSlot
		return
	}
	t.states[id-1] = stateRec{
		kind:     spec.Kind,
		entry:    orDummy(spec.Entry),
		do:       orDummy(spec.Do),
		exit:     orDummy(spec.Exit),
		firstOut: t.alloc,
		nOut:     spec.NumOut,
		defined:  true,
	}
	t.alloc += spec.NumOut
}

// AddChoice defines choice pseudo-state id with nOut outgoing transitions.
// A choice needs at least one.
func (d *Descriptor) AddChoice(id ChoiceID, nOut int) {
	if !d.configurable() {
		return
	}
	t := d.table
	switch {
	case id < 1 || int(id) > len(t.choices):
		d.errCode = ErrIllChoiceID
		return
	case t.choices[id-1].defined:
		d.errCode = ErrChoiceIDInUse
		return
	case nOut < 1:
		d.errCode = ErrNegOutTrans
		return
	case t.alloc+nOut > len(t.trans):
		d.errCode = ErrTooManyTrans
		return
	}
	t.choices[id-1] = choiceRec{firstOut: t.alloc, nOut: nOut, defined: true}
	t.alloc += nOut
}

// AddTrans stores a transition at the next free position of its source
// vertex. The source must already be defined; the destination is only
// checked by Check, so forward references are allowed.
func (d *Descriptor) AddTrans(spec TransSpec) {
	if !d.configurable() {
		return
	}
	t := d.table
	var first, n int
	switch spec.Source.kind {
	case VertexInitial:
		first, n = t.outRange(Initial)
	case VertexState:
		if spec.Source.id < 1 || spec.Source.id > len(t.states) {
			d.errCode = ErrIllTransSrc
			return
		}
		if !t.states[spec.Source.id-1].defined {
			d.errCode = ErrUndefinedTransSrc
			return
		}
		first, n = t.outRange(spec.Source)
	case VertexChoice:
		if spec.Source.id < 1 || spec.Source.id > len(t.choices) {
			d.errCode = ErrIllTransSrc
			return
		}
		if !t.choices[spec.Source.id-1].defined {
			d.errCode = ErrUndefinedTransSrc
			return
		}
		first, n = t.outRange(spec.Source)
	default:
		d.errCode = ErrIllTransSrc
		return
	}
	if !d.validAction(spec.Action) || !d.validGuard(spec.Guard) {
		d.errCode = ErrIllSlot
		return
	}

	vi := t.vertexIndex(spec.Source)
	if d.cursors[vi] >= n {
		d.errCode = ErrTooManyOutTrans
		return
	}
	trigger := spec.Trigger
	if spec.Source.kind != VertexState {
		trigger = Execute
	}
	t.trans[first+d.cursors[vi]] = transRec{
		trigger: trigger,
		src:     spec.Source,
		dest:    spec.Dest,
		guard:   orDummy(spec.Guard),
		action:  orDummy(spec.Action),
	}
	d.cursors[vi]++
}

// Embed attaches esm to composite state id; a nil esm detaches it. Both base
// and derived descriptors may embed machines until they are first started.
func (d *Descriptor) Embed(id StateID, esm *Descriptor) {
	if d.table == nil {
		d.errCode = ErrNoTable
		return
	}
	if d.locked {
		d.errCode = ErrConfigLocked
		return
	}
	t := d.table
	if id < 1 || int(id) > len(t.states) {
		d.errCode = ErrIllStateID
		return
	}
	s := &t.states[id-1]
	if !s.defined {
		d.errCode = ErrNullState
		return
	}
	if s.kind != Composite {
		d.errCode = ErrNotComposite
		return
	}
	d.esm[id-1] = esm
}

// Check verifies that the configuration is complete and consistent and
// returns the first problem found. It does not modify the error code; a
// descriptor already in error reports that error.
func (d *Descriptor) Check() ErrCode {
	if d.table == nil {
		return ErrNoTable
	}
	if d.errCode != ErrNone {
		return d.errCode
	}
	t := d.table
	for i := range t.states {
		s := &t.states[i]
		if !s.defined {
			return ErrNullState
		}
		for _, a := range [...]Slot{s.entry, s.do, s.exit} {
			if code := d.checkAction(a); code != ErrNone {
				return code
			}
		}
	}
	for i := range t.choices {
		if !t.choices[i].defined {
			return ErrNullChoice
		}
	}
	for i := range t.trans {
		tr := &t.trans[i]
		if !tr.action.bound {
			return ErrNullTrans
		}
		if code := d.checkAction(tr.action); code != ErrNone {
			return code
		}
		if code := d.checkGuard(tr.guard); code != ErrNone {
			return code
		}
		if !t.legalDest(tr) {
			return ErrIllTransDest
		}
	}
	return ErrNone
}

// CheckRec runs Check on d and on every embedded machine, recursively. A
// failure inside an embedded machine is reported as ErrEsmError.
func (d *Descriptor) CheckRec() ErrCode {
	if code := d.Check(); code != ErrNone {
		return code
	}
	for _, esm := range d.esm {
		if esm == nil {
			continue
		}
		if esm.CheckRec() != ErrNone {
			return ErrEsmError
		}
	}
	return ErrNone
}

func (d *Descriptor) checkAction(s Slot) ErrCode {
	if !d.validAction(s) || !s.bound {
		return ErrIllSlot
	}
	if _, ok := d.reg.Action(s.idx); !ok {
		return ErrUnboundAction
	}
	return ErrNone
}

func (d *Descriptor) checkGuard(s Slot) ErrCode {
	if !d.validGuard(s) || !s.bound {
		return ErrIllSlot
	}
	if _, ok := d.reg.Guard(s.idx); !ok {
		return ErrUnboundGuard
	}
	return ErrNone
}

func (t *Table) legalDest(tr *transRec) bool {
	switch tr.dest.kind {
	case VertexFinal:
		return true
	case VertexState:
		return tr.dest.id >= 1 && tr.dest.id <= len(t.states) && t.states[tr.dest.id-1].defined
	case VertexChoice:
		if tr.src.kind == VertexChoice {
			return false
		}
		return tr.dest.id >= 1 && tr.dest.id <= len(t.choices) && t.choices[tr.dest.id-1].defined
	}
	return false
}
