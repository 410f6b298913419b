package fwsm

import "strconv"

// StateID identifies a proper state. Valid identifiers run from 1 to the
// number of states of the table; 0 stands for "no current state", which is
// where a descriptor sits before Start and after Stop.
type StateID int

// ChoiceID identifies a choice pseudo-state, from 1 to the number of choices.
type ChoiceID int

// Trigger identifies a transition command.
type Trigger int

// Execute is the trigger issued by Descriptor.Execute. Transitions with this
// trigger are checked on every execution cycle.
const Execute Trigger = 0

// StateKind distinguishes leaf states from states that may hold an embedded
// state machine.
type StateKind uint8

const (
	Primitive StateKind = iota
	Composite
)

func (k StateKind) String() string {
	switch k {
	case Primitive:
		return "primitive"
	case Composite:
		return "composite"
	default:
		return "StateKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// VertexKind tells what a transition endpoint is.
type VertexKind uint8

const (
	vertexNone VertexKind = iota
	// VertexInitial is the initial pseudo-state, only valid as a source.
	VertexInitial
	// VertexFinal is the final pseudo-state, only valid as a destination.
	VertexFinal
	VertexState
	VertexChoice
)

// Vertex is a transition endpoint.
type Vertex struct {
	kind VertexKind
	id   int
}

var (
	Initial = Vertex{kind: VertexInitial}
	Final   = Vertex{kind: VertexFinal}
)

// StateVertex returns the vertex of proper state id.
func StateVertex(id StateID) Vertex { return Vertex{kind: VertexState, id: int(id)} }

// ChoiceVertex returns the vertex of choice pseudo-state id.
func ChoiceVertex(id ChoiceID) Vertex { return Vertex{kind: VertexChoice, id: int(id)} }

func (v Vertex) Kind() VertexKind { return v.kind }

// State returns the state identifier if v is a proper state.
func (v Vertex) State() (StateID, bool) {
	return StateID(v.id), v.kind == VertexState
}

// Choice returns the choice identifier if v is a choice pseudo-state.
func (v Vertex) Choice() (ChoiceID, bool) {
	return ChoiceID(v.id), v.kind == VertexChoice
}

func (v Vertex) String() string {
	switch v.kind {
	case VertexInitial:
		return "initial"
	case VertexFinal:
		return "final"
	case VertexState:
		return "state " + strconv.Itoa(v.id)
	case VertexChoice:
		return "choice " + strconv.Itoa(v.id)
	default:
		return "none"
	}
}

// Sizes fixes the dimensions of a descriptor at construction time.
// Transitions counts every transition including the initial one.
type Sizes struct {
	States      int
	Choices     int
	Transitions int
	Actions     int
	Guards      int
}

type stateRec struct {
	kind            StateKind
	entry, do, exit Slot
	firstOut, nOut  int
	defined         bool
}

type choiceRec struct {
	firstOut, nOut int
	defined        bool
}

// A transition whose action slot is unset has not been configured yet.
type transRec struct {
	trigger       Trigger
	src, dest     Vertex
	guard, action Slot
}

// Table is the static topology of a state machine: its states, choice
// pseudo-states and transitions. Transition 0 is always the initial
// transition. The outgoing transitions of each vertex are stored
// contiguously, in the order in which they are checked.
//
// A table is written only while its owning descriptor is being configured.
// After that it is shared, read-only, by the owner and every descriptor
// derived from it.
type Table struct {
	states  []stateRec
	choices []choiceRec
	trans   []transRec
	// next free transition position, used while configuring
	alloc int
}

func newTable(s Sizes) *Table {
	return &Table{
		states:  make([]stateRec, s.States),
		choices: make([]choiceRec, s.Choices),
		trans:   make([]transRec, s.Transitions),
		alloc:   1,
	}
}

func (t *Table) reset() {
	for i := range t.states {
		t.states[i] = stateRec{}
	}
	for i := range t.choices {
		t.choices[i] = choiceRec{}
	}
	for i := range t.trans {
		t.trans[i] = transRec{}
	}
	t.alloc = 1
}

func (t *Table) NumStates() int  { return len(t.states) }
func (t *Table) NumChoices() int { return len(t.choices) }
func (t *Table) NumTrans() int   { return len(t.trans) }

// StateInfo describes a configured proper state.
type StateInfo struct {
	ID       StateID
	Kind     StateKind
	Entry    Slot
	Do       Slot
	Exit     Slot
	FirstOut int
	NumOut   int
}

// ChoiceInfo describes a configured choice pseudo-state.
type ChoiceInfo struct {
	ID       ChoiceID
	FirstOut int
	NumOut   int
}

// TransInfo describes one transition slot of the table.
type TransInfo struct {
	Index   int
	Trigger Trigger
	Source  Vertex
	Dest    Vertex
	Guard   Slot
	Action  Slot
}

// Defined reports whether the transition slot has been configured.
func (ti TransInfo) Defined() bool { return ti.Action.IsSet() }

// State returns the definition of state id.
func (t *Table) State(id StateID) (StateInfo, bool) {
	if id < 1 || int(id) > len(t.states) || !t.states[id-1].defined {
		return StateInfo{}, false
	}
	s := &t.states[id-1]
	return StateInfo{
		ID:       id,
		Kind:     s.kind,
		Entry:    s.entry,
		Do:       s.do,
		Exit:     s.exit,
		FirstOut: s.firstOut,
		NumOut:   s.nOut,
	}, true
}

// Choice returns the definition of choice id.
func (t *Table) Choice(id ChoiceID) (ChoiceInfo, bool) {
	if id < 1 || int(id) > len(t.choices) || !t.choices[id-1].defined {
		return ChoiceInfo{}, false
	}
	c := &t.choices[id-1]
	return ChoiceInfo{ID: id, FirstOut: c.firstOut, NumOut: c.nOut}, true
}

// Trans returns transition slot i.
func (t *Table) Trans(i int) TransInfo {
	tr := &t.trans[i]
	return TransInfo{
		Index:   i,
		Trigger: tr.trigger,
		Source:  tr.src,
		Dest:    tr.dest,
		Guard:   tr.guard,
		Action:  tr.action,
	}
}

// OutTrans returns the outgoing transitions of v in evaluation order.
func (t *Table) OutTrans(v Vertex) []TransInfo {
	first, n := t.outRange(v)
	out := make([]TransInfo, 0, n)
	for i := first; i < first+n; i++ {
		out = append(out, t.Trans(i))
	}
	return out
}

func (t *Table) outRange(v Vertex) (first, n int) {
	switch v.kind {
	case VertexInitial:
		if len(t.trans) == 0 {
			return 0, 0
		}
		return 0, 1
	case VertexState:
		if v.id < 1 || v.id > len(t.states) {
			return 0, 0
		}
		s := &t.states[v.id-1]
		return s.firstOut, s.nOut
	case VertexChoice:
		if v.id < 1 || v.id > len(t.choices) {
			return 0, 0
		}
		c := &t.choices[v.id-1]
		return c.firstOut, c.nOut
	}
	return 0, 0
}

// vertexIndex maps a transition source onto the descriptor's cursor array:
// 0 for the initial pseudo-state, then states, then choices.
func (t *Table) vertexIndex(v Vertex) int {
	switch v.kind {
	case VertexInitial:
		return 0
	case VertexState:
		return v.id
	case VertexChoice:
		return len(t.states) + v.id
	}
	return -1
}
