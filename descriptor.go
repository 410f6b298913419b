// Package fwsm is a table-driven hierarchical state machine engine for
// embedded and real-time control software.
//
// A state machine is described by a Table of states, choice pseudo-states
// and transitions, and by a Registry of actions and guards addressed by small
// integer slots. A Descriptor binds the two to a runtime block (current
// state, counters, error code) and to one embedded-machine link per state.
//
// Descriptors are created empty and then either initialized (Init) or
// derived from a base descriptor (InitDer). A derived descriptor shares the
// base's table and registry by reference and owns its own runtime block.
//
// Execution is single-threaded and run-to-completion per descriptor, and it
// performs no heap allocation once a descriptor is configured. At most one
// goroutine may drive a descriptor, and descriptors sharing a table must be
// driven from the same goroutine or be serialized by the caller.
//
// The core never logs and never panics on bad configuration: every failure
// is recorded in the descriptor's ErrCode.
package fwsm

// Status is the coarse lifecycle status of a descriptor.
type Status uint8

const (
	// StatusUnbound means the descriptor has no table: it was never
	// initialized, or its derivation was refused.
	StatusUnbound Status = iota
	// StatusReady means the descriptor can be configured or executed.
	StatusReady
	// StatusRunning means a transition command is running to completion.
	StatusRunning
	// StatusError means the error code is set. Only Init or InitDer clear it.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUnbound:
		return "unbound"
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Transition describes a fired transition to an Observer.
type Transition struct {
	Trigger Trigger
	// Index is the table position of the transition that fired first.
	Index int
	From  StateID
	// To is 0 when the machine stopped.
	To StateID
	// Via is the choice pseudo-state crossed, or 0.
	Via ChoiceID
}

// Observer is notified of fired transitions and of errors. Observers run
// inside the transition that triggered them and must not issue transition
// commands to the same descriptor.
type Observer interface {
	OnTransition(d *Descriptor, tr Transition)
	OnError(d *Descriptor, code ErrCode)
}

// Option configures a descriptor at construction.
type Option func(*Descriptor)

// WithName sets the name reported by Descriptor.Name.
func WithName(name string) Option {
	return func(d *Descriptor) {
		d.name = name
	}
}

// WithObserver attaches an observer.
func WithObserver(o Observer) Option {
	return func(d *Descriptor) {
		d.observer = o
	}
}

// WithData attaches application data, available to actions and guards
// through Descriptor.Data.
func WithData(data any) Option {
	return func(d *Descriptor) {
		d.data = data
	}
}

// Descriptor is a state machine instance.
type Descriptor struct {
	name string

	table *Table
	reg   *Registry
	// owner is true for descriptors created by New; they alone may write
	// their table.
	owner    bool
	ownsReg  bool
	derived  bool
	nActions int
	nGuards  int

	esm     []*Descriptor
	cursors []int

	cur          StateID
	execCnt      uint64
	stateExecCnt uint64
	transCnt     uint64
	errCode      ErrCode
	running      bool
	// set at the first Start, cleared by Init
	locked bool

	data     any
	observer Observer
}

// New returns a descriptor owning a fresh table and registry of the given
// sizes. It must be passed to Init before it is configured.
func New(s Sizes, opts ...Option) *Descriptor {
	d := &Descriptor{
		table:    newTable(s),
		reg:      NewRegistry(s.Actions, s.Guards),
		owner:    true,
		ownsReg:  true,
		nActions: s.Actions,
		nGuards:  s.Guards,
		esm:      make([]*Descriptor, s.States),
		cursors:  make([]int, 1+s.States+s.Choices),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDer returns an unbound descriptor declaring nActions action slots and
// nGuards guard slots. It becomes usable once InitDer succeeds.
func NewDer(nActions, nGuards int, opts ...Option) *Descriptor {
	d := &Descriptor{
		nActions: nActions,
		nGuards:  nGuards,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Descriptor) Name() string { return d.name }

// Table returns the table the descriptor walks, or nil when unbound.
func (d *Descriptor) Table() *Table { return d.table }

// Registry returns the registry the descriptor invokes, or nil when unbound.
func (d *Descriptor) Registry() *Registry { return d.reg }

func (d *Descriptor) NumActions() int { return d.nActions }
func (d *Descriptor) NumGuards() int  { return d.nGuards }
func (d *Descriptor) IsDerived() bool { return d.derived }
func (d *Descriptor) OwnsTable() bool { return d.owner }

// CurState returns the current state, or 0 if the machine is stopped.
func (d *Descriptor) CurState() StateID { return d.cur }

// IsStarted reports whether the machine has a current state.
func (d *Descriptor) IsStarted() bool { return d.cur != 0 }

// CurStateEmb returns the current state of the machine embedded in the
// current state, if there is one.
func (d *Descriptor) CurStateEmb() (StateID, bool) {
	if d.cur == 0 {
		return 0, false
	}
	esm := d.esm[d.cur-1]
	if esm == nil {
		return 0, false
	}
	return esm.cur, true
}

// Embedded returns the machine embedded in state id, or nil.
func (d *Descriptor) Embedded(id StateID) *Descriptor {
	if id < 1 || int(id) > len(d.esm) {
		return nil
	}
	return d.esm[id-1]
}

// ExecCnt returns the number of Execute commands received since Start.
func (d *Descriptor) ExecCnt() uint64 { return d.execCnt }

// StateExecCnt returns the number of Execute commands received since the
// current state was entered.
func (d *Descriptor) StateExecCnt() uint64 { return d.stateExecCnt }

// TransCnt returns the number of transitions fired since Start. The initial
// transition is not counted.
func (d *Descriptor) TransCnt() uint64 { return d.transCnt }

func (d *Descriptor) ErrCode() ErrCode { return d.errCode }

// Err returns the error code as an error, or nil if there is none.
func (d *Descriptor) Err() error {
	if d.errCode == ErrNone {
		return nil
	}
	return d.errCode
}

// TransCursor returns the cursor of vertex v. While the table is being
// configured it is the position at which the next outgoing transition of v
// will be stored; once the machine runs it is the position, within v's
// group, of the last transition evaluated.
func (d *Descriptor) TransCursor(v Vertex) int {
	if d.table == nil {
		return 0
	}
	i := d.table.vertexIndex(v)
	if i < 0 || i >= len(d.cursors) {
		return 0
	}
	return d.cursors[i]
}

func (d *Descriptor) Data() any { return d.data }

func (d *Descriptor) SetData(data any) { d.data = data }

func (d *Descriptor) SetObserver(o Observer) { d.observer = o }

// Status returns the lifecycle status.
func (d *Descriptor) Status() Status {
	switch {
	case d.table == nil:
		return StatusUnbound
	case d.errCode != ErrNone:
		return StatusError
	case d.running:
		return StatusRunning
	}
	return StatusReady
}

func (d *Descriptor) fail(code ErrCode) {
	d.errCode = code
	if d.observer != nil {
		d.observer.OnError(d, code)
	}
}
