package fwsm

// Action is a side-effecting operation executed on entry to, exit from, or
// during a state, or when a transition fires. Actions must be short,
// non-blocking and always return.
type Action interface {
	Run(d *Descriptor)
}

// Guard is a read-only predicate deciding whether a transition may fire.
type Guard interface {
	Eval(d *Descriptor) bool
}

// ActionFunc adapts an ordinary function to the Action interface.
type ActionFunc func(d *Descriptor)

func (f ActionFunc) Run(d *Descriptor) { f(d) }

// GuardFunc adapts an ordinary function to the Guard interface.
type GuardFunc func(d *Descriptor) bool

func (f GuardFunc) Eval(d *Descriptor) bool { return f(d) }

type noAction struct{}

func (noAction) Run(*Descriptor) {}

type alwaysTrue struct{}

func (alwaysTrue) Eval(*Descriptor) bool { return true }

var (
	// NoAction is the built-in action of slot 0. It returns without doing anything.
	NoAction Action = noAction{}
	// AlwaysTrue is the built-in guard of slot 0.
	AlwaysTrue Guard = alwaysTrue{}
)

// Slot is an optional index into a Registry. The zero value is NoSlot.
type Slot struct {
	idx   int
	bound bool
}

var (
	// NoSlot marks a binding that has not been configured.
	NoSlot = Slot{}
	// Dummy is slot 0, holding NoAction or AlwaysTrue.
	Dummy = SlotOf(0)
)

// SlotOf returns a Slot bound to index i. A negative i gives a bound slot
// that every descriptor rejects with ErrIllSlot.
func SlotOf(i int) Slot {
	return Slot{idx: i, bound: true}
}

// Index returns the slot index and whether the slot is bound.
func (s Slot) Index() (int, bool) {
	return s.idx, s.bound
}

// IsSet reports whether the slot is bound.
func (s Slot) IsSet() bool { return s.bound }

// Registry holds the action and guard slots of one or more descriptors.
// A base descriptor and all descriptors derived from it point at the same
// Registry, so a rebinding through any of them is seen by all of them.
type Registry struct {
	actions []Action
	guards  []Guard
}

// NewRegistry returns a registry with the given number of action and guard
// slots, all unset.
func NewRegistry(nActions, nGuards int) *Registry {
	return &Registry{
		actions: make([]Action, nActions),
		guards:  make([]Guard, nGuards),
	}
}

// NumActions returns the number of action slots.
func (r *Registry) NumActions() int { return len(r.actions) }

// NumGuards returns the number of guard slots.
func (r *Registry) NumGuards() int { return len(r.guards) }

// Action returns the action in slot i and whether it is bound.
func (r *Registry) Action(i int) (Action, bool) {
	if i < 0 || i >= len(r.actions) || r.actions[i] == nil {
		return nil, false
	}
	return r.actions[i], true
}

// Guard returns the guard in slot i and whether it is bound.
func (r *Registry) Guard(i int) (Guard, bool) {
	if i < 0 || i >= len(r.guards) || r.guards[i] == nil {
		return nil, false
	}
	return r.guards[i], true
}

// reset puts the built-ins in slot 0 and clears every other slot.
func (r *Registry) reset() {
	for i := range r.actions {
		r.actions[i] = nil
	}
	for i := range r.guards {
		r.guards[i] = nil
	}
	if len(r.actions) > 0 {
		r.actions[0] = NoAction
	}
	if len(r.guards) > 0 {
		r.guards[0] = AlwaysTrue
	}
}

// clone returns a registry holding the same callables.
func (r *Registry) clone() *Registry {
	c := &Registry{
		actions: make([]Action, len(r.actions)),
		guards:  make([]Guard, len(r.guards)),
	}
	copy(c.actions, r.actions)
	copy(c.guards, r.guards)
	return c
}
