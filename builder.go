package fwsm

import (
	"errors"
	"fmt"
)

// FinalName is the target name of the final pseudo-state.
const FinalName = "[*]"

// Builder provides a fluent API for constructing a descriptor from state,
// choice, trigger, action and guard names instead of integer identifiers and
// slots. Identifiers are assigned in declaration order, starting at 1.
type Builder struct {
	name string

	stateIDs  map[string]StateID
	states    []*StateBuilder
	choiceIDs map[string]ChoiceID
	choices   []*ChoiceBuilder

	triggers    map[string]Trigger
	nextTrigger Trigger

	actionIDs map[string]int
	actions   []Action
	guardIDs  map[string]int
	guards    []Guard

	initial *edge
	errs    []error
}

// StateBuilder configures one proper state.
type StateBuilder struct {
	b     *Builder
	name  string
	id    StateID
	kind  StateKind
	esm   *Descriptor
	entry string
	do    string
	exit  string
	out   []edge
}

// ChoiceBuilder configures one choice pseudo-state.
type ChoiceBuilder struct {
	b        *Builder
	name     string
	id       ChoiceID
	branches []edge
}

type edge struct {
	trigger Trigger
	target  string
	guard   string
	action  string
}

// NewBuilder creates a builder for a machine called name. Action slot 0 and
// guard slot 0 are reserved for NoAction and AlwaysTrue and are addressed by
// the empty name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:        name,
		stateIDs:    make(map[string]StateID),
		choiceIDs:   make(map[string]ChoiceID),
		triggers:    make(map[string]Trigger),
		nextTrigger: Execute + 1,
		actionIDs:   map[string]int{"": 0},
		actions:     []Action{NoAction},
		guardIDs:    map[string]int{"": 0},
		guards:      []Guard{AlwaysTrue},
	}
}

// Action registers a named action in the next free slot.
func (b *Builder) Action(name string, a Action) *Builder {
	if _, dup := b.actionIDs[name]; dup {
		b.errs = append(b.errs, fmt.Errorf("action %q registered twice", name))
		return b
	}
	if a == nil {
		b.errs = append(b.errs, fmt.Errorf("action %q is nil", name))
		return b
	}
	b.actionIDs[name] = len(b.actions)
	b.actions = append(b.actions, a)
	return b
}

// Guard registers a named guard in the next free slot.
func (b *Builder) Guard(name string, g Guard) *Builder {
	if _, dup := b.guardIDs[name]; dup {
		b.errs = append(b.errs, fmt.Errorf("guard %q registered twice", name))
		return b
	}
	if g == nil {
		b.errs = append(b.errs, fmt.Errorf("guard %q is nil", name))
		return b
	}
	b.guardIDs[name] = len(b.guards)
	b.guards = append(b.guards, g)
	return b
}

// Trigger returns the identifier of the named trigger, assigning the next
// free one on first use.
func (b *Builder) Trigger(name string) Trigger {
	if tr, ok := b.triggers[name]; ok {
		return tr
	}
	tr := b.nextTrigger
	b.nextTrigger++
	b.triggers[name] = tr
	return tr
}

// DeclareTriggers assigns identifiers to names in order. Machines embedded
// in one another receive the same triggers, so their builders should
// declare the same list first.
func (b *Builder) DeclareTriggers(names ...string) *Builder {
	for _, name := range names {
		b.Trigger(name)
	}
	return b
}

// Triggers returns a copy of the trigger name table.
func (b *Builder) Triggers() map[string]Trigger {
	m := make(map[string]Trigger, len(b.triggers))
	for k, v := range b.triggers {
		m[k] = v
	}
	return m
}

// Initial sets the target of the initial transition and its action.
func (b *Builder) Initial(target, action string) *Builder {
	b.initial = &edge{target: target, action: action}
	return b
}

// State creates or retrieves a primitive state by name.
func (b *Builder) State(name string) *StateBuilder {
	if id, ok := b.stateIDs[name]; ok {
		return b.states[id-1]
	}
	if _, clash := b.choiceIDs[name]; clash || name == FinalName || name == "" {
		b.errs = append(b.errs, fmt.Errorf("illegal state name %q", name))
	}
	sb := &StateBuilder{b: b, name: name, id: StateID(len(b.states) + 1)}
	b.states = append(b.states, sb)
	b.stateIDs[name] = sb.id
	return sb
}

// Choice creates or retrieves a choice pseudo-state by name.
func (b *Builder) Choice(name string) *ChoiceBuilder {
	if id, ok := b.choiceIDs[name]; ok {
		return b.choices[id-1]
	}
	if _, clash := b.stateIDs[name]; clash || name == FinalName || name == "" {
		b.errs = append(b.errs, fmt.Errorf("illegal choice name %q", name))
	}
	cb := &ChoiceBuilder{b: b, name: name, id: ChoiceID(len(b.choices) + 1)}
	b.choices = append(b.choices, cb)
	b.choiceIDs[name] = cb.id
	return cb
}

// StateID returns the identifier of a declared state, or 0.
func (b *Builder) StateID(name string) StateID {
	return b.stateIDs[name]
}

// StateName returns the name of state id, or "".
func (b *Builder) StateName(id StateID) string {
	if id < 1 || int(id) > len(b.states) {
		return ""
	}
	return b.states[id-1].name
}

// ChoiceID returns the identifier of a declared choice, or 0.
func (b *Builder) ChoiceID(name string) ChoiceID {
	return b.choiceIDs[name]
}

// ActionSlot returns the slot of a registered action.
func (b *Builder) ActionSlot(name string) (int, bool) {
	i, ok := b.actionIDs[name]
	return i, ok
}

// GuardSlot returns the slot of a registered guard.
func (b *Builder) GuardSlot(name string) (int, bool) {
	i, ok := b.guardIDs[name]
	return i, ok
}

func (sb *StateBuilder) ID() StateID  { return sb.id }
func (sb *StateBuilder) Name() string { return sb.name }

func (cb *ChoiceBuilder) ID() ChoiceID { return cb.id }
func (cb *ChoiceBuilder) Name() string { return cb.name }

// Composite marks the state as composite. esm, if not nil, is embedded in
// it.
func (sb *StateBuilder) Composite(esm *Descriptor) *StateBuilder {
	sb.kind = Composite
	sb.esm = esm
	return sb
}

func (sb *StateBuilder) Entry(action string) *StateBuilder {
	sb.entry = action
	return sb
}

func (sb *StateBuilder) Do(action string) *StateBuilder {
	sb.do = action
	return sb
}

func (sb *StateBuilder) Exit(action string) *StateBuilder {
	sb.exit = action
	return sb
}

// On adds a transition to target fired by the named trigger. guard and
// action name registered behaviors; "" selects the built-ins.
func (sb *StateBuilder) On(trigger, target, guard, action string) *StateBuilder {
	sb.out = append(sb.out, edge{
		trigger: sb.b.Trigger(trigger),
		target:  target,
		guard:   guard,
		action:  action,
	})
	return sb
}

// OnExecute adds a transition checked on every Execute command.
func (sb *StateBuilder) OnExecute(target, guard, action string) *StateBuilder {
	sb.out = append(sb.out, edge{trigger: Execute, target: target, guard: guard, action: action})
	return sb
}

// Branch adds an outgoing transition. Branches are tried in the order they
// are added.
func (cb *ChoiceBuilder) Branch(target, guard, action string) *ChoiceBuilder {
	cb.branches = append(cb.branches, edge{target: target, guard: guard, action: action})
	return cb
}

// Else adds an unguarded branch.
func (cb *ChoiceBuilder) Else(target, action string) *ChoiceBuilder {
	return cb.Branch(target, "", action)
}

// Sizes returns the dimensions of the descriptor Build creates.
func (b *Builder) Sizes() Sizes {
	n := 1
	for _, s := range b.states {
		n += len(s.out)
	}
	for _, c := range b.choices {
		n += len(c.branches)
	}
	return Sizes{
		States:      len(b.states),
		Choices:     len(b.choices),
		Transitions: n,
		Actions:     len(b.actions),
		Guards:      len(b.guards),
	}
}

// Build validates the configuration, then creates, initializes, configures
// and checks a descriptor.
func (b *Builder) Build(opts ...Option) (*Descriptor, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	opts = append([]Option{WithName(b.name)}, opts...)
	d := New(b.Sizes(), opts...)
	Init(d)
	for i := 1; i < len(b.actions); i++ {
		d.SetAction(i, b.actions[i])
	}
	for i := 1; i < len(b.guards); i++ {
		d.SetGuard(i, b.guards[i])
	}
	for _, s := range b.states {
		d.AddState(s.id, StateSpec{
			Kind:   s.kind,
			NumOut: len(s.out),
			Entry:  SlotOf(b.actionIDs[s.entry]),
			Do:     SlotOf(b.actionIDs[s.do]),
			Exit:   SlotOf(b.actionIDs[s.exit]),
		})
	}
	for _, c := range b.choices {
		d.AddChoice(c.id, len(c.branches))
	}
	d.AddTrans(b.transSpec(Initial, *b.initial))
	for _, s := range b.states {
		for _, e := range s.out {
			d.AddTrans(b.transSpec(StateVertex(s.id), e))
		}
	}
	for _, c := range b.choices {
		for _, e := range c.branches {
			d.AddTrans(b.transSpec(ChoiceVertex(c.id), e))
		}
	}
	for _, s := range b.states {
		if s.esm != nil {
			d.Embed(s.id, s.esm)
		}
	}
	if code := d.CheckRec(); code != ErrNone {
		return nil, fmt.Errorf("fwsm: building %s: %w", b.name, code)
	}
	return d, nil
}

func (b *Builder) transSpec(src Vertex, e edge) TransSpec {
	return TransSpec{
		Trigger: e.trigger,
		Source:  src,
		Dest:    b.vertex(e.target),
		Guard:   SlotOf(b.guardIDs[e.guard]),
		Action:  SlotOf(b.actionIDs[e.action]),
	}
}

func (b *Builder) vertex(name string) Vertex {
	if name == FinalName {
		return Final
	}
	if id, ok := b.stateIDs[name]; ok {
		return StateVertex(id)
	}
	if id, ok := b.choiceIDs[name]; ok {
		return ChoiceVertex(id)
	}
	return Vertex{}
}

// validate checks that every referenced name exists.
func (b *Builder) validate() error {
	errs := append([]error(nil), b.errs...)
	if b.initial == nil {
		errs = append(errs, fmt.Errorf("machine %s has no initial transition", b.name))
	} else {
		errs = append(errs, b.checkEdge("initial transition", *b.initial)...)
	}
	for _, s := range b.states {
		for _, a := range []string{s.entry, s.do, s.exit} {
			if _, ok := b.actionIDs[a]; !ok {
				errs = append(errs, fmt.Errorf("state %s uses unknown action %q", s.name, a))
			}
		}
		if s.esm != nil && s.kind != Composite {
			errs = append(errs, fmt.Errorf("state %s embeds a machine but is not composite", s.name))
		}
		for _, e := range s.out {
			errs = append(errs, b.checkEdge("state "+s.name, e)...)
		}
	}
	for _, c := range b.choices {
		if len(c.branches) == 0 {
			errs = append(errs, fmt.Errorf("choice %s has no branches", c.name))
		}
		for _, e := range c.branches {
			if _, ok := b.choiceIDs[e.target]; ok {
				errs = append(errs, fmt.Errorf("choice %s leads to choice %s", c.name, e.target))
			}
			errs = append(errs, b.checkEdge("choice "+c.name, e)...)
		}
	}
	return errors.Join(errs...)
}

func (b *Builder) checkEdge(where string, e edge) []error {
	var errs []error
	if b.vertex(e.target).kind == vertexNone {
		errs = append(errs, fmt.Errorf("%s has transition to unknown target %q", where, e.target))
	}
	if _, ok := b.guardIDs[e.guard]; !ok {
		errs = append(errs, fmt.Errorf("%s uses unknown guard %q", where, e.guard))
	}
	if _, ok := b.actionIDs[e.action]; !ok {
		errs = append(errs, fmt.Errorf("%s uses unknown action %q", where, e.action))
	}
	return errs
}
