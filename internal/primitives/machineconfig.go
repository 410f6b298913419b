package primitives

import (
	"slices"

	"github.com/cockroachdb/errors"
)

// MachineConfig defines a complete state machine table. States and choices
// receive identifiers in the order they are listed. Machines holds the
// definitions of machines embedded in composite states; they share the
// trigger list of the outermost machine.
type MachineConfig struct {
	Version  string                    `json:"version,omitempty" yaml:"version,omitempty"`
	ID       string                    `json:"id" yaml:"id"`
	Triggers []string                  `json:"triggers,omitempty" yaml:"triggers,omitempty"`
	Actions  []string                  `json:"actions,omitempty" yaml:"actions,omitempty"`
	Guards   []string                  `json:"guards,omitempty" yaml:"guards,omitempty"`
	Initial  TransitionConfig          `json:"initial" yaml:"initial"`
	States   []*StateConfig            `json:"states" yaml:"states"`
	Choices  []*ChoiceConfig           `json:"choices,omitempty" yaml:"choices,omitempty"`
	Machines map[string]*MachineConfig `json:"machines,omitempty" yaml:"machines,omitempty"`
}

// NewMachineConfig creates an empty configuration whose initial transition
// leads to initial.
func NewMachineConfig(id, initial string) *MachineConfig {
	return &MachineConfig{ID: id, Initial: TransitionConfig{Target: initial}}
}

// State appends a state of the given kind (primitive by default) and returns
// it for chaining.
func (m *MachineConfig) State(name string, kind ...StateKind) *StateConfig {
	k := Primitive
	if len(kind) > 0 {
		k = kind[0]
	}
	s := NewStateConfig(name, k)
	m.States = append(m.States, s)
	return s
}

// Choice appends a choice pseudo-state and returns it for chaining.
func (m *MachineConfig) Choice(name string) *ChoiceConfig {
	c := &ChoiceConfig{Name: name}
	m.Choices = append(m.Choices, c)
	return c
}

// FindState returns the state called name.
func (m *MachineConfig) FindState(name string) (*StateConfig, error) {
	for _, s := range m.States {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, errors.Newf("state %q not found in %s", name, m.ID)
}

// Validate validates the entire machine configuration and the machines
// nested in it:
// - non-empty ID and at least one state
// - state and choice names unique and distinct from each other
// - every target is a state, a choice or the final pseudo-state
// - choices never lead to choices
// - every trigger, action and guard used is declared
// - every embedded machine is defined and only composite states embed
func (m *MachineConfig) Validate() error {
	return m.validate(m.Triggers, nil)
}

func (m *MachineConfig) validate(triggers []string, path []string) error {
	if m.ID == "" {
		return errors.New("machine ID is required")
	}
	if slices.Contains(path, m.ID) {
		return errors.Newf("machine %s embeds itself", m.ID)
	}
	if len(m.States) == 0 {
		return errors.Newf("machine %s has no states", m.ID)
	}
	if err := unique("trigger", triggers); err != nil {
		return err
	}
	if slices.Contains(triggers, ExecuteTrigger) {
		return errors.Newf("trigger %q is reserved", ExecuteTrigger)
	}
	if err := unique("action", m.Actions); err != nil {
		return errors.Wrapf(err, "machine %s", m.ID)
	}
	if err := unique("guard", m.Guards); err != nil {
		return errors.Wrapf(err, "machine %s", m.ID)
	}

	kinds := make(map[string]string, len(m.States)+len(m.Choices))
	for _, s := range m.States {
		if err := s.Validate(); err != nil {
			return errors.Wrapf(err, "machine %s", m.ID)
		}
		if _, dup := kinds[s.Name]; dup {
			return errors.Newf("machine %s: duplicate name %q", m.ID, s.Name)
		}
		kinds[s.Name] = "state"
	}
	for _, c := range m.Choices {
		if err := c.Validate(); err != nil {
			return errors.Wrapf(err, "machine %s", m.ID)
		}
		if _, dup := kinds[c.Name]; dup {
			return errors.Newf("machine %s: duplicate name %q", m.ID, c.Name)
		}
		kinds[c.Name] = "choice"
	}

	check := func(where string, t *TransitionConfig, fromChoice bool) error {
		if t.Target != FinalTarget {
			kind, ok := kinds[t.Target]
			if !ok {
				return errors.Newf("machine %s: %s targets unknown %q", m.ID, where, t.Target)
			}
			if fromChoice && kind == "choice" {
				return errors.Newf("machine %s: %s leads from a choice to choice %q", m.ID, where, t.Target)
			}
		}
		if !fromChoice && !t.IsExecute() && !slices.Contains(triggers, t.Trigger) {
			return errors.Newf("machine %s: %s uses undeclared trigger %q", m.ID, where, t.Trigger)
		}
		if t.Guard != "" && !slices.Contains(m.Guards, t.Guard) {
			return errors.Newf("machine %s: %s uses undeclared guard %q", m.ID, where, t.Guard)
		}
		return m.declaredAction(where, t.Action)
	}

	if _, ok := kinds[m.Initial.Target]; !ok {
		return errors.Newf("machine %s: initial target %q not found", m.ID, m.Initial.Target)
	}
	if m.Initial.Guard != "" {
		return errors.Newf("machine %s: initial transition cannot be guarded", m.ID)
	}
	if err := m.declaredAction("initial transition", m.Initial.Action); err != nil {
		return err
	}
	for _, s := range m.States {
		for _, a := range []string{s.Entry, s.Do, s.Exit} {
			if err := m.declaredAction("state "+s.Name, a); err != nil {
				return err
			}
		}
		for i := range s.On {
			if err := check("state "+s.Name, &s.On[i], false); err != nil {
				return err
			}
		}
		if s.Embed != "" {
			sub, ok := m.Machines[s.Embed]
			if !ok {
				return errors.Newf("machine %s: state %s embeds unknown machine %q", m.ID, s.Name, s.Embed)
			}
			if err := sub.validate(triggers, append(path, m.ID)); err != nil {
				return errors.Wrapf(err, "machine %s: state %s", m.ID, s.Name)
			}
		}
	}
	for _, c := range m.Choices {
		for i := range c.Branches {
			if err := check("choice "+c.Name, &c.Branches[i], true); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MachineConfig) declaredAction(where, name string) error {
	if name != "" && !slices.Contains(m.Actions, name) {
		return errors.Newf("machine %s: %s uses undeclared action %q", m.ID, where, name)
	}
	return nil
}

func unique(what string, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if !validName(n) {
			return errors.Newf("invalid %s name %q", what, n)
		}
		if _, dup := seen[n]; dup {
			return errors.Newf("duplicate %s %q", what, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}
