package primitives

import (
	"github.com/cockroachdb/errors"
)

// StateKind defines the possible kinds of proper states.
type StateKind string

const (
	Primitive StateKind = "primitive"
	Composite StateKind = "composite"
)

// StateConfig defines a proper state. Transitions in On are checked in
// order.
type StateConfig struct {
	Name  string             `json:"name" yaml:"name"`
	Kind  StateKind          `json:"kind,omitempty" yaml:"kind,omitempty"`
	Entry string             `json:"entry,omitempty" yaml:"entry,omitempty"`
	Do    string             `json:"do,omitempty" yaml:"do,omitempty"`
	Exit  string             `json:"exit,omitempty" yaml:"exit,omitempty"`
	Embed string             `json:"embed,omitempty" yaml:"embed,omitempty"` // name of a machine in Machines
	On    []TransitionConfig `json:"on,omitempty" yaml:"on,omitempty"`
}

// NewStateConfig creates a new StateConfig with name and kind.
func NewStateConfig(name string, kind StateKind) *StateConfig {
	return &StateConfig{Name: name, Kind: kind}
}

// IsComposite reports whether the state may hold an embedded machine.
func (s *StateConfig) IsComposite() bool {
	return s.Kind == Composite
}

// WithEntry sets the entry action.
func (s *StateConfig) WithEntry(action string) *StateConfig {
	s.Entry = action
	return s
}

// WithDo sets the do action.
func (s *StateConfig) WithDo(action string) *StateConfig {
	s.Do = action
	return s
}

// WithExit sets the exit action.
func (s *StateConfig) WithExit(action string) *StateConfig {
	s.Exit = action
	return s
}

// WithEmbed makes the state composite and embeds the named machine.
func (s *StateConfig) WithEmbed(machine string) *StateConfig {
	s.Kind = Composite
	s.Embed = machine
	return s
}

// Transition adds a transition from trigger to target.
// Optionally override with full TransitionConfig via first arg.
// Usage: .Transition("evt", "target") or .Transition("evt", "target", TransitionConfig{Guard: "ready"}).
func (s *StateConfig) Transition(trigger, target string, opts ...TransitionConfig) *StateConfig {
	trans := TransitionConfig{}
	if len(opts) > 0 {
		trans = opts[0]
	}
	trans.Trigger = trigger
	trans.Target = target
	s.On = append(s.On, trans)
	return s
}

// Validate checks the state on its own.
func (s *StateConfig) Validate() error {
	if !validName(s.Name) {
		return errors.Newf("invalid state name %q", s.Name)
	}
	switch s.Kind {
	case "", Primitive:
		if s.Embed != "" {
			return errors.Newf("primitive state %s cannot embed a machine", s.Name)
		}
	case Composite:
	default:
		return errors.Newf("invalid state kind %q for state %s", s.Kind, s.Name)
	}
	for i := range s.On {
		if err := s.On[i].Validate(); err != nil {
			return errors.Wrapf(err, "transition %d of %s", i, s.Name)
		}
	}
	return nil
}

// ChoiceConfig defines a choice pseudo-state. Branches are tried in order;
// their triggers are ignored.
type ChoiceConfig struct {
	Name     string             `json:"name" yaml:"name"`
	Branches []TransitionConfig `json:"branches" yaml:"branches"`
}

// Branch adds a guarded branch.
func (c *ChoiceConfig) Branch(target, guard, action string) *ChoiceConfig {
	c.Branches = append(c.Branches, TransitionConfig{Target: target, Guard: guard, Action: action})
	return c
}

// Validate checks the choice on its own.
func (c *ChoiceConfig) Validate() error {
	if !validName(c.Name) {
		return errors.Newf("invalid choice name %q", c.Name)
	}
	if len(c.Branches) == 0 {
		return errors.Newf("choice %s requires at least one branch", c.Name)
	}
	for i := range c.Branches {
		if err := c.Branches[i].Validate(); err != nil {
			return errors.Wrapf(err, "branch %d of %s", i, c.Name)
		}
	}
	return nil
}
