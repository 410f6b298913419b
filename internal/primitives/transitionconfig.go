package primitives

import (
	"github.com/cockroachdb/errors"
)

// ExecuteTrigger names the periodic execution command. A transition with
// this trigger, or with no trigger at all, is checked on every Execute.
const ExecuteTrigger = "execute"

// FinalTarget is the target name of the final pseudo-state.
const FinalTarget = "[*]"

// TransitionConfig defines a single transition. Guard and Action name
// entries of the machine's guard and action lists; empty selects the
// built-ins.
type TransitionConfig struct {
	Trigger string `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Target  string `json:"target" yaml:"target"`
	Guard   string `json:"guard,omitempty" yaml:"guard,omitempty"`
	Action  string `json:"action,omitempty" yaml:"action,omitempty"`
}

// IsExecute reports whether the transition fires on the Execute command.
func (t *TransitionConfig) IsExecute() bool {
	return t.Trigger == "" || t.Trigger == ExecuteTrigger
}

// Validate checks the transition fields that do not depend on the rest of
// the machine.
func (t *TransitionConfig) Validate() error {
	if t.Target == "" {
		return errors.New("target is required")
	}
	if !validName(t.Target) && t.Target != FinalTarget {
		return errors.Newf("invalid target name %q", t.Target)
	}
	if t.Trigger != "" && !validName(t.Trigger) {
		return errors.Newf("invalid trigger name %q", t.Trigger)
	}
	return nil
}

// validName accepts letters, digits, underscores, hyphens and dots.
func validName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}
