// Package benchmarks measures the fwsm engine and the layers built on it.
package benchmarks

import (
	"fmt"

	"github.com/comalice/fwsm"
	"github.com/comalice/fwsm/internal/primitives"
)

// Tick is the trigger every generated machine reacts to.
const Tick fwsm.Trigger = 1

// GenFlat builds a machine with n states cycling on Tick.
func GenFlat(n int) (*fwsm.Descriptor, error) {
	if n < 1 {
		n = 1
	}
	b := fwsm.NewBuilder(fmt.Sprintf("flat_%d", n)).DeclareTriggers("tick")
	b.Initial("s0", "")
	for i := 0; i < n; i++ {
		b.State(fmt.Sprintf("s%d", i)).On("tick", fmt.Sprintf("s%d", (i+1)%n), "", "")
	}
	return b.Build()
}

// GenDeep builds depth machines embedded in one another. Every level flips
// between two states on Tick, so one trigger walks the whole hierarchy.
func GenDeep(depth int) (*fwsm.Descriptor, error) {
	if depth < 1 {
		depth = 1
	}
	var inner *fwsm.Descriptor
	for i := depth - 1; i >= 0; i-- {
		b := fwsm.NewBuilder(fmt.Sprintf("level_%d", i)).DeclareTriggers("tick")
		b.Initial("leaf1", "")
		b.State("leaf1").Composite(inner).On("tick", "leaf2", "", "")
		b.State("leaf2").On("tick", "leaf1", "", "")
		d, err := b.Build()
		if err != nil {
			return nil, err
		}
		inner = d
	}
	return inner, nil
}

// GenWide builds one state with n guarded Tick transitions; only the last
// guard is true, so every trigger evaluates all of them.
func GenWide(n int) (*fwsm.Descriptor, error) {
	if n < 1 {
		n = 1
	}
	b := fwsm.NewBuilder(fmt.Sprintf("wide_%d", n)).
		DeclareTriggers("tick").
		Guard("never", fwsm.GuardFunc(func(*fwsm.Descriptor) bool { return false }))
	b.Initial("main", "")
	main := b.State("main")
	for i := 0; i < n-1; i++ {
		main.On("tick", "main", "never", "")
	}
	main.On("tick", "main", "", "")
	return b.Build()
}

// GenFlatConfig is the declarative form of GenFlat.
func GenFlatConfig(n int) *primitives.MachineConfig {
	if n < 1 {
		n = 1
	}
	cfg := primitives.NewMachineConfig(fmt.Sprintf("flat_%d", n), "s0")
	cfg.Triggers = []string{"tick"}
	for i := 0; i < n; i++ {
		cfg.State(fmt.Sprintf("s%d", i)).Transition("tick", fmt.Sprintf("s%d", (i+1)%n))
	}
	return cfg
}
