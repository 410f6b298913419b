package production

import (
	"testing"

	"github.com/comalice/fwsm"
	"github.com/comalice/fwsm/internal/core"
	"github.com/comalice/fwsm/internal/extensibility"
	"github.com/comalice/fwsm/internal/primitives"
)

// pumpConfig: idle -start-> check -[primed]-> running(motor) -stop-> final,
// with check falling back to idle. The motor goes slow -start-> fast.
func pumpConfig() *primitives.MachineConfig {
	cfg := primitives.NewMachineConfig("pump", "idle")
	cfg.Triggers = []string{"start", "stop"}
	cfg.Actions = []string{"prime"}
	cfg.Guards = []string{"primed"}
	cfg.State("idle").Transition("start", "check")
	cfg.Choice("check").
		Branch("running", "primed", "").
		Branch("idle", "", "prime")
	cfg.State("running").WithEmbed("motor").Transition("stop", primitives.FinalTarget)

	motor := primitives.NewMachineConfig("motor", "slow")
	motor.State("slow").Transition("start", "fast")
	motor.State("fast")
	cfg.Machines = map[string]*primitives.MachineConfig{"motor": motor}
	return cfg
}

func loadPump(t *testing.T, primed *bool, opts ...core.Option) *core.Machine {
	t.Helper()

	c := extensibility.NewCatalog()
	if err := c.RegisterAction("prime", fwsm.ActionFunc(func(*fwsm.Descriptor) { *primed = true })); err != nil {
		t.Fatal(err)
	}
	if err := c.RegisterGuard("primed", fwsm.GuardFunc(func(*fwsm.Descriptor) bool { return *primed })); err != nil {
		t.Fatal(err)
	}
	m, err := core.Load(pumpConfig(), c, opts...)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return m
}

func transition(guard, action string) primitives.TransitionConfig {
	return primitives.TransitionConfig{Target: "x", Guard: guard, Action: action}
}
