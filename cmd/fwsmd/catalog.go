package main

import (
	"log/slog"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/comalice/fwsm"
	"github.com/comalice/fwsm/internal/extensibility"
	"github.com/comalice/fwsm/internal/primitives"
)

// newCatalog binds every behavior the table names. Actions only log; guards
// come from cfg.Guards and default to true.
func newCatalog(table *primitives.MachineConfig, guards map[string]string, log *slog.Logger) (*extensibility.Catalog, error) {
	c := extensibility.NewCatalog()
	actions, guardNames := behaviors(table)
	for _, name := range actions {
		if err := c.RegisterAction(name, fwsm.NoAction); err != nil {
			return nil, err
		}
	}
	for _, name := range guardNames {
		expr, ok := guards[name]
		if !ok {
			log.Warn("guard has no expression, always true", slog.String("guard", name))
			if err := c.RegisterGuard(name, fwsm.AlwaysTrue); err != nil {
				return nil, err
			}
			continue
		}
		if err := c.RegisterExpression(name, expr); err != nil {
			return nil, errors.Wrap(err, "FWSM_GUARDS")
		}
	}
	return c.WithLogger(log), nil
}

func behaviors(cfg *primitives.MachineConfig) (actions, guards []string) {
	var walk func(*primitives.MachineConfig)
	walk = func(m *primitives.MachineConfig) {
		for _, a := range m.Actions {
			if !slices.Contains(actions, a) {
				actions = append(actions, a)
			}
		}
		for _, g := range m.Guards {
			if !slices.Contains(guards, g) {
				guards = append(guards, g)
			}
		}
		for _, sub := range m.Machines {
			walk(sub)
		}
	}
	walk(cfg)
	return actions, guards
}
