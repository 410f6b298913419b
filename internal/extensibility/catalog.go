// Package extensibility holds the pluggable behavior around the fwsm engine:
// a catalog resolving action and guard names, logging decorators, guard
// expressions and trigger sources.
package extensibility

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/comalice/fwsm"
)

// ErrNotRegistered is returned when a name has no registered behavior.
var ErrNotRegistered = errors.New("not registered")

// Catalog maps action and guard names to implementations. Declarative
// machine tables refer to behavior by name; the loader resolves the names
// through a Catalog. It is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	actions map[string]fwsm.Action
	guards  map[string]fwsm.Guard
	logger  *slog.Logger
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		actions: make(map[string]fwsm.Action),
		guards:  make(map[string]fwsm.Guard),
	}
}

// RegisterAction adds a named action.
func (c *Catalog) RegisterAction(name string, a fwsm.Action) error {
	if name == "" || a == nil {
		return errors.Newf("invalid action registration %q", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.actions[name]; dup {
		return errors.Newf("action %q already registered", name)
	}
	c.actions[name] = a
	return nil
}

// RegisterGuard adds a named guard.
func (c *Catalog) RegisterGuard(name string, g fwsm.Guard) error {
	if name == "" || g == nil {
		return errors.Newf("invalid guard registration %q", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.guards[name]; dup {
		return errors.Newf("guard %q already registered", name)
	}
	c.guards[name] = g
	return nil
}

// RegisterExpression adds a guard named name that evaluates expr, see
// ParseExpression.
func (c *Catalog) RegisterExpression(name, expr string) error {
	g, err := ParseExpression(expr)
	if err != nil {
		return errors.Wrapf(err, "guard %q", name)
	}
	return c.RegisterGuard(name, g)
}

// WithLogger makes Action and Guard wrap what they return in LoggingAction
// and LoggingGuard decorators writing to logger. A nil logger turns
// decoration off.
func (c *Catalog) WithLogger(logger *slog.Logger) *Catalog {
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
	return c
}

// Action resolves a registered action.
func (c *Catalog) Action(name string) (fwsm.Action, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.actions[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotRegistered, "action %q", name)
	}
	if c.logger != nil {
		return NewLoggingAction(name, a, c.logger), nil
	}
	return a, nil
}

// Guard resolves a registered guard.
func (c *Catalog) Guard(name string) (fwsm.Guard, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.guards[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotRegistered, "guard %q", name)
	}
	if c.logger != nil {
		return NewLoggingGuard(name, g, c.logger), nil
	}
	return g, nil
}

// Names returns the registered action and guard names, sorted.
func (c *Catalog) Names() (actions, guards []string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for n := range c.actions {
		actions = append(actions, n)
	}
	for n := range c.guards {
		guards = append(guards, n)
	}
	sort.Strings(actions)
	sort.Strings(guards)
	return actions, guards
}
