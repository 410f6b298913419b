// Package core turns declarative machine configurations into configured and
// checked fwsm descriptor hierarchies, and defines the contracts of the
// persistence and publishing adapters built around them.
package core

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/comalice/fwsm"
	"github.com/comalice/fwsm/internal/extensibility"
	"github.com/comalice/fwsm/internal/primitives"
)

var (
	ErrVersionMismatch = errors.New("snapshot version does not match machine")
	ErrWrongMachine    = errors.New("snapshot belongs to another machine")
)

// Machine is a loaded machine configuration: a base descriptor hierarchy
// from which instances are derived, plus the name tables needed to talk
// about it.
type Machine struct {
	config  *primitives.MachineConfig
	version string
	root    *node
	// nodes indexes the hierarchy by machine ID.
	nodes    map[string]*node
	descOpts []fwsm.Option
}

type node struct {
	builder  *fwsm.Builder
	desc     *fwsm.Descriptor
	children map[fwsm.StateID]*node
}

// Load validates cfg and builds its descriptor hierarchy, resolving action
// and guard names through catalog. Every machine in the hierarchy uses the
// triggers of the outermost one.
func Load(cfg *primitives.MachineConfig, catalog *extensibility.Catalog, opts ...Option) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid machine config")
	}
	o := newOptions(opts)

	m := &Machine{
		config:   cfg,
		version:  primitives.ComputeVersion(cfg),
		nodes:    make(map[string]*node),
		descOpts: o.descriptorOptions(),
	}
	root, err := m.build(cfg, cfg.Triggers, catalog, o)
	if err != nil {
		return nil, err
	}
	m.root = root
	o.logger.Debug("machine loaded",
		slog.String("machine", cfg.ID),
		slog.String("version", m.version),
		slog.Int("machines", len(m.nodes)),
	)
	return m, nil
}

func (m *Machine) build(cfg *primitives.MachineConfig, triggers []string, catalog *extensibility.Catalog, o *options) (*node, error) {
	b := fwsm.NewBuilder(cfg.ID).DeclareTriggers(triggers...)
	n := &node{builder: b, children: make(map[fwsm.StateID]*node)}

	for _, name := range cfg.Actions {
		a, err := catalog.Action(name)
		if err != nil {
			return nil, errors.Wrapf(err, "machine %s", cfg.ID)
		}
		b.Action(name, a)
	}
	for _, name := range cfg.Guards {
		g, err := catalog.Guard(name)
		if err != nil {
			return nil, errors.Wrapf(err, "machine %s", cfg.ID)
		}
		b.Guard(name, g)
	}

	b.Initial(cfg.Initial.Target, cfg.Initial.Action)
	for _, s := range cfg.States {
		sb := b.State(s.Name).Entry(s.Entry).Do(s.Do).Exit(s.Exit)
		if s.IsComposite() {
			var esm *fwsm.Descriptor
			if s.Embed != "" {
				child, err := m.build(cfg.Machines[s.Embed], triggers, catalog, o)
				if err != nil {
					return nil, err
				}
				n.children[sb.ID()] = child
				esm = child.desc
			}
			sb.Composite(esm)
		}
		for _, t := range s.On {
			if t.IsExecute() {
				sb.OnExecute(t.Target, t.Guard, t.Action)
			} else {
				sb.On(t.Trigger, t.Target, t.Guard, t.Action)
			}
		}
	}
	for _, c := range cfg.Choices {
		cb := b.Choice(c.Name)
		for _, br := range c.Branches {
			cb.Branch(br.Target, br.Guard, br.Action)
		}
	}

	d, err := b.Build(m.descOpts...)
	if err != nil {
		return nil, errors.Wrapf(err, "machine %s", cfg.ID)
	}
	n.desc = d
	m.nodes[cfg.ID] = n
	return n, nil
}

// LoadFile reads a machine configuration from a YAML or JSON file (chosen
// by extension) and loads it.
func LoadFile(path string, catalog *extensibility.Catalog, opts ...Option) (*Machine, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}
	return Load(cfg, catalog, opts...)
}

// ReadConfig decodes a machine configuration file. Files ending in .json are
// decoded as JSON, everything else as YAML.
func ReadConfig(path string) (*primitives.MachineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var cfg primitives.MachineConfig
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return &cfg, nil
}

func (m *Machine) ID() string                        { return m.config.ID }
func (m *Machine) Version() string                   { return m.version }
func (m *Machine) Config() *primitives.MachineConfig { return m.config }

// Base returns the base descriptor of the hierarchy. Instances should be
// derived from it with New rather than run directly.
func (m *Machine) Base() *fwsm.Descriptor { return m.root.desc }

// New derives a fresh instance of the whole hierarchy. Instances carry the
// machine's name and the observer and data given to Load; opts apply to the
// outermost descriptor only and must not rename it.
func (m *Machine) New(opts ...fwsm.Option) *fwsm.Descriptor {
	all := append([]fwsm.Option{fwsm.WithName(m.ID())}, m.descOpts...)
	return fwsm.DeriveRec(m.root.desc, append(all, opts...)...)
}

// Trigger returns the identifier of a named trigger. ExecuteTrigger maps to
// fwsm.Execute.
func (m *Machine) Trigger(name string) (fwsm.Trigger, bool) {
	if name == primitives.ExecuteTrigger {
		return fwsm.Execute, true
	}
	tr, ok := m.root.builder.Triggers()[name]
	return tr, ok
}

// TriggerName returns the name of tr, or its number when unknown.
func (m *Machine) TriggerName(tr fwsm.Trigger) string {
	if tr == fwsm.Execute {
		return primitives.ExecuteTrigger
	}
	for name, id := range m.root.builder.Triggers() {
		if id == tr {
			return name
		}
	}
	return "#" + strconv.Itoa(int(tr))
}

// StateName returns the name of state id of d, which must belong to this
// machine's hierarchy.
func (m *Machine) StateName(d *fwsm.Descriptor, id fwsm.StateID) string {
	if id == 0 {
		return ""
	}
	n, ok := m.nodes[d.Name()]
	if !ok {
		return "#" + strconv.Itoa(int(id))
	}
	return n.builder.StateName(id)
}

// ChoiceName returns the name of choice id of d.
func (m *Machine) ChoiceName(d *fwsm.Descriptor, id fwsm.ChoiceID) string {
	n, ok := m.nodes[d.Name()]
	if !ok || id == 0 {
		return ""
	}
	for _, c := range m.configOf(d.Name()).Choices {
		if n.builder.ChoiceID(c.Name) == id {
			return c.Name
		}
	}
	return ""
}

func (m *Machine) configOf(id string) *primitives.MachineConfig {
	var find func(c *primitives.MachineConfig) *primitives.MachineConfig
	find = func(c *primitives.MachineConfig) *primitives.MachineConfig {
		if c.ID == id {
			return c
		}
		for _, sub := range c.Machines {
			if r := find(sub); r != nil {
				return r
			}
		}
		return nil
	}
	if c := find(m.config); c != nil {
		return c
	}
	return &primitives.MachineConfig{}
}

// ActivePath returns the names of the current states of d and of its
// active embedded machines, outermost first. It is empty when d is stopped.
func (m *Machine) ActivePath(d *fwsm.Descriptor) []string {
	var path []string
	for n := m.root; n != nil && d != nil && d.IsStarted(); {
		id := d.CurState()
		path = append(path, n.builder.StateName(id))
		d, n = d.Embedded(id), n.children[id]
	}
	return path
}

// Record captures the runtime state of instance d for persistence.
func (m *Machine) Record(instance string, d *fwsm.Descriptor) Record {
	return Record{
		ID:        uuid.NewString(),
		Instance:  instance,
		Machine:   m.ID(),
		Version:   m.version,
		Active:    m.ActivePath(d),
		Snapshot:  d.Snapshot(),
		Timestamp: time.Now().UTC(),
	}
}

// Resume derives a new instance and restores rec into it. The record must
// have been taken from this machine at the same version.
func (m *Machine) Resume(rec Record, opts ...fwsm.Option) (*fwsm.Descriptor, error) {
	if rec.Machine != m.ID() {
		return nil, errors.Wrapf(ErrWrongMachine, "record of %q loaded into %q", rec.Machine, m.ID())
	}
	if rec.Version != m.version {
		return nil, errors.Wrapf(ErrVersionMismatch, "record version %s, machine version %s", rec.Version, m.version)
	}
	d := m.New(opts...)
	if err := d.Restore(rec.Snapshot); err != nil {
		return nil, errors.Wrapf(err, "restore instance %s", rec.Instance)
	}
	return d, nil
}
