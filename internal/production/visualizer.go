package production

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/comalice/fwsm"
	"github.com/comalice/fwsm/internal/core"
	"github.com/comalice/fwsm/internal/primitives"
)

// DefaultVisualizer renders machines as Graphviz DOT. Embedded machines are
// drawn as clusters inside their composite states.
type DefaultVisualizer struct{}

// ExportDOT generates DOT source for m. When d is an instance of m, its
// active states are highlighted.
func (v *DefaultVisualizer) ExportDOT(m *core.Machine, d *fwsm.Descriptor) string {
	var buf bytes.Buffer
	buf.WriteString(`digraph fwsm {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)
	var active []string
	if d != nil {
		active = m.ActivePath(d)
	}
	renderMachine(&buf, m.Config(), m.ID(), active, "  ")
	buf.WriteString("}\n")
	return buf.String()
}

// ExportJSON serializes the machine configuration.
func (v *DefaultVisualizer) ExportJSON(cfg *primitives.MachineConfig) ([]byte, error) {
	return json.MarshalIndent(cfg, "", "  ")
}

func renderMachine(buf *bytes.Buffer, cfg *primitives.MachineConfig, prefix string, active []string, indent string) {
	node := func(name string) string {
		if name == primitives.FinalTarget {
			return prefix + ".final"
		}
		return prefix + "." + name
	}
	var cur string
	if len(active) > 0 {
		cur = active[0]
	}

	initial := prefix + ".initial"
	fmt.Fprintf(buf, "%s%q [shape=point];\n", indent, initial)
	for _, s := range cfg.States {
		style := ""
		if s.Name == cur {
			style = ` style="rounded,filled" fillcolor=lightgreen`
		}
		sub, ok := cfg.Machines[s.Embed]
		if !ok {
			fmt.Fprintf(buf, "%s%q [label=%q%s];\n", indent, node(s.Name), s.Name, style)
			continue
		}
		fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, "cluster_"+node(s.Name))
		fmt.Fprintf(buf, "%s  label=%q;\n", indent, s.Name+" ("+s.Embed+")")
		fmt.Fprintf(buf, "%s  %q [label=%q%s];\n", indent, node(s.Name), s.Name, style)
		var inner []string
		if s.Name == cur {
			inner = active[1:]
		}
		renderMachine(buf, sub, node(s.Name), inner, indent+"  ")
		fmt.Fprintf(buf, "%s}\n", indent)
	}
	for _, c := range cfg.Choices {
		fmt.Fprintf(buf, "%s%q [label=%q shape=diamond];\n", indent, node(c.Name), c.Name)
	}

	final := false
	edge := func(from string, t primitives.TransitionConfig, label string) {
		if t.Target == primitives.FinalTarget {
			final = true
		}
		fmt.Fprintf(buf, "%s%q -> %q [label=%q];\n", indent, from, node(t.Target), label)
	}
	edge(initial, cfg.Initial, edgeLabel("", cfg.Initial))
	for _, s := range cfg.States {
		for _, t := range s.On {
			trigger := t.Trigger
			if t.IsExecute() {
				trigger = primitives.ExecuteTrigger
			}
			edge(node(s.Name), t, edgeLabel(trigger, t))
		}
	}
	for _, c := range cfg.Choices {
		for _, t := range c.Branches {
			edge(node(c.Name), t, edgeLabel("", t))
		}
	}
	if final {
		fmt.Fprintf(buf, "%s%q [label=\"\" shape=doublecircle width=0.2];\n", indent, node(primitives.FinalTarget))
	}
}

// edgeLabel formats "trigger [guard] / action".
func edgeLabel(trigger string, t primitives.TransitionConfig) string {
	label := trigger
	if t.Guard != "" {
		if label != "" {
			label += " "
		}
		label += "[" + t.Guard + "]"
	}
	if t.Action != "" {
		label += " / " + t.Action
	}
	return label
}
