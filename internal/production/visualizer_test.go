package production

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDefaultVisualizer_ExportDOT(t *testing.T) {
	primed := true
	m := loadPump(t, &primed)
	start, _ := m.Trigger("start")
	d := m.New()
	d.Start()
	d.MakeTrans(start)

	v := &DefaultVisualizer{}
	dot := v.ExportDOT(m, d)

	for _, want := range []string{
		"digraph fwsm {",
		`"pump.initial" [shape=point];`,
		`"pump.idle" [label="idle"];`,
		`subgraph "cluster_pump.running" {`,
		`"pump.running" [label="running" style="rounded,filled" fillcolor=lightgreen];`,
		`"pump.running.slow" [label="slow" style="rounded,filled" fillcolor=lightgreen];`,
		`"pump.running.fast" [label="fast"];`,
		`"pump.check" [label="check" shape=diamond];`,
		`"pump.initial" -> "pump.idle" [label=""];`,
		`"pump.idle" -> "pump.check" [label="start"];`,
		`"pump.check" -> "pump.running" [label="[primed]"];`,
		`"pump.check" -> "pump.idle" [label=" / prime"];`,
		`"pump.running" -> "pump.final" [label="stop"];`,
		`"pump.final" [label="" shape=doublecircle width=0.2];`,
		`"pump.running.slow" -> "pump.running.fast" [label="start"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	plain := v.ExportDOT(m, nil)
	if strings.Contains(plain, "lightgreen") {
		t.Error("no state should be highlighted without an instance")
	}
}

func TestDefaultVisualizer_ExportJSON(t *testing.T) {
	v := &DefaultVisualizer{}
	data, err := v.ExportJSON(pumpConfig())
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["id"] != "pump" {
		t.Errorf("id = %v, want pump", decoded["id"])
	}
	if _, ok := decoded["machines"].(map[string]any)["motor"]; !ok {
		t.Error("embedded machine missing from JSON")
	}
}

func TestEdgeLabel(t *testing.T) {
	tests := []struct {
		trigger, guard, action, want string
	}{
		{"go", "", "", "go"},
		{"go", "ok", "", "go [ok]"},
		{"go", "ok", "log", "go [ok] / log"},
		{"", "ok", "", "[ok]"},
		{"", "", "", ""},
	}
	for _, tt := range tests {
		got := edgeLabel(tt.trigger, transition(tt.guard, tt.action))
		if got != tt.want {
			t.Errorf("edgeLabel(%q, %q, %q) = %q, want %q", tt.trigger, tt.guard, tt.action, got, tt.want)
		}
	}
}
