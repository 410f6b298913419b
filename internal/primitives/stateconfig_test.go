package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		state   *StateConfig
		wantErr bool
	}{
		{name: "primitive", state: NewStateConfig("idle", Primitive)},
		{name: "default kind", state: &StateConfig{Name: "idle"}},
		{name: "composite without machine", state: NewStateConfig("host", Composite)},
		{name: "composite with machine", state: NewStateConfig("host", Primitive).WithEmbed("sub")},
		{name: "empty name", state: NewStateConfig("", Primitive), wantErr: true},
		{name: "bad name", state: NewStateConfig("a b", Primitive), wantErr: true},
		{name: "unknown kind", state: NewStateConfig("x", "history"), wantErr: true},
		{
			name:    "primitive with machine",
			state:   &StateConfig{Name: "x", Kind: Primitive, Embed: "sub"},
			wantErr: true,
		},
		{
			name:    "transition without target",
			state:   NewStateConfig("x", Primitive).Transition("go", ""),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.state.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStateConfigFluent(t *testing.T) {
	t.Parallel()

	s := NewStateConfig("busy", Primitive).
		WithEntry("start").
		WithDo("step").
		WithExit("stop").
		Transition("done", "idle").
		Transition("fail", "error", TransitionConfig{Guard: "fatal", Action: "report"})

	assert.Equal(t, "start", s.Entry)
	assert.Equal(t, "step", s.Do)
	assert.Equal(t, "stop", s.Exit)
	require.Len(t, s.On, 2)
	assert.Equal(t, TransitionConfig{Trigger: "done", Target: "idle"}, s.On[0])
	assert.Equal(t, TransitionConfig{Trigger: "fail", Target: "error", Guard: "fatal", Action: "report"}, s.On[1])
}

func TestChoiceConfigValidate(t *testing.T) {
	t.Parallel()

	c := &ChoiceConfig{Name: "pick"}
	assert.Error(t, c.Validate())

	c.Branch("a", "ok", "").Branch(FinalTarget, "", "")
	assert.NoError(t, c.Validate())

	c.Branch("", "", "")
	assert.Error(t, c.Validate())
}
