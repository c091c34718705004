package osdi

import (
	"os"
	"path/filepath"
	"testing"

	"osdisim/ckt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	RegisterEntryPoints("test-fet",
		func(Handle, *Record, ckt.SimParams) InitInfo { return OK() },
		func(Handle, *Record, *Record, float64, uint32, ckt.SimParams) InitInfo { return OK() },
	)
}

const yfet = `
name: yfet
entry_points: test-fet
num_terminals: 3
nodes:
  - {name: drain, units: V, residual_units: A}
  - {name: gate}
  - {name: source}
  - {name: internal_a, reactive: true}
collapsible:
  - [3, 2]
  - {node_1: 3, node_2: gnd}
jacobian_entries:
  - {nodes: [0, 0], flags: 4}
  - {nodes: {node_1: 3, node_2: 3}, flags: 12}
num_states: 1
params:
  - {name: [vth, vt0], units: V}
  - {name: [rs], units: Ohm, kind: instance}
  - {name: [id], kind: opvar}
`

func TestParseDescriptor(t *testing.T) {
	d, err := ParseDescriptor([]byte(yfet))
	require.NoError(t, err)

	assert.Equal(t, "yfet", d.Name)
	assert.Equal(t, uint32(4), d.NumNodes)
	assert.Equal(t, uint32(3), d.NumTerminals)
	assert.Equal(t, []NodePair{{Node1: 3, Node2: 2}, {Node1: 3, Node2: Unused}}, d.Collapsible)
	assert.Equal(t, "A", d.Nodes[0].ResidualUnits)
	assert.Equal(t, NodePair{Node1: 3, Node2: 3}, d.JacobianEntries[1].Nodes)
	assert.Equal(t, Unused, d.JacobianEntries[0].ReactPtrOff)
	assert.NotEqual(t, Unused, d.JacobianEntries[1].ReactPtrOff)
	assert.Equal(t, 3, d.InstanceStates())

	assert.Equal(t, ParaKindModel, d.Params[0].Kind())
	assert.Equal(t, ParaKindInst, d.Params[1].Kind())
	assert.Equal(t, ParaKindOpvar, d.Params[2].Kind())
	assert.Positive(t, d.InstanceSize)
	assert.NotNil(t, d.SetupModel)
	assert.NotNil(t, d.SetupInstance)
}

func TestParseDescriptorErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"syntax", "name: [", "parsing descriptor"},
		{"entry points", "name: x\nentry_points: nope\n", `unknown entry points "nope"`},
		{"param kind", "name: x\nentry_points: test-fet\nparams:\n  - {name: [a], kind: global}\n", `unknown kind "global"`},
		{"pair length", "name: x\nentry_points: test-fet\ncollapsible:\n  - [1]\n", "node pair needs 2 entries"},
		{"invalid", "name: x\nentry_points: test-fet\nnum_terminals: 2\nnodes:\n  - {name: a}\n", "terminals exceed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDescriptor([]byte(tt.data))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadDescriptor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yfet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yfet), 0o644))

	d, err := LoadDescriptor(path)
	require.NoError(t, err)
	assert.Equal(t, "yfet", d.Name)

	_, err = LoadDescriptor(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading descriptor")
}

func TestRegistry(t *testing.T) {
	d, err := ParseDescriptor([]byte(yfet))
	require.NoError(t, err)
	d.Name = "registry-test-yfet"
	if _, ok := Lookup(d.Name); !ok {
		Register(d)
	}

	got, ok := Lookup("registry-test-yfet")
	require.True(t, ok)
	assert.Equal(t, d.Name, got.Name)
	assert.Contains(t, Names(), "registry-test-yfet")
	_, ok = Lookup("missing")
	assert.False(t, ok)
}
