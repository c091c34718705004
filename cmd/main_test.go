package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"osdisim/debug"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bridge = `
models:
  - {name: d, device: diode, params: {rs: 1}}
instances:
  - {name: d1, model: d, nodes: [a, b]}
  - {name: d2, model: d, nodes: [b, gnd]}
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSetupCommand(t *testing.T) {
	dir := t.TempDir()
	deckFile := filepath.Join(dir, "bridge.yaml")
	require.NoError(t, os.WriteFile(deckFile, []byte(bridge), 0o644))
	jsonFile := filepath.Join(dir, "record.json")
	chartFile := filepath.Join(dir, "chart.html")
	spyFile := filepath.Join(dir, "spy.svg")

	out, err := run(t, "setup", "--deck", deckFile, "--csc",
		"--json", jsonFile, "--chart", chartFile, "--spy", spyFile, "--temp", "320,350")
	require.NoError(t, err)
	assert.Contains(t, out, "nodes: 4 (internal 2)")
	assert.Contains(t, out, "states: 10")
	assert.Contains(t, out, "diode d1: nodes [1 2 3] state 0")

	data, err := os.ReadFile(jsonFile)
	require.NoError(t, err)
	var r debug.Record
	require.NoError(t, json.Unmarshal(data, &r))
	assert.Equal(t, []string{"Gnd", "diode(d1)", "diode(d2)"}, r.Elements)

	for _, f := range []string{chartFile, spyFile} {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestSetupCommandErrors(t *testing.T) {
	_, err := run(t, "setup")
	assert.ErrorContains(t, err, `required flag(s) "deck" not set`)

	_, err = run(t, "setup", "--deck", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = run(t, "devices", "--log", "loud")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestDevicesCommand(t *testing.T) {
	out, err := run(t, "devices")
	require.NoError(t, err)
	assert.Contains(t, out, "diode: 3 nodes (2 terminals), 7 jacobian entries, 5 states")
	assert.Contains(t, out, "iprobe: 3 nodes (2 terminals)")
	assert.Contains(t, out, "cj0|cjo")
}
