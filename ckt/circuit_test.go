package ckt

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"osdisim/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

func TestNodeLookup(t *testing.T) {
	c := New(DefaultOptions())
	gnd, err := c.Node("gnd")
	require.NoError(t, err)
	assert.Equal(t, types.GndNode, gnd.Number)

	a, err := c.Node("a")
	require.NoError(t, err)
	again, err := c.Node("a")
	require.NoError(t, err)
	assert.Same(t, a, again)
	assert.Equal(t, 1, a.Number)
}

func TestMakeNodes(t *testing.T) {
	c := New(DefaultOptions())
	_, _ = c.Node("in")
	c.MarkSetup()
	v, err := c.MakeVolt("d1", "ci")
	require.NoError(t, err)
	i, err := c.MakeCur("p1", "br")
	require.NoError(t, err)
	assert.Equal(t, 2, v.Number)
	assert.Equal(t, "d1#ci", v.Name)
	assert.Equal(t, types.NodeCurrent, i.Kind)
	assert.Equal(t, 3, c.LastNode())
	assert.Equal(t, 1, c.PrevLastNode())
}

func TestMakeNodeLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxNodes = 1
	c := New(opts)
	_, err := c.MakeVolt("x", "a")
	require.NoError(t, err)
	_, err = c.MakeVolt("x", "b")
	assert.True(t, errors.Is(err, ErrAllocation))
}

func TestDeleteNode(t *testing.T) {
	c := New(DefaultOptions())
	_, _ = c.Node("a")
	c.MarkSetup()
	n, _ := c.MakeVolt("d1", "ci")

	require.NoError(t, c.DeleteNode(n.Number))
	require.NoError(t, c.DeleteNode(n.Number), "重复删除应为空操作")
	assert.Equal(t, 1, c.LastNode())
	_, ok := c.NodeByNumber(n.Number)
	assert.False(t, ok)

	err := c.DeleteNode(1)
	assert.True(t, errors.Is(err, ErrExternalNode))

	// 删除后重新分配得到相同编号
	n2, err := c.MakeVolt("d1", "ci")
	require.NoError(t, err)
	assert.Equal(t, n.Number, n2.Number)
}

func TestAllocStates(t *testing.T) {
	c := New(DefaultOptions())
	c.AllocStates(5)
	require.Len(t, c.States, 4)
	assert.Equal(t, 5, c.States[0].Len())
	c.AllocStates(0)
	assert.Nil(t, c.States[0])
}

func TestSimParams(t *testing.T) {
	opts := DefaultOptions()
	opts.Gmin = 1e-9
	p := New(opts).SimParams()
	g, ok := p.Get("gmin")
	require.True(t, ok)
	assert.Equal(t, 1e-9, g)
	_, ok = p.Get("missing")
	assert.False(t, ok)
	_, ok = p.GetString("cwd")
	assert.True(t, ok)
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("temp: 350\ncsc: true\n"), 0o644))
	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, 350.0, opts.Temp)
	assert.True(t, opts.CSC)
	assert.Equal(t, types.DefaultTnom, opts.Tnom, "未给出字段使用默认值")

	require.NoError(t, os.WriteFile(path, []byte("temp: -1\n"), 0o644))
	_, err = LoadOptions(path)
	assert.Error(t, err)
}
