package models

import (
	"errors"
	"os"
	"testing"

	"osdisim/ckt"
	"osdisim/osdi"
	"osdisim/sparse"
	"osdisim/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.PanicLevel)
	}
	os.Exit(m.Run())
}

type bench struct {
	c     *ckt.Circuit
	m     *sparse.Matrix
	list  *osdi.ModelList
	model *osdi.Model
}

func newBench(t *testing.T, d *osdi.Descriptor, nodes ...string) *bench {
	t.Helper()
	c := ckt.New(ckt.DefaultOptions())
	for _, n := range nodes {
		_, err := c.Node(n)
		require.NoError(t, err)
	}
	c.MarkSetup()
	list := osdi.NewModelList(d)
	return &bench{c: c, m: sparse.New(c.LastNode(), 0), list: list, model: list.AddModel(d.Name + "_model")}
}

func (b *bench) add(t *testing.T, name string, terminals ...int) *osdi.Instance {
	t.Helper()
	inst, err := b.model.AddInstance(name, terminals)
	require.NoError(t, err)
	return inst
}

func (b *bench) setup() error {
	var states osdi.StateCounter
	return osdi.Setup(b.m, b.list, b.c, &states)
}

func TestRegistered(t *testing.T) {
	for _, d := range []*osdi.Descriptor{Diode, Mos3, Probe} {
		got, ok := osdi.Lookup(d.Name)
		require.True(t, ok, d.Name)
		assert.Same(t, d, got)
	}
	assert.Subset(t, osdi.Names(), []string{"diode", "nmos3", "iprobe"})
	assert.Equal(t, 5, Diode.InstanceStates())
	assert.Equal(t, 6, Mos3.InstanceStates())
	assert.Equal(t, 0, Probe.InstanceStates())
}

func TestDiodeCollapsesWithoutSeriesResistance(t *testing.T) {
	b := newBench(t, Diode, "a", "c")
	inst := b.add(t, "d1", 1, 2)

	require.NoError(t, b.setup())
	assert.True(t, inst.Data.Collapsed(0))
	assert.Equal(t, []uint32{1, 2, 2}, inst.Data.NodeMappings())
	assert.Equal(t, 2, b.c.LastNode())
	// (1,1) (1,2) (2,1) (2,2)
	assert.Equal(t, 4, b.m.NonZeroCount())
}

func TestDiodeSeriesResistance(t *testing.T) {
	b := newBench(t, Diode, "a", "c")
	require.NoError(t, b.model.Data.SetParam("rs", 5))
	inst := b.add(t, "d1", 1, 0)

	require.NoError(t, b.setup())
	assert.False(t, inst.Data.Collapsed(0))
	assert.Equal(t, []uint32{1, 0, 3}, inst.Data.NodeMappings())
	n, ok := b.c.NodeByNumber(3)
	require.True(t, ok)
	assert.Equal(t, "d1#CI", n.Name)
}

func TestDiodeTemperature(t *testing.T) {
	b := newBench(t, Diode, "a")
	nominal := b.add(t, "d1", 1, 0)
	hot := b.add(t, "d2", 1, 0)
	hot.SetDt(50)
	require.NoError(t, b.model.Data.SetParam("is", 2e-14))
	require.NoError(t, nominal.Data.SetParam("area", 3))

	require.NoError(t, b.setup())
	vt, _, err := nominal.Data.Param("vt")
	require.NoError(t, err)
	assert.InDelta(t, 0.025865, vt, 1e-5)
	isT, _, err := nominal.Data.Param("is_t")
	require.NoError(t, err)
	assert.InDelta(t, 6e-14, isT, 1e-20)

	hotIs, _, err := hot.Data.Param("is_t")
	require.NoError(t, err)
	assert.Greater(t, hotIs, 100*2e-14)
}

func TestDiodeParameterBounds(t *testing.T) {
	b := newBench(t, Diode, "a")
	require.NoError(t, b.model.Data.SetParam("is", -1))
	require.NoError(t, b.model.Data.SetParam("n", 0))
	inst := b.add(t, "d1", 1, 0)

	err := b.setup()
	require.ErrorIs(t, err, osdi.ErrPrivate)
	var se *osdi.SetupError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "diode_model", se.Model)
	names := []string{}
	for _, pe := range se.Errors {
		names = append(names, pe.Param)
	}
	assert.Equal(t, []string{"is", "n"}, names)
	assert.False(t, inst.Bound())
}

func TestMos3(t *testing.T) {
	b := newBench(t, Mos3, "d", "g", "s")
	require.NoError(t, b.model.Data.SetParam("kp", 1e-4))
	inst := b.add(t, "m1", 1, 2, 3)
	require.NoError(t, inst.Data.SetParam("w", 10e-6))
	require.NoError(t, inst.Data.SetParam("l", 2e-6))

	require.NoError(t, b.setup())
	assert.Equal(t, []uint32{1, 2, 3, 3}, inst.Data.NodeMappings())
	beta, _, err := inst.Data.Param("beta")
	require.NoError(t, err)
	assert.InDelta(t, 5e-4, beta, 1e-12)
	vth, _, err := inst.Data.Param("vth")
	require.NoError(t, err)
	assert.InDelta(t, 0.7, vth, 1e-12)

	// 栅极电容写入虚部
	g := b.m.Find(2, 2)
	require.NotNil(t, g)
	*inst.Data.JacobianReact(3) = 1e-15
	assert.Equal(t, 1e-15, g.Imag)
}

func TestMos3SourceResistance(t *testing.T) {
	b := newBench(t, Mos3, "d", "g", "s")
	require.NoError(t, b.model.Data.SetParam("rs", 1))
	inst := b.add(t, "m1", 1, 2, 3)

	require.NoError(t, b.setup())
	assert.Equal(t, []uint32{1, 2, 3, 4}, inst.Data.NodeMappings())
	assert.Equal(t, 6, inst.Data.Descriptor().InstanceStates())
}

func TestMos3InstanceBounds(t *testing.T) {
	b := newBench(t, Mos3, "d", "g", "s")
	bad := b.add(t, "m1", 1, 2, 3)
	require.NoError(t, bad.Data.SetParam("l", 0))
	good := b.add(t, "m2", 1, 2, 3)

	err := b.setup()
	assert.ErrorIs(t, err, osdi.ErrPrivate)
	assert.ErrorContains(t, err, "instance m1")
	assert.ErrorContains(t, err, "(l)")
	assert.False(t, bad.Bound())
	assert.True(t, good.Bound())
}

func TestProbe(t *testing.T) {
	b := newBench(t, Probe, "in", "out")
	inst := b.add(t, "vp", 1, 2)

	require.NoError(t, b.setup())
	br := int(inst.Data.NodeMapping(2))
	assert.Equal(t, 3, br)
	n, ok := b.c.NodeByNumber(br)
	require.True(t, ok)
	assert.Equal(t, types.NodeCurrent, n.Kind)
	assert.Equal(t, "vp#br", n.Name)
	assert.Equal(t, 4, b.m.NonZeroCount())
	for _, rc := range [][2]int{{1, 3}, {2, 3}, {3, 1}, {3, 2}} {
		assert.NotNil(t, b.m.Find(rc[0], rc[1]))
	}
}
