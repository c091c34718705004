package debug

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"osdisim/ckt"
	"osdisim/models"
	"osdisim/osdi"
	"osdisim/sparse"

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

// record 二极管 d1 (rs=5) 与电流探针 vp 串联
func record(t *testing.T) Record {
	t.Helper()
	c := ckt.New(ckt.DefaultOptions())
	for _, n := range []string{"in", "out"} {
		_, err := c.Node(n)
		require.NoError(t, err)
	}
	c.MarkSetup()
	m := sparse.New(c.LastNode(), 0)

	diodes := osdi.NewModelList(models.Diode)
	dm := diodes.AddModel("dmod")
	require.NoError(t, dm.Data.SetParam("rs", 5))
	_, err := dm.AddInstance("d1", []int{1, 2})
	require.NoError(t, err)
	probes := osdi.NewModelList(models.Probe)
	_, err = probes.AddModel("probe").AddInstance("vp", []int{2, 0})
	require.NoError(t, err)

	var states osdi.StateCounter
	lists := []*osdi.ModelList{diodes, probes}
	for _, l := range lists {
		require.NoError(t, osdi.Setup(m, l, c, &states))
	}
	var r Record
	r.Init(c, lists, m)
	return r
}

func TestRecord(t *testing.T) {
	r := record(t)

	assert.Equal(t, []string{"Gnd", "diode(d1)", "iprobe(vp)"}, r.Elements)
	// d1#CI=3, vp#br=4
	assert.Equal(t, []string{"0", "in", "out", "d1#CI", "vp#br"}, r.NodeNames)
	assert.Equal(t, []bool{false, false, false, true, true}, r.Internal)
	assert.Equal(t, "current", r.NodeKinds[4])
	assert.Equal(t, [][2]int{{0, 0}, {0, 5}, {5, 0}}, r.States)
	assert.Equal(t, [][2]int{{1, 0}}, r.Nodes[1])
	assert.Equal(t, [][2]int{{1, 1}, {2, 0}}, r.Nodes[2])
	assert.Equal(t, [][2]int{{2, 1}}, r.Nodes[0])
	assert.Equal(t, 4, r.Size)
	assert.Equal(t, "Gnd", r.NodeName(0))
	assert.Equal(t, "d1#CI(3)", r.NodeName(3))

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf))
	var decoded Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, r, decoded)
}

func TestCharts(t *testing.T) {
	c := Charts{Record: record(t)}
	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf))
	html := buf.String()
	assert.Contains(t, html, "电路节点信息")
	assert.Contains(t, html, "diode(d1)")
	assert.Contains(t, html, "vp#br(4)")
}

func TestSpy(t *testing.T) {
	s := Spy{Record: record(t)}
	p, err := s.Plot()
	require.NoError(t, err)
	assert.Contains(t, p.Title.Text, "4x4")

	var buf bytes.Buffer
	require.NoError(t, s.Render(&buf))
	assert.Contains(t, buf.String(), "<svg")
}

func TestSpyEmpty(t *testing.T) {
	s := Spy{}
	var buf bytes.Buffer
	require.NoError(t, s.Render(&buf))
	assert.Contains(t, buf.String(), "<svg")
}
