package osdi

import (
	"testing"

	"osdisim/sparse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bound 以映射 [1,2,3,3] 建立的 fet3 实例
func bound(t *testing.T) (*Descriptor, *Record, *sparse.Matrix) {
	t.Helper()
	d := newFakeDevice().fet3()
	inst := NewInstanceRecord(d)
	for i, v := range []uint32{1, 2, 3, 3} {
		inst.SetNodeMapping(uint32(i), v)
	}
	m := sparse.New(3, 0)
	require.NoError(t, BindJacobian(m, d, inst))
	return d, inst, m
}

func TestBindJacobian(t *testing.T) {
	d, inst, m := bound(t)

	// (1,1) (1,3) (3,3) (3,1) (2,2)
	assert.Equal(t, 5, m.NonZeroCount())
	for i, e := range d.JacobianEntries {
		row := int(inst.NodeMapping(e.Nodes.Node1))
		col := int(inst.NodeMapping(e.Nodes.Node2))
		elt := m.Find(row, col)
		require.NotNil(t, elt)
		assert.Same(t, &elt.Real, inst.JacobianResist(uint32(i)))
		if e.Flags&JacobianEntryReact != 0 {
			assert.Same(t, &elt.Imag, inst.JacobianReact(uint32(i)))
		} else {
			assert.Nil(t, inst.JacobianReact(uint32(i)))
		}
	}
}

func TestBindJacobianIdempotent(t *testing.T) {
	d, inst, m := bound(t)
	first := make([]*float64, len(d.JacobianEntries))
	for i := range first {
		first[i] = inst.JacobianResist(uint32(i))
	}

	require.NoError(t, BindJacobian(m, d, inst))
	assert.Equal(t, 5, m.NonZeroCount())
	for i := range first {
		assert.Same(t, first[i], inst.JacobianResist(uint32(i)))
	}
}

func TestBindJacobianSharedSlot(t *testing.T) {
	d, inst, m := bound(t)
	// 两个实例写入同一元素
	other := NewInstanceRecord(d)
	for i, v := range []uint32{1, 2, 3, 3} {
		other.SetNodeMapping(uint32(i), v)
	}
	require.NoError(t, BindJacobian(m, d, other))

	*inst.JacobianResist(0) += 1
	*other.JacobianResist(0) += 2
	assert.Equal(t, 3.0, m.Get(1, 1))
}

func TestBindJacobianGround(t *testing.T) {
	d := newFakeDevice().fet3()
	inst := NewInstanceRecord(d)
	for i, v := range []uint32{0, 2, 3, 3} {
		inst.SetNodeMapping(uint32(i), v)
	}
	m := sparse.New(3, 0)
	require.NoError(t, BindJacobian(m, d, inst))

	// 涉及地的元素写入回收元素,不计入矩阵
	assert.Equal(t, 2, m.NonZeroCount())
	p := inst.JacobianResist(0)
	require.NotNil(t, p)
	*p = 42
	assert.Equal(t, 0.0, m.Get(3, 3))
}

func TestBindJacobianNoMem(t *testing.T) {
	d := newFakeDevice().fet3()
	inst := NewInstanceRecord(d)
	for i, v := range []uint32{1, 2, 3, 4} {
		inst.SetNodeMapping(uint32(i), v)
	}
	m := sparse.New(4, 2)
	err := BindJacobian(m, d, inst)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMem)
	assert.ErrorIs(t, err, sparse.ErrNoMem)
	assert.Equal(t, 2, m.NonZeroCount())
}
