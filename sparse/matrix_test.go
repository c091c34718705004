package sparse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeElementIdempotent(t *testing.T) {
	m := New(0, 0)
	a, err := m.MakeElement(1, 2)
	require.NoError(t, err)
	b, err := m.MakeElement(1, 2)
	require.NoError(t, err)
	assert.Same(t, a, b, "同一位置应返回同一元素")
	assert.Equal(t, 1, m.NonZeroCount())
	assert.Equal(t, 2, m.Size(), "矩阵应自动扩展")
}

func TestMakeElementGround(t *testing.T) {
	m := New(3, 0)
	e, err := m.MakeElement(0, 2)
	require.NoError(t, err)
	assert.True(t, m.IsTrash(e))
	e2, err := m.MakeElement(3, 0)
	require.NoError(t, err)
	assert.Same(t, e, e2)
	assert.Equal(t, 0, m.NonZeroCount(), "地行地列不应计入矩阵")
}

func TestMakeElementStableAddress(t *testing.T) {
	m := New(0, 0)
	first, err := m.MakeElement(1, 1)
	require.NoError(t, err)
	first.Real = 4
	// 超过一个分配块
	for i := 2; i < 3*chunkSize; i++ {
		_, err := m.MakeElement(i, i)
		require.NoError(t, err)
	}
	assert.Same(t, first, m.Find(1, 1))
	assert.Equal(t, 4.0, m.Get(1, 1))
}

func TestMakeElementNoMem(t *testing.T) {
	m := New(0, 2)
	_, err := m.MakeElement(1, 1)
	require.NoError(t, err)
	_, err = m.MakeElement(2, 2)
	require.NoError(t, err)
	_, err = m.MakeElement(2, 2)
	require.NoError(t, err, "已有元素不受上限影响")
	_, err = m.MakeElement(1, 2)
	assert.True(t, errors.Is(err, ErrNoMem))
}

func TestConstMul(t *testing.T) {
	m := New(0, 0)
	a, _ := m.MakeElement(1, 1)
	b, _ := m.MakeElement(2, 1)
	g, _ := m.MakeElement(0, 1)
	a.Real, a.Imag = 2, -1
	b.Real = 3
	g.Real = 7
	m.ConstMul(0.5)
	assert.Equal(t, 1.0, a.Real)
	assert.Equal(t, -0.5, a.Imag)
	assert.Equal(t, 1.5, b.Real)
	assert.Equal(t, 7.0, g.Real, "回收元素不参与缩放")
}

func TestDense(t *testing.T) {
	m := New(0, 0)
	e, _ := m.MakeElement(2, 1)
	e.Real = 5
	d := m.Dense()
	r, c := d.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 5.0, d.At(1, 0))
	assert.Equal(t, 0.0, d.At(0, 0))
}
