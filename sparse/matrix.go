package sparse

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrNoMem 矩阵元素分配失败
var ErrNoMem = errors.New("sparse: out of memory")

// chunkSize 元素分配块大小,块内地址在矩阵生命周期内保持不变
const chunkSize = 64

// Element 矩阵元素
// 实部和虚部连续存放,交流分析使用 Imag 作为电抗部分
type Element struct {
	Row, Col int     // 行列编号(1 起始,0 为地)
	Real     float64 // 实部
	Imag     float64 // 虚部
}

type key struct{ row, col int }

// Matrix 以元素为单位的可扩展稀疏矩阵
// 元素一经创建地址不再移动,器件可以长期持有元素指针
type Matrix struct {
	size     int              // 当前矩阵阶数
	max      int              // 元素数量上限,0 表示不限制
	index    map[key]*Element // 行列到元素的索引
	elements []*Element       // 按创建顺序的元素列表
	chunk    []Element        // 当前分配块
	trash    Element          // 地行/地列写入的回收元素
}

// New 创建稀疏矩阵
//
//	size: 初始阶数,创建元素时自动扩展。
//	maxElements: 元素数量上限,超出返回 ErrNoMem。
func New(size, maxElements int) *Matrix {
	return &Matrix{
		size:  size,
		max:   maxElements,
		index: make(map[key]*Element),
	}
}

// MakeElement 查找或创建(row,col)元素
// 同一位置重复调用返回同一地址;地行或地列返回回收元素且不计入矩阵
func (m *Matrix) MakeElement(row, col int) (*Element, error) {
	if row <= 0 || col <= 0 {
		return &m.trash, nil
	}
	k := key{row, col}
	if e, ok := m.index[k]; ok {
		return e, nil
	}
	if m.max > 0 && len(m.elements) >= m.max {
		return nil, fmt.Errorf("%w: element (%d,%d) exceeds %d elements", ErrNoMem, row, col, m.max)
	}
	if len(m.chunk) == cap(m.chunk) {
		m.chunk = make([]Element, 0, chunkSize)
	}
	m.chunk = append(m.chunk, Element{Row: row, Col: col})
	e := &m.chunk[len(m.chunk)-1]
	m.index[k] = e
	m.elements = append(m.elements, e)
	m.size = max(m.size, row, col)
	return e, nil
}

// Find 查找已存在的元素,不存在返回 nil
func (m *Matrix) Find(row, col int) *Element {
	return m.index[key{row, col}]
}

// IsTrash 判断元素是否为地节点回收元素
func (m *Matrix) IsTrash(e *Element) bool { return e == &m.trash }

// Size 矩阵阶数
func (m *Matrix) Size() int { return m.size }

// NonZeroCount 已创建的元素数量
func (m *Matrix) NonZeroCount() int { return len(m.elements) }

// Elements 按创建顺序返回全部元素
func (m *Matrix) Elements() []*Element {
	return append([]*Element(nil), m.elements...)
}

// Get 获取元素实部,未创建的位置返回 0
func (m *Matrix) Get(row, col int) float64 {
	if e := m.Find(row, col); e != nil {
		return e.Real
	}
	return 0
}

// ConstMul 所有元素乘以常数
func (m *Matrix) ConstMul(c float64) {
	for _, e := range m.elements {
		e.Real *= c
		e.Imag *= c
	}
}

// Dense 转换为稠密矩阵(实部)
func (m *Matrix) Dense() *mat.Dense {
	if m.size == 0 {
		return nil
	}
	d := mat.NewDense(m.size, m.size, nil)
	for _, e := range m.elements {
		d.Set(e.Row-1, e.Col-1, e.Real)
	}
	return d
}
