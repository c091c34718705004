package sparse

import (
	"errors"
	"fmt"
	"sort"
)

// ErrPermutation 列排列无效
var ErrPermutation = errors.New("sparse: invalid column permutation")

// Bind 元素在列压缩存储中的绑定
type Bind struct {
	Row, Col   int      // 逻辑位置
	Index      int      // 在 Ax 中的下标
	COO        *Element // 原始元素
	CSC        *float64 // 实数存储位置
	CSCComplex *float64 // 复数存储实部位置
	CSCImag    *float64 // 复数存储虚部位置,紧随实部
}

// CSC 列压缩存储(CSC)
// 由 Matrix 的元素重新排列得到,供重排序求解器使用。
// 每次 Refresh/Reorder 都会重新分配存储,之前解析得到的地址失效。
type CSC struct {
	matrix    *Matrix
	perm      []int     // 新列位置 -> 原列(0 起始)
	Ap        []int     // 列指针
	Ai        []int     // 行索引(0 起始)
	Ax        []float64 // 实数值
	AxComplex []float64 // 复数值,按实部/虚部交替存放
	binds     []Bind    // 按(Row,Col)排序的绑定表
}

// NewCSC 由稀疏矩阵构建列压缩存储
func NewCSC(m *Matrix) *CSC {
	c := &CSC{matrix: m}
	c.Refresh()
	return c
}

// Refresh 按当前列排列重新压缩存储并重建绑定表
func (c *CSC) Refresh() {
	n := c.matrix.Size()
	if len(c.perm) != n {
		c.perm = make([]int, n)
		for i := range c.perm {
			c.perm[i] = i
		}
	}
	// 原列 -> 新列位置
	pos := make([]int, n)
	for p, col := range c.perm {
		pos[col] = p
	}
	list := c.matrix.Elements()
	sort.Slice(list, func(i, j int) bool {
		ci, cj := pos[list[i].Col-1], pos[list[j].Col-1]
		if ci != cj {
			return ci < cj
		}
		return list[i].Row < list[j].Row
	})
	nz := len(list)
	c.Ap = make([]int, n+1)
	c.Ai = make([]int, nz)
	c.Ax = make([]float64, nz)
	c.AxComplex = make([]float64, 2*nz)
	c.binds = make([]Bind, nz)
	for k, e := range list {
		c.Ap[pos[e.Col-1]+1]++
		c.Ai[k] = e.Row - 1
		c.Ax[k] = e.Real
		c.AxComplex[2*k] = e.Real
		c.AxComplex[2*k+1] = e.Imag
		c.binds[k] = Bind{
			Row:        e.Row,
			Col:        e.Col,
			Index:      k,
			COO:        e,
			CSC:        &c.Ax[k],
			CSCComplex: &c.AxComplex[2*k],
			CSCImag:    &c.AxComplex[2*k+1],
		}
	}
	for i := 0; i < n; i++ {
		c.Ap[i+1] += c.Ap[i]
	}
	sort.Slice(c.binds, func(i, j int) bool {
		return less(c.binds[i].Row, c.binds[i].Col, c.binds[j].Row, c.binds[j].Col)
	})
}

// Reorder 设置新的列排列并重新压缩
// perm[p] 为第 p 个存储列对应的原始列(0 起始)
func (c *CSC) Reorder(perm []int) error {
	n := c.matrix.Size()
	if len(perm) != n {
		return fmt.Errorf("%w: length %d, want %d", ErrPermutation, len(perm), n)
	}
	seen := make([]bool, n)
	for _, col := range perm {
		if col < 0 || col >= n || seen[col] {
			return fmt.Errorf("%w: %v", ErrPermutation, perm)
		}
		seen[col] = true
	}
	c.perm = append([]int(nil), perm...)
	c.Refresh()
	return nil
}

// Resolve 二分查找(row,col)的绑定
func (c *CSC) Resolve(row, col int) (*Bind, bool) {
	i := sort.Search(len(c.binds), func(i int) bool {
		return !less(c.binds[i].Row, c.binds[i].Col, row, col)
	})
	if i < len(c.binds) && c.binds[i].Row == row && c.binds[i].Col == col {
		return &c.binds[i], true
	}
	return nil, false
}

// Nz 非零元素数量
func (c *CSC) Nz() int { return len(c.binds) }

// Get 获取(row,col)实数存储值
func (c *CSC) Get(row, col int) float64 {
	if b, ok := c.Resolve(row, col); ok {
		return *b.CSC
	}
	return 0
}

// GetComplex 获取(row,col)复数存储值
func (c *CSC) GetComplex(row, col int) complex128 {
	if b, ok := c.Resolve(row, col); ok {
		return complex(c.AxComplex[2*b.Index], c.AxComplex[2*b.Index+1])
	}
	return 0
}

func less(r1, c1, r2, c2 int) bool {
	if r1 != r2 {
		return r1 < r2
	}
	return c1 < c2
}
