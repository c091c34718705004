package ckt

import (
	"errors"
	"fmt"
	"sort"

	"osdisim/types"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrAllocation 节点分配失败
	ErrAllocation = errors.New("ckt: node allocation failed")
	// ErrExternalNode 试图删除外部节点
	ErrExternalNode = errors.New("ckt: cannot delete external node")
)

// Node 电路节点
type Node struct {
	Number int            // 全局方程编号,0 为地
	Name   string         // 节点名称
	Kind   types.NodeKind // 节点类型
}

// Circuit 电路上下文
// 节点编号单调分配,器件按声明顺序依次建立拓扑
type Circuit struct {
	Options   Options
	nodes     map[int]*Node    // 编号 -> 节点
	byName    map[string]*Node // 名称 -> 节点
	last      int              // 当前最大节点编号
	prevLast  int              // MarkSetup 时记录的最大节点编号
	NumStates int              // 状态数量
	States    []*mat.VecDense  // 状态向量
}

// New 创建电路,自动建立地节点
func New(opts Options) *Circuit {
	gnd := &Node{Number: types.GndNode, Name: "0", Kind: types.NodeVoltage}
	return &Circuit{
		Options: opts,
		nodes:   map[int]*Node{types.GndNode: gnd},
		byName:  map[string]*Node{"0": gnd},
	}
}

// Temp 电路温度
func (c *Circuit) Temp() float64 { return c.Options.Temp }

// Node 查找或创建外部电位节点,"0" 和 "gnd" 为地
func (c *Circuit) Node(name string) (*Node, error) {
	if name == "gnd" {
		name = "0"
	}
	if n, ok := c.byName[name]; ok {
		return n, nil
	}
	return c.newNode(name, types.NodeVoltage)
}

// MakeVolt 为器件创建内部电位节点
func (c *Circuit) MakeVolt(owner, name string) (*Node, error) {
	return c.newNode(owner+"#"+name, types.NodeVoltage)
}

// MakeCur 为器件创建内部电流支路节点
func (c *Circuit) MakeCur(owner, name string) (*Node, error) {
	return c.newNode(owner+"#"+name, types.NodeCurrent)
}

func (c *Circuit) newNode(name string, kind types.NodeKind) (*Node, error) {
	if c.Options.MaxNodes > 0 && len(c.nodes)-1 >= c.Options.MaxNodes {
		return nil, fmt.Errorf("%w: %s exceeds %d nodes", ErrAllocation, name, c.Options.MaxNodes)
	}
	if _, ok := c.byName[name]; ok {
		return nil, fmt.Errorf("%w: duplicate node %s", ErrAllocation, name)
	}
	c.last++
	n := &Node{Number: c.last, Name: name, Kind: kind}
	c.nodes[n.Number] = n
	c.byName[name] = n
	logrus.WithFields(logrus.Fields{"node": name, "number": n.Number, "kind": kind}).Debug("node created")
	return n, nil
}

// MarkSetup 记录当前最大节点编号,之后创建的节点视为内部节点
func (c *Circuit) MarkSetup() { c.prevLast = c.last }

// PrevLastNode MarkSetup 时的最大节点编号
func (c *Circuit) PrevLastNode() int { return c.prevLast }

// LastNode 当前最大节点编号
func (c *Circuit) LastNode() int { return c.last }

// DeleteNode 删除内部节点
// 重复删除不做任何处理;外部节点不能删除
func (c *Circuit) DeleteNode(num int) error {
	if num <= c.prevLast {
		return fmt.Errorf("%w: %d", ErrExternalNode, num)
	}
	n, ok := c.nodes[num]
	if !ok {
		return nil
	}
	delete(c.nodes, num)
	delete(c.byName, n.Name)
	for c.last > 0 {
		if _, ok := c.nodes[c.last]; ok {
			break
		}
		c.last--
	}
	logrus.WithFields(logrus.Fields{"node": n.Name, "number": num}).Debug("node deleted")
	return nil
}

// NodeByNumber 按编号查找节点
func (c *Circuit) NodeByNumber(num int) (*Node, bool) {
	n, ok := c.nodes[num]
	return n, ok
}

// Nodes 按编号排序的全部节点(含地)
func (c *Circuit) Nodes() []*Node {
	list := make([]*Node, 0, len(c.nodes))
	for _, n := range c.nodes {
		list = append(list, n)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Number < list[j].Number })
	return list
}

// AllocStates 按状态数量分配状态向量
func (c *Circuit) AllocStates(numStates int) {
	c.NumStates = numStates
	c.States = make([]*mat.VecDense, c.Options.MaxOrder+2)
	if numStates == 0 {
		return
	}
	for i := range c.States {
		c.States[i] = mat.NewVecDense(numStates, nil)
	}
}
