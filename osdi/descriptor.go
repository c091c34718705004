// Package osdi 将按描述符定义的器件模型接入电路:
// 实例化、节点折叠、全局节点分配、状态分配以及雅可比矩阵元素绑定。
package osdi

import (
	"fmt"

	"osdisim/ckt"
	"osdisim/types"
)

// Unused 空索引:折叠到地、无电抗指针、无残差存储
const Unused = types.UnusedIndex

// 入口函数返回标志
const (
	EvalRetFlagLim    uint32 = 1 << iota // 发生限幅
	EvalRetFlagFatal                     // 不可恢复错误
	EvalRetFlagFinish                    // 请求结束仿真
	EvalRetFlagStop                      // 请求停止仿真
)

// 初始化错误码
const (
	InitErrOutOfBounds uint32 = 1 // 参数越界
)

// 参数标志
const (
	ParaTyMask    uint32 = 3
	ParaTyReal    uint32 = 0
	ParaTyInt     uint32 = 1
	ParaTyStr     uint32 = 2
	ParaKindMask  uint32 = 3 << 30
	ParaKindModel uint32 = 0 << 30
	ParaKindInst  uint32 = 1 << 30
	ParaKindOpvar uint32 = 2 << 30
)

// 雅可比元素标志
const (
	JacobianEntryResistConst uint32 = 1 << iota
	JacobianEntryReactConst
	JacobianEntryResist
	JacobianEntryReact
)

// 入口函数句柄类型
const (
	HandleModel     = 1 // setup_model
	HandleInstance  = 2 // setup_instance
	HandleModelTemp = 4 // 温度更新时的 setup_model
)

// Handle 传给入口函数的调用方信息
type Handle struct {
	Kind int    // 调用类型
	Name string // 模型或实例名称
}

// NodePair 节点对
type NodePair struct {
	Node1 uint32 `yaml:"node_1"`
	Node2 uint32 `yaml:"node_2"`
}

// JacobianEntry 雅可比元素:方程节点、未知量节点以及电抗指针在实例中的偏移
type JacobianEntry struct {
	Nodes       NodePair `yaml:"nodes"`
	ReactPtrOff uint32   `yaml:"react_ptr_off"`
	Flags       uint32   `yaml:"flags"`
}

// Node 器件节点
type Node struct {
	Name              string `yaml:"name"`
	Units             string `yaml:"units"`
	ResidualUnits     string `yaml:"residual_units"`
	ResistResidualOff uint32 `yaml:"resist_residual_off"`
	ReactResidualOff  uint32 `yaml:"react_residual_off"`
	IsFlow            bool   `yaml:"is_flow"`
	Reactive          bool   `yaml:"reactive"` // Layout 为其分配电抗残差
}

// ParamOpvar 参数或工作点变量
type ParamOpvar struct {
	Name        []string `yaml:"name"` // 第一个为主名称,其余为别名
	Description string   `yaml:"description"`
	Units       string   `yaml:"units"`
	Flags       uint32   `yaml:"flags"`
	Offset      uint32   `yaml:"offset"`       // float64 值的偏移
	GivenOffset uint32   `yaml:"given_offset"` // 是否给定标志的偏移
}

// Kind 参数归属(模型/实例/工作点变量)
func (p *ParamOpvar) Kind() uint32 { return p.Flags & ParaKindMask }

// SetupModelFunc 模型初始化入口
type SetupModelFunc func(handle Handle, model *Record, params ckt.SimParams) InitInfo

// SetupInstanceFunc 实例初始化入口,负责设置节点折叠标志
type SetupInstanceFunc func(handle Handle, inst, model *Record, temp float64, connectedTerminals uint32, params ckt.SimParams) InitInfo

// Descriptor 器件模型描述符
// 描述实例/模型数据的内存布局以及入口函数,加载后只读
type Descriptor struct {
	Name            string
	NumNodes        uint32
	NumTerminals    uint32
	Nodes           []Node
	Collapsible     []NodePair
	JacobianEntries []JacobianEntry
	NumStates       uint32
	Params          []ParamOpvar

	NodeMappingOffset       uint32
	CollapsedOffset         uint32
	StateIdxOffset          uint32
	JacobianPtrResistOffset uint32
	InstanceSize            uint32
	ModelSize               uint32

	SetupModel    SetupModelFunc
	SetupInstance SetupInstanceFunc
}

// NumCollapsible 可折叠节点对数量
func (d *Descriptor) NumCollapsible() uint32 { return uint32(len(d.Collapsible)) }

// NumJacobianEntries 雅可比元素数量
func (d *Descriptor) NumJacobianEntries() uint32 { return uint32(len(d.JacobianEntries)) }

// InstanceStates 每个实例占用的状态数量:声明的状态加上每个电抗残差节点两个
func (d *Descriptor) InstanceStates() int {
	n := int(d.NumStates)
	for _, node := range d.Nodes {
		if node.ReactResidualOff != Unused {
			n += 2
		}
	}
	return n
}

// ParamIndex 按名称或别名查找参数
func (d *Descriptor) ParamIndex(name string) (int, bool) {
	for i := range d.Params {
		for _, n := range d.Params[i].Name {
			if n == name {
				return i, true
			}
		}
	}
	return -1, false
}

// ParamName 参数主名称,越界返回编号
func (d *Descriptor) ParamName(id uint32) string {
	if int(id) < len(d.Params) && len(d.Params[id].Name) > 0 {
		return d.Params[id].Name[0]
	}
	return fmt.Sprintf("#%d", id)
}

// Layout 按声明计算全部偏移
// 实例布局: node_mapping | collapsed | state_idx | jacobian_ptr_resist | 电抗指针 | 残差 | 参数 | 给定标志
func (d *Descriptor) Layout() {
	off := uint32(0)
	d.NodeMappingOffset = off
	off += 4 * d.NumNodes
	d.CollapsedOffset = off
	off += d.NumCollapsible()
	off = align(off, 4)
	d.StateIdxOffset = off
	off += 4 * d.NumStates
	off = align(off, 8)
	d.JacobianPtrResistOffset = off
	off += 8 * d.NumJacobianEntries()
	for i := range d.JacobianEntries {
		if d.JacobianEntries[i].Flags&JacobianEntryReact != 0 {
			d.JacobianEntries[i].ReactPtrOff = off
			off += 8
		} else {
			d.JacobianEntries[i].ReactPtrOff = Unused
		}
	}
	for i := range d.Nodes {
		d.Nodes[i].ResistResidualOff = off
		off += 8
		if d.Nodes[i].Reactive {
			d.Nodes[i].ReactResidualOff = off
			off += 8
		} else {
			d.Nodes[i].ReactResidualOff = Unused
		}
	}
	modelOff := uint32(0)
	for i := range d.Params {
		p := &d.Params[i]
		if p.Kind() == ParaKindModel {
			p.Offset = modelOff
			modelOff += 8
		} else {
			p.Offset = off
			off += 8
		}
	}
	for i := range d.Params {
		p := &d.Params[i]
		if p.Kind() == ParaKindModel {
			p.GivenOffset = modelOff
			modelOff++
		} else {
			p.GivenOffset = off
			off++
		}
	}
	d.InstanceSize = align(off, 8)
	d.ModelSize = align(modelOff, 8)
}

func align(off, n uint32) uint32 { return (off + n - 1) / n * n }

// Validate 检查描述符一致性
func (d *Descriptor) Validate() error {
	if d.NumTerminals > d.NumNodes {
		return fmt.Errorf("osdi: %s: %d terminals exceed %d nodes", d.Name, d.NumTerminals, d.NumNodes)
	}
	if uint32(len(d.Nodes)) != d.NumNodes {
		return fmt.Errorf("osdi: %s: %d node descriptions for %d nodes", d.Name, len(d.Nodes), d.NumNodes)
	}
	for i, p := range d.Collapsible {
		if p.Node1 >= d.NumNodes || (p.Node2 != Unused && p.Node2 >= d.NumNodes) {
			return fmt.Errorf("osdi: %s: collapsible pair %d (%d,%d) out of range", d.Name, i, p.Node1, p.Node2)
		}
	}
	for i, e := range d.JacobianEntries {
		if e.Nodes.Node1 >= d.NumNodes || e.Nodes.Node2 >= d.NumNodes {
			return fmt.Errorf("osdi: %s: jacobian entry %d (%d,%d) out of range", d.Name, i, e.Nodes.Node1, e.Nodes.Node2)
		}
		if e.ReactPtrOff != Unused && e.ReactPtrOff+8 > d.InstanceSize {
			return fmt.Errorf("osdi: %s: jacobian entry %d reactive pointer outside instance", d.Name, i)
		}
	}
	for name, end := range map[string]uint32{
		"node_mapping":        d.NodeMappingOffset + 4*d.NumNodes,
		"collapsed":           d.CollapsedOffset + d.NumCollapsible(),
		"state_idx":           d.StateIdxOffset + 4*d.NumStates,
		"jacobian_ptr_resist": d.JacobianPtrResistOffset + 8*d.NumJacobianEntries(),
	} {
		if end > d.InstanceSize {
			return fmt.Errorf("osdi: %s: %s ends at %d beyond instance size %d", d.Name, name, end, d.InstanceSize)
		}
	}
	if d.SetupModel == nil || d.SetupInstance == nil {
		return fmt.Errorf("osdi: %s: missing entry points", d.Name)
	}
	return nil
}
