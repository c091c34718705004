// Package debug 导出电路拓扑、矩阵结构以及状态分配,用于检查设置结果
package debug

import (
	"encoding/json"
	"fmt"
	"io"

	"osdisim/ckt"
	"osdisim/osdi"
	"osdisim/sparse"
	"osdisim/types"
)

// Record 设置完成后的拓扑快照
type Record struct {
	Elements  []string   // 元件列表,0 为地
	Nodes     [][][2]int // 连接信息:节点编号 -> [元件序号, 器件内节点序号]
	NodeNames []string   // 节点名称
	NodeKinds []string   // 节点类型
	Internal  []bool     // 设置过程中创建的内部节点
	States    [][2]int   // 元件状态范围 [起始, 数量],0 为地占位
	Matrix    [][2]int   // 非零元素 (row, col)
	Size      int        // 矩阵阶数
}

// Init 记录电路节点、已绑定实例以及矩阵结构
func (list *Record) Init(c *ckt.Circuit, lists []*osdi.ModelList, m *sparse.Matrix) {
	nodes := c.Nodes()
	last := c.LastNode()
	list.NodeNames = make([]string, last+1)
	list.NodeKinds = make([]string, last+1)
	list.Internal = make([]bool, last+1)
	for _, n := range nodes {
		list.NodeNames[n.Number] = n.Name
		list.NodeKinds[n.Number] = n.Kind.String()
		list.Internal[n.Number] = n.Number > c.PrevLastNode()
	}
	list.Elements = []string{"Gnd"}
	list.States = [][2]int{{0, 0}}
	list.Nodes = make([][][2]int, last+1)
	for _, l := range lists {
		d := l.Descriptor
		for _, inst := range l.Instances() {
			if !inst.Bound() {
				continue
			}
			id := len(list.Elements)
			list.Elements = append(list.Elements, fmt.Sprintf("%s(%s)", d.Name, inst.Name))
			list.States = append(list.States, [2]int{inst.State, d.InstanceStates()})
			for i, num := range inst.Data.NodeMappings() {
				if int(num) <= last {
					list.Nodes[num] = append(list.Nodes[num], [2]int{id, i})
				}
			}
		}
	}
	list.Matrix = list.Matrix[:0]
	if m != nil {
		list.Size = m.Size()
		for _, e := range m.Elements() {
			list.Matrix = append(list.Matrix, [2]int{e.Row, e.Col})
		}
	}
}

// NodeName 节点显示名称
func (list *Record) NodeName(num int) string {
	if num == types.GndNode {
		return "Gnd"
	}
	if num < len(list.NodeNames) && list.NodeNames[num] != "" {
		return fmt.Sprintf("%s(%d)", list.NodeNames[num], num)
	}
	return fmt.Sprintf("Node(%d)", num)
}

// Render 格式和输出内容
func (list *Record) Render(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}
