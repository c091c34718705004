package osdi

import (
	"fmt"

	"osdisim/ckt"

	"github.com/sirupsen/logrus"
)

// NodeAllocator 全局节点分配
type NodeAllocator interface {
	MakeVolt(owner, name string) (*ckt.Node, error) // 新建电位节点
	MakeCur(owner, name string) (*ckt.Node, error)  // 新建电流支路节点
}

// BindTopology 为折叠后的节点分配全局编号并改写节点映射
//
// 编号小于 connectedTerminals 的节点直接使用调用方的端子编号,
// 其余节点通过 alloc 新建,名称取该折叠节点中编号最小的原始节点。
func BindTopology(alloc NodeAllocator, d *Descriptor, inst *Instance, connectedTerminals, numNodes uint32) error {
	ids := make([]uint32, numNodes)
	for i := uint32(0); i < connectedTerminals; i++ {
		ids[i] = uint32(inst.Terminals[i])
	}
	for i := connectedTerminals; i < numNodes; i++ {
		node := d.Nodes[representative(d, inst.Data, i)]
		var (
			n   *ckt.Node
			err error
		)
		if node.IsFlow {
			n, err = alloc.MakeCur(inst.Name, node.Name)
		} else {
			n, err = alloc.MakeVolt(inst.Name, node.Name)
		}
		if err != nil {
			// 已分配的节点仍写入映射,供 Unsetup 释放
			writeNodeMapping(d, inst.Data, ids[:i])
			return &SetupError{Stage: StageTopology, Instance: inst.Name, Err: ErrAllocation, Cause: err}
		}
		ids[i] = uint32(n.Number)
		logrus.WithFields(logrus.Fields{"instance": inst.Name, "node": node.Name, "number": n.Number}).Debug("internal node bound")
	}
	writeNodeMapping(d, inst.Data, ids)
	return nil
}

// representative 映射到折叠编号 i 的最小原始节点
func representative(d *Descriptor, inst *Record, i uint32) uint32 {
	for j := uint32(0); j < d.NumNodes; j++ {
		if inst.NodeMapping(j) == i {
			return j
		}
	}
	panic(fmt.Sprintf("osdi: %s: no node mapped to collapsed index %d", d.Name, i))
}

// writeNodeMapping 将实例内的折叠编号替换为全局编号
// 折叠到地以及尚未分配全局编号的节点为 0
func writeNodeMapping(d *Descriptor, inst *Record, ids []uint32) {
	for i := uint32(0); i < d.NumNodes; i++ {
		m := inst.NodeMapping(i)
		if m == Unused || int(m) >= len(ids) {
			inst.SetNodeMapping(i, 0)
		} else {
			inst.SetNodeMapping(i, ids[m])
		}
	}
}
