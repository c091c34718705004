package osdi

// CollapseNodes 根据折叠提示计算实例的节点映射,返回折叠后的节点数量
//
// node_mapping 先初始化为 {0, 1, ..., n-1},随后按声明顺序处理已执行的折叠提示:
// 被移除的代表节点映射到保留节点,编号大于被移除节点的映射依次减一。
// 保留节点总是编号较小的一方,折叠到地时保留地(Unused)。
// 端子由仿真器分配,不能被移除,涉及两个端子或端子到地的折叠被忽略。
func CollapseNodes(d *Descriptor, inst *Record, connectedTerminals uint32) uint32 {
	numNodes := d.NumNodes
	for i := uint32(0); i < d.NumNodes; i++ {
		inst.SetNodeMapping(i, i)
	}
	for i, pair := range d.Collapsible {
		if !inst.Collapsed(uint32(i)) {
			continue
		}
		a := inst.NodeMapping(pair.Node1)
		b := Unused
		if pair.Node2 != Unused {
			b = inst.NodeMapping(pair.Node2)
		}
		// 已经合并
		if a == b {
			continue
		}
		from, to := a, b
		if a != Unused && b != Unused && a < b {
			from, to = b, a
		} else if a == Unused {
			from, to = b, a
		}
		if from < connectedTerminals {
			continue
		}
		for j := uint32(0); j < d.NumNodes; j++ {
			m := inst.NodeMapping(j)
			switch {
			case m == from:
				inst.SetNodeMapping(j, to)
			case m > from && m != Unused:
				inst.SetNodeMapping(j, m-1)
			}
		}
		numNodes--
	}
	return numNodes
}
