package types

// NodeID 全局节点编号,0 为地
type NodeID = int

// NodeKind 节点类型
type NodeKind uint8

const (
	NodeVoltage NodeKind = iota // 电位节点
	NodeCurrent                 // 电流支路节点
)

// String 节点类型名称
func (k NodeKind) String() string {
	switch k {
	case NodeVoltage:
		return "voltage"
	case NodeCurrent:
		return "current"
	}
	return "unknown"
}
