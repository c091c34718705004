package types

import "math"

// 默认连接常量定义
const (
	GndNode     NodeID = 0              // 全局地节点编号
	Unconnected NodeID = -1             // 引脚未连接标记
	UnusedIndex uint32 = math.MaxUint32 // 描述符中的空索引(折叠到地/无电抗指针)
)

// 默认参数常量定义
var (
	DefaultTemp       = 300.15 // 默认电路温度(K)
	DefaultTnom       = 300.15 // 默认参数标称温度(K)
	DefaultGmin       = 1e-12  // 默认最小电导
	DefaultMaxNodes   = 1 << 20
	DefaultMaxElement = 1 << 22
	SimulatorVersion  = 0.1 // 传给模型的仿真器版本号
)
