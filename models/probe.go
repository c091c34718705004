package models

import (
	"osdisim/ckt"
	"osdisim/osdi"
)

// Probe 电流探针:p 与 n 之间的零电压源,支路电流作为未知量
var Probe = register(&osdi.Descriptor{
	Name:         "iprobe",
	NumNodes:     3,
	NumTerminals: 2,
	Nodes: []osdi.Node{
		{Name: "p", Units: "V", ResidualUnits: "A"},
		{Name: "n", Units: "V", ResidualUnits: "A"},
		{Name: "br", Units: "A", ResidualUnits: "V", IsFlow: true},
	},
	JacobianEntries: []osdi.JacobianEntry{
		{Nodes: osdi.NodePair{Node1: 0, Node2: 2}, Flags: osdi.JacobianEntryResist | osdi.JacobianEntryResistConst},
		{Nodes: osdi.NodePair{Node1: 1, Node2: 2}, Flags: osdi.JacobianEntryResist | osdi.JacobianEntryResistConst},
		{Nodes: osdi.NodePair{Node1: 2, Node2: 0}, Flags: osdi.JacobianEntryResist | osdi.JacobianEntryResistConst},
		{Nodes: osdi.NodePair{Node1: 2, Node2: 1}, Flags: osdi.JacobianEntryResist | osdi.JacobianEntryResistConst},
	},
	SetupModel: func(osdi.Handle, *osdi.Record, ckt.SimParams) osdi.InitInfo { return osdi.OK() },
	SetupInstance: func(osdi.Handle, *osdi.Record, *osdi.Record, float64, uint32, ckt.SimParams) osdi.InitInfo {
		return osdi.OK()
	},
})
