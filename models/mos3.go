package models

import (
	"math"

	"osdisim/ckt"
	"osdisim/osdi"
)

// 三端 MOS 参数编号
const (
	mosVto    = iota // 阈值电压 (V)
	mosKp            // 跨导参数 (A/V²)
	mosLambda        // 沟道长度调制 (1/V)
	mosRs            // 源极电阻 (Ω),为 0 时 si 折叠到 s
	mosCox           // 单位面积栅电容 (F/m²)
	mosTnom          // 标称温度 (K)
	mosW             // 沟道宽度 (m)
	mosL             // 沟道长度 (m)
	mosBeta          // 温度修正后的增益 (A/V²)
	mosVth           // 温度修正后的阈值电压 (V)
)

// 三端 MOS 节点
const (
	mosD  = iota // 漏极
	mosG         // 栅极
	mosS         // 源极
	mosSI        // 内部源极
)

// Mos3 无衬底端的三端 MOS 管,源极电阻为 0 时内部源极折叠到源极
var Mos3 = register(&osdi.Descriptor{
	Name:         "nmos3",
	NumNodes:     4,
	NumTerminals: 3,
	Nodes: []osdi.Node{
		{Name: "d", Units: "V", ResidualUnits: "A"},
		{Name: "g", Units: "V", ResidualUnits: "A", Reactive: true},
		{Name: "s", Units: "V", ResidualUnits: "A"},
		{Name: "si", Units: "V", ResidualUnits: "A", Reactive: true},
	},
	Collapsible: []osdi.NodePair{{Node1: mosSI, Node2: mosS}},
	JacobianEntries: []osdi.JacobianEntry{
		{Nodes: osdi.NodePair{Node1: mosD, Node2: mosD}, Flags: osdi.JacobianEntryResist},
		{Nodes: osdi.NodePair{Node1: mosD, Node2: mosG}, Flags: osdi.JacobianEntryResist},
		{Nodes: osdi.NodePair{Node1: mosD, Node2: mosSI}, Flags: osdi.JacobianEntryResist},
		{Nodes: osdi.NodePair{Node1: mosG, Node2: mosG}, Flags: osdi.JacobianEntryReact},
		{Nodes: osdi.NodePair{Node1: mosG, Node2: mosSI}, Flags: osdi.JacobianEntryReact},
		{Nodes: osdi.NodePair{Node1: mosSI, Node2: mosD}, Flags: osdi.JacobianEntryResist},
		{Nodes: osdi.NodePair{Node1: mosSI, Node2: mosG}, Flags: osdi.JacobianEntryResist | osdi.JacobianEntryReact},
		{Nodes: osdi.NodePair{Node1: mosSI, Node2: mosSI}, Flags: osdi.JacobianEntryResist | osdi.JacobianEntryReact},
		{Nodes: osdi.NodePair{Node1: mosSI, Node2: mosS}, Flags: osdi.JacobianEntryResist | osdi.JacobianEntryResistConst},
		{Nodes: osdi.NodePair{Node1: mosS, Node2: mosSI}, Flags: osdi.JacobianEntryResist | osdi.JacobianEntryResistConst},
		{Nodes: osdi.NodePair{Node1: mosS, Node2: mosS}, Flags: osdi.JacobianEntryResist | osdi.JacobianEntryResistConst},
	},
	NumStates: 2,
	Params: []osdi.ParamOpvar{
		{Name: []string{"vto", "vt0"}, Description: "Threshold voltage", Units: "V", Flags: osdi.ParaKindModel},
		{Name: []string{"kp"}, Description: "Transconductance parameter", Units: "A/V^2", Flags: osdi.ParaKindModel},
		{Name: []string{"lambda"}, Description: "Channel length modulation", Units: "1/V", Flags: osdi.ParaKindModel},
		{Name: []string{"rs"}, Description: "Source resistance", Units: "Ohm", Flags: osdi.ParaKindModel},
		{Name: []string{"cox"}, Description: "Gate oxide capacitance per area", Units: "F/m^2", Flags: osdi.ParaKindModel},
		{Name: []string{"tnom"}, Description: "Nominal temperature", Units: "K", Flags: osdi.ParaKindModel},
		{Name: []string{"w"}, Description: "Channel width", Units: "m", Flags: osdi.ParaKindInst},
		{Name: []string{"l"}, Description: "Channel length", Units: "m", Flags: osdi.ParaKindInst},
		{Name: []string{"beta"}, Description: "Gain at device temperature", Units: "A/V^2", Flags: osdi.ParaKindOpvar},
		{Name: []string{"vth"}, Description: "Threshold at device temperature", Units: "V", Flags: osdi.ParaKindOpvar},
	},
	SetupModel:    mosSetupModel,
	SetupInstance: mosSetupInstance,
})

func mosSetupModel(_ osdi.Handle, model *osdi.Record, params ckt.SimParams) osdi.InitInfo {
	defaults(model, map[int]float64{
		mosVto:    0.7,
		mosKp:     2e-5,
		mosLambda: 0,
		mosRs:     0,
		mosCox:    0,
		mosTnom:   tnom(model, mosTnom, params),
	})
	c := check{r: model}
	c.positive(mosKp)
	c.nonNegative(mosLambda)
	c.nonNegative(mosRs)
	c.nonNegative(mosCox)
	c.positive(mosTnom)
	return c.info()
}

func mosSetupInstance(_ osdi.Handle, inst, model *osdi.Record, temp float64, _ uint32, _ ckt.SimParams) osdi.InitInfo {
	defaults(inst, map[int]float64{mosW: 1e-6, mosL: 1e-6})
	c := check{r: inst}
	c.positive(mosW)
	c.positive(mosL)
	if len(c.errs) > 0 {
		return c.info()
	}
	inst.SetCollapsed(0, model.Value(mosRs) == 0)

	// 迁移率按 T^-1.5 变化,阈值电压温度系数 -2mV/K
	tn := model.Value(mosTnom)
	beta := model.Value(mosKp) * inst.Value(mosW) / inst.Value(mosL) * math.Pow(temp/tn, -1.5)
	inst.SetParamAt(mosBeta, beta)
	inst.SetParamAt(mosVth, model.Value(mosVto)-2e-3*(temp-tn))
	return osdi.OK()
}
