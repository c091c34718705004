package models

import (
	"math"

	"osdisim/ckt"
	"osdisim/osdi"
)

// 二极管参数编号
const (
	diodeIs   = iota // 反向饱和电流 (A)
	diodeN           // 发射系数
	diodeRs          // 串联电阻 (Ω),为 0 时 CI 折叠到 C
	diodeCj0         // 零偏结电容 (F)
	diodeVj          // 结电势 (V)
	diodeM           // 梯度系数
	diodeTnom        // 标称温度 (K)
	diodeArea        // 面积系数
	diodeVt          // 热电压 (V)
	diodeIsT         // 温度修正后的饱和电流 (A)
)

// 二极管节点
const (
	diodeA  = iota // 阳极
	diodeC         // 阴极
	diodeCI        // 内部阴极
)

// Diode 带串联电阻和结电容的二极管
// 结位于 A 与 CI 之间,串联电阻位于 CI 与 C 之间
var Diode = register(&osdi.Descriptor{
	Name:         "diode",
	NumNodes:     3,
	NumTerminals: 2,
	Nodes: []osdi.Node{
		{Name: "A", Units: "V", ResidualUnits: "A", Reactive: true},
		{Name: "C", Units: "V", ResidualUnits: "A"},
		{Name: "CI", Units: "V", ResidualUnits: "A", Reactive: true},
	},
	Collapsible: []osdi.NodePair{{Node1: diodeCI, Node2: diodeC}},
	JacobianEntries: []osdi.JacobianEntry{
		{Nodes: osdi.NodePair{Node1: diodeA, Node2: diodeA}, Flags: osdi.JacobianEntryResist | osdi.JacobianEntryReact},
		{Nodes: osdi.NodePair{Node1: diodeA, Node2: diodeCI}, Flags: osdi.JacobianEntryResist | osdi.JacobianEntryReact},
		{Nodes: osdi.NodePair{Node1: diodeCI, Node2: diodeA}, Flags: osdi.JacobianEntryResist | osdi.JacobianEntryReact},
		{Nodes: osdi.NodePair{Node1: diodeCI, Node2: diodeCI}, Flags: osdi.JacobianEntryResist | osdi.JacobianEntryReact},
		{Nodes: osdi.NodePair{Node1: diodeCI, Node2: diodeC}, Flags: osdi.JacobianEntryResist | osdi.JacobianEntryResistConst},
		{Nodes: osdi.NodePair{Node1: diodeC, Node2: diodeCI}, Flags: osdi.JacobianEntryResist | osdi.JacobianEntryResistConst},
		{Nodes: osdi.NodePair{Node1: diodeC, Node2: diodeC}, Flags: osdi.JacobianEntryResist | osdi.JacobianEntryResistConst},
	},
	NumStates: 1,
	Params: []osdi.ParamOpvar{
		{Name: []string{"is"}, Description: "Saturation current", Units: "A", Flags: osdi.ParaKindModel},
		{Name: []string{"n"}, Description: "Emission coefficient", Flags: osdi.ParaKindModel},
		{Name: []string{"rs"}, Description: "Series resistance", Units: "Ohm", Flags: osdi.ParaKindModel},
		{Name: []string{"cj0", "cjo"}, Description: "Zero-bias junction capacitance", Units: "F", Flags: osdi.ParaKindModel},
		{Name: []string{"vj"}, Description: "Junction potential", Units: "V", Flags: osdi.ParaKindModel},
		{Name: []string{"m"}, Description: "Grading coefficient", Flags: osdi.ParaKindModel},
		{Name: []string{"tnom"}, Description: "Nominal temperature", Units: "K", Flags: osdi.ParaKindModel},
		{Name: []string{"area"}, Description: "Area factor", Flags: osdi.ParaKindInst},
		{Name: []string{"vt"}, Description: "Thermal voltage", Units: "V", Flags: osdi.ParaKindOpvar},
		{Name: []string{"is_t"}, Description: "Saturation current at device temperature", Units: "A", Flags: osdi.ParaKindOpvar},
	},
	SetupModel:    diodeSetupModel,
	SetupInstance: diodeSetupInstance,
})

func diodeSetupModel(_ osdi.Handle, model *osdi.Record, params ckt.SimParams) osdi.InitInfo {
	defaults(model, map[int]float64{
		diodeIs:   1e-14,
		diodeN:    1,
		diodeRs:   0,
		diodeCj0:  0,
		diodeVj:   1,
		diodeM:    0.5,
		diodeTnom: tnom(model, diodeTnom, params),
	})
	c := check{r: model}
	c.positive(diodeIs)
	c.positive(diodeN)
	c.nonNegative(diodeRs)
	c.nonNegative(diodeCj0)
	c.positive(diodeVj)
	c.within(diodeM, 0, 1)
	c.positive(diodeTnom)
	return c.info()
}

func diodeSetupInstance(_ osdi.Handle, inst, model *osdi.Record, temp float64, _ uint32, _ ckt.SimParams) osdi.InitInfo {
	defaults(inst, map[int]float64{diodeArea: 1})
	c := check{r: inst}
	c.positive(diodeArea)
	if len(c.errs) > 0 {
		return c.info()
	}
	inst.SetCollapsed(0, model.Value(diodeRs) == 0)

	// 饱和电流温度修正,禁带宽度取硅 1.11 eV
	const eg = 1.11
	vt := thermalVoltage(temp)
	n := model.Value(diodeN)
	ratio := temp / model.Value(diodeTnom)
	isT := model.Value(diodeIs) * inst.Value(diodeArea) *
		math.Pow(ratio, 3/n) * math.Exp((ratio-1)*eg/(n*vt))
	inst.SetParamAt(diodeVt, vt)
	inst.SetParamAt(diodeIsT, isT)
	return osdi.OK()
}
