package osdi

import (
	"osdisim/sparse"
)

// CoefficientLocator 矩阵元素定位
// 同一(row,col)重复调用返回同一元素;地行地列返回不计入矩阵的元素
type CoefficientLocator interface {
	MakeElement(row, col int) (*sparse.Element, error)
}

// BindJacobian 为描述符声明的每个雅可比元素获取矩阵存储地址
// 阻性部分指向元素实部,有电抗部分时电抗指针指向紧随其后的虚部
func BindJacobian(m CoefficientLocator, d *Descriptor, inst *Record) error {
	for i, e := range d.JacobianEntries {
		equation := inst.NodeMapping(e.Nodes.Node1)
		unknown := inst.NodeMapping(e.Nodes.Node2)
		elt, err := m.MakeElement(int(equation), int(unknown))
		if err != nil {
			return &SetupError{Stage: StageJacobian, Err: ErrNoMem, Cause: err}
		}
		inst.SetJacobianResist(uint32(i), &elt.Real)
		if e.ReactPtrOff != Unused {
			inst.SetPtr(e.ReactPtrOff, &elt.Imag)
		}
	}
	return nil
}

// writeStateIDs 实例的状态编号总是连续的 start .. start+NumStates
func writeStateIDs(d *Descriptor, inst *Record, start int) {
	for i := uint32(0); i < d.NumStates; i++ {
		inst.SetStateIdx(i, uint32(start)+i)
	}
}
