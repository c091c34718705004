package osdi

import (
	"osdisim/sparse"

	"github.com/sirupsen/logrus"
)

// ReorderedResolver 重排序求解器的存储定位
type ReorderedResolver interface {
	Resolve(row, col int) (*sparse.Bind, bool)
}

// bindInstance 将实例的雅可比地址改为列压缩存储中的地址,并缓存实数/复数两组地址
func bindInstance(r ReorderedResolver, d *Descriptor, inst *Instance) error {
	if len(inst.MatrixPtrs) != 2*len(d.JacobianEntries) {
		inst.MatrixPtrs = make([]*float64, 2*len(d.JacobianEntries))
	}
	for i, e := range d.JacobianEntries {
		equation := inst.Data.NodeMapping(e.Nodes.Node1)
		unknown := inst.Data.NodeMapping(e.Nodes.Node2)
		if equation == 0 || unknown == 0 {
			continue
		}
		b, ok := r.Resolve(int(equation), int(unknown))
		if !ok {
			logrus.WithFields(logrus.Fields{"instance": inst.Name, "row": equation, "col": unknown}).
				Error("coefficient not found in bind table")
			return &SetupError{Stage: StageSparse, Instance: inst.Name, Err: ErrNotBound}
		}
		if e.ReactPtrOff != Unused {
			inst.Data.SetPtr(e.ReactPtrOff, b.CSCImag)
		}
		inst.Data.SetJacobianResist(uint32(i), b.CSC)
		inst.MatrixPtrs[2*i] = b.CSC
		inst.MatrixPtrs[2*i+1] = b.CSCComplex
	}
	return nil
}

// updateInstance 从缓存中切换实数/复数地址,不重新查找
func updateInstance(d *Descriptor, inst *Instance, complex bool) {
	if len(inst.MatrixPtrs) != 2*len(d.JacobianEntries) {
		return
	}
	k := 0
	if complex {
		k = 1
	}
	for i, e := range d.JacobianEntries {
		equation := inst.Data.NodeMapping(e.Nodes.Node1)
		unknown := inst.Data.NodeMapping(e.Nodes.Node2)
		if equation != 0 && unknown != 0 {
			inst.Data.SetJacobianResist(uint32(i), inst.MatrixPtrs[2*i+k])
		}
	}
}

// BindSparseStorage 重排序后为全部实例重新绑定存储地址
func BindSparseStorage(list *ModelList, r ReorderedResolver) error {
	for _, m := range list.Models {
		for _, inst := range m.Instances {
			if !inst.bound {
				continue
			}
			if err := bindInstance(r, list.Descriptor, inst); err != nil {
				return annotate(err, m.Name, inst.Name)
			}
		}
	}
	return nil
}

// RebindSparseStorage 在实数和复数存储之间切换
func RebindSparseStorage(list *ModelList, useComplex bool) error {
	for _, m := range list.Models {
		for _, inst := range m.Instances {
			if !inst.bound {
				continue
			}
			updateInstance(list.Descriptor, inst, useComplex)
		}
	}
	return nil
}

// BindComplex 切换到复数存储
func BindComplex(list *ModelList) error { return RebindSparseStorage(list, true) }

// BindComplexToReal 切换回实数存储
func BindComplexToReal(list *ModelList) error { return RebindSparseStorage(list, false) }
