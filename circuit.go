// Package osdisim 按描述符接入器件模型并建立电路拓扑:
// 节点折叠、全局节点和状态分配、稀疏矩阵元素绑定以及重排序求解器的存储绑定。
package osdisim

import (
	"errors"

	"osdisim/ckt"
	"osdisim/debug"
	"osdisim/deck"
	"osdisim/osdi"
	"osdisim/sparse"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	_ "osdisim/models"
)

// ErrNoCSC 未启用列压缩存储
var ErrNoCSC = errors.New("osdisim: reordering solver storage not enabled")

// Simulator 电路模拟器
type Simulator struct {
	Circuit *ckt.Circuit
	Matrix  *sparse.Matrix    // 本次设置建立的矩阵,Unsetup 后重建
	CSC     *sparse.CSC       // Options.CSC 为真时的列压缩存储
	Lists   []*osdi.ModelList // 按器件类型分组,按声明顺序处理
	States  osdi.StateCounter // 全局状态计数
	complex bool              // 当前绑定复数存储
}

// New 创建空电路
func New(opts ckt.Options) *Simulator {
	return &Simulator{Circuit: ckt.New(opts)}
}

// Load 读取电路文件
func Load(path string) (*Simulator, error) {
	d, err := deck.Load(path)
	if err != nil {
		return nil, err
	}
	s := New(*d.Options)
	if s.Lists, err = d.Build(s.Circuit); err != nil {
		return nil, err
	}
	return s, nil
}

// Add 追加模型列表
func (s *Simulator) Add(list *osdi.ModelList) {
	s.Lists = append(s.Lists, list)
}

// Instance 按名称查找实例
func (s *Simulator) Instance(name string) (*osdi.Instance, bool) {
	for _, l := range s.Lists {
		for _, inst := range l.Instances() {
			if inst.Name == name {
				return inst, true
			}
		}
	}
	return nil, false
}

// Setup 建立全部实例
// 校验错误汇总后返回,已成功的实例保持可用;致命错误立即返回
func (s *Simulator) Setup() error {
	opts := s.Circuit.Options
	s.Circuit.MarkSetup()
	s.Matrix = sparse.New(s.Circuit.LastNode(), opts.MaxElements)
	s.CSC = nil
	s.States = osdi.StateCounter{}
	s.complex = false

	var errs error
	for _, l := range s.Lists {
		err := osdi.Setup(s.Matrix, l, s.Circuit, &s.States)
		errs = multierr.Append(errs, err)
		if osdi.IsFatal(err) {
			return errs
		}
	}
	s.Circuit.AllocStates(s.States.Next)

	if opts.CSC {
		s.CSC = sparse.NewCSC(s.Matrix)
		if err := s.bindCSC(); err != nil {
			return multierr.Append(errs, err)
		}
	}
	logrus.WithFields(logrus.Fields{
		"nodes":    s.Circuit.LastNode(),
		"internal": s.Circuit.LastNode() - s.Circuit.PrevLastNode(),
		"states":   s.States.Next,
		"nonzeros": s.Matrix.NonZeroCount(),
		"csc":      s.CSC != nil,
	}).Info("setup complete")
	return errs
}

func (s *Simulator) bindCSC() error {
	for _, l := range s.Lists {
		if err := osdi.BindSparseStorage(l, s.CSC); err != nil {
			return err
		}
	}
	return nil
}

// Temp 以新的电路温度更新模型和实例参数,拓扑保持不变
func (s *Simulator) Temp(temp float64) error {
	s.Circuit.Options.Temp = temp
	var errs error
	for _, l := range s.Lists {
		err := osdi.Temp(l, s.Circuit)
		errs = multierr.Append(errs, err)
		if osdi.IsFatal(err) {
			return errs
		}
	}
	logrus.WithField("temp", temp).Info("temperature updated")
	return errs
}

// Unsetup 释放设置过程创建的内部节点
func (s *Simulator) Unsetup() error {
	for _, l := range s.Lists {
		if err := osdi.Unsetup(l, s.Circuit); err != nil {
			return err
		}
	}
	s.CSC = nil
	s.Circuit.AllocStates(0)
	logrus.WithField("nodes", s.Circuit.LastNode()).Info("unsetup complete")
	return nil
}

// Reorder 按列排列重排列压缩存储并重新绑定全部实例
func (s *Simulator) Reorder(perm []int) error {
	if s.CSC == nil {
		return ErrNoCSC
	}
	if err := s.CSC.Reorder(perm); err != nil {
		return err
	}
	if err := s.bindCSC(); err != nil {
		return err
	}
	if s.complex {
		return s.UseComplex(true)
	}
	return nil
}

// UseComplex 在实数和复数存储之间切换
func (s *Simulator) UseComplex(useComplex bool) error {
	if s.CSC == nil {
		return ErrNoCSC
	}
	for _, l := range s.Lists {
		if err := osdi.RebindSparseStorage(l, useComplex); err != nil {
			return err
		}
	}
	s.complex = useComplex
	return nil
}

// Record 当前拓扑快照
func (s *Simulator) Record() debug.Record {
	var r debug.Record
	r.Init(s.Circuit, s.Lists, s.Matrix)
	return r
}
