package osdi

import (
	"errors"

	"osdisim/ckt"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Context 设置过程所需的电路上下文
type Context interface {
	NodeAllocator
	DeleteNode(num int) error // 删除内部节点,重复删除为空操作
	PrevLastNode() int        // 设置开始前的最大外部节点编号
	Temp() float64            // 电路温度
	SimParams() ckt.SimParams // 仿真器参数
}

// StateCounter 全局状态计数器,按处理顺序连续分配
type StateCounter struct {
	Next int
}

// Reserve 分配 n 个连续状态,返回起始编号
func (s *StateCounter) Reserve(n int) int {
	start := s.Next
	s.Next += n
	return start
}

// annotate 为错误补充模型和实例名称
func annotate(err error, model, inst string) error {
	var se *SetupError
	if errors.As(err, &se) {
		if se.Model == "" {
			se.Model = model
		}
		if se.Instance == "" {
			se.Instance = inst
		}
	}
	return err
}

// Setup 首次建立模型列表中全部实例
//
// 按声明顺序处理:模型初始化,实例初始化,节点折叠,全局节点分配,矩阵元素绑定,状态分配。
// 致命错误和资源错误立即返回;校验错误记录后继续处理其他模型/实例,最后一并返回。
func Setup(m CoefficientLocator, list *ModelList, c Context, states *StateCounter) error {
	d := list.Descriptor
	params := c.SimParams()
	numStates := d.InstanceStates()
	var errs error
	for _, model := range list.Models {
		info := d.SetupModel(Handle{Kind: HandleModel, Name: model.Name}, model.Data, params)
		o := handleInitInfo(info, d, StageSetupModel, model.Name, "")
		if o.abort != nil {
			return multierr.Append(errs, o.abort)
		}
		if o.cont != nil {
			errs = multierr.Append(errs, o.cont)
			continue
		}
		for _, inst := range model.Instances {
			inst.bound, inst.mapped = false, false
			connected := inst.connectedTerminals(d)
			temp := inst.temperature(c.Temp())
			info := d.SetupInstance(Handle{Kind: HandleInstance, Name: inst.Name}, inst.Data, model.Data, temp, connected, params)
			o := handleInitInfo(info, d, StageSetupInstance, model.Name, inst.Name)
			if o.abort != nil {
				return multierr.Append(errs, o.abort)
			}
			if o.cont != nil {
				errs = multierr.Append(errs, o.cont)
				continue
			}

			numNodes := CollapseNodes(d, inst.Data, connected)
			err := BindTopology(c, d, inst, connected, numNodes)
			inst.mapped = true
			if err == nil {
				err = BindJacobian(m, d, inst.Data)
			}
			if o := classify(annotate(err, model.Name, inst.Name)); o.abort != nil {
				return multierr.Append(errs, o.abort)
			} else if o.cont != nil {
				errs = multierr.Append(errs, o.cont)
				continue
			}

			inst.State = states.Reserve(numStates)
			writeStateIDs(d, inst.Data, inst.State)
			inst.bound = true
			logrus.WithFields(logrus.Fields{
				"model":    model.Name,
				"instance": inst.Name,
				"nodes":    numNodes,
				"state":    inst.State,
				"states":   numStates,
			}).Debug("instance set up")
		}
	}
	return errs
}

// Temp 温度更新:以新的温度重新调用模型和实例初始化
// 假定节点折叠不变,不重新绑定拓扑和矩阵
func Temp(list *ModelList, c Context) error {
	d := list.Descriptor
	params := c.SimParams()
	var errs error
	for _, model := range list.Models {
		info := d.SetupModel(Handle{Kind: HandleModelTemp, Name: model.Name}, model.Data, params)
		o := handleInitInfo(info, d, StageTempModel, model.Name, "")
		if o.abort != nil {
			return multierr.Append(errs, o.abort)
		}
		if o.cont != nil {
			errs = multierr.Append(errs, o.cont)
			continue
		}
		for _, inst := range model.Instances {
			temp := inst.temperature(c.Temp())
			connected := inst.connectedTerminals(d)
			info := d.SetupInstance(Handle{Kind: HandleInstance, Name: inst.Name}, inst.Data, model.Data, temp, connected, params)
			o := handleInitInfo(info, d, StageTempInstance, model.Name, inst.Name)
			if o.abort != nil {
				return multierr.Append(errs, o.abort)
			}
			errs = multierr.Append(errs, o.cont)
		}
	}
	return errs
}

// Unsetup 清除折叠标志并删除实例创建的内部节点
// 只删除编号大于设置前最大外部节点编号的节点,端子不会被删除。
// 矩阵绑定失败的实例同样释放已分配的节点,实例初始化失败的实例没有节点可释放。
func Unsetup(list *ModelList, c Context) error {
	d := list.Descriptor
	prev := c.PrevLastNode()
	for _, model := range list.Models {
		for _, inst := range model.Instances {
			inst.Data.ResetCollapsed()
			if !inst.mapped {
				continue
			}
			for i := uint32(0); i < d.NumNodes; i++ {
				num := int(inst.Data.NodeMapping(i))
				if num > prev {
					if err := c.DeleteNode(num); err != nil {
						return annotate(&SetupError{Stage: StageTopology, Err: err}, model.Name, inst.Name)
					}
				}
			}
			inst.bound, inst.mapped = false, false
			inst.MatrixPtrs = nil
		}
	}
	return nil
}
