package osdi

import (
	"fmt"

	"osdisim/types"
)

// ExtraInstData 描述符之外的实例数据
type ExtraInstData struct {
	Temp      float64 // 实例温度(K)
	TempGiven bool
	Dt        float64 // 相对电路温度的偏移(K)
	DtGiven   bool
}

// Instance 器件实例
type Instance struct {
	Name       string        // 实例名称
	Terminals  []int         // 调用方提供的端子节点编号,-1 表示未连接
	Data       *Record       // 实例数据
	Extra      ExtraInstData // 温度覆盖
	State      int           // 状态起始编号
	MatrixPtrs []*float64    // 列压缩存储地址缓存,每个雅可比元素依次为实数/复数
	mapped     bool          // 节点映射已写入全局编号,可能含内部节点
	bound      bool          // 拓扑和矩阵已绑定
}

// Bound 实例是否已完成拓扑和矩阵绑定
func (inst *Instance) Bound() bool { return inst.bound }

// Model 器件模型
type Model struct {
	Name      string
	Data      *Record
	Instances []*Instance
}

// ModelList 同一描述符下按声明顺序排列的模型
type ModelList struct {
	Descriptor *Descriptor
	Models     []*Model
}

// NewModelList 创建模型列表
func NewModelList(d *Descriptor) *ModelList {
	return &ModelList{Descriptor: d}
}

// AddModel 追加模型
func (l *ModelList) AddModel(name string) *Model {
	m := &Model{Name: name, Data: NewModelRecord(l.Descriptor)}
	l.Models = append(l.Models, m)
	return m
}

// Model 按名称查找模型
func (l *ModelList) Model(name string) (*Model, bool) {
	for _, m := range l.Models {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Instances 按处理顺序返回全部实例
func (l *ModelList) Instances() []*Instance {
	var list []*Instance
	for _, m := range l.Models {
		list = append(list, m.Instances...)
	}
	return list
}

// AddInstance 追加实例
func (m *Model) AddInstance(name string, terminals []int) (*Instance, error) {
	d := m.Data.Descriptor()
	if uint32(len(terminals)) > d.NumTerminals {
		return nil, fmt.Errorf("osdi: %s: %d terminals given, device has %d", name, len(terminals), d.NumTerminals)
	}
	for _, inst := range m.Instances {
		if inst.Name == name {
			return nil, fmt.Errorf("osdi: %s: duplicate instance in model %s", name, m.Name)
		}
	}
	inst := &Instance{
		Name:      name,
		Terminals: append([]int(nil), terminals...),
		Data:      NewInstanceRecord(d),
	}
	m.Instances = append(m.Instances, inst)
	return inst, nil
}

// DeleteInstance 从模型中删除实例,不存在时不做处理
func (m *Model) DeleteInstance(name string) {
	for i, inst := range m.Instances {
		if inst.Name == name {
			m.Instances = append(m.Instances[:i], m.Instances[i+1:]...)
			return
		}
	}
}

// SetTemp 设置实例温度
func (inst *Instance) SetTemp(t float64) {
	inst.Extra.Temp, inst.Extra.TempGiven = t, true
}

// SetDt 设置实例温度偏移
func (inst *Instance) SetDt(dt float64) {
	inst.Extra.Dt, inst.Extra.DtGiven = dt, true
}

// temperature 实例有效温度:电路温度,被实例温度覆盖,再加上温度偏移
func (inst *Instance) temperature(circuitTemp float64) float64 {
	t := circuitTemp
	if inst.Extra.TempGiven {
		t = inst.Extra.Temp
	}
	if inst.Extra.DtGiven {
		t += inst.Extra.Dt
	}
	return t
}

// connectedTerminals 已连接端子数量:第一个未连接端子之前的端子
func (inst *Instance) connectedTerminals(d *Descriptor) uint32 {
	for i := uint32(0); i < d.NumTerminals; i++ {
		if int(i) >= len(inst.Terminals) || inst.Terminals[i] == types.Unconnected {
			return i
		}
	}
	return d.NumTerminals
}
