package osdi

import (
	"encoding/binary"
	"fmt"
	"math"
)

// RecordKind 数据块归属
type RecordKind uint8

const (
	RecordModel RecordKind = iota
	RecordInstance
)

// Record 按描述符偏移访问的数据块
// 数值字段按小端序存放在字节数组中;指针字段占位 8 字节,
// 实际地址保存在按偏移索引的表中,保证垃圾回收可见。
type Record struct {
	descr *Descriptor
	kind  RecordKind
	data  []byte
	ptrs  map[uint32]*float64
}

// NewModelRecord 按描述符分配模型数据
func NewModelRecord(d *Descriptor) *Record {
	return &Record{descr: d, kind: RecordModel, data: make([]byte, d.ModelSize), ptrs: map[uint32]*float64{}}
}

// NewInstanceRecord 按描述符分配实例数据
func NewInstanceRecord(d *Descriptor) *Record {
	return &Record{descr: d, kind: RecordInstance, data: make([]byte, d.InstanceSize), ptrs: map[uint32]*float64{}}
}

// Descriptor 数据块的描述符
func (r *Record) Descriptor() *Descriptor { return r.descr }

// Kind 数据块归属
func (r *Record) Kind() RecordKind { return r.kind }

// Bytes 底层字节
func (r *Record) Bytes() []byte { return r.data }

func (r *Record) check(off, n uint32) {
	if uint64(off)+uint64(n) > uint64(len(r.data)) {
		panic(fmt.Sprintf("osdi: offset %d+%d outside record of %d bytes", off, n, len(r.data)))
	}
}

// Uint32 读取偏移处的 uint32
func (r *Record) Uint32(off uint32) uint32 {
	r.check(off, 4)
	return binary.LittleEndian.Uint32(r.data[off:])
}

// SetUint32 写入偏移处的 uint32
func (r *Record) SetUint32(off, v uint32) {
	r.check(off, 4)
	binary.LittleEndian.PutUint32(r.data[off:], v)
}

// Float64 读取偏移处的 float64
func (r *Record) Float64(off uint32) float64 {
	r.check(off, 8)
	return math.Float64frombits(binary.LittleEndian.Uint64(r.data[off:]))
}

// SetFloat64 写入偏移处的 float64
func (r *Record) SetFloat64(off uint32, v float64) {
	r.check(off, 8)
	binary.LittleEndian.PutUint64(r.data[off:], math.Float64bits(v))
}

// Bool 读取偏移处的布尔值
func (r *Record) Bool(off uint32) bool {
	r.check(off, 1)
	return r.data[off] != 0
}

// SetBool 写入偏移处的布尔值
func (r *Record) SetBool(off uint32, v bool) {
	r.check(off, 1)
	if v {
		r.data[off] = 1
	} else {
		r.data[off] = 0
	}
}

// Ptr 读取偏移处的指针
func (r *Record) Ptr(off uint32) *float64 {
	r.check(off, 8)
	return r.ptrs[off]
}

// SetPtr 写入偏移处的指针
func (r *Record) SetPtr(off uint32, p *float64) {
	r.check(off, 8)
	if p == nil {
		delete(r.ptrs, off)
		return
	}
	r.ptrs[off] = p
}

// NodeMapping 第 i 个节点的映射
func (r *Record) NodeMapping(i uint32) uint32 {
	return r.Uint32(r.descr.NodeMappingOffset + 4*i)
}

// SetNodeMapping 设置第 i 个节点的映射
func (r *Record) SetNodeMapping(i, v uint32) {
	r.SetUint32(r.descr.NodeMappingOffset+4*i, v)
}

// NodeMappings 全部节点映射的副本
func (r *Record) NodeMappings() []uint32 {
	list := make([]uint32, r.descr.NumNodes)
	for i := range list {
		list[i] = r.NodeMapping(uint32(i))
	}
	return list
}

// Collapsed 第 i 个折叠提示是否执行
func (r *Record) Collapsed(i uint32) bool {
	return r.Bool(r.descr.CollapsedOffset + i)
}

// SetCollapsed 设置第 i 个折叠提示
func (r *Record) SetCollapsed(i uint32, v bool) {
	r.SetBool(r.descr.CollapsedOffset+i, v)
}

// ResetCollapsed 清除全部折叠提示
func (r *Record) ResetCollapsed() {
	for i := uint32(0); i < r.descr.NumCollapsible(); i++ {
		r.SetCollapsed(i, false)
	}
}

// StateIdx 第 i 个状态的全局编号
func (r *Record) StateIdx(i uint32) uint32 {
	return r.Uint32(r.descr.StateIdxOffset + 4*i)
}

// SetStateIdx 设置第 i 个状态的全局编号
func (r *Record) SetStateIdx(i, v uint32) {
	r.SetUint32(r.descr.StateIdxOffset+4*i, v)
}

// JacobianResist 第 i 个雅可比元素的阻性存储地址
func (r *Record) JacobianResist(i uint32) *float64 {
	return r.Ptr(r.descr.JacobianPtrResistOffset + 8*i)
}

// SetJacobianResist 设置第 i 个雅可比元素的阻性存储地址
func (r *Record) SetJacobianResist(i uint32, p *float64) {
	r.SetPtr(r.descr.JacobianPtrResistOffset+8*i, p)
}

// JacobianReact 第 i 个雅可比元素的电抗存储地址,无电抗部分返回 nil
func (r *Record) JacobianReact(i uint32) *float64 {
	off := r.descr.JacobianEntries[i].ReactPtrOff
	if off == Unused {
		return nil
	}
	return r.Ptr(off)
}

// Param 按名称读取参数值以及是否给定
func (r *Record) Param(name string) (float64, bool, error) {
	p, err := r.param(name)
	if err != nil {
		return 0, false, err
	}
	return r.Float64(p.Offset), r.Bool(p.GivenOffset), nil
}

// SetParam 按名称设置参数值并标记为给定
func (r *Record) SetParam(name string, v float64) error {
	p, err := r.param(name)
	if err != nil {
		return err
	}
	r.SetFloat64(p.Offset, v)
	r.SetBool(p.GivenOffset, true)
	return nil
}

// ParamAt 按编号读取参数值,未给定时返回默认值
func (r *Record) ParamAt(id int, def float64) float64 {
	p := &r.descr.Params[id]
	if !r.Bool(p.GivenOffset) {
		return def
	}
	return r.Float64(p.Offset)
}

// Value 按编号读取参数存储值,不检查给定标志
func (r *Record) Value(id int) float64 {
	return r.Float64(r.descr.Params[id].Offset)
}

// SetParamAt 按编号写入参数值,不改变给定标志
func (r *Record) SetParamAt(id int, v float64) {
	r.SetFloat64(r.descr.Params[id].Offset, v)
}

func (r *Record) param(name string) (*ParamOpvar, error) {
	i, ok := r.descr.ParamIndex(name)
	if !ok {
		return nil, fmt.Errorf("osdi: %s: unknown parameter %q", r.descr.Name, name)
	}
	p := &r.descr.Params[i]
	if (p.Kind() == ParaKindModel) != (r.kind == RecordModel) {
		return nil, fmt.Errorf("osdi: %s: parameter %q does not belong to this record", r.descr.Name, name)
	}
	return p, nil
}
