// Package models 内置器件模型
// 每个模型在包初始化时注册描述符和入口函数,YAML 描述符可按名称引用这些入口函数。
package models

import (
	"math"

	"osdisim/ckt"
	"osdisim/osdi"
	"osdisim/types"
)

const (
	boltzmann = 1.380649e-23    // 玻尔兹曼常数 (J/K)
	charge    = 1.602176634e-19 // 电子电荷 (C)
)

// register 计算布局后注册描述符,并以同名注册入口函数
func register(d *osdi.Descriptor) *osdi.Descriptor {
	d.Layout()
	osdi.RegisterEntryPoints(d.Name, d.SetupModel, d.SetupInstance)
	return osdi.Register(d)
}

// thermalVoltage 热电压 kT/q
func thermalVoltage(temp float64) float64 {
	return boltzmann * temp / charge
}

// defaults 未给定的参数写入默认值
func defaults(r *osdi.Record, values map[int]float64) {
	for id, v := range values {
		r.SetParamAt(id, r.ParamAt(id, v))
	}
}

// check 收集越界参数
type check struct {
	r    *osdi.Record
	errs []osdi.InitError
}

// positive 参数必须大于 0
func (c *check) positive(id int) {
	if v := c.r.Value(id); !(v > 0) {
		c.errs = append(c.errs, osdi.OutOfBounds(id))
	}
}

// nonNegative 参数必须大于等于 0
func (c *check) nonNegative(id int) {
	if v := c.r.Value(id); !(v >= 0) || math.IsInf(v, 1) {
		c.errs = append(c.errs, osdi.OutOfBounds(id))
	}
}

// within 参数必须在 [lo, hi) 内
func (c *check) within(id int, lo, hi float64) {
	if v := c.r.Value(id); !(v >= lo && v < hi) {
		c.errs = append(c.errs, osdi.OutOfBounds(id))
	}
}

func (c *check) info() osdi.InitInfo {
	return osdi.InitInfo{Errors: c.errs}
}

// tnom 模型标称温度,未给定时取仿真器参数
func tnom(r *osdi.Record, id int, params ckt.SimParams) float64 {
	def := types.DefaultTnom
	if v, ok := params.Get("tnom"); ok {
		def = v
	}
	return r.ParamAt(id, def)
}
