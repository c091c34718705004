package ckt

import (
	"fmt"
	"os"

	"osdisim/types"

	"gopkg.in/yaml.v3"
)

// Options 电路仿真选项,温度单位为开尔文
type Options struct {
	Temp        float64 `yaml:"temp"`         // 电路温度
	Tnom        float64 `yaml:"tnom"`         // 参数标称温度
	Gmin        float64 `yaml:"gmin"`         // 最小电导
	MaxNodes    int     `yaml:"max_nodes"`    // 节点数量上限
	MaxElements int     `yaml:"max_elements"` // 矩阵元素数量上限
	MaxOrder    int     `yaml:"max_order"`    // 积分最高阶数,决定状态向量数量
	CSC         bool    `yaml:"csc"`          // 使用列压缩重排序求解器
}

// DefaultOptions 默认选项
func DefaultOptions() Options {
	return Options{
		Temp:        types.DefaultTemp,
		Tnom:        types.DefaultTnom,
		Gmin:        types.DefaultGmin,
		MaxNodes:    types.DefaultMaxNodes,
		MaxElements: types.DefaultMaxElement,
		MaxOrder:    2,
	}
}

// LoadOptions 读取 YAML 选项文件,未给出的字段使用默认值
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("reading options: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parsing options: %w", err)
	}
	return opts, opts.Validate()
}

// Validate 检查选项取值范围
func (o Options) Validate() error {
	if o.Temp <= 0 {
		return fmt.Errorf("temp must be > 0 K, got %g", o.Temp)
	}
	if o.Tnom <= 0 {
		return fmt.Errorf("tnom must be > 0 K, got %g", o.Tnom)
	}
	if o.Gmin < 0 {
		return fmt.Errorf("gmin must be >= 0, got %g", o.Gmin)
	}
	if o.MaxNodes < 0 || o.MaxElements < 0 {
		return fmt.Errorf("limits must be >= 0, got max_nodes=%d max_elements=%d", o.MaxNodes, o.MaxElements)
	}
	if o.MaxOrder < 1 {
		return fmt.Errorf("max_order must be >= 1, got %d", o.MaxOrder)
	}
	return nil
}
