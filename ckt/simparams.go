package ckt

import (
	"os"

	"osdisim/types"
)

// SimParams 传递给器件模型的仿真器参数
type SimParams struct {
	Names     []string  // 实数参数名
	Values    []float64 // 实数参数值
	NamesStr  []string  // 字符串参数名
	ValuesStr []string  // 字符串参数值
}

// Get 按名称查找实数参数
func (p SimParams) Get(name string) (float64, bool) {
	for i, n := range p.Names {
		if n == name {
			return p.Values[i], true
		}
	}
	return 0, false
}

// GetString 按名称查找字符串参数
func (p SimParams) GetString(name string) (string, bool) {
	for i, n := range p.NamesStr {
		if n == name {
			return p.ValuesStr[i], true
		}
	}
	return "", false
}

// SimParams 当前电路的仿真器参数
func (c *Circuit) SimParams() SimParams {
	cwd, _ := os.Getwd()
	return SimParams{
		Names:     []string{"gdev", "gmin", "tnom", "simulatorVersion", "sourceScaleFactor", "initializeLimiting"},
		Values:    []float64{0, c.Options.Gmin, c.Options.Tnom, types.SimulatorVersion, 1, 0},
		NamesStr:  []string{"cwd"},
		ValuesStr: []string{cwd},
	}
}
