package osdi

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// entryPoints 入口函数实现
type entryPoints struct {
	setupModel    SetupModelFunc
	setupInstance SetupInstanceFunc
}

var (
	// descriptors 已注册的器件描述符
	descriptors = map[string]*Descriptor{}
	// implementations 按名称注册的入口函数,供 YAML 描述符引用
	implementations = map[string]entryPoints{}
)

// Register 注册器件描述符
// 名称重复会触发致命错误并终止程序
func Register(d *Descriptor) *Descriptor {
	if _, ok := descriptors[d.Name]; ok {
		logrus.Fatalf("device registered twice: %s", d.Name)
	}
	if err := d.Validate(); err != nil {
		logrus.Fatalf("invalid descriptor: %v", err)
	}
	descriptors[d.Name] = d
	return d
}

// Lookup 按名称查找描述符
func Lookup(name string) (*Descriptor, bool) {
	d, ok := descriptors[name]
	return d, ok
}

// Names 已注册的器件名称
func Names() []string {
	names := make([]string, 0, len(descriptors))
	for n := range descriptors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RegisterEntryPoints 按名称注册入口函数
func RegisterEntryPoints(name string, setupModel SetupModelFunc, setupInstance SetupInstanceFunc) {
	if _, ok := implementations[name]; ok {
		logrus.Fatalf("entry points registered twice: %s", name)
	}
	implementations[name] = entryPoints{setupModel: setupModel, setupInstance: setupInstance}
}
