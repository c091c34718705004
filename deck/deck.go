// Package deck 读取和导出 YAML 格式的电路描述
package deck

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"osdisim/ckt"
	"osdisim/osdi"
	"osdisim/types"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Unconnected 未连接端子的节点名称
const Unconnected = "nc"

// Model 模型卡
type Model struct {
	Name   string             `yaml:"name"`
	Device string             `yaml:"device"` // 描述符名称
	Params map[string]float64 `yaml:"params,omitempty"`
}

// Instance 器件实例
type Instance struct {
	Name   string             `yaml:"name"`
	Model  string             `yaml:"model"`
	Nodes  []string           `yaml:"nodes"` // 按端子顺序,"0"/"gnd" 为地,"nc" 为未连接
	Params map[string]float64 `yaml:"params,omitempty"`
	Temp   *float64           `yaml:"temp,omitempty"`  // 实例温度 (K)
	Dtemp  *float64           `yaml:"dtemp,omitempty"` // 温度偏移 (K)
}

// Deck 电路描述
type Deck struct {
	Options     *ckt.Options `yaml:"options,omitempty"`
	Descriptors []string     `yaml:"descriptors,omitempty"` // 外部描述符文件,相对于电路文件
	Models      []Model      `yaml:"models"`
	Instances   []Instance   `yaml:"instances"`

	dir string
}

// Load 读取电路文件
func Load(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d.dir = filepath.Dir(path)
	return d, nil
}

// Parse 解析电路描述,未给出的选项使用默认值
func Parse(data []byte) (*Deck, error) {
	d := &Deck{}
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("parsing deck: %w", err)
	}
	opts := ckt.DefaultOptions()
	if d.Options != nil {
		// 以默认值为底重新解析选项
		var raw struct {
			Options yaml.Node `yaml:"options"`
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing deck: %w", err)
		}
		if err := raw.Options.Decode(&opts); err != nil {
			return nil, fmt.Errorf("parsing options: %w", err)
		}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	d.Options = &opts
	return d, d.check()
}

// check 名称唯一且实例引用的模型存在
func (d *Deck) check() error {
	models := map[string]bool{}
	for _, m := range d.Models {
		if m.Name == "" || m.Device == "" {
			return fmt.Errorf("model %q: name and device are required", m.Name)
		}
		if models[m.Name] {
			return fmt.Errorf("duplicate model %s", m.Name)
		}
		models[m.Name] = true
	}
	instances := map[string]bool{}
	for _, inst := range d.Instances {
		if instances[inst.Name] {
			return fmt.Errorf("duplicate instance %s", inst.Name)
		}
		instances[inst.Name] = true
		if !models[inst.Model] {
			return fmt.Errorf("instance %s: unknown model %s", inst.Name, inst.Model)
		}
	}
	return nil
}

// Save 导出电路文件
func (d *Deck) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	enc := yaml.NewEncoder(file)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

// descriptor 查找器件描述符,电路文件引用的外部描述符优先
func (d *Deck) descriptor(name string, local map[string]*osdi.Descriptor) (*osdi.Descriptor, error) {
	if desc, ok := local[name]; ok {
		return desc, nil
	}
	if desc, ok := osdi.Lookup(name); ok {
		return desc, nil
	}
	return nil, fmt.Errorf("unknown device %s (registered: %v)", name, osdi.Names())
}

// Build 在电路中建立外部节点,并按器件类型首次出现的顺序生成模型列表
func (d *Deck) Build(c *ckt.Circuit) ([]*osdi.ModelList, error) {
	local := map[string]*osdi.Descriptor{}
	for _, file := range d.Descriptors {
		if !filepath.IsAbs(file) {
			file = filepath.Join(d.dir, file)
		}
		desc, err := osdi.LoadDescriptor(file)
		if err != nil {
			return nil, err
		}
		local[desc.Name] = desc
	}

	var lists []*osdi.ModelList
	byDevice := map[string]*osdi.ModelList{}
	models := map[string]*osdi.Model{}
	for _, m := range d.Models {
		desc, err := d.descriptor(m.Device, local)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", m.Name, err)
		}
		list, ok := byDevice[desc.Name]
		if !ok {
			list = osdi.NewModelList(desc)
			byDevice[desc.Name] = list
			lists = append(lists, list)
		}
		model := list.AddModel(m.Name)
		if err := setParams(model.Data, m.Params); err != nil {
			return nil, fmt.Errorf("model %s: %w", m.Name, err)
		}
		models[m.Name] = model
	}

	for _, in := range d.Instances {
		model := models[in.Model]
		terminals := make([]int, len(in.Nodes))
		for i, name := range in.Nodes {
			if name == Unconnected || name == "" {
				terminals[i] = types.Unconnected
				continue
			}
			n, err := c.Node(name)
			if err != nil {
				return nil, fmt.Errorf("instance %s: %w", in.Name, err)
			}
			terminals[i] = n.Number
		}
		inst, err := model.AddInstance(in.Name, terminals)
		if err != nil {
			return nil, err
		}
		if err := setParams(inst.Data, in.Params); err != nil {
			return nil, fmt.Errorf("instance %s: %w", in.Name, err)
		}
		if in.Temp != nil {
			inst.SetTemp(*in.Temp)
		}
		if in.Dtemp != nil {
			inst.SetDt(*in.Dtemp)
		}
	}
	logrus.WithFields(logrus.Fields{
		"devices":   len(lists),
		"models":    len(d.Models),
		"instances": len(d.Instances),
		"nodes":     c.LastNode(),
	}).Info("deck loaded")
	return lists, nil
}

// setParams 按名称排序写入参数,保证错误信息稳定
func setParams(r *osdi.Record, params map[string]float64) error {
	names := make([]string, 0, len(params))
	for n := range params {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if err := r.SetParam(n, params[n]); err != nil {
			return err
		}
	}
	return nil
}
