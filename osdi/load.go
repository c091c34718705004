package osdi

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// descriptorFile YAML 描述符
// instance_size 为 0 时由 Layout 计算全部偏移,否则使用文件中给出的偏移
type descriptorFile struct {
	Name                    string          `yaml:"name"`
	EntryPoints             string          `yaml:"entry_points"`
	NumTerminals            uint32          `yaml:"num_terminals"`
	Nodes                   []Node          `yaml:"nodes"`
	Collapsible             []NodePair      `yaml:"collapsible"`
	JacobianEntries         []JacobianEntry `yaml:"jacobian_entries"`
	NumStates               uint32          `yaml:"num_states"`
	Params                  []paramFile     `yaml:"params"`
	NodeMappingOffset       uint32          `yaml:"node_mapping_offset"`
	CollapsedOffset         uint32          `yaml:"collapsed_offset"`
	StateIdxOffset          uint32          `yaml:"state_idx_offset"`
	JacobianPtrResistOffset uint32          `yaml:"jacobian_ptr_resist_offset"`
	InstanceSize            uint32          `yaml:"instance_size"`
	ModelSize               uint32          `yaml:"model_size"`
}

type paramFile struct {
	ParamOpvar `yaml:",inline"`
	Kind       string `yaml:"kind"` // model | instance | opvar
}

// nodeRef 节点对中允许使用 gnd 表示折叠到地
type nodeRef uint32

func (n *nodeRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Value == "gnd" {
		*n = nodeRef(Unused)
		return nil
	}
	var v uint32
	if err := value.Decode(&v); err != nil {
		return err
	}
	*n = nodeRef(v)
	return nil
}

// UnmarshalYAML 支持 [a, b] 或 {node_1: a, node_2: b}
func (p *NodePair) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var pair []nodeRef
		if err := value.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("line %d: node pair needs 2 entries, got %d", value.Line, len(pair))
		}
		p.Node1, p.Node2 = uint32(pair[0]), uint32(pair[1])
		return nil
	}
	var m struct {
		Node1 nodeRef `yaml:"node_1"`
		Node2 nodeRef `yaml:"node_2"`
	}
	if err := value.Decode(&m); err != nil {
		return err
	}
	p.Node1, p.Node2 = uint32(m.Node1), uint32(m.Node2)
	return nil
}

// LoadDescriptor 读取 YAML 描述符文件
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor: %w", err)
	}
	return ParseDescriptor(data)
}

// ParseDescriptor 解析 YAML 描述符,入口函数按 entry_points 名称查找
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var f descriptorFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing descriptor: %w", err)
	}
	impl, ok := implementations[f.EntryPoints]
	if !ok {
		return nil, fmt.Errorf("descriptor %s: unknown entry points %q", f.Name, f.EntryPoints)
	}
	d := &Descriptor{
		Name:                    f.Name,
		NumNodes:                uint32(len(f.Nodes)),
		NumTerminals:            f.NumTerminals,
		Nodes:                   f.Nodes,
		Collapsible:             f.Collapsible,
		JacobianEntries:         f.JacobianEntries,
		NumStates:               f.NumStates,
		NodeMappingOffset:       f.NodeMappingOffset,
		CollapsedOffset:         f.CollapsedOffset,
		StateIdxOffset:          f.StateIdxOffset,
		JacobianPtrResistOffset: f.JacobianPtrResistOffset,
		InstanceSize:            f.InstanceSize,
		ModelSize:               f.ModelSize,
		SetupModel:              impl.setupModel,
		SetupInstance:           impl.setupInstance,
	}
	for _, p := range f.Params {
		switch p.Kind {
		case "", "model":
			p.Flags = p.Flags&^ParaKindMask | ParaKindModel
		case "instance":
			p.Flags = p.Flags&^ParaKindMask | ParaKindInst
		case "opvar":
			p.Flags = p.Flags&^ParaKindMask | ParaKindOpvar
		default:
			return nil, fmt.Errorf("descriptor %s: parameter %v has unknown kind %q", f.Name, p.Name, p.Kind)
		}
		d.Params = append(d.Params, p.ParamOpvar)
	}
	if d.InstanceSize == 0 {
		d.Layout()
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
