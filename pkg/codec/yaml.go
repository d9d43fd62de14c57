package codec

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLSerializer handles the YAML envelope. Bare YAML payloads are accepted the same way
// bare JSON ones are.
type YAMLSerializer struct{}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer() *YAMLSerializer {
	return &YAMLSerializer{}
}

func (s *YAMLSerializer) Name() string { return "yaml" }
func (s *YAMLSerializer) Ext() string  { return ".yaml" }

type yamlEnvelope struct {
	Version int    `yaml:"version"`
	Kind    string `yaml:"kind"`
	Data    any    `yaml:"data"`
}

func (s *YAMLSerializer) Encode(kind string, v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(yamlEnvelope{Version: CurrentVersion, Kind: kind, Data: v}); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", kind, err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *YAMLSerializer) Decode(data []byte, v any) (int, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("invalid yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return 0, errors.New("empty blob")
	}
	root := doc.Content[0]

	if root.Kind != yaml.MappingNode {
		if err := root.Decode(v); err != nil {
			return 0, fmt.Errorf("invalid yaml: %w", err)
		}
		return 0, nil
	}

	versionNode := mappingValue(root, "version")
	dataNode := mappingValue(root, "data")
	if versionNode == nil || dataNode == nil {
		if err := root.Decode(v); err != nil {
			return 0, fmt.Errorf("invalid yaml: %w", err)
		}
		return 0, nil
	}

	var version int
	if err := versionNode.Decode(&version); err != nil {
		return 0, fmt.Errorf("invalid envelope version: %w", err)
	}
	if err := checkVersion(version); err != nil {
		return version, err
	}
	if err := dataNode.Decode(v); err != nil {
		return version, fmt.Errorf("invalid yaml payload: %w", err)
	}
	return version, nil
}

// mappingValue returns the value node stored under key in a mapping node.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
