package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// JSONSerializer handles the JSON envelope and the legacy JSON payloads.
type JSONSerializer struct {
	// Indent pretty-prints encoded blobs.
	Indent bool
}

// NewJSONSerializer creates a new JSON serializer with indented output.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{Indent: true}
}

func (s *JSONSerializer) Name() string { return "json" }
func (s *JSONSerializer) Ext() string  { return ".json" }

type jsonEnvelope struct {
	Version int             `json:"version"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

func (s *JSONSerializer) Encode(kind string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", kind, err)
	}
	env := jsonEnvelope{Version: CurrentVersion, Kind: kind, Data: data}
	if s.Indent {
		return json.MarshalIndent(env, "", "  ")
	}
	return json.Marshal(env)
}

func (s *JSONSerializer) Decode(data []byte, v any) (int, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return 0, errors.New("empty blob")
	}

	// Legacy collections are bare arrays.
	if trimmed[0] != '{' {
		if err := json.Unmarshal(trimmed, v); err != nil {
			return 0, fmt.Errorf("invalid json: %w", err)
		}
		return 0, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return 0, fmt.Errorf("invalid json: %w", err)
	}
	rawVersion, hasVersion := fields["version"]
	rawData, hasData := fields["data"]
	if !hasVersion || !hasData {
		// Legacy settings are a bare object.
		if err := json.Unmarshal(trimmed, v); err != nil {
			return 0, fmt.Errorf("invalid json: %w", err)
		}
		return 0, nil
	}

	var version int
	if err := json.Unmarshal(rawVersion, &version); err != nil {
		return 0, fmt.Errorf("invalid envelope version: %w", err)
	}
	if err := checkVersion(version); err != nil {
		return version, err
	}
	if err := json.Unmarshal(rawData, v); err != nil {
		return version, fmt.Errorf("invalid json payload: %w", err)
	}
	return version, nil
}
