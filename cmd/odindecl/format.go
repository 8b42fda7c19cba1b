package main

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/skdltmxn/odindecl/demangle"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// decoded is one name in json and yaml output.
type decoded struct {
	Raw         string                `json:"raw" yaml:"raw"`
	Rendered    string                `json:"rendered" yaml:"rendered"`
	Declaration *demangle.Declaration `json:"declaration,omitempty" yaml:"declaration,omitempty"`
	Error       string                `json:"error,omitempty" yaml:"error,omitempty"`
}

func decode(raw string) (decoded, error) {
	res, err := cache.Demangle(raw)
	d := decoded{Raw: raw, Rendered: res.Rendered, Declaration: res.Declaration}
	if err != nil {
		d.Error = err.Error()
	}
	return d, err
}

func writeStructured(v any) error {
	switch outputFormat {
	case formatJSON:
		enc := json.NewEncoder(output)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(output)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return nil
}
