package story

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Property is one style attribute of a preset, e.g. {fontSize, 1.2em}.
type Property struct {
	Name  string
	Value string
}

// Preset is an ordered list of style attributes.
type Preset []Property

// CSS renders the preset as inline CSS. camelCase names become kebab-case:
// {fontSize, 1.2em} renders as "font-size: 1.2em;".
func (p Preset) CSS() string {
	var b strings.Builder
	for _, prop := range p {
		b.WriteString(kebab(prop.Name))
		b.WriteString(": ")
		b.WriteString(prop.Value)
		b.WriteByte(';')
	}
	return b.String()
}

func kebab(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Presets maps preset names used by <style:name> markup to styles.
type Presets map[string]Preset

// CSS looks up a preset and renders it.
func (p Presets) CSS(name string) (string, bool) {
	preset, ok := p[name]
	if !ok {
		return "", false
	}
	return preset.CSS(), true
}

// DefaultPresets returns the built-in preset table.
func DefaultPresets() Presets {
	return Presets{
		"default": {},
		"yellow_large": {
			{Name: "color", Value: "yellow"},
			{Name: "fontSize", Value: "1.2em"},
			{Name: "fontWeight", Value: "bold"},
		},
		"red_bold": {
			{Name: "color", Value: "red"},
			{Name: "fontWeight", Value: "bold"},
		},
		"blue_italic": {
			{Name: "color", Value: "blue"},
			{Name: "fontStyle", Value: "italic"},
		},
	}
}

// UnmarshalYAML decodes a mapping of preset name to a mapping of
// properties, keeping property order as written.
func (p *Presets) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: presets must be a mapping", node.Line)
	}
	out := make(Presets, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name, body := node.Content[i].Value, node.Content[i+1]
		preset := Preset{}
		switch body.Kind {
		case yaml.MappingNode:
			for j := 0; j+1 < len(body.Content); j += 2 {
				k, v := body.Content[j], body.Content[j+1]
				if v.Kind != yaml.ScalarNode {
					return fmt.Errorf("line %d: preset %q property %q must be a scalar", v.Line, name, k.Value)
				}
				preset = append(preset, Property{Name: k.Value, Value: v.Value})
			}
		case yaml.ScalarNode:
			if body.Tag != "!!null" {
				return fmt.Errorf("line %d: preset %q must be a mapping", body.Line, name)
			}
		default:
			return fmt.Errorf("line %d: preset %q must be a mapping", body.Line, name)
		}
		out[name] = preset
	}
	*p = out
	return nil
}

// LoadPresets reads a preset table from a YAML (or JSON) file.
func LoadPresets(path string) (Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	var p Presets
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode presets %s: %w", path, err)
	}
	return p, nil
}
