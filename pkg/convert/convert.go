// Package convert rewrites serialized documents between formats. The document
// schemas are opaque: content passes through untouched apart from the encoding.
package convert

import (
	"bytes"
	"encoding/json"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// JSONToYAML converts a JSON document to its YAML rendering. Numbers are
// decoded with json.Number so that integer values survive the round trip
// without picking up a float representation.
func JSONToYAML(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Errorf("decoding JSON: %w", err)
	}

	out, err := yaml.Marshal(normalize(doc))
	if err != nil {
		return nil, errors.Errorf("encoding YAML: %w", err)
	}

	return out, nil
}

// normalize replaces json.Number values with int64 or float64 so the YAML
// encoder emits plain scalars instead of quoted strings.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}
