// Package predictor loads fitted regression models from local artifacts.
//
// An artifact is a JSON or YAML document that embeds the categorical
// encoding the model was fitted with, so a request can be scored without a
// separate preprocessing step.
package predictor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/evrange/core/model"
)

// decodeArtifact reads path into out. The extension selects the format.
func decodeArtifact(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(out)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(out)
	default:
		return fmt.Errorf("unsupported artifact extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("decode artifact %s: %w", path, err)
	}
	return nil
}

func categoricalField(name string) (model.Field, error) {
	f, ok := model.ParseField(name)
	if !ok || f == model.FieldVehicleAge {
		return "", fmt.Errorf("unknown categorical field %q", name)
	}
	return f, nil
}

// resolveFields keys m by categorical field. Names are matched the way
// ParseField does, so two spellings of one field are rejected.
func resolveFields[V any](m map[string]V) (map[model.Field]V, error) {
	out := make(map[model.Field]V, len(m))
	names := make(map[model.Field]string, len(m))
	for name, v := range m {
		f, err := categoricalField(name)
		if err != nil {
			return nil, err
		}
		if prev, dup := names[f]; dup {
			a, b := prev, name
			if b < a {
				a, b = b, a
			}
			return nil, fmt.Errorf("field %s given twice as %q and %q", f, a, b)
		}
		names[f] = name
		out[f] = v
	}
	return out, nil
}
