package loader

import (
	"strings"

	"github.com/huandu/xstrings"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/determined-ai/trainconf/pkg/schemas"
)

// Override sets one key of a document, like `train.lr=0.01` on a command line.
type Override struct {
	KeyPath []string
	// Value is the parsed YAML scalar, list or mapping.
	Value interface{}
}

// ParseOverride parses "key.path=value". Keys are converted to snake_case, so "train.batchSize"
// and "train.batch_size" name the same key. The value is parsed as YAML, so "[a, b]" is a list
// and "0.01" a number.
func ParseOverride(s string) (Override, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return Override{}, errors.Errorf("override %q is not of the form key.path=value", s)
	}

	var path []string
	for _, part := range strings.Split(key, ".") {
		part = strings.TrimSpace(part)
		if part == "" {
			return Override{}, errors.Errorf("override %q has an empty key segment", s)
		}
		path = append(path, xstrings.ToSnakeCase(part))
	}

	var raw interface{}
	if err := yaml.Unmarshal([]byte(value), &raw); err != nil {
		return Override{}, errors.Wrapf(err, "override %q has an unparsable value", s)
	}
	parsed, err := normalize(raw, key)
	if err != nil {
		return Override{}, errors.Wrapf(err, "override %q", s)
	}
	return Override{KeyPath: path, Value: parsed}, nil
}

// ParseOverrides parses every override, stopping at the first malformed one.
func ParseOverrides(ss []string) ([]Override, error) {
	out := make([]Override, 0, len(ss))
	for _, s := range ss {
		o, err := ParseOverride(s)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// String renders the override back as key.path=value.
func (o Override) String() string {
	byts, err := yaml.Marshal(o.Value)
	value := strings.TrimSpace(string(byts))
	if err != nil {
		value = "?"
	}
	return strings.Join(o.KeyPath, ".") + "=" + value
}

// apply sets the override in obj, creating intermediate mappings as needed.
func (o Override) apply(obj schemas.JSONObject) error {
	cur := obj
	for i, part := range o.KeyPath[:len(o.KeyPath)-1] {
		next, ok := cur[part]
		if !ok || next == nil {
			created := schemas.JSONObject{}
			cur[part] = created
			cur = created
			continue
		}
		nextObj, ok := next.(schemas.JSONObject)
		if !ok {
			return errors.Errorf("cannot set %s: %s is not a mapping",
				strings.Join(o.KeyPath, "."), strings.Join(o.KeyPath[:i+1], "."))
		}
		cur = nextObj
	}
	cur[o.KeyPath[len(o.KeyPath)-1]] = schemas.Copy(o.Value)
	return nil
}
