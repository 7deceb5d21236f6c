package schemas

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v2"
)

type (
	// JSON is the type for arbitrary JSON.
	JSON = interface{}
	// JSONObject is the type for JSON objects.
	JSONObject = map[string]interface{}
	// JSONArray is the type for JSON arrays.
	JSONArray = []interface{}
)

// JSONFromYAML takes yaml-formatted bytes and converts them to json-format for the purpose of
// applying json-schema validation.
func JSONFromYAML(byts []byte) ([]byte, error) {
	var blob JSON
	if err := yaml.Unmarshal(byts, &blob); err != nil {
		return nil, errors.Wrap(err, "not valid yaml")
	}

	byts, err := json.Marshal(blob)
	if err != nil {
		return nil, errors.Wrap(err, "yaml is not convertible to json")
	}
	return byts, nil
}

// JoinErrors is like strings.Join but for []error types.
func JoinErrors(errs []error, joiner string) string {
	strs := make([]string, 0, len(errs))
	for _, err := range errs {
		strs = append(strs, err.Error())
	}
	return strings.Join(strs, joiner)
}

// ValidationFailure is one leaf of a schema validation error.
type ValidationFailure struct {
	// KeyPath is the dotted location of the offending value, like "data.transforms.random_flip.p"
	// or "custom_datasets.roots[1]". It is empty for the document root.
	KeyPath string
	// Value is the offending value, or nil when the key is missing.
	Value   interface{}
	Message string
}

func (f *ValidationFailure) Error() string {
	key := f.KeyPath
	if key == "" {
		key = "<root>"
	}
	if f.Value == nil {
		return fmt.Sprintf("%s: %s", key, f.Message)
	}
	return fmt.Sprintf("%s (value %v): %s", key, renderValue(f.Value), f.Message)
}

func renderValue(v interface{}) string {
	switch v.(type) {
	case JSONObject, JSONArray:
		byts, err := json.Marshal(v)
		if err == nil {
			return string(byts)
		}
	}
	return fmt.Sprintf("%v", v)
}

// GetRenderedErrors takes a jsonschema validation error plus the bytes that caused it and returns
// user-facing errors, sorted by key path.
func GetRenderedErrors(err error, byts []byte) []error {
	var instance JSON
	if uErr := json.Unmarshal(byts, &instance); uErr != nil {
		return []error{uErr}
	}

	tErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []error{err}
	}

	failures := getChildErrors(tErr, instance)
	sort.SliceStable(failures, func(i, j int) bool {
		if failures[i].KeyPath != failures[j].KeyPath {
			return failures[i].KeyPath < failures[j].KeyPath
		}
		return failures[i].Message < failures[j].Message
	})

	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, f)
	}
	return errs
}

// renderJSONPointer renders "#/key/0/key" as "key[0].key" and returns the value found there.
// The raw pointer is returned if it does not resolve in the instance.
func renderJSONPointer(ptr string, instance JSON) (string, JSON) {
	out := ""
	split := strings.Split(strings.TrimPrefix(ptr, "#"), "/")[1:]

	for _, s := range split {
		s = strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
		switch tInstance := instance.(type) {
		case JSONArray:
			i, err := strconv.Atoi(s)
			if err != nil || i >= len(tInstance) {
				return ptr, nil
			}
			instance = tInstance[i]
			out += fmt.Sprintf("[%d]", i)

		case JSONObject:
			var ok bool
			instance, ok = tInstance[s]
			if !ok {
				return ptr, nil
			}
			if out != "" {
				out += "."
			}
			out += s

		default:
			return ptr, nil
		}
	}
	return out, instance
}

// getChildErrors flattens a nested jsonschema error into its leaves.
func getChildErrors(valError *jsonschema.ValidationError, instance JSON) []*ValidationFailure {
	var out []*ValidationFailure
	for _, subError := range valError.Causes {
		out = append(out, getChildErrors(subError, instance)...)
	}
	if len(out) > 0 {
		return out
	}

	keyPath, value := renderJSONPointer(valError.InstancePtr, instance)
	if _, ok := value.(JSONObject); ok {
		// Errors about an object are about its keys; the object itself is noise.
		value = nil
	}
	return []*ValidationFailure{{KeyPath: keyPath, Value: value, Message: valError.Message}}
}
