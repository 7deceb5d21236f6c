package extensions

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v2"
)

// compareProperties relates two sibling properties of an object:
//
//	"compareProperties": {"type": "a<=b", "a": "min_lr", "b": "max_lr"}
//
// Supported types are "a<=b" and "a<b" for numbers and "same_length" for arrays. The comparison is
// skipped when either property is absent or null, or has the wrong type; type errors are reported
// by the properties' own schemas.
type compareProperties struct {
	Type string
	A    string
	B    string
}

func comparePropertiesCompile(
	ctx jsonschema.CompilerContext, m JSONObject,
) (interface{}, error) {
	raw, ok := m["compareProperties"]
	if !ok {
		return nil, nil
	}
	obj := raw.(JSONObject)
	return compareProperties{
		Type: obj["type"].(string),
		A:    obj["a"].(string),
		B:    obj["b"].(string),
	}, nil
}

func asNumber(v JSON) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func comparePropertiesValidate(
	ctx jsonschema.ValidationContext, rawCompiled interface{}, instance JSON,
) error {
	object, ok := instance.(JSONObject)
	if !ok {
		return nil
	}
	cmp := rawCompiled.(compareProperties)

	rawA, okA := object[cmp.A]
	rawB, okB := object[cmp.B]
	if !okA || !okB || rawA == nil || rawB == nil {
		return nil
	}

	switch cmp.Type {
	case "same_length":
		a, okA := rawA.(JSONArray)
		b, okB := rawB.(JSONArray)
		if okA && okB && len(a) != len(b) {
			return ctx.Error("compareProperties", fmt.Sprintf(
				"%s and %s must have the same length (%d != %d)", cmp.A, cmp.B, len(a), len(b)))
		}
	case "a<=b", "a<b":
		a, okA := asNumber(rawA)
		b, okB := asNumber(rawB)
		if !okA || !okB {
			return nil
		}
		if cmp.Type == "a<=b" && a > b {
			return ctx.Error("compareProperties",
				fmt.Sprintf("%s must be less than or equal to %s", cmp.A, cmp.B))
		}
		if cmp.Type == "a<b" && a >= b {
			return ctx.Error("compareProperties",
				fmt.Sprintf("%s must be less than %s", cmp.A, cmp.B))
		}
	}
	return nil
}

// ComparePropertiesExtension returns the "compareProperties" extension.
func ComparePropertiesExtension() jsonschema.Extension {
	meta, err := jsonschema.CompileString("compareProperties.json", `{
		"properties" : {
			"compareProperties": {
				"type": "object",
				"additionalProperties": false,
				"required": ["type", "a", "b"],
				"properties": {
					"type": {"enum": ["a<=b", "a<b", "same_length"]},
					"a": {"type": "string"},
					"b": {"type": "string"}
				}
			}
		}
	}`)
	if err != nil {
		panic(err)
	}
	return jsonschema.Extension{
		Meta:     meta,
		Compile:  comparePropertiesCompile,
		Validate: comparePropertiesValidate,
	}
}
