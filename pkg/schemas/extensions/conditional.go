package extensions

import (
	"github.com/santhosh-tekuri/jsonschema/v2"
)

// conditional enforces a schema only when a test schema passes ("when") or fails ("unless").
// Unlike if/then, the errors shown are those of the enforced schema.
type conditional struct {
	Test *jsonschema.Schema
	// EnforceOnPass is true for "when" and false for "unless".
	EnforceOnPass bool
	Enforce       *jsonschema.Schema
}

func conditionalCompile(ctx jsonschema.CompilerContext, m JSONObject) (interface{}, error) {
	rawConditional, ok := m["conditional"]
	if !ok {
		return nil, nil
	}
	cond := rawConditional.(JSONObject)

	rawTest, enforceOnPass := cond["when"]
	if !enforceOnPass {
		rawTest = cond["unless"]
	}
	test, err := ctx.Compile(rawTest)
	if err != nil {
		return nil, err
	}

	enforce, err := ctx.Compile(cond["enforce"])
	if err != nil {
		return nil, err
	}

	return conditional{Test: test, EnforceOnPass: enforceOnPass, Enforce: enforce}, nil
}

func conditionalValidate(
	ctx jsonschema.ValidationContext, rawConditional interface{}, instance JSON,
) error {
	cond := rawConditional.(conditional)

	passed := ctx.Validate(cond.Test, instance) == nil
	if passed != cond.EnforceOnPass {
		return nil
	}

	err := ctx.Validate(cond.Enforce, instance)
	if err == nil {
		return nil
	}

	var x jsonschema.ValidationError
	return x.Group(ctx.Error("conditional", "conditional failed"), err)
}

// ConditionalExtension returns the "conditional" extension.
func ConditionalExtension() jsonschema.Extension {
	meta, err := jsonschema.CompileString("conditionalExtension.json", `{
		"properties" : {
			"conditional": {
				"additionalProperties": false,
				"required": ["enforce"],
				"oneOf": [{"required": ["when"]}, {"required": ["unless"]}],
				"properties": {
					"when": true,
					"unless": true,
					"enforce": true,
					"$comment": {"type": "string"}
				}
			}
		}
	}`)
	if err != nil {
		panic(err)
	}
	return jsonschema.Extension{
		Meta:     meta,
		Compile:  conditionalCompile,
		Validate: conditionalValidate,
	}
}
