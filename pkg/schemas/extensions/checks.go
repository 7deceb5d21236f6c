// Extensions for the santhosh-tekuri/jsonschema package.
//
// An extension has three parts:
//
//   - A compile function, called once for every appearance of the extension keyword in a schema.
//     It receives the schema object containing the keyword and returns whatever the validate
//     function needs.
//
//   - A validate function, called for every instance checked against that appearance. It gets the
//     output of the matching compile call.
//
//   - A metaschema describing how the keyword itself may be written.

package extensions

import (
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v2"
)

// checks maps a custom error message to a subschema. The message is reported instead of the
// subschema's own errors:
//
//	"checks": {
//	    "eval_freq must be -1 or a positive number of epochs": {"not": {"const": 0}}
//	}
func checksCompile(ctx jsonschema.CompilerContext, m JSONObject) (interface{}, error) {
	rawChecks, ok := m["checks"]
	if !ok {
		return nil, nil
	}

	compiled := map[string]*jsonschema.Schema{}
	for msg, rawSchema := range rawChecks.(JSONObject) {
		schema, err := ctx.Compile(rawSchema)
		if err != nil {
			return nil, err
		}
		compiled[msg] = schema
	}
	return compiled, nil
}

func checksValidate(
	ctx jsonschema.ValidationContext, rawCompiled interface{}, instance JSON,
) error {
	compiled := rawCompiled.(map[string]*jsonschema.Schema)

	msgs := make([]string, 0, len(compiled))
	for msg := range compiled {
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)

	var errors []error
	for _, msg := range msgs {
		if err := ctx.Validate(compiled[msg], instance); err != nil {
			errors = append(errors, ctx.Error("checks", msg))
		}
	}
	if len(errors) == 0 {
		return nil
	}

	// Only the leaves of the returned tree are shown to users.
	var x jsonschema.ValidationError
	return x.Group(ctx.Error("checks", "checks failed"), errors...)
}

// ChecksExtension returns the "checks" extension.
func ChecksExtension() jsonschema.Extension {
	meta, err := jsonschema.CompileString("checksExtension.json", `{
		"properties" : {
			"checks": {
				"additionalProperties": { "type": "object" }
			}
		}
	}`)
	if err != nil {
		panic(err)
	}
	return jsonschema.Extension{
		Meta:     meta,
		Compile:  checksCompile,
		Validate: checksValidate,
	}
}
