package extensions

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v2"
)

// eventuallyRequired lists properties that may be omitted from a user document, because defaults
// fill them in, but must be present in a complete one. Only the completeness validator registers
// this extension.
func eventuallyRequiredCompile(ctx jsonschema.CompilerContext, m JSONObject) (interface{}, error) {
	eventuallyRequired, ok := m["eventuallyRequired"]
	if !ok {
		return nil, nil
	}

	var required []string
	for _, prop := range eventuallyRequired.(JSONArray) {
		required = append(required, prop.(string))
	}
	return required, nil
}

func eventuallyRequiredValidate(
	ctx jsonschema.ValidationContext, rawRequired interface{}, instance JSON,
) error {
	object, ok := instance.(JSONObject)
	if !ok {
		return nil
	}

	var errors []error
	for _, prop := range rawRequired.([]string) {
		if value, ok := object[prop]; ok && value != nil {
			continue
		}
		reason := fmt.Sprintf("%v is a required property", prop)
		errors = append(errors, ctx.Error("eventuallyRequired", reason))
	}
	if len(errors) == 0 {
		return nil
	}

	var x jsonschema.ValidationError
	return x.Group(ctx.Error("eventuallyRequired", "missing required properties"), errors...)
}

// EventuallyRequiredExtension returns the "eventuallyRequired" extension.
func EventuallyRequiredExtension() jsonschema.Extension {
	meta, err := jsonschema.CompileString("eventuallyRequired.json", `{
		"properties" : {
			"eventuallyRequired": {
				"type": "array",
				"items": { "type": "string" }
			}
		}
	}`)
	if err != nil {
		panic(err)
	}
	return jsonschema.Extension{
		Meta:     meta,
		Compile:  eventuallyRequiredCompile,
		Validate: eventuallyRequiredValidate,
	}
}
