package schemas

import (
	"bytes"
	"embed"
	"encoding/json"
	"path"
	"sync"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v2"

	"github.com/determined-ai/trainconf/pkg/schemas/extensions"
)

//go:embed json/*.json
var schemaFS embed.FS

// URLPrefix is the base of every schema $id.
const URLPrefix = "http://determined.ai/schemas/trainconf/v0/"

// ConfigURL is the url of the top-level training config schema.
const ConfigURL = URLPrefix + "config.json"

// Schema defines what IsSane and IsComplete need to validate a typed object.
type Schema interface {
	SanityValidator() *jsonschema.Schema
	CompletenessValidator() *jsonschema.Schema
}

// IsSane ensures that the object is valid, modulo fields which are eventuallyRequired but not
// required.
func IsSane(schema Schema) (bool, []error) {
	return validateObject(schema, schema.SanityValidator())
}

// IsComplete ensures that the object is totally valid, including eventuallyRequired fields.
func IsComplete(schema Schema) (bool, []error) {
	return validateObject(schema, schema.CompletenessValidator())
}

func validateObject(obj interface{}, validator *jsonschema.Schema) (bool, []error) {
	byts, err := json.Marshal(obj)
	if err != nil {
		return false, []error{errors.Wrap(err, "json marshal failed")}
	}
	errs := ValidateBytes(validator, byts)
	return len(errs) == 0, errs
}

// ValidateBytes checks json-formatted bytes against a validator and returns the rendered
// failures, one *ValidationFailure per offending location.
func ValidateBytes(validator *jsonschema.Schema, byts []byte) []error {
	err := validator.Validate(bytes.NewReader(byts))
	if err == nil {
		return nil
	}
	return GetRenderedErrors(err, byts)
}

var (
	validatorsMu           sync.Mutex
	sanityValidators       = map[string]*jsonschema.Schema{}
	completenessValidators = map[string]*jsonschema.Schema{}
)

// schemaBytesMap returns the embedded schemas keyed by their url.
func schemaBytesMap() map[string][]byte {
	entries, err := schemaFS.ReadDir("json")
	if err != nil {
		panic(err)
	}
	out := map[string][]byte{}
	for _, entry := range entries {
		byts, err := schemaFS.ReadFile(path.Join("json", entry.Name()))
		if err != nil {
			panic(err)
		}
		out[URLPrefix+entry.Name()] = byts
	}
	return out
}

// newCompiler returns a jsonschema.Compiler with all the schemas preloaded.
func newCompiler() *jsonschema.Compiler {
	compiler := jsonschema.NewCompiler()
	for url, byts := range schemaBytesMap() {
		if err := compiler.AddResource(url, bytes.NewReader(byts)); err != nil {
			panic("invalid schema: " + url)
		}
	}
	compiler.Extensions["checks"] = extensions.ChecksExtension()
	compiler.Extensions["compareProperties"] = extensions.ComparePropertiesExtension()
	compiler.Extensions["conditional"] = extensions.ConditionalExtension()
	return compiler
}

func getValidator(url string, cache map[string]*jsonschema.Schema, complete bool) *jsonschema.Schema {
	validatorsMu.Lock()
	defer validatorsMu.Unlock()

	if validator, ok := cache[url]; ok {
		return validator
	}

	compiler := newCompiler()
	if complete {
		compiler.Extensions["eventuallyRequired"] = extensions.EventuallyRequiredExtension()
	}

	validator, err := compiler.Compile(url)
	if err != nil {
		panic("uncompilable schema: " + url + ": " + err.Error())
	}
	cache[url] = validator
	return validator
}

// GetSanityValidator returns the compiled validator for a schema url, where eventuallyRequired
// is not enforced.
func GetSanityValidator(url string) *jsonschema.Schema {
	return getValidator(url, sanityValidators, false)
}

// GetCompletenessValidator returns the compiled validator for a schema url, where
// eventuallyRequired is enforced.
func GetCompletenessValidator(url string) *jsonschema.Schema {
	return getValidator(url, completenessValidators, true)
}
