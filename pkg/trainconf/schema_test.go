package trainconf

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/ghodss/yaml"
	"gotest.tools/assert"

	"github.com/determined-ai/trainconf/pkg/schemas"
)

type JSON = interface{}

// SchemaTestCase describes a document and which schemas it should pass or fail.
type SchemaTestCase struct {
	Name     string    `json:"name"`
	Sane     *[]string `json:"sane"`
	Complete *[]string `json:"complete"`
	Errors   *struct {
		Sane     map[string][]string `json:"sane"`
		Complete map[string][]string `json:"complete"`
	} `json:"errors"`
	Case JSON `json:"case"`
}

func errorIn(expect string, errs []error) bool {
	for _, err := range errs {
		matched, rErr := regexp.MatchString(expect, err.Error())
		if rErr != nil {
			panic(rErr)
		}
		if matched {
			return true
		}
	}
	return false
}

func (tc SchemaTestCase) byts(t *testing.T) []byte {
	byts, err := json.Marshal(tc.Case)
	assert.NilError(t, err)
	return byts
}

func checkMatches(t *testing.T, byts []byte, urls []string, complete bool) {
	for _, url := range urls {
		validator := schemas.GetSanityValidator(url)
		if complete {
			validator = schemas.GetCompletenessValidator(url)
		}
		if errs := schemas.ValidateBytes(validator, byts); len(errs) > 0 {
			t.Errorf("errors matching %v:\n%v", url, schemas.JoinErrors(errs, "\n"))
		}
	}
}

func checkErrors(t *testing.T, byts []byte, expected map[string][]string, complete bool) {
	for url, patterns := range expected {
		validator := schemas.GetSanityValidator(url)
		if complete {
			validator = schemas.GetCompletenessValidator(url)
		}
		errs := schemas.ValidateBytes(validator, byts)
		if len(errs) == 0 {
			t.Errorf("expected error matching %v but got none", url)
			continue
		}
		for _, expect := range patterns {
			if !errorIn(expect, errs) {
				t.Errorf(
					"while validating %v\ndid not find a match to the pattern:\n    %q\nin:\n    %v",
					url, expect, schemas.JoinErrors(errs, "\n    "),
				)
			}
		}
	}
}

func (tc SchemaTestCase) run(t *testing.T) {
	byts := tc.byts(t)
	if tc.Sane != nil {
		checkMatches(t, byts, *tc.Sane, false)
	}
	if tc.Complete != nil {
		checkMatches(t, byts, *tc.Complete, true)
	}
	if tc.Errors != nil {
		checkErrors(t, byts, tc.Errors.Sane, false)
		checkErrors(t, byts, tc.Errors.Complete, true)
	}
}

func TestSchemaCases(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "schema_cases", "*.yaml"))
	assert.NilError(t, err)
	assert.Assert(t, len(files) > 0)

	for _, file := range files {
		byts, err := os.ReadFile(file)
		assert.NilError(t, err)

		var cases []SchemaTestCase
		assert.NilError(t, yaml.Unmarshal(byts, &cases))
		for _, tc := range cases {
			tc := tc
			t.Run(filepath.Base(file)+"/"+tc.Name, tc.run)
		}
	}
}
