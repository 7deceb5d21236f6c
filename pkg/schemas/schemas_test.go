package schemas

import (
	"testing"

	"gotest.tools/assert"

	"github.com/determined-ai/trainconf/pkg/ptrs"
)

func TestRenderJSONPointer(t *testing.T) {
	instance := JSONObject{
		"custom_datasets": JSONObject{"roots": JSONArray{"a", "b"}},
		"data":            JSONObject{"transforms": JSONObject{"random_flip": JSONObject{"p": 1.5}}},
	}

	cases := []struct {
		ptr     string
		keyPath string
		value   JSON
	}{
		{"#", "", instance},
		{"#/custom_datasets/roots/1", "custom_datasets.roots[1]", "b"},
		{"#/data/transforms/random_flip/p", "data.transforms.random_flip.p", 1.5},
		{"#/data/nope", "#/data/nope", nil},
		{"#/custom_datasets/roots/7", "#/custom_datasets/roots/7", nil},
	}
	for _, tc := range cases {
		keyPath, value := renderJSONPointer(tc.ptr, instance)
		assert.Equal(t, keyPath, tc.keyPath, tc.ptr)
		if tc.value == nil {
			assert.Assert(t, value == nil, tc.ptr)
		}
	}
	_, value := renderJSONPointer("#/data/transforms/random_flip/p", instance)
	assert.Equal(t, value, 1.5)
}

func TestValidateBytes(t *testing.T) {
	validator := GetSanityValidator(URLPrefix + "lr-finder.json")

	assert.Assert(t, len(ValidateBytes(validator, []byte(`{"min_lr": 0.001, "max_lr": 0.1}`))) == 0)

	errs := ValidateBytes(validator, []byte(`{"min_lr": 0.5, "max_lr": 0.1, "n_trials": 0}`))
	assert.Equal(t, len(errs), 2)

	var keys []string
	for _, err := range errs {
		keys = append(keys, err.(*ValidationFailure).KeyPath)
	}
	assert.DeepEqual(t, keys, []string{"", "n_trials"})
	assert.ErrorContains(t, errs[0], "<root>: min_lr must be less than or equal to max_lr")
	assert.ErrorContains(t, errs[1], "n_trials (value 0)")
}

func TestValidatorsAreCached(t *testing.T) {
	a := GetSanityValidator(ConfigURL)
	b := GetSanityValidator(ConfigURL)
	assert.Assert(t, a == b)
	assert.Assert(t, GetCompletenessValidator(ConfigURL) != a)
}

func TestEverySchemaCompiles(t *testing.T) {
	for url := range schemaBytesMap() {
		GetSanityValidator(url)
		GetCompletenessValidator(url)
	}
}

func TestJSONFromYAML(t *testing.T) {
	byts, err := JSONFromYAML([]byte("model:\n  name: mobilenetv3_large\n"))
	assert.NilError(t, err)
	assert.Equal(t, string(byts), `{"model":{"name":"mobilenetv3_large"}}`)

	_, err = JSONFromYAML([]byte("model: [\n"))
	assert.ErrorContains(t, err, "not valid yaml")
}

type inner struct {
	P    *float64
	Tags []string
}

type outer struct {
	Name   string
	Inner  *inner
	Params map[string]interface{}
}

func TestCopy(t *testing.T) {
	src := outer{
		Name:   "random_flip",
		Inner:  &inner{P: ptrs.Ptr(0.5), Tags: []string{"a"}},
		Params: map[string]interface{}{"angle": []interface{}{-10.0, 10.0}},
	}
	dst := Copy(src)
	assert.DeepEqual(t, dst, src)

	*dst.Inner.P = 1
	dst.Inner.Tags[0] = "b"
	dst.Params["angle"].([]interface{})[0] = 0.0
	assert.Equal(t, *src.Inner.P, 0.5)
	assert.Equal(t, src.Inner.Tags[0], "a")
	assert.Equal(t, src.Params["angle"].([]interface{})[0], -10.0)

	var nothing interface{}
	assert.Assert(t, Copy(nothing) == nil)
}

func TestMergeMaps(t *testing.T) {
	parent := JSONObject{
		"model": JSONObject{"name": "mobilenetv3_small", "pretrained": true},
		"data":  JSONObject{"norm_mean": JSONArray{0.485, 0.456, 0.406}},
		"train": JSONObject{"lr": 0.01},
	}
	child := JSONObject{
		"model": JSONObject{"name": "mobilenetv3_large"},
		"data":  JSONObject{"norm_mean": JSONArray{0.5}},
		"test":  JSONObject{"eval_freq": 1},
	}

	merged := MergeMaps(child, parent)
	assert.DeepEqual(t, merged, JSONObject{
		"model": JSONObject{"name": "mobilenetv3_large", "pretrained": true},
		"data":  JSONObject{"norm_mean": JSONArray{0.5}},
		"train": JSONObject{"lr": 0.01},
		"test":  JSONObject{"eval_freq": 1},
	})

	merged["train"].(JSONObject)["lr"] = 1.0
	assert.Equal(t, parent["train"].(JSONObject)["lr"], 0.01)
	assert.Equal(t, len(child["model"].(JSONObject)), 1)

	assert.DeepEqual(t, MergeMaps(nil, JSONObject{"a": 1}), JSONObject{"a": 1})
}
