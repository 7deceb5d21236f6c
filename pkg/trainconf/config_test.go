package trainconf

import (
	"encoding/json"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/require"
	"gotest.tools/assert"

	"github.com/determined-ai/trainconf/pkg/check"
	"github.com/determined-ai/trainconf/pkg/ptrs"
	"github.com/determined-ai/trainconf/pkg/schemas"
)

func validConfig() *Config {
	c := DefaultConfig()
	c.Model.Name = "mobilenetv3_large"
	c.Data.Root = "/data"
	return c
}

func TestDefaultConfigIsComplete(t *testing.T) {
	c := validConfig()
	assert.NilError(t, check.Validate(c))

	complete, errs := schemas.IsComplete(c)
	assert.Assert(t, complete, schemas.JoinErrors(errs, "\n"))
}

func TestDefaultConfigNeedsModelAndRoot(t *testing.T) {
	err := check.Validate(DefaultConfig())
	assert.ErrorContains(t, err, "root.model: model.name: expected a non-empty string")
	assert.ErrorContains(t, err, "root.data: data.root: expected a non-empty string")
}

func TestEarlyStoppingNeedsEveryEpochEval(t *testing.T) {
	c := validConfig()
	c.Train.EarlyStopping = true
	assert.ErrorContains(t, check.Validate(c),
		"train.early_stopping requires test.eval_freq to be 1")

	c.Test.EvalFreq = 1
	assert.NilError(t, check.Validate(c))
}

func TestWarmupScheduler(t *testing.T) {
	c := validConfig()
	c.Train.LRScheduler = SchedulerWarmup
	c.Train.Warmup = 0
	c.Train.BaseScheduler = ""

	err := check.Validate(c)
	assert.ErrorContains(t, err, "train.warmup with a warmup scheduler")
	assert.ErrorContains(t, err, "train.base_scheduler is required with a warmup scheduler")
}

func TestLRFinderBounds(t *testing.T) {
	c := validConfig()
	c.LRFinder.MinLR = 0.5
	c.LRFinder.MaxLR = 0.1
	assert.ErrorContains(t, check.Validate(c), "lr_finder.min_lr must not exceed max_lr")
}

func TestCustomDatasets(t *testing.T) {
	c := CustomDatasetsConfig{
		Roots: []string{"/data/cars/train", "/data/cars/val"},
		Types: []string{DatasetClassification, DatasetClassification},
		Names: []string{"cars_train", "cars_val"},
	}
	assert.NilError(t, check.Validate(c))
	assert.DeepEqual(t, c.Pairs(), []DatasetRef{
		{Root: "/data/cars/train", Type: DatasetClassification, Name: "cars_train"},
		{Root: "/data/cars/val", Type: DatasetClassification, Name: "cars_val"},
	})

	c.Types = c.Types[:1]
	assert.ErrorContains(t, check.Validate(c),
		"custom_datasets.roots and types: lengths differ: 2 != 1")
}

func TestLossParams(t *testing.T) {
	loss := *DefaultLossConfig()
	loss.Name = LossAMSoftmax
	params, err := loss.Params()
	assert.NilError(t, err)
	assert.Equal(t, params.S, 30.0)

	loss.Name = "triplet"
	_, err = loss.Params()
	assert.ErrorContains(t, err, `no parameters for loss "triplet"`)
	assert.ErrorContains(t, check.Validate(loss), "loss.name")
}

func TestLossDefaultsSurvivePartialBlock(t *testing.T) {
	c := validConfig()
	assert.NilError(t, yaml.Unmarshal([]byte(`
loss:
  name: am_softmax
  am_softmax:
    s: 20
`), c))
	params, err := c.Loss.Params()
	assert.NilError(t, err)
	assert.Equal(t, params.S, 20.0)
	assert.Equal(t, params.M, 0.35)
}

func TestTransformJSON(t *testing.T) {
	var transforms map[string]Transform
	require.NoError(t, yaml.Unmarshal([]byte(`
random_flip:
  enable: true
  p: 0.5
random_rotate:
  enable: false
  p: 0.35
  angle: [-10, 10]
augmix:
  enable: true
  cfg_str: augmix-m5-w3
`), &transforms))

	require.Equal(t, Transform{Enable: true, P: ptrs.Ptr(0.5)}, transforms["random_flip"])
	require.Equal(t, []interface{}{-10.0, 10.0}, transforms["random_rotate"].Params["angle"])
	require.Nil(t, transforms["augmix"].P)
	require.Equal(t, "augmix-m5-w3", transforms["augmix"].Params["cfg_str"])

	byts, err := json.Marshal(transforms["random_rotate"])
	require.NoError(t, err)
	require.JSONEq(t, `{"enable": false, "p": 0.35, "angle": [-10, 10]}`, string(byts))

	var again Transform
	require.NoError(t, json.Unmarshal(byts, &again))
	require.Equal(t, transforms["random_rotate"], again)

	require.Error(t, json.Unmarshal([]byte(`{"enable": "yes"}`), &again))
}

func TestTransformValidate(t *testing.T) {
	cases := []struct {
		name      string
		transform Transform
		wantErr   string
	}{
		{"valid", Transform{Enable: true, P: ptrs.Ptr(1.0)}, ""},
		{"p too large", Transform{Enable: true, P: ptrs.Ptr(1.2)}, "p: 1.2 is not in [0, 1]"},
		{"p negative", Transform{P: ptrs.Ptr(-0.1)}, "p: -0.1 is not in [0, 1]"},
		{
			"angle reversed",
			Transform{Params: map[string]interface{}{"angle": []interface{}{10.0, -10.0}}},
			"10 is not less than or equal to -10",
		},
		{
			"angle not a pair",
			Transform{Params: map[string]interface{}{"angle": []interface{}{10.0}}},
			"angle must be a [low, high] pair",
		},
		{
			"cutout factor",
			Transform{Params: map[string]interface{}{"cutout_factor": 2.0}},
			"cutout_factor: 2 is not in [0, 1]",
		},
		{
			"cfg_str type",
			Transform{Params: map[string]interface{}{"cfg_str": 3.0}},
			"cfg_str must be a string",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := check.Validate(tc.transform)
			if tc.wantErr == "" {
				assert.NilError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestEnabledTransforms(t *testing.T) {
	data := DataConfig{Transforms: map[string]Transform{
		"random_flip":  {Enable: true},
		"augmix":       {Enable: true},
		"random_crop":  {Enable: false},
		"random_erase": {Enable: true},
	}}
	assert.DeepEqual(t, data.EnabledTransforms(), []string{"augmix", "random_erase", "random_flip"})
}

func TestPrintableIsSortedYAML(t *testing.T) {
	printable, err := validConfig().Printable()
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(printable, &back, yaml.DisallowUnknownFields))
	require.Equal(t, *validConfig(), back)
	require.Regexp(t, `(?s)^custom_datasets:.*\ndata:.*\nlr_finder:.*\nmodel:`, string(printable))
}
