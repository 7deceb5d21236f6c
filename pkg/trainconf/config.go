package trainconf

import (
	"encoding/json"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v2"

	"github.com/determined-ai/trainconf/pkg/check"
	"github.com/determined-ai/trainconf/pkg/schemas"
)

// DefaultConfig returns the values a training run uses for every key a document leaves out.
func DefaultConfig() *Config {
	return &Config{
		LRFinder: LRFinderConfig{
			Enable:        false,
			Mode:          LRFinderAutomatic,
			StopAfter:     false,
			NumEpochs:     3,
			Step:          0.001,
			EpochsWarmup:  2,
			PathToSavefig: "",
			MaxLR:         0.03,
			MinLR:         0.004,
			NTrials:       100,
		},
		Model: ModelConfig{
			Type:          ModelClassification,
			Pretrained:    false,
			SaveAllChkpts: false,
			FeatureDim:    512,
			DropoutCls: DropoutConfig{
				P:    0,
				Dist: DropoutNone,
			},
		},
		MutualLearning: MutualLearningConfig{
			AuxConfigs: []string{},
		},
		CustomDatasets: CustomDatasetsConfig{
			Roots: []string{},
			Types: []string{},
			Names: []string{},
		},
		Data: DataConfig{
			Sources:    []string{},
			Targets:    []string{},
			Height:     224,
			Width:      224,
			NormMean:   []float64{0.485, 0.456, 0.406},
			NormStd:    []float64{0.229, 0.224, 0.225},
			SaveDir:    "log",
			Workers:    4,
			Transforms: map[string]Transform{},
		},
		Loss:    *DefaultLossConfig(),
		Sampler: SamplerConfig{TrainSampler: SamplerRandom, NumInstances: 4},
		Train: TrainConfig{
			Optim:         OptimSGD,
			LR:            0.01,
			NBD:           false,
			MaxEpoch:      60,
			WeightDecay:   5e-4,
			BatchSize:     32,
			LRScheduler:   SchedulerSingleStep,
			Warmup:        1,
			BaseScheduler: SchedulerMultiStep,
			EarlyStopping: false,
			TrainPatience: 10,
			LRDecayFactor: 100,
			Deterministic: false,
			Patience:      5,
			Gamma:         0.1,
			Seed:          5,
			SAM:           SAMConfig{Rho: 0.05, Adaptive: false},
			EMA:           EMAConfig{Enable: false, EMADecay: 0.999},
			MixPrecision:  false,
		},
		Test: TestConfig{
			BatchSize: 100,
			Evaluate:  false,
			EvalFreq:  EvalAtEnd,
		},
	}
}

// Config is one training configuration document.
type Config struct {
	LRFinder       LRFinderConfig       `json:"lr_finder"`
	Model          ModelConfig          `json:"model"`
	MutualLearning MutualLearningConfig `json:"mutual_learning"`
	CustomDatasets CustomDatasetsConfig `json:"custom_datasets"`
	Data           DataConfig           `json:"data"`
	Loss           LossConfig           `json:"loss"`
	Sampler        SamplerConfig        `json:"sampler"`
	Train          TrainConfig          `json:"train"`
	Test           TestConfig           `json:"test"`
}

// Validate implements the check.Validatable interface for constraints spanning sections.
func (c Config) Validate() []error {
	var errs []error
	if c.Train.EarlyStopping {
		errs = append(errs, check.Equal(c.Test.EvalFreq, 1,
			"train.early_stopping requires test.eval_freq to be 1"))
	}
	return errs
}

// SanityValidator implements the schemas.Schema interface.
func (c Config) SanityValidator() *jsonschema.Schema {
	return schemas.GetSanityValidator(schemas.ConfigURL)
}

// CompletenessValidator implements the schemas.Schema interface.
func (c Config) CompletenessValidator() *jsonschema.Schema {
	return schemas.GetCompletenessValidator(schemas.ConfigURL)
}

// Printable returns the config as YAML with sorted keys.
func (c Config) Printable() ([]byte, error) {
	optJSON, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "unable to convert config to JSON")
	}
	optYAML, err := yaml.JSONToYAML(optJSON)
	if err != nil {
		return nil, errors.Wrap(err, "unable to convert config to YAML")
	}
	return optYAML, nil
}

// LRFinderConfig configures the learning-rate search run before training.
type LRFinderConfig struct {
	Enable        bool    `json:"enable"`
	Mode          string  `json:"mode"`
	StopAfter     bool    `json:"stop_after"`
	NumEpochs     int     `json:"num_epochs"`
	Step          float64 `json:"step"`
	EpochsWarmup  int     `json:"epochs_warmup"`
	PathToSavefig string  `json:"path_to_savefig"`
	MaxLR         float64 `json:"max_lr"`
	MinLR         float64 `json:"min_lr"`
	NTrials       int     `json:"n_trials"`
}

// Validate implements the check.Validatable interface.
func (c LRFinderConfig) Validate() []error {
	return []error{
		check.In(c.Mode, lrFinderModes, "lr_finder.mode"),
		check.GreaterThanOrEqualTo(float64(c.NumEpochs), 1, "lr_finder.num_epochs"),
		check.GreaterThan(c.Step, 0, "lr_finder.step"),
		check.GreaterThanOrEqualTo(float64(c.EpochsWarmup), 0, "lr_finder.epochs_warmup"),
		check.GreaterThan(c.MinLR, 0, "lr_finder.min_lr"),
		check.LessThanOrEqualTo(c.MinLR, c.MaxLR, "lr_finder.min_lr must not exceed max_lr"),
		check.GreaterThanOrEqualTo(float64(c.NTrials), 1, "lr_finder.n_trials"),
	}
}

// ModelConfig selects the network.
type ModelConfig struct {
	Name          string        `json:"name"`
	Type          string        `json:"type"`
	Pretrained    bool          `json:"pretrained"`
	SaveAllChkpts bool          `json:"save_all_chkpts"`
	FeatureDim    int           `json:"feature_dim"`
	DropoutCls    DropoutConfig `json:"dropout_cls"`
	LoadWeights   string        `json:"load_weights"`
	Resume        string        `json:"resume"`
}

// Validate implements the check.Validatable interface.
func (c ModelConfig) Validate() []error {
	return []error{
		check.NotEmpty(c.Name, "model.name"),
		check.In(c.Type, modelTypes, "model.type"),
		check.GreaterThanOrEqualTo(float64(c.FeatureDim), 1, "model.feature_dim"),
	}
}

// DropoutConfig is the dropout applied before the classifier.
type DropoutConfig struct {
	P    float64 `json:"p"`
	Dist string  `json:"dist"`
}

// Validate implements the check.Validatable interface.
func (c DropoutConfig) Validate() []error {
	return []error{
		check.Between(c.P, 0, 1, "model.dropout_cls.p"),
		check.In(c.Dist, dropoutDists, "model.dropout_cls.dist"),
	}
}

// MutualLearningConfig lists auxiliary model documents trained alongside this one.
type MutualLearningConfig struct {
	AuxConfigs []string `json:"aux_configs"`
}

// CustomDatasetsConfig lists dataset roots paired positionally with their formats.
type CustomDatasetsConfig struct {
	Roots []string `json:"roots"`
	Types []string `json:"types"`
	Names []string `json:"names"`
}

// Validate implements the check.Validatable interface.
func (c CustomDatasetsConfig) Validate() []error {
	errs := []error{check.SameLength(len(c.Roots), len(c.Types), "custom_datasets.roots and types")}
	if len(c.Names) > 0 {
		errs = append(errs,
			check.SameLength(len(c.Roots), len(c.Names), "custom_datasets.roots and names"))
	}
	for _, typ := range c.Types {
		errs = append(errs, check.In(typ, datasetTypes, "custom_datasets.types"))
	}
	return errs
}

// DatasetRef is one custom dataset.
type DatasetRef struct {
	Root string
	Type string
	// Name is empty when the document does not name its datasets.
	Name string
}

// Pairs returns the datasets with roots and types paired up. It assumes Validate passed.
func (c CustomDatasetsConfig) Pairs() []DatasetRef {
	out := make([]DatasetRef, 0, len(c.Roots))
	for i, root := range c.Roots {
		ref := DatasetRef{Root: root}
		if i < len(c.Types) {
			ref.Type = c.Types[i]
		}
		if i < len(c.Names) {
			ref.Name = c.Names[i]
		}
		out = append(out, ref)
	}
	return out
}

// SamplerConfig selects how training batches are drawn.
type SamplerConfig struct {
	TrainSampler string `json:"train_sampler"`
	NumInstances int    `json:"num_instances"`
}

// Validate implements the check.Validatable interface.
func (c SamplerConfig) Validate() []error {
	return []error{
		check.In(c.TrainSampler, samplers, "sampler.train_sampler"),
		check.GreaterThanOrEqualTo(float64(c.NumInstances), 1, "sampler.num_instances"),
	}
}

// TestConfig configures evaluation.
type TestConfig struct {
	BatchSize int  `json:"batch_size"`
	Evaluate  bool `json:"evaluate"`
	// EvalFreq is in epochs, or EvalAtEnd.
	EvalFreq int `json:"eval_freq"`
}

// Validate implements the check.Validatable interface.
func (c TestConfig) Validate() []error {
	return []error{
		check.GreaterThanOrEqualTo(float64(c.BatchSize), 1, "test.batch_size"),
		check.True(c.EvalFreq == EvalAtEnd || c.EvalFreq >= 1,
			"test.eval_freq must be -1 or a positive number of epochs"),
	}
}
