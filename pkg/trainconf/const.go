package trainconf

// Learning-rate finder search modes.
const (
	LRFinderAutomatic  = "automatic"
	LRFinderBruteForce = "brute_force"
	LRFinderTPE        = "TPE"
	LRFinderFastAI     = "fast_ai"
)

// Model types.
const (
	ModelClassification = "classification"
	ModelMultilabel     = "multilabel"
	ModelReID           = "reid"
)

// Classifier dropout distributions.
const (
	DropoutNone      = "none"
	DropoutBernoulli = "bernoulli"
	DropoutGaussian  = "gaussian"
	DropoutUniform   = "uniform"
)

// Custom dataset formats.
const (
	DatasetClassification            = "classification"
	DatasetClassificationImageFolder = "classification_image_folder"
	DatasetMultilabelClassification  = "multilabel_classification"
)

// Loss names. Each one also names the sub-mapping of the loss section holding its parameters.
const (
	LossSoftmax   = "softmax"
	LossAMSoftmax = "am_softmax"
	LossAMBinary  = "am_binary"
	LossASL       = "asl"
)

// Training samplers.
const (
	SamplerRandom         = "RandomSampler"
	SamplerSequential     = "SequentialSampler"
	SamplerRandomIdentity = "RandomIdentitySampler"
	SamplerClassBalanced  = "ClassBalancedSampler"
)

// Optimizers.
const (
	OptimSGD     = "sgd"
	OptimAdam    = "adam"
	OptimAMSGrad = "amsgrad"
	OptimRMSProp = "rmsprop"
	OptimRAdam   = "radam"
	OptimSAM     = "sam"
)

// Learning-rate schedulers.
const (
	SchedulerSingleStep      = "single_step"
	SchedulerMultiStep       = "multi_step"
	SchedulerCosine          = "cosine"
	SchedulerWarmup          = "warmup"
	SchedulerOneCycle        = "onecycle"
	SchedulerReduceOnPlateau = "reduce_on_plateau"
)

// EvalAtEnd as test.eval_freq evaluates only after the last epoch.
const EvalAtEnd = -1

// Transform parameters with a known shape.
const (
	TransformParamP            = "p"
	TransformParamAngle        = "angle"
	TransformParamCutoutFactor = "cutout_factor"
	TransformParamCfgStr       = "cfg_str"
)

var (
	lrFinderModes = []string{LRFinderAutomatic, LRFinderBruteForce, LRFinderTPE, LRFinderFastAI}
	modelTypes    = []string{ModelClassification, ModelMultilabel, ModelReID}
	dropoutDists  = []string{DropoutNone, DropoutBernoulli, DropoutGaussian, DropoutUniform}
	datasetTypes  = []string{
		DatasetClassification, DatasetClassificationImageFolder, DatasetMultilabelClassification,
	}
	lossNames = []string{LossSoftmax, LossAMSoftmax, LossAMBinary, LossASL}
	samplers  = []string{
		SamplerRandom, SamplerSequential, SamplerRandomIdentity, SamplerClassBalanced,
	}
	optimizers     = []string{OptimSGD, OptimAdam, OptimAMSGrad, OptimRMSProp, OptimRAdam, OptimSAM}
	baseSchedulers = []string{
		SchedulerSingleStep, SchedulerMultiStep, SchedulerCosine, SchedulerOneCycle,
		SchedulerReduceOnPlateau,
	}
	schedulers = append([]string{SchedulerWarmup}, baseSchedulers...)
)
