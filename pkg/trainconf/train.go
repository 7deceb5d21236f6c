package trainconf

import (
	"github.com/determined-ai/trainconf/pkg/check"
)

// TrainConfig is the training regimen.
type TrainConfig struct {
	Optim         string    `json:"optim"`
	LR            float64   `json:"lr"`
	NBD           bool      `json:"nbd"`
	MaxEpoch      int       `json:"max_epoch"`
	WeightDecay   float64   `json:"weight_decay"`
	BatchSize     int       `json:"batch_size"`
	LRScheduler   string    `json:"lr_scheduler"`
	Warmup        int       `json:"warmup"`
	BaseScheduler string    `json:"base_scheduler"`
	EarlyStopping bool      `json:"early_stopping"`
	TrainPatience int       `json:"train_patience"`
	LRDecayFactor float64   `json:"lr_decay_factor"`
	Deterministic bool      `json:"deterministic"`
	Patience      int       `json:"patience"`
	Gamma         float64   `json:"gamma"`
	Seed          int       `json:"seed"`
	SAM           SAMConfig `json:"sam"`
	EMA           EMAConfig `json:"ema"`
	MixPrecision  bool      `json:"mix_precision"`
}

// Validate implements the check.Validatable interface.
func (c TrainConfig) Validate() []error {
	errs := []error{
		check.In(c.Optim, optimizers, "train.optim"),
		check.GreaterThan(c.LR, 0, "train.lr"),
		check.GreaterThanOrEqualTo(float64(c.MaxEpoch), 1, "train.max_epoch"),
		check.GreaterThanOrEqualTo(c.WeightDecay, 0, "train.weight_decay"),
		check.GreaterThanOrEqualTo(float64(c.BatchSize), 1, "train.batch_size"),
		check.In(c.LRScheduler, schedulers, "train.lr_scheduler"),
		check.GreaterThanOrEqualTo(float64(c.TrainPatience), 0, "train.train_patience"),
		check.GreaterThan(c.LRDecayFactor, 0, "train.lr_decay_factor"),
		check.GreaterThanOrEqualTo(float64(c.Patience), 0, "train.patience"),
		check.GreaterThan(c.Gamma, 0, "train.gamma"),
	}
	if c.LRScheduler == SchedulerWarmup {
		errs = append(errs,
			check.GreaterThanOrEqualTo(float64(c.Warmup), 1, "train.warmup with a warmup scheduler"),
			check.In(c.BaseScheduler, baseSchedulers,
				"train.base_scheduler is required with a warmup scheduler"),
		)
	}
	return errs
}

// SAMConfig configures sharpness-aware minimization.
type SAMConfig struct {
	// Rho is the radius of the weight perturbation.
	Rho      float64 `json:"rho"`
	Adaptive bool    `json:"adaptive"`
}

// Validate implements the check.Validatable interface.
func (c SAMConfig) Validate() []error {
	return []error{check.GreaterThanOrEqualTo(c.Rho, 0, "train.sam.rho")}
}

// EMAConfig configures the exponential moving average of the weights.
type EMAConfig struct {
	Enable   bool    `json:"enable"`
	EMADecay float64 `json:"ema_decay"`
}

// Validate implements the check.Validatable interface.
func (c EMAConfig) Validate() []error {
	return []error{
		check.GreaterThanOrEqualTo(c.EMADecay, 0, "train.ema.ema_decay"),
		check.LessThan(c.EMADecay, 1, "train.ema.ema_decay"),
	}
}
