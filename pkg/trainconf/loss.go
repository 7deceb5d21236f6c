package trainconf

import (
	"github.com/pkg/errors"

	"github.com/determined-ai/trainconf/pkg/check"
)

// DefaultLossConfig returns the default parameters of every supported loss.
func DefaultLossConfig() *LossConfig {
	return &LossConfig{
		Name:      LossSoftmax,
		Softmax:   LossParams{S: 1, M: 0, ComputeS: false, LabelSmooth: 0},
		AMSoftmax: LossParams{S: 30, M: 0.35, ComputeS: false, LabelSmooth: 0},
		AMBinary:  LossParams{S: 30, M: 0.35, ComputeS: false, LabelSmooth: 0},
		ASL:       LossParams{S: 1, M: 0, ComputeS: false, LabelSmooth: 0},
	}
}

// LossConfig selects the loss by name; each supported loss keeps its parameters in a
// sub-mapping keyed by the same name.
type LossConfig struct {
	Name      string     `json:"name"`
	Softmax   LossParams `json:"softmax"`
	AMSoftmax LossParams `json:"am_softmax"`
	AMBinary  LossParams `json:"am_binary"`
	ASL       LossParams `json:"asl"`
}

// Params returns the parameters of the selected loss.
func (c LossConfig) Params() (LossParams, error) {
	switch c.Name {
	case LossSoftmax:
		return c.Softmax, nil
	case LossAMSoftmax:
		return c.AMSoftmax, nil
	case LossAMBinary:
		return c.AMBinary, nil
	case LossASL:
		return c.ASL, nil
	default:
		return LossParams{}, errors.Errorf("no parameters for loss %q", c.Name)
	}
}

// Validate implements the check.Validatable interface.
func (c LossConfig) Validate() []error {
	if err := check.In(c.Name, lossNames, "loss.name"); err != nil {
		return []error{err}
	}
	return nil
}

// LossParams are the parameters of one loss.
type LossParams struct {
	// S is the logit scale.
	S float64 `json:"s"`
	// M is the additive margin.
	M           float64 `json:"m"`
	ComputeS    bool    `json:"compute_s"`
	LabelSmooth float64 `json:"label_smooth"`
}

// Validate implements the check.Validatable interface.
func (p LossParams) Validate() []error {
	return []error{
		check.GreaterThan(p.S, 0, "s"),
		check.GreaterThanOrEqualTo(p.M, 0, "m"),
		check.Between(p.LabelSmooth, 0, 1, "label_smooth"),
	}
}
