package trainconf

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/determined-ai/trainconf/pkg/check"
)

// DataConfig configures data loading and augmentation.
type DataConfig struct {
	Root       string               `json:"root"`
	Sources    []string             `json:"sources"`
	Targets    []string             `json:"targets"`
	Height     int                  `json:"height"`
	Width      int                  `json:"width"`
	NormMean   []float64            `json:"norm_mean"`
	NormStd    []float64            `json:"norm_std"`
	SaveDir    string               `json:"save_dir"`
	Workers    int                  `json:"workers"`
	Transforms map[string]Transform `json:"transforms"`
}

// Validate implements the check.Validatable interface.
func (c DataConfig) Validate() []error {
	errs := []error{
		check.NotEmpty(c.Root, "data.root"),
		check.GreaterThanOrEqualTo(float64(c.Height), 1, "data.height"),
		check.GreaterThanOrEqualTo(float64(c.Width), 1, "data.width"),
		check.Equal(len(c.NormMean), 3, "data.norm_mean must have one value per RGB channel"),
		check.Equal(len(c.NormStd), 3, "data.norm_std must have one value per RGB channel"),
		check.GreaterThanOrEqualTo(float64(c.Workers), 0, "data.workers"),
	}
	for _, std := range c.NormStd {
		errs = append(errs, check.GreaterThan(std, 0, "data.norm_std"))
	}
	return errs
}

// EnabledTransforms returns the names of the enabled transforms in sorted order.
func (c DataConfig) EnabledTransforms() []string {
	names := maps.Keys(c.Transforms)
	out := names[:0]
	for _, name := range names {
		if c.Transforms[name].Enable {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// Transform is one entry of data.transforms. Enable and the probability P are common to every
// transform; the remaining keys are transform-specific and kept verbatim in Params.
type Transform struct {
	Enable bool
	P      *float64
	Params map[string]interface{}
}

// MarshalJSON writes the transform as a flat object.
func (t Transform) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(t.Params)+2)
	for k, v := range t.Params {
		out[k] = v
	}
	out["enable"] = t.Enable
	if t.P != nil {
		out[TransformParamP] = *t.P
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a flat transform object.
func (t *Transform) UnmarshalJSON(byts []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(byts, &raw); err != nil {
		return err
	}

	*t = Transform{}
	if enable, ok := raw["enable"]; ok {
		b, ok := enable.(bool)
		if !ok {
			return errors.Errorf("enable must be a boolean, got %v", enable)
		}
		t.Enable = b
		delete(raw, "enable")
	}
	if p, ok := raw[TransformParamP]; ok {
		f, ok := p.(float64)
		if !ok {
			return errors.Errorf("p must be a number, got %v", p)
		}
		t.P = &f
		delete(raw, TransformParamP)
	}
	if len(raw) > 0 {
		t.Params = raw
	}
	return nil
}

// Validate implements the check.Validatable interface.
func (t Transform) Validate() []error {
	var errs []error
	if t.P != nil {
		errs = append(errs, check.Between(*t.P, 0, 1, "p"))
	}
	if raw, ok := t.Params[TransformParamAngle]; ok {
		errs = append(errs, validateAngle(raw))
	}
	if raw, ok := t.Params[TransformParamCutoutFactor]; ok {
		f, ok := raw.(float64)
		if !ok {
			errs = append(errs, errors.Errorf("cutout_factor must be a number, got %v", raw))
		} else {
			errs = append(errs, check.Between(f, 0, 1, "cutout_factor"))
		}
	}
	if raw, ok := t.Params[TransformParamCfgStr]; ok {
		s, ok := raw.(string)
		if !ok {
			errs = append(errs, errors.Errorf("cfg_str must be a string, got %v", raw))
		} else {
			errs = append(errs, check.NotEmpty(s, "cfg_str"))
		}
	}
	return errs
}

func validateAngle(raw interface{}) error {
	bounds, ok := raw.([]interface{})
	if !ok || len(bounds) != 2 {
		return errors.Errorf("angle must be a [low, high] pair, got %v", raw)
	}
	lo, okLo := bounds[0].(float64)
	hi, okHi := bounds[1].(float64)
	if !okLo || !okHi {
		return errors.Errorf("angle bounds must be numbers, got %v", raw)
	}
	return check.LessThanOrEqualTo(lo, hi, fmt.Sprintf("angle %v", raw))
}
