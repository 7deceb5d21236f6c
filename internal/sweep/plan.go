// Package sweep derives one training config per benchmark dataset from a base config and
// launches an external trainer on each of them.
package sweep

import (
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/determined-ai/trainconf/pkg/check"
	"github.com/determined-ai/trainconf/pkg/logger"
	"github.com/determined-ai/trainconf/pkg/schemas"
	"github.com/determined-ai/trainconf/pkg/trainconf"
)

// Options select the datasets of a sweep and how the base config is adapted to each.
type Options struct {
	// DataRoot is the directory holding every preset's dataset folder.
	DataRoot string
	// Only restricts the sweep to these presets. Empty means all of them.
	Only []string
	// Skip removes presets from the sweep.
	Skip []string
	// UseHardcodedLR disables the lr finder and uses each preset's tuned learning rate.
	UseHardcodedLR bool
	// ApplySchedule takes max_epoch and batch_size from the preset.
	ApplySchedule bool
}

// Job is one derived config.
type Job struct {
	Preset Preset
	Config *trainconf.Config
}

// Plan derives a config per selected preset. The base config is not modified. Every derived
// config is validated.
func Plan(base *trainconf.Config, opts Options) ([]Job, error) {
	for _, name := range append(slices.Clone(opts.Only), opts.Skip...) {
		if _, err := LookupPreset(name); err != nil {
			return nil, err
		}
	}

	var jobs []Job
	for _, preset := range Presets() {
		if len(opts.Only) > 0 && !slices.Contains(opts.Only, preset.Name) {
			continue
		}
		if slices.Contains(opts.Skip, preset.Name) {
			continue
		}

		cfg := Derive(base, preset, opts)
		if err := check.Validate(cfg); err != nil {
			return nil, errors.Wrapf(err, "config derived for %s is invalid", preset.Name)
		}
		jobs = append(jobs, Job{Preset: preset, Config: cfg})
	}
	if len(jobs) == 0 {
		return nil, errors.New("no datasets left to sweep")
	}
	return jobs, nil
}

// Derive adapts a copy of base to a preset.
func Derive(base *trainconf.Config, preset Preset, opts Options) *trainconf.Config {
	cfg := schemas.Copy(base)
	log := logger.Context{"dataset": preset.Name}

	if opts.UseHardcodedLR {
		cfg.LRFinder.Enable = false
		if preset.LR > 0 {
			cfg.Train.LR = preset.LR
		}
		log.Entry().WithField("lr", cfg.Train.LR).Warn("using hardcoded learning rate")
	}
	if opts.ApplySchedule {
		cfg.Train.MaxEpoch = preset.Epochs
		cfg.Train.BatchSize = preset.BatchSize
	}

	roots := make([]string, 0, len(preset.Roots))
	for _, root := range preset.Roots {
		roots = append(roots, filepath.Join(opts.DataRoot, root))
	}
	cfg.CustomDatasets.Roots = roots
	cfg.CustomDatasets.Types = slices.Clone(preset.Types)
	cfg.CustomDatasets.Names = slices.Clone(preset.Names)

	cfg.Data.Height = preset.Height
	cfg.Data.Width = preset.Width
	cfg.Data.SaveDir = filepath.Join(base.Data.SaveDir, preset.Name)
	cfg.Data.Sources = []string{preset.Source}
	cfg.Data.Targets = []string{preset.Target}
	return cfg
}
