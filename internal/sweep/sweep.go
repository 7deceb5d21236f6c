package sweep

import (
	"context"

	"github.com/determined-ai/trainconf/pkg/loader"
)

// FromFile loads a base config with its aux configs, plans the sweep and runs it. Nothing is
// written or launched unless the base loads cleanly.
func FromFile(
	ctx context.Context, basePath string, loadOpts loader.Options, opts Options, runOpts RunOptions,
) (*Manifest, error) {
	bundle, err := loader.Load(ctx, basePath, loadOpts)
	if err != nil {
		return nil, err
	}
	jobs, err := Plan(bundle.Config, opts)
	if err != nil {
		return nil, err
	}
	if runOpts.Base == "" {
		runOpts.Base = bundle.Path
	}
	return Run(ctx, jobs, runOpts)
}
