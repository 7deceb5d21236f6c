package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/determined-ai/trainconf/pkg/logger"
	"github.com/determined-ai/trainconf/pkg/trainconf"
)

// Bundle is a loaded document together with its aux configs. Aux configs are kept as separate
// records next to the primary one, never merged into it; the consumer decides how to combine
// them.
type Bundle struct {
	// Path is the absolute path of the document.
	Path   string
	Config *trainconf.Config
	// Aux follows the order of mutual_learning.aux_configs.
	Aux []*Bundle
}

// Walk calls fn for the bundle and every aux bundle, depth-first, in document order. Depth is 0
// for the bundle Walk is called on.
func (b *Bundle) Walk(fn func(b *Bundle, depth int) error) error {
	return b.walk(fn, 0)
}

func (b *Bundle) walk(fn func(*Bundle, int) error, depth int) error {
	if err := fn(b, depth); err != nil {
		return err
	}
	for _, aux := range b.Aux {
		if err := aux.walk(fn, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Configs returns every config of the bundle in Walk order.
func (b *Bundle) Configs() []*trainconf.Config {
	var out []*trainconf.Config
	_ = b.Walk(func(b *Bundle, _ int) error {
		out = append(out, b.Config)
		return nil
	})
	return out
}

// Load loads the document at path and, recursively, every aux config it references.
func (l *Loader) Load(ctx context.Context, path string) (*Bundle, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}
	return l.loadBundle(ctx, abs, l.opts.Overrides, nil)
}

func (l *Loader) loadBundle(
	ctx context.Context, path string, overrides []Override, stack []string,
) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}

	obj, err := l.readRaw(path, nil)
	if err != nil {
		return nil, err
	}
	cfg, err := l.build(path, obj, overrides)
	if err != nil {
		return nil, err
	}

	bundle := &Bundle{Path: path, Config: cfg}
	stack = append(stack, path)
	for i, ref := range cfg.MutualLearning.AuxConfigs {
		refErr := func(err error) error {
			return &ReferenceError{
				From:    path,
				KeyPath: fmt.Sprintf("mutual_learning.aux_configs[%d]", i),
				Ref:     ref,
				Err:     err,
			}
		}

		resolved, err := l.resolveAux(path, ref)
		if err != nil {
			return nil, refErr(err)
		}
		for _, seen := range stack {
			if seen == resolved {
				return nil, refErr(errCycle)
			}
		}

		// Overrides target the primary document only.
		aux, err := l.loadBundle(ctx, resolved, nil, stack)
		if err != nil {
			return nil, refErr(err)
		}
		logger.Context{"file": path, "aux": resolved}.Entry().Debug("loaded aux config")
		bundle.Aux = append(bundle.Aux, aux)
	}
	return bundle, nil
}

// resolveAux finds the file an aux config reference names. Relative references are tried
// against the working directory first and then against the referencing document's directory.
func (l *Loader) resolveAux(from, ref string) (string, error) {
	if filepath.IsAbs(ref) {
		if _, err := os.Stat(ref); err != nil {
			return "", err
		}
		return filepath.Clean(ref), nil
	}

	workDir := l.opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "finding working directory")
		}
		workDir = wd
	}

	candidates := []string{filepath.Join(workDir, ref), resolveRelative(from, ref)}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return "", err
			}
			return abs, nil
		}
	}
	return "", errors.Wrapf(os.ErrNotExist, "tried %v", candidates)
}
