// Package loader reads training config documents: it parses YAML, applies the duplicate key
// policy, resolves _base_ inheritance and overrides, validates the result and loads the
// auxiliary configs a document references.
package loader

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"

	"github.com/determined-ai/trainconf/pkg/check"
	"github.com/determined-ai/trainconf/pkg/logger"
	"github.com/determined-ai/trainconf/pkg/schemas"
	"github.com/determined-ai/trainconf/pkg/trainconf"
)

// Options configure a Loader.
type Options struct {
	// Policy applies to every document loaded, parents and aux configs included.
	Policy DuplicatePolicy
	// WorkDir is tried first when resolving relative aux config paths. It defaults to the
	// process working directory.
	WorkDir string
	// Overrides apply to the top-level document only, after inheritance.
	Overrides []Override
}

// Loader loads documents with a fixed set of options.
type Loader struct {
	opts Options
}

// New returns a Loader.
func New(opts Options) *Loader {
	if opts.Policy == "" {
		opts.Policy = RejectDuplicates
	}
	return &Loader{opts: opts}
}

// Load loads the document at path and, recursively, every aux config it references.
func Load(ctx context.Context, path string, opts Options) (*Bundle, error) {
	return New(opts).Load(ctx, path)
}

// LoadConfig loads the document at path without following its aux configs.
func (l *Loader) LoadConfig(ctx context.Context, path string) (*trainconf.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}
	obj, err := l.readRaw(abs, nil)
	if err != nil {
		return nil, err
	}
	return l.build(abs, obj, l.opts.Overrides)
}

// Parse builds a config from an in-memory document. Path names the document in errors and
// anchors its _base_ references.
func (l *Loader) Parse(path string, byts []byte) (*trainconf.Config, error) {
	obj, err := l.parseRaw(path, byts, nil)
	if err != nil {
		return nil, err
	}
	return l.build(path, obj, l.opts.Overrides)
}

// readRaw reads a document and its parents into a merged object. Stack holds the documents
// whose parents are being resolved, for cycle detection.
func (l *Loader) readRaw(path string, stack []string) (schemas.JSONObject, error) {
	byts, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return l.parseRaw(path, byts, stack)
}

func (l *Loader) parseRaw(path string, byts []byte, stack []string) (schemas.JSONObject, error) {
	log := logger.Context{"file": path}
	log.Entry().Debug("parsing config")

	root, err := parseNode(path, byts)
	if err != nil {
		return nil, err
	}
	if err := resolveDuplicates(path, root, l.opts.Policy, log); err != nil {
		return nil, err
	}
	obj, err := decodeMapping(path, root)
	if err != nil {
		return nil, err
	}
	return l.inherit(path, obj, stack)
}

// build validates a merged object and decodes it on top of the defaults.
func (l *Loader) build(
	path string, obj schemas.JSONObject, overrides []Override,
) (*trainconf.Config, error) {
	for _, o := range overrides {
		if err := o.apply(obj); err != nil {
			return nil, &SchemaError{Path: path, Fields: []FieldError{{
				KeyPath: strings.Join(o.KeyPath, "."),
				Value:   o.Value,
				Message: err.Error(),
			}}}
		}
		logger.Context{"file": path, "override": o.String()}.Entry().Debug("applied override")
	}

	byts, err := json.Marshal(obj)
	if err != nil {
		return nil, &SchemaError{Path: path, Fields: []FieldError{{Message: err.Error()}}}
	}

	if errs := schemas.ValidateBytes(
		schemas.GetSanityValidator(schemas.ConfigURL), byts,
	); len(errs) > 0 {
		return nil, schemaErrorFromFailures(path, errs)
	}

	cfg := trainconf.DefaultConfig()
	if err := yaml.Unmarshal(byts, cfg, yaml.DisallowUnknownFields); err != nil {
		return nil, &SchemaError{Path: path, Fields: []FieldError{{Message: err.Error()}}}
	}

	if err := check.Validate(cfg); err != nil {
		return nil, schemaErrorFromCheck(path, err)
	}
	return cfg, nil
}

func schemaErrorFromFailures(path string, errs []error) *SchemaError {
	out := &SchemaError{Path: path}
	for _, err := range errs {
		var f *schemas.ValidationFailure
		if errors.As(err, &f) {
			out.Fields = append(out.Fields, FieldError{
				KeyPath: f.KeyPath, Value: f.Value, Message: f.Message,
			})
			continue
		}
		out.Fields = append(out.Fields, FieldError{Message: err.Error()})
	}
	return out
}

func schemaErrorFromCheck(path string, err error) *SchemaError {
	var vErr check.ValidationError
	if !errors.As(err, &vErr) {
		return &SchemaError{Path: path, Fields: []FieldError{{Message: err.Error()}}}
	}
	out := &SchemaError{Path: path}
	for _, e := range vErr.Errs {
		var pErr *check.PathError
		if !errors.As(e, &pErr) {
			out.Fields = append(out.Fields, FieldError{Message: e.Error()})
			continue
		}
		keyPath := strings.TrimPrefix(strings.TrimPrefix(pErr.Path, "root"), ".")
		out.Fields = append(out.Fields, FieldError{KeyPath: keyPath, Message: pErr.Err.Error()})
	}
	return out
}
