package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/determined-ai/trainconf/pkg/schemas"
)

// BaseKey lists the parent documents a document inherits from, as a path or a list of paths
// relative to the document itself.
const BaseKey = "_base_"

var errCycle = errors.New("reference cycle")

// baseRefs removes and returns the _base_ references of a document.
func baseRefs(path string, obj schemas.JSONObject) ([]string, error) {
	raw, ok := obj[BaseKey]
	if !ok {
		return nil, nil
	}
	delete(obj, BaseKey)

	switch tRaw := raw.(type) {
	case string:
		return []string{tRaw}, nil
	case schemas.JSONArray:
		refs := make([]string, 0, len(tRaw))
		for i, item := range tRaw {
			s, ok := item.(string)
			if !ok || s == "" {
				return nil, &SchemaError{Path: path, Fields: []FieldError{{
					KeyPath: fmt.Sprintf("%s[%d]", BaseKey, i),
					Value:   item,
					Message: "must be a non-empty path",
				}}}
			}
			refs = append(refs, s)
		}
		return refs, nil
	default:
		return nil, &SchemaError{Path: path, Fields: []FieldError{{
			KeyPath: BaseKey,
			Value:   raw,
			Message: "must be a path or a list of paths",
		}}}
	}
}

// resolveRelative resolves ref against the directory of the referencing document.
func resolveRelative(from, ref string) string {
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	return filepath.Join(filepath.Dir(from), ref)
}

// inherit loads the parents of a document and merges the document over them. Later parents
// override earlier ones, and the document overrides all of them.
func (l *Loader) inherit(
	path string, obj schemas.JSONObject, stack []string,
) (schemas.JSONObject, error) {
	refs, err := baseRefs(path, obj)
	if err != nil || len(refs) == 0 {
		return obj, err
	}

	parents := schemas.JSONObject{}
	for i, ref := range refs {
		keyPath := BaseKey
		if len(refs) > 1 {
			keyPath = fmt.Sprintf("%s[%d]", BaseKey, i)
		}
		refErr := func(err error) error {
			return &ReferenceError{From: path, KeyPath: keyPath, Ref: ref, Err: err}
		}

		resolved := resolveRelative(path, ref)
		for _, seen := range stack {
			if seen == resolved {
				return nil, refErr(errCycle)
			}
		}
		if _, err := os.Stat(resolved); err != nil {
			return nil, refErr(err)
		}

		parent, err := l.readRaw(resolved, append(stack, path))
		if err != nil {
			return nil, refErr(err)
		}
		parents = schemas.MergeMaps(parent, parents)
	}
	return schemas.MergeMaps(obj, parents), nil
}
