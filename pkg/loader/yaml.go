package loader

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/determined-ai/trainconf/pkg/logger"
	"github.com/determined-ai/trainconf/pkg/schemas"
)

var yamlLine = regexp.MustCompile(`line (\d+)`)

// parseNode parses a document into its root node. An empty document yields an empty mapping.
func parseNode(path string, byts []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(byts, &doc); err != nil {
		pErr := &ParseError{Path: path, Err: err}
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			pErr.Line, _ = strconv.Atoi(m[1])
		}
		return nil, pErr
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Line: 1}, nil
	}
	if doc.Kind == yaml.DocumentNode {
		return doc.Content[0], nil
	}
	return &doc, nil
}

// resolveDuplicates applies the policy to every mapping of the tree. Under KeepLastDuplicate the
// earlier occurrences are removed from the tree in place.
func resolveDuplicates(
	path string, root *yaml.Node, policy DuplicatePolicy, log logger.Context,
) error {
	var dups []Duplicate
	walkMappings(root, "", func(keyPath string, mapping *yaml.Node) {
		lines := map[string][]int{}
		var order []string
		for i := 0; i+1 < len(mapping.Content); i += 2 {
			key := mapping.Content[i]
			if key.Tag == "!!merge" {
				continue
			}
			if _, ok := lines[key.Value]; !ok {
				order = append(order, key.Value)
			}
			lines[key.Value] = append(lines[key.Value], key.Line)
		}

		dropping := false
		for _, name := range order {
			if len(lines[name]) < 2 {
				continue
			}
			dups = append(dups, Duplicate{KeyPath: joinKey(keyPath, name), Lines: lines[name]})
			if policy != KeepLastDuplicate {
				continue
			}
			dropping = true
			for _, line := range lines[name][:len(lines[name])-1] {
				logger.MergeContexts(log, logger.Context{
					"key":  joinKey(keyPath, name),
					"line": line,
				}).Entry().Warnf("duplicate key, dropping the occurrence at line %d", line)
			}
		}
		if !dropping {
			return
		}

		kept := make([]*yaml.Node, 0, len(mapping.Content))
		for i := 0; i+1 < len(mapping.Content); i += 2 {
			key := mapping.Content[i]
			if key.Tag != "!!merge" && repeatedLater(mapping, i) {
				continue
			}
			kept = append(kept, key, mapping.Content[i+1])
		}
		mapping.Content = kept
	})

	if len(dups) > 0 && policy != KeepLastDuplicate {
		return &DuplicateKeyError{Path: path, Duplicates: dups}
	}
	return nil
}

// repeatedLater reports whether the key at index i appears again later in the mapping.
func repeatedLater(mapping *yaml.Node, i int) bool {
	for j := i + 2; j+1 < len(mapping.Content); j += 2 {
		if mapping.Content[j].Value == mapping.Content[i].Value {
			return true
		}
	}
	return false
}

// walkMappings calls fn for every mapping node, parents before children. Children are visited
// after fn returns, so fn may drop entries.
func walkMappings(node *yaml.Node, keyPath string, fn func(string, *yaml.Node)) {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, c := range node.Content {
			walkMappings(c, keyPath, fn)
		}
	case yaml.MappingNode:
		fn(keyPath, node)
		for i := 0; i+1 < len(node.Content); i += 2 {
			walkMappings(node.Content[i+1], joinKey(keyPath, node.Content[i].Value), fn)
		}
	case yaml.SequenceNode:
		for i, c := range node.Content {
			walkMappings(c, fmt.Sprintf("%s[%d]", keyPath, i), fn)
		}
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// decodeMapping decodes a node into a JSON-compatible object.
func decodeMapping(path string, node *yaml.Node) (schemas.JSONObject, error) {
	if node.Kind != yaml.MappingNode {
		return nil, &SchemaError{Path: path, Fields: []FieldError{{
			Message: fmt.Sprintf("document must be a mapping of sections, found a %s", kindName(node)),
		}}}
	}
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return nil, &ParseError{Path: path, Line: node.Line, Err: err}
	}
	obj, err := normalize(raw, "")
	if err != nil {
		return nil, &SchemaError{Path: path, Fields: []FieldError{{Message: err.Error()}}}
	}
	if obj == nil {
		return schemas.JSONObject{}, nil
	}
	return obj.(schemas.JSONObject), nil
}

func kindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "node"
	}
}

// normalize converts decoded YAML into values encoding/json can marshal.
func normalize(v interface{}, keyPath string) (interface{}, error) {
	switch tv := v.(type) {
	case map[string]interface{}:
		out := schemas.JSONObject{}
		for k, val := range tv {
			n, err := normalize(val, joinKey(keyPath, k))
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[interface{}]interface{}:
		out := schemas.JSONObject{}
		for k, val := range tv {
			key := fmt.Sprint(k)
			n, err := normalize(val, joinKey(keyPath, key))
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []interface{}:
		out := make(schemas.JSONArray, 0, len(tv))
		for i, val := range tv {
			n, err := normalize(val, fmt.Sprintf("%s[%d]", keyPath, i))
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case float64:
		if math.IsInf(tv, 0) || math.IsNaN(tv) {
			return nil, errors.Errorf("%s: %v is not a finite number", keyPath, tv)
		}
		return tv, nil
	case time.Time:
		return tv.Format(time.RFC3339), nil
	default:
		return v, nil
	}
}
