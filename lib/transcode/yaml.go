// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcode

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromYAML converts a YAML document to a FlexBuffers buffer. yaml.v3
// decodes string-keyed mappings to map[string]any, integers to int,
// and floats to float64, all of which Marshal accepts directly.
// Non-string mapping keys are rejected.
func FromYAML(data []byte) ([]byte, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}
	tree, err := normalizeYAML(tree)
	if err != nil {
		return nil, err
	}
	return Marshal(tree)
}

// normalizeYAML rewrites the corner of yaml.v3's output that Marshal
// does not accept: mappings with non-string keys decode to
// map[any]any even when every key happens to be a string.
func normalizeYAML(node any) (any, error) {
	switch v := node.(type) {
	case map[any]any:
		converted := make(map[string]any, len(v))
		for key, element := range v {
			s, ok := key.(string)
			if !ok {
				return nil, fmt.Errorf("YAML mapping key %v is %T, want string", key, key)
			}
			normalized, err := normalizeYAML(element)
			if err != nil {
				return nil, err
			}
			converted[s] = normalized
		}
		return converted, nil
	case map[string]any:
		for key, element := range v {
			normalized, err := normalizeYAML(element)
			if err != nil {
				return nil, err
			}
			v[key] = normalized
		}
		return v, nil
	case []any:
		for i, element := range v {
			normalized, err := normalizeYAML(element)
			if err != nil {
				return nil, err
			}
			v[i] = normalized
		}
		return v, nil
	default:
		return node, nil
	}
}
