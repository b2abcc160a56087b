// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcode

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/bureau-foundation/flexbuf/lib/flexbuf"
)

// Marshal encodes a dynamically-typed Go tree as a FlexBuffers
// buffer. Supported node types: nil, bool, all integer and float
// kinds, string, []byte, json.Number, []any, and map[string]any.
// Map entries are emitted in key-sorted order regardless of Go's map
// iteration order, so output is deterministic.
func Marshal(tree any) ([]byte, error) {
	builder := flexbuf.NewBuilder()
	if err := encodeAny(builder, tree); err != nil {
		return nil, err
	}
	return builder.Finish()
}

// Unmarshal decodes a FlexBuffers buffer into a Go tree of
// map[string]any, []any, and scalars (int64, uint64, float64, bool,
// string, []byte, nil).
func Unmarshal(data []byte) (any, error) {
	root, err := flexbuf.Root(data)
	if err != nil {
		return nil, err
	}
	return root.Any(), nil
}

func encodeAny(builder *flexbuf.Builder, node any) error {
	switch v := node.(type) {
	case nil:
		builder.Null()
	case bool:
		builder.Bool(v)
	case int:
		builder.Int(int64(v))
	case int8:
		builder.Int(int64(v))
	case int16:
		builder.Int(int64(v))
	case int32:
		builder.Int(int64(v))
	case int64:
		builder.Int(v)
	case uint:
		builder.UInt(uint64(v))
	case uint8:
		builder.UInt(uint64(v))
	case uint16:
		builder.UInt(uint64(v))
	case uint32:
		builder.UInt(uint64(v))
	case uint64:
		builder.UInt(v)
	case float32:
		builder.Float(float64(v))
	case float64:
		builder.Float(v)
	case string:
		builder.String(v)
	case []byte:
		builder.Blob(v)
	case json.Number:
		// Integers that fit int64 stay exact; everything else goes
		// through float64, matching what a plain JSON decode would
		// have produced.
		if i, err := v.Int64(); err == nil {
			builder.Int(i)
			break
		}
		f, err := v.Float64()
		if err != nil {
			return fmt.Errorf("transcode: number %q: %w", v.String(), err)
		}
		builder.Float(f)
	case []any:
		start := builder.StartVector()
		for _, element := range v {
			if err := encodeAny(builder, element); err != nil {
				return err
			}
		}
		if err := builder.EndVector(start, false, false); err != nil {
			return err
		}
	case map[string]any:
		start := builder.StartMap()
		// The builder sorts pairs when the scope closes, but the key
		// *payloads* are interned at Key() call time. Iterating in
		// sorted order keeps the emitted bytes independent of Go's
		// randomized map iteration.
		for _, key := range slices.Sorted(maps.Keys(v)) {
			builder.Key(key)
			if err := encodeAny(builder, v[key]); err != nil {
				return err
			}
		}
		if err := builder.EndMap(start); err != nil {
			return err
		}
	default:
		return fmt.Errorf("transcode: unsupported node type %T", node)
	}
	return builder.Err()
}
