// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcode

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"
)

// FromJSON converts a JSON document to a FlexBuffers buffer. The
// input may contain // and /* */ comments and trailing commas (JSONC),
// which are stripped before decoding. Numbers without a fractional
// part that fit int64 are encoded as integers; everything else as
// floats.
func FromJSON(data []byte) ([]byte, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.UseNumber()

	var tree any
	if err := decoder.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	// A second document in the same input is almost always a mistake
	// (shell redirection of the wrong file, concatenated logs).
	if decoder.More() {
		return nil, fmt.Errorf("trailing data after JSON document")
	}
	return Marshal(tree)
}

// ToJSON renders a FlexBuffers buffer as indented JSON. Blobs appear
// as base64 strings per encoding/json convention.
func ToJSON(data []byte) ([]byte, error) {
	tree, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding JSON: %w", err)
	}
	return out, nil
}
