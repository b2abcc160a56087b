// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcode

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. Same logical data always
// produces identical bytes — matching the determinism guarantee of
// the FlexBuffers side.
var encMode cbor.EncMode

// decMode is the CBOR decoder configured to decode any-typed targets
// as map[string]any. FlexBuffers map keys are strings; CBOR documents
// with non-string keys are rejected at decode time rather than
// producing a tree Marshal cannot encode.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("transcode: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("transcode: CBOR decoder initialization failed: " + err.Error())
	}
}

// FromCBOR converts a CBOR document to a FlexBuffers buffer.
func FromCBOR(data []byte) ([]byte, error) {
	var tree any
	if err := decMode.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decoding CBOR: %w", err)
	}
	return Marshal(tree)
}

// ToCBOR converts a FlexBuffers buffer to deterministically-encoded
// CBOR.
func ToCBOR(data []byte) ([]byte, error) {
	tree, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	out, err := encMode.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encoding CBOR: %w", err)
	}
	return out, nil
}
