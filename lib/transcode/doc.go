// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package transcode converts between FlexBuffers and other
// representations of dynamically-typed documents.
//
// Three boundaries are covered:
//
//   - Go trees: [Marshal] encodes map[string]any / []any / scalar
//     trees through the flexbuf builder; [Unmarshal] materializes a
//     buffer back into the same shape.
//   - Text documents: [FromJSON] (accepting comments and trailing
//     commas), [FromYAML], and [ToJSON].
//   - CBOR: [FromCBOR] and [ToCBOR], using the same deterministic
//     encoding configuration as the rest of the ecosystem (RFC 8949
//     §4.2 Core Deterministic Encoding, string-keyed maps).
//
// All conversions go through the flexbuf builder, so the resulting
// buffers inherit its guarantees: minimum widths, interned strings
// and keys, and maps sorted by key bytes. Converting the same
// document always produces identical bytes.
package transcode
