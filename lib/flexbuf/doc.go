// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package flexbuf implements a FlexBuffers encoder and reader.
//
// FlexBuffers is the schema-less sibling of FlatBuffers: a
// self-describing binary format for dynamically-typed data
// (comparable in expressiveness to JSON or CBOR) that supports O(1)
// random access to any nested value without parsing the rest of the
// buffer. Values are reached by following relative offsets; nothing
// is decoded until it is dereferenced.
//
// # Encoding
//
// The core type is [Builder], a single-pass forward writer. Scalars
// buffer on a value stack; strings, keys, blobs and indirect scalars
// are written immediately and referenced by offset; closing a vector
// or map scope consumes the pending tail of the stack, selects the
// smallest element width that fits every element (including the
// relative offsets, whose size depends on the width being chosen),
// and emits the payload. [Builder.Finish] emits the root suffix.
//
// Most callers use the closure facades instead of the raw scope API:
//
//	data, err := flexbuf.BuildMap(func(m *flexbuf.MapBuilder) {
//		m.String("name", "sensor-7")
//		m.IntVector("readings", []int64{18, 19, 21})
//		m.Map("location", func(m *flexbuf.MapBuilder) {
//			m.Float("lat", 52.52)
//			m.Float("lon", 13.40)
//		})
//	})
//
// Maps are emitted with keys sorted by byte content regardless of
// insertion order. Identical strings and keys are interned: their
// bytes appear once per buffer no matter how often they are used.
// Every scalar, offset and length is stored at the smallest of the
// four widths (1, 2, 4, 8 bytes) that fits it.
//
// # Reading
//
// [Root] returns a [Reference] to the root value; [Reference.Map],
// [Reference.Vector] and the scalar accessors navigate from there.
// [Reference.Any] materializes a whole subtree as Go values, which is
// what lib/transcode builds on.
//
// A [Builder] is single-use and not safe for concurrent access. Two
// builders on two goroutines are fully independent.
package flexbuf
