// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package flexbuf

import "github.com/zeebo/blake3"

// offsetPool is a content-addressed cache mapping a byte sequence to
// the absolute offset at which it was first written. The builder keeps
// one for strings and one for keys so identical payloads are emitted
// once per buffer.
//
// Entries are keyed by the BLAKE3 digest of the content rather than
// the content itself, so the pool does not retain a copy of every
// interned string for the builder's lifetime.
type offsetPool struct {
	offsets map[[32]byte]int
}

// lookup returns the offset of a previous emission of content.
func (p *offsetPool) lookup(content []byte) (int, bool) {
	offset, ok := p.offsets[blake3.Sum256(content)]
	return offset, ok
}

// remember records that content was written at offset.
func (p *offsetPool) remember(content []byte, offset int) {
	if p.offsets == nil {
		p.offsets = make(map[[32]byte]int)
	}
	p.offsets[blake3.Sum256(content)] = offset
}
