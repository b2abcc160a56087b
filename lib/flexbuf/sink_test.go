// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package flexbuf

import (
	"bytes"
	"testing"
)

func TestSinkPad(t *testing.T) {
	var s sink
	s.push(0xAA)
	s.pad(4)
	if s.len() != 4 {
		t.Errorf("len after pad(4) = %d, want 4", s.len())
	}
	if !bytes.Equal(s.buf, []byte{0xAA, 0, 0, 0}) {
		t.Errorf("padded buffer = %x", s.buf)
	}
	// Already aligned: no change.
	s.pad(4)
	if s.len() != 4 {
		t.Errorf("len after second pad(4) = %d, want 4", s.len())
	}
}

func TestSinkLittleEndian(t *testing.T) {
	var s sink
	s.writeUInt(0x0102, 2)
	s.writeUInt(0x01020304, 4)
	s.writeInt(-2, 1)
	want := []byte{0x02, 0x01, 0x04, 0x03, 0x02, 0x01, 0xFE}
	if !bytes.Equal(s.buf, want) {
		t.Errorf("buffer = %x, want %x", s.buf, want)
	}
}

func TestSinkWriteFloat(t *testing.T) {
	var s sink
	s.writeFloat(1.5, 4)
	if len(s.buf) != 4 {
		t.Fatalf("float32 write produced %d bytes", len(s.buf))
	}
	s.writeFloat(1.5, 8)
	if len(s.buf) != 12 {
		t.Fatalf("float64 write produced %d bytes", len(s.buf)-4)
	}
}
