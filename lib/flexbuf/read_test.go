// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package flexbuf

import (
	"bytes"
	"math"
	"reflect"
	"testing"
)

func TestScalarRoundtrip(t *testing.T) {
	ints := []int64{0, 1, -1, 127, -128, 128, -129, 32767, 32768,
		math.MaxInt32, math.MinInt32, math.MaxInt64, math.MinInt64}
	for _, v := range ints {
		b := NewBuilder()
		b.Int(v)
		data, err := b.Finish()
		if err != nil {
			t.Fatalf("Finish(%d): %v", v, err)
		}
		root, err := Root(data)
		if err != nil {
			t.Fatalf("Root(%d): %v", v, err)
		}
		if got := root.Int64(); got != v {
			t.Errorf("int roundtrip: got %d, want %d", got, v)
		}
	}

	uints := []uint64{0, 255, 256, 65535, 65536, math.MaxUint32, math.MaxUint64}
	for _, v := range uints {
		b := NewBuilder()
		b.UInt(v)
		data, err := b.Finish()
		if err != nil {
			t.Fatalf("Finish(%d): %v", v, err)
		}
		root, err := Root(data)
		if err != nil {
			t.Fatalf("Root(%d): %v", v, err)
		}
		if got := root.Uint64(); got != v {
			t.Errorf("uint roundtrip: got %d, want %d", got, v)
		}
	}

	floats := []float64{0, 1.5, -2.25, math.Pi, math.MaxFloat64,
		math.SmallestNonzeroFloat64, math.Inf(1), math.Inf(-1)}
	for _, v := range floats {
		b := NewBuilder()
		b.Float(v)
		data, err := b.Finish()
		if err != nil {
			t.Fatalf("Finish(%v): %v", v, err)
		}
		root, err := Root(data)
		if err != nil {
			t.Fatalf("Root(%v): %v", v, err)
		}
		if got := root.Float64(); math.Float64bits(got) != math.Float64bits(v) {
			t.Errorf("float roundtrip: got %v, want %v", got, v)
		}
	}

	for _, v := range []bool{true, false} {
		b := NewBuilder()
		b.Bool(v)
		data, err := b.Finish()
		if err != nil {
			t.Fatalf("Finish(%v): %v", v, err)
		}
		root, err := Root(data)
		if err != nil {
			t.Fatalf("Root(%v): %v", v, err)
		}
		if got := root.Bool(); got != v {
			t.Errorf("bool roundtrip: got %v, want %v", got, v)
		}
	}
}

func TestFloatNaNRoundtrip(t *testing.T) {
	b := NewBuilder()
	b.Float(math.NaN())
	data, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	root, err := Root(data)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if got := root.Float64(); !math.IsNaN(got) {
		t.Errorf("NaN roundtrip: got %v", got)
	}
}

func TestIndirectScalarRoundtrip(t *testing.T) {
	// An indirect wide scalar inside a vector of small ints keeps the
	// element width at one byte: only the reference lives in the slot.
	const wide = int64(1) << 40
	b := NewBuilder()
	start := b.StartVector()
	b.IndirectInt(wide)
	b.Int(1)
	b.Int(2)
	if err := b.EndVector(start, false, false); err != nil {
		t.Fatalf("EndVector: %v", err)
	}
	data, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	root, err := Root(data)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	vec := root.Vector()
	if got := vec.At(0).Type(); got != TypeIndirectInt {
		t.Fatalf("element 0 type = %d, want IndirectInt", got)
	}
	if got := vec.At(0).Int64(); got != wide {
		t.Errorf("indirect int = %d, want %d", got, wide)
	}
	if got := vec.At(1).Int64(); got != 1 {
		t.Errorf("element 1 = %d, want 1", got)
	}

	b2 := NewBuilder()
	b2.IndirectUInt(math.MaxUint64)
	data2, err := b2.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	root2, err := Root(data2)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if got := root2.Uint64(); got != math.MaxUint64 {
		t.Errorf("indirect uint = %d, want MaxUint64", got)
	}

	b3 := NewBuilder()
	b3.IndirectFloat(math.Pi)
	data3, err := b3.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	root3, err := Root(data3)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if got := root3.Float64(); got != math.Pi {
		t.Errorf("indirect float = %v, want %v", got, math.Pi)
	}
}

func TestBlobRoundtrip(t *testing.T) {
	payload := []byte{0xDE, 0xAD, 0x00, 0xBE, 0xEF}
	b := NewBuilder()
	b.Blob(payload)
	data, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	root, err := Root(data)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if got := root.Blob(); !bytes.Equal(got, payload) {
		t.Errorf("blob roundtrip: got %x, want %x", got, payload)
	}
}

func TestTypedVectorRoundtrip(t *testing.T) {
	ints := []int64{-5, 0, 300, -70000}
	uints := []uint64{0, 255, 70000}
	floats := []float64{1.5, -0.25, 1e100}
	bools := []bool{true, false, true}

	b := NewBuilder()
	start := b.StartVector()
	b.IntVector(ints)
	b.UIntVector(uints)
	b.FloatVector(floats)
	b.BoolVector(bools)
	if err := b.EndVector(start, false, false); err != nil {
		t.Fatalf("EndVector: %v", err)
	}
	data, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	root, err := Root(data)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	outer := root.Vector()

	gotInts := outer.At(0).Vector()
	if gotInts.Len() != len(ints) {
		t.Fatalf("int vector length = %d, want %d", gotInts.Len(), len(ints))
	}
	for i, want := range ints {
		if got := gotInts.At(i).Int64(); got != want {
			t.Errorf("int[%d] = %d, want %d", i, got, want)
		}
	}

	gotUInts := outer.At(1).Vector()
	for i, want := range uints {
		if got := gotUInts.At(i).Uint64(); got != want {
			t.Errorf("uint[%d] = %d, want %d", i, got, want)
		}
	}

	gotFloats := outer.At(2).Vector()
	for i, want := range floats {
		if got := gotFloats.At(i).Float64(); got != want {
			t.Errorf("float[%d] = %v, want %v", i, got, want)
		}
	}

	gotBools := outer.At(3).Vector()
	if outer.At(3).Type() != TypeVectorBool {
		t.Errorf("element 3 type = %d, want VectorBool", outer.At(3).Type())
	}
	for i, want := range bools {
		if got := gotBools.At(i).Bool(); got != want {
			t.Errorf("bool[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestFixedVectorRoundtrip(t *testing.T) {
	b := NewBuilder()
	start := b.StartVector()
	b.FixedIntVector([]int64{-1, 1000})
	b.FixedUIntVector([]uint64{1, 2, 3})
	b.FixedFloatVector([]float64{0.5, 1.5, 2.5, 3.5})
	if err := b.EndVector(start, false, false); err != nil {
		t.Fatalf("EndVector: %v", err)
	}
	data, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	root, err := Root(data)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	outer := root.Vector()

	if got := outer.At(0).Type(); got != TypeVectorInt2 {
		t.Errorf("element 0 type = %d, want VectorInt2", got)
	}
	pair := outer.At(0).Vector()
	if pair.At(0).Int64() != -1 || pair.At(1).Int64() != 1000 {
		t.Errorf("int2 = [%d %d], want [-1 1000]", pair.At(0).Int64(), pair.At(1).Int64())
	}

	triple := outer.At(1).Vector()
	for i, want := range []uint64{1, 2, 3} {
		if got := triple.At(i).Uint64(); got != want {
			t.Errorf("uint3[%d] = %d, want %d", i, got, want)
		}
	}

	quad := outer.At(2).Vector()
	for i, want := range []float64{0.5, 1.5, 2.5, 3.5} {
		if got := quad.At(i).Float64(); got != want {
			t.Errorf("float4[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestNestedTreeRoundtrip(t *testing.T) {
	data, err := BuildMap(func(m *MapBuilder) {
		m.String("name", "fixture")
		m.Int("count", -42)
		m.UInt("id", 1<<40)
		m.Float("ratio", 0.75)
		m.Bool("enabled", true)
		m.Null("absent")
		m.Blob("raw", []byte{1, 2, 3})
		m.Vector("items", func(v *VectorBuilder) {
			v.Int(1)
			v.String("two")
			v.Map(func(m *MapBuilder) {
				m.Int("depth", 3)
			})
		})
	})
	if err != nil {
		t.Fatalf("BuildMap: %v", err)
	}

	root, err := Root(data)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	want := map[string]any{
		"name":    "fixture",
		"count":   int64(-42),
		"id":      uint64(1) << 40,
		"ratio":   float64(0.75),
		"enabled": true,
		"absent":  nil,
		"raw":     []byte{1, 2, 3},
		"items": []any{
			int64(1),
			"two",
			map[string]any{"depth": int64(3)},
		},
	}
	if got := root.Any(); !reflect.DeepEqual(got, want) {
		t.Errorf("tree roundtrip:\ngot  %#v\nwant %#v", got, want)
	}
}

func TestRootRejectsTruncatedBuffers(t *testing.T) {
	for _, data := range [][]byte{nil, {}, {0x01}, {0x01, 0x04}} {
		if _, err := Root(data); err == nil {
			t.Errorf("Root(%x) should fail", data)
		}
	}
	// Root width byte that is not a power-of-two width.
	if _, err := Root([]byte{0x00, 0x00, 0x03}); err == nil {
		t.Error("Root with width 3 should fail")
	}
	// Claimed root width larger than the buffer.
	if _, err := Root([]byte{0x00, 0x00, 0x08}); err == nil {
		t.Error("Root with oversized width should fail")
	}
}

func TestReferenceTypeMismatch(t *testing.T) {
	b := NewBuilder()
	b.Int(7)
	data, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	root, err := Root(data)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	// Wrong-type accessors return zero values rather than misreading.
	if got := root.StringVal(); got != "" {
		t.Errorf("StringVal on int = %q, want empty", got)
	}
	if got := root.Blob(); got != nil {
		t.Errorf("Blob on int = %x, want nil", got)
	}
	if root.Bool() {
		t.Error("Bool on int = true, want false")
	}
}
