// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package flexbuf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// Root returns a Reference to the root value of a finished buffer.
// It validates only the three-byte root suffix; the interior of the
// buffer is trusted, as with any FlexBuffers reader — random access
// means nothing is parsed until it is dereferenced.
func Root(data []byte) (Reference, error) {
	if len(data) < 3 {
		return Reference{}, fmt.Errorf("flexbuf: buffer of %d bytes cannot hold a root suffix", len(data))
	}
	rootWidth := int(data[len(data)-1])
	if rootWidth != 1 && rootWidth != 2 && rootWidth != 4 && rootWidth != 8 {
		return Reference{}, fmt.Errorf("flexbuf: invalid root byte width %d", rootWidth)
	}
	offset := len(data) - 2 - rootWidth
	if offset < 0 {
		return Reference{}, fmt.Errorf("flexbuf: buffer of %d bytes cannot hold a %d-byte root", len(data), rootWidth)
	}
	packed := data[len(data)-2]
	return Reference{
		data:        data,
		offset:      offset,
		parentWidth: rootWidth,
		typ:         Type(packed >> 2),
		width:       1 << (packed & 3),
	}, nil
}

// Reference is a cursor over one value in a buffer: the position of
// its element slot, the slot's width, and the packed type that
// describes it. Accessors return the zero value when the reference is
// not of the requested type; use Type to dispatch.
type Reference struct {
	data        []byte
	offset      int
	parentWidth int

	typ Type
	// width is the byte width from the packed type byte: the scalar
	// width for inline values and indirect scalars, the length-prefix
	// width for strings and blobs, the element width for vectors and
	// maps.
	width int
}

// Type returns the value's logical type tag.
func (r Reference) Type() Type {
	return r.typ
}

// IsNull reports whether the value is null.
func (r Reference) IsNull() bool {
	return r.typ == TypeNull
}

// indirect resolves the backwards offset stored in this element slot.
func (r Reference) indirect() int {
	return r.offset - int(readUInt(r.data, r.offset, r.parentWidth))
}

// Int64 returns the value of an Int or IndirectInt.
func (r Reference) Int64() int64 {
	switch r.typ {
	case TypeInt:
		return readInt(r.data, r.offset, r.parentWidth)
	case TypeIndirectInt:
		return readInt(r.data, r.indirect(), r.width)
	}
	return 0
}

// Uint64 returns the value of a UInt or IndirectUInt.
func (r Reference) Uint64() uint64 {
	switch r.typ {
	case TypeUInt:
		return readUInt(r.data, r.offset, r.parentWidth)
	case TypeIndirectUInt:
		return readUInt(r.data, r.indirect(), r.width)
	}
	return 0
}

// Float64 returns the value of a Float or IndirectFloat.
func (r Reference) Float64() float64 {
	switch r.typ {
	case TypeFloat:
		return readFloat(r.data, r.offset, r.parentWidth)
	case TypeIndirectFloat:
		return readFloat(r.data, r.indirect(), r.width)
	}
	return 0
}

// Bool returns the value of a Bool.
func (r Reference) Bool() bool {
	return r.typ == TypeBool && readUInt(r.data, r.offset, r.parentWidth) != 0
}

// StringVal returns the value of a String or Key.
func (r Reference) StringVal() string {
	switch r.typ {
	case TypeString:
		target := r.indirect()
		length := int(readUInt(r.data, target-r.width, r.width))
		return string(r.data[target : target+length])
	case TypeKey:
		return string(keyBytes(r.data, r.indirect()))
	}
	return ""
}

// Blob returns a copy of the bytes of a Blob.
func (r Reference) Blob() []byte {
	if r.typ != TypeBlob {
		return nil
	}
	target := r.indirect()
	length := int(readUInt(r.data, target-r.width, r.width))
	return bytes.Clone(r.data[target : target+length])
}

// Vector returns a cursor over the elements of any vector form:
// heterogeneous, typed, or fixed typed.
func (r Reference) Vector() Vector {
	switch {
	case r.typ == TypeVector:
		target := r.indirect()
		return Vector{
			data:      r.data,
			offset:    target,
			byteWidth: r.width,
			length:    int(readUInt(r.data, target-r.width, r.width)),
		}
	case r.typ.IsTypedVector():
		target := r.indirect()
		return Vector{
			data:      r.data,
			offset:    target,
			byteWidth: r.width,
			length:    int(readUInt(r.data, target-r.width, r.width)),
			elemType:  typedVectorElement(r.typ),
			typed:     true,
		}
	case r.typ.IsFixedTypedVector():
		element, length := fixedTypedVectorInfo(r.typ)
		return Vector{
			data:      r.data,
			offset:    r.indirect(),
			byteWidth: r.width,
			length:    length,
			elemType:  element,
			typed:     true,
		}
	}
	return Vector{}
}

// Map returns a cursor over the sorted key/value pairs of a Map.
func (r Reference) Map() Map {
	if r.typ != TypeMap {
		return Map{}
	}
	target := r.indirect()
	// The three slots before the values payload are, stepping
	// backwards: length, keys byte width, keys vector offset.
	keysSlot := target - 3*r.width
	keysOffset := keysSlot - int(readUInt(r.data, keysSlot, r.width))
	keysWidth := int(readUInt(r.data, keysSlot+r.width, r.width))
	length := int(readUInt(r.data, target-r.width, r.width))
	return Map{
		keys: Vector{
			data:      r.data,
			offset:    keysOffset,
			byteWidth: keysWidth,
			length:    int(readUInt(r.data, keysOffset-keysWidth, keysWidth)),
			elemType:  TypeKey,
			typed:     true,
		},
		values: Vector{
			data:      r.data,
			offset:    target,
			byteWidth: r.width,
			length:    length,
		},
	}
}

// Any materializes the referenced value as a Go tree: nil, int64,
// uint64, float64, bool, string, []byte, []any, or map[string]any.
func (r Reference) Any() any {
	switch {
	case r.typ == TypeNull:
		return nil
	case r.typ == TypeInt || r.typ == TypeIndirectInt:
		return r.Int64()
	case r.typ == TypeUInt || r.typ == TypeIndirectUInt:
		return r.Uint64()
	case r.typ == TypeFloat || r.typ == TypeIndirectFloat:
		return r.Float64()
	case r.typ == TypeBool:
		return r.Bool()
	case r.typ == TypeString || r.typ == TypeKey:
		return r.StringVal()
	case r.typ == TypeBlob:
		return r.Blob()
	case r.typ == TypeMap:
		m := r.Map()
		tree := make(map[string]any, m.Len())
		for i := range m.Len() {
			key, val := m.At(i)
			tree[key] = val.Any()
		}
		return tree
	default:
		v := r.Vector()
		tree := make([]any, v.Len())
		for i := range tree {
			tree[i] = v.At(i).Any()
		}
		return tree
	}
}

// Vector is a cursor over vector elements.
type Vector struct {
	data      []byte
	offset    int
	byteWidth int
	length    int
	elemType  Type
	typed     bool
}

// Len returns the element count.
func (v Vector) Len() int {
	return v.length
}

// At returns a Reference to element i.
func (v Vector) At(i int) Reference {
	ref := Reference{
		data:        v.data,
		offset:      v.offset + i*v.byteWidth,
		parentWidth: v.byteWidth,
	}
	if v.typed {
		ref.typ = v.elemType
		// Typed vectors carry no per-element packed types; elements
		// inherit the vector's width, except keys which are always
		// width 1.
		ref.width = v.byteWidth
		if v.elemType == TypeKey {
			ref.width = 1
		}
		return ref
	}
	packed := v.data[v.offset+v.length*v.byteWidth+i]
	ref.typ = Type(packed >> 2)
	ref.width = 1 << (packed & 3)
	return ref
}

// Map is a cursor over a map's parallel key and value vectors.
type Map struct {
	keys   Vector
	values Vector
}

// Len returns the number of entries.
func (m Map) Len() int {
	return m.values.length
}

// At returns the i-th entry in key-sorted order.
func (m Map) At(i int) (string, Reference) {
	return m.keys.At(i).StringVal(), m.values.At(i)
}

// Lookup finds the value for key by binary search over the sorted
// keys vector. With duplicate keys, which duplicate is found is
// undefined.
func (m Map) Lookup(key string) (Reference, bool) {
	i := sort.Search(m.Len(), func(i int) bool {
		return m.keys.At(i).StringVal() >= key
	})
	if i < m.Len() && m.keys.At(i).StringVal() == key {
		return m.values.At(i), true
	}
	return Reference{}, false
}

func readUInt(data []byte, offset, byteWidth int) uint64 {
	switch byteWidth {
	case 1:
		return uint64(data[offset])
	case 2:
		return uint64(binary.LittleEndian.Uint16(data[offset:]))
	case 4:
		return uint64(binary.LittleEndian.Uint32(data[offset:]))
	default:
		return binary.LittleEndian.Uint64(data[offset:])
	}
}

func readInt(data []byte, offset, byteWidth int) int64 {
	// Sign-extend from the stored width.
	shift := 64 - 8*byteWidth
	return int64(readUInt(data, offset, byteWidth)<<shift) >> shift
}

func readFloat(data []byte, offset, byteWidth int) float64 {
	if byteWidth == 4 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data[offset:])))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(data[offset:]))
}

func keyBytes(data []byte, offset int) []byte {
	end := bytes.IndexByte(data[offset:], 0)
	return data[offset : offset+end]
}
