// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package flexbuf

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
)

// Builder errors. The first error poisons the builder: subsequent
// appends are ignored and Finish reports it. There is no recovery
// path; callers discard the builder and start over.
var (
	// ErrUnbalanced reports an EndVector/EndMap whose start lies
	// outside the pending stack, or a Finish with anything other than
	// exactly one pending value. Scope starts are not tracked, so an
	// in-range start that belongs to no open scope is not detected.
	ErrUnbalanced = errors.New("flexbuf: unbalanced scope")

	// ErrOddMapEntries reports a map scope closed with a key that has
	// no value.
	ErrOddMapEntries = errors.New("flexbuf: odd number of entries in map scope")

	// ErrMissingKey reports a value appended inside a map scope
	// without a preceding Key.
	ErrMissingKey = errors.New("flexbuf: map value without a preceding key")

	// ErrSinkOverflow reports output growth beyond maxEncodedBytes.
	ErrSinkOverflow = errors.New("flexbuf: output exceeds maximum buffer size")
)

// maxEncodedBytes caps the output buffer. The format itself allows
// offsets up to 2^64, but a single in-memory document approaching
// this limit indicates runaway input.
const maxEncodedBytes = 1 << 53

// value is a pending stack entry: a scalar buffered by bits, or a
// written payload referenced by absolute offset. data holds the
// scalar's raw bits (two's complement for Int, IEEE-754 for Float)
// or the offset.
//
// width is the minimum scalar width for inline types. For offset
// types it records framing information carried into the packed type
// byte: a string or blob's length-prefix width, an indirect scalar's
// natural width, a vector or map's element width. The width needed to
// store the offset itself is recomputed at every enclosure (see
// elemWidth) because it depends on the final element slot position.
type value struct {
	data  uint64
	typ   Type
	width BitWidth
}

// elemWidth returns the width this entry needs when packed as element
// elemIndex of a vector starting at or after bufferSize. Inline
// scalars need their own minimum width. Offset entries need whatever
// width fits the relative offset — which depends on the element slot
// position, which depends on the width being chosen. The loop tries
// each width in ascending order and keeps the first that is
// self-consistent; it always terminates because any in-buffer offset
// fits eight bytes.
func (v value) elemWidth(bufferSize, elemIndex int) BitWidth {
	if v.typ.IsInline() {
		return v.width
	}
	for byteWidth := 1; byteWidth <= 8; byteWidth *= 2 {
		slot := bufferSize + paddingBytes(bufferSize, byteWidth) + elemIndex*byteWidth
		relative := uint64(slot) - v.data
		if width := widthUInt(relative); width.ByteWidth() == byteWidth {
			return width
		}
	}
	return Width64
}

// storedWidth is the width recorded in this entry's packed type byte
// when it is written into a vector of the given element width. Inline
// scalars are widened to the vector's width; offset entries keep
// their framing width (a reader needs the string's length-prefix
// width, not the slot width it already knows).
func (v value) storedWidth(parent BitWidth) BitWidth {
	if v.typ.IsInline() {
		return max(v.width, parent)
	}
	return v.width
}

func (v value) storedPackedType(parent BitWidth) byte {
	return PackedType(v.typ, v.storedWidth(parent))
}

// Builder is a single-pass FlexBuffers encoder. Values are appended
// depth-first: scalars buffer on a stack, strings/keys/blobs and
// indirect scalars are written immediately and referenced by offset,
// and EndVector/EndMap consume the pending tail of the stack into a
// single container entry. Finish emits the root suffix and returns
// the completed buffer.
//
// A Builder is not safe for concurrent use. Builders are cheap;
// create one per buffer.
type Builder struct {
	sink    sink
	stack   []value
	strings offsetPool
	keys    offsetPool
	err     error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Err returns the first error encountered, if any. Once set, all
// further appends are ignored and Finish returns the same error.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) fail(err error) error {
	if b.err == nil {
		b.err = err
	}
	return b.err
}

func (b *Builder) push(v value) {
	if b.err == nil {
		b.stack = append(b.stack, v)
	}
}

// align pads the sink to the byte width corresponding to width and
// returns that byte width.
func (b *Builder) align(width BitWidth) int {
	byteWidth := width.ByteWidth()
	b.sink.pad(byteWidth)
	return byteWidth
}

// writeOffset writes the backwards distance from the current write
// position to the absolute offset, at the given width. Width
// selection (elemWidth) has already guaranteed the distance fits.
func (b *Builder) writeOffset(offset, byteWidth int) {
	b.sink.writeUInt(uint64(b.sink.len()-offset), byteWidth)
}

// writeAny writes one element slot for the entry at the given width.
func (b *Builder) writeAny(v value, byteWidth int) {
	switch v.typ {
	case TypeNull, TypeInt:
		b.sink.writeInt(int64(v.data), byteWidth)
	case TypeUInt, TypeBool:
		b.sink.writeUInt(v.data, byteWidth)
	case TypeFloat:
		b.sink.writeFloat(math.Float64frombits(v.data), byteWidth)
	default:
		b.writeOffset(int(v.data), byteWidth)
	}
}

// Null appends a null value.
func (b *Builder) Null() {
	b.push(value{typ: TypeNull, width: Width8})
}

// Bool appends a boolean value.
func (b *Builder) Bool(v bool) {
	var bits uint64
	if v {
		bits = 1
	}
	b.push(value{data: bits, typ: TypeBool, width: Width8})
}

// Int appends a signed integer. No bytes are written until the
// enclosing container closes and the common element width is known.
func (b *Builder) Int(v int64) {
	b.push(value{data: uint64(v), typ: TypeInt, width: widthInt(v)})
}

// UInt appends an unsigned integer.
func (b *Builder) UInt(v uint64) {
	b.push(value{data: v, typ: TypeUInt, width: widthUInt(v)})
}

// Float appends a floating point value. It is stored at 32 bits when
// the value round-trips through float32 exactly, else 64 bits.
func (b *Builder) Float(v float64) {
	b.push(value{data: math.Float64bits(v), typ: TypeFloat, width: widthFloat(v)})
}

// IndirectInt writes v out-of-line at its natural width and appends a
// reference to it. Use when an occasional wide scalar would otherwise
// force a wide element width onto a whole vector.
func (b *Builder) IndirectInt(v int64) {
	b.pushIndirect(uint64(v), TypeIndirectInt, widthInt(v))
}

// IndirectUInt writes v out-of-line and appends a reference to it.
func (b *Builder) IndirectUInt(v uint64) {
	b.pushIndirect(v, TypeIndirectUInt, widthUInt(v))
}

// IndirectFloat writes v out-of-line and appends a reference to it.
func (b *Builder) IndirectFloat(v float64) {
	b.pushIndirect(math.Float64bits(v), TypeIndirectFloat, widthFloat(v))
}

func (b *Builder) pushIndirect(bits uint64, typ Type, width BitWidth) {
	if !b.ensure(16) {
		return
	}
	byteWidth := b.align(width)
	location := b.sink.len()
	switch typ {
	case TypeIndirectInt:
		b.sink.writeInt(int64(bits), byteWidth)
	case TypeIndirectUInt:
		b.sink.writeUInt(bits, byteWidth)
	default:
		b.sink.writeFloat(math.Float64frombits(bits), byteWidth)
	}
	b.push(value{data: uint64(location), typ: typ, width: width})
}

// Key appends a map key: the bytes plus a NUL terminator, interned so
// a key used in many maps is written once. Keys are legal only in the
// even slots of a map scope; EndMap enforces the pairing.
func (b *Builder) Key(key string) {
	if b.err != nil {
		return
	}
	content := []byte(key)
	if offset, ok := b.keys.lookup(content); ok {
		b.push(value{data: uint64(offset), typ: TypeKey, width: Width8})
		return
	}
	if !b.ensure(len(content) + 1) {
		return
	}
	location := b.sink.len()
	b.sink.append(content)
	b.sink.push(0)
	b.keys.remember(content, location)
	b.push(value{data: uint64(location), typ: TypeKey, width: Width8})
}

// String appends a string value: length prefix, bytes, NUL
// terminator. Identical strings are interned and share one emission.
// The bytes are written verbatim; no UTF-8 validation is performed.
func (b *Builder) String(s string) {
	if b.err != nil {
		return
	}
	content := []byte(s)
	if offset, ok := b.strings.lookup(content); ok {
		b.push(value{data: uint64(offset), typ: TypeString, width: widthUInt(uint64(len(content)))})
		return
	}
	location := b.createBlob(content, 1, TypeString)
	if b.err == nil {
		b.strings.remember(content, location)
	}
}

// Blob appends a binary blob: length prefix then bytes. Blobs are not
// interned.
func (b *Builder) Blob(data []byte) {
	b.createBlob(data, 0, TypeBlob)
}

// createBlob writes a length-prefixed byte payload with the given
// number of trailing NUL bytes, pushes the entry, and returns the
// payload's absolute offset.
func (b *Builder) createBlob(data []byte, trailing int, typ Type) int {
	if !b.ensure(len(data) + trailing + 8) {
		return 0
	}
	width := widthUInt(uint64(len(data)))
	byteWidth := b.align(width)
	b.sink.writeUInt(uint64(len(data)), byteWidth)
	location := b.sink.len()
	b.sink.append(data)
	for range trailing {
		b.sink.push(0)
	}
	b.push(value{data: uint64(location), typ: typ, width: width})
	return location
}

// ensure fails the builder when appending n more bytes would exceed
// the output cap.
func (b *Builder) ensure(n int) bool {
	if b.err != nil {
		return false
	}
	if b.sink.len() > maxEncodedBytes-n {
		b.fail(ErrSinkOverflow)
		return false
	}
	return true
}

// StartVector opens a vector scope and returns its start position.
// Pass the position to EndVector after appending the elements.
func (b *Builder) StartVector() int {
	return len(b.stack)
}

// StartMap opens a map scope and returns its start position. Append
// alternating Key/value pairs, then pass the position to EndMap.
func (b *Builder) StartMap() int {
	return len(b.stack)
}

// EndVector closes the vector scope opened at start, consuming every
// entry appended since. With typed set, all elements must share one
// typed-vector element type and the per-element type table is
// omitted. With fixed set, the element count must be 2, 3 or 4 of a
// uniform scalar type and the length prefix is omitted too.
func (b *Builder) EndVector(start int, typed, fixed bool) error {
	if b.err != nil {
		return b.err
	}
	if start < 0 || start > len(b.stack) {
		return b.fail(fmt.Errorf("%w: vector start %d with %d pending values", ErrUnbalanced, start, len(b.stack)))
	}
	length := len(b.stack) - start
	fixedLen := 0
	if fixed {
		if !typed {
			return b.fail(fmt.Errorf("fixed vectors are always typed"))
		}
		if length < 2 || length > 4 {
			return b.fail(fmt.Errorf("fixed vector must hold 2, 3 or 4 elements, got %d", length))
		}
		fixedLen = length
	}
	vec, err := b.createVector(start, length, 1, typed, fixedLen, nil)
	if err != nil {
		return b.fail(err)
	}
	b.stack = append(b.stack[:start], vec)
	return nil
}

// EndMap closes the map scope opened at start. The pending entries
// must be alternating Key/value pairs; they are sorted by the key's
// byte content so readers can binary-search. Duplicate keys are
// passed through unchanged — lookups among duplicates are undefined,
// but the buffer remains structurally valid.
func (b *Builder) EndMap(start int) error {
	if b.err != nil {
		return b.err
	}
	if start < 0 || start > len(b.stack) {
		return b.fail(fmt.Errorf("%w: map start %d with %d pending values", ErrUnbalanced, start, len(b.stack)))
	}
	if (len(b.stack)-start)%2 != 0 {
		return b.fail(ErrOddMapEntries)
	}
	for i := start; i < len(b.stack); i += 2 {
		if b.stack[i].typ != TypeKey {
			return b.fail(ErrMissingKey)
		}
	}
	sort.Sort(&mapPairs{entries: b.stack[start:], buf: b.sink.buf})

	length := (len(b.stack) - start) / 2
	keys, err := b.createVector(start, length, 2, true, 0, nil)
	if err != nil {
		return b.fail(err)
	}
	vec, err := b.createVector(start+1, length, 2, false, 0, &keys)
	if err != nil {
		return b.fail(err)
	}
	b.stack = append(b.stack[:start], vec)
	return nil
}

// createVector emits a vector payload from stack entries
// [start, start+length*step) taken at the given stride, and returns
// the entry describing it (without pushing). With keys set, the
// result is a map: the vector is prefixed by the keys-vector offset
// and the keys-vector byte width.
//
// The element width starts at whatever fits the length prefix and
// grows to cover every element. For offset entries the required
// width itself depends on the chosen width (wider slots sit further
// from their targets), so elemWidth re-derives each entry's need
// under the candidate slot positions; taking the maximum converges
// because widening only ever pushes slots further out, and eight
// bytes always suffices.
func (b *Builder) createVector(start, length, step int, typed bool, fixedLen int, keys *value) (value, error) {
	// Worst case: padding, two prefix slots, length, eight-byte
	// elements, one type byte each.
	if !b.ensure(length*9 + 32) {
		return value{}, b.err
	}
	width := widthUInt(uint64(length))
	prefixElems := 1
	if keys != nil {
		// The keys vector offset and its byte width sit before the
		// length prefix, occupying two more element slots.
		width = max(width, keys.elemWidth(b.sink.len(), 0))
		prefixElems += 2
	}
	elementType := TypeKey
	for i := range length {
		entry := b.stack[start+i*step]
		// The trial slot index is the element's position in the
		// emitted vector. The stride only selects source entries from
		// the interleaved stack tail; it must not scale the slot.
		width = max(width, entry.elemWidth(b.sink.len(), i+prefixElems))
		if typed {
			if i == 0 {
				elementType = entry.typ
			} else if entry.typ != elementType {
				return value{}, fmt.Errorf("typed vector element %d has type %d, want %d", i, entry.typ, elementType)
			}
		}
	}

	vectorType := TypeVector
	switch {
	case keys != nil:
		vectorType = TypeMap
	case typed:
		var err error
		if vectorType, err = typedVector(elementType, fixedLen); err != nil {
			return value{}, err
		}
	}

	byteWidth := b.align(width)
	if keys != nil {
		b.writeOffset(int(keys.data), byteWidth)
		b.sink.writeUInt(uint64(keys.width.ByteWidth()), byteWidth)
	}
	if fixedLen == 0 {
		b.sink.writeUInt(uint64(length), byteWidth)
	}
	location := b.sink.len()
	for i := range length {
		b.writeAny(b.stack[start+i*step], byteWidth)
	}
	if !typed {
		for i := range length {
			b.sink.push(b.stack[start+i*step].storedPackedType(width))
		}
	}
	return value{data: uint64(location), typ: vectorType, width: width}, nil
}

// IntVector appends a typed vector of signed integers in one pass:
// the common minimum width is computed up front and the elements are
// written contiguously with no per-element type table.
func (b *Builder) IntVector(values []int64) {
	if b.err != nil || !b.ensure(len(values)*8+16) {
		return
	}
	width := widthUInt(uint64(len(values)))
	for _, v := range values {
		width = max(width, widthInt(v))
	}
	byteWidth := b.align(width)
	b.sink.writeUInt(uint64(len(values)), byteWidth)
	location := b.sink.len()
	for _, v := range values {
		b.sink.writeInt(v, byteWidth)
	}
	b.push(value{data: uint64(location), typ: TypeVectorInt, width: width})
}

// UIntVector appends a typed vector of unsigned integers.
func (b *Builder) UIntVector(values []uint64) {
	if b.err != nil || !b.ensure(len(values)*8+16) {
		return
	}
	width := widthUInt(uint64(len(values)))
	for _, v := range values {
		width = max(width, widthUInt(v))
	}
	byteWidth := b.align(width)
	b.sink.writeUInt(uint64(len(values)), byteWidth)
	location := b.sink.len()
	for _, v := range values {
		b.sink.writeUInt(v, byteWidth)
	}
	b.push(value{data: uint64(location), typ: TypeVectorUInt, width: width})
}

// FloatVector appends a typed vector of floats, stored at 32 bits
// when every element round-trips through float32 exactly.
func (b *Builder) FloatVector(values []float64) {
	if b.err != nil || !b.ensure(len(values)*8+16) {
		return
	}
	width := widthUInt(uint64(len(values)))
	for _, v := range values {
		width = max(width, widthFloat(v))
	}
	byteWidth := b.align(width)
	b.sink.writeUInt(uint64(len(values)), byteWidth)
	location := b.sink.len()
	for _, v := range values {
		b.sink.writeFloat(v, byteWidth)
	}
	b.push(value{data: uint64(location), typ: TypeVectorFloat, width: width})
}

// BoolVector appends a typed vector of booleans (one byte each).
func (b *Builder) BoolVector(values []bool) {
	if b.err != nil || !b.ensure(len(values)+16) {
		return
	}
	width := widthUInt(uint64(len(values)))
	byteWidth := b.align(width)
	b.sink.writeUInt(uint64(len(values)), byteWidth)
	location := b.sink.len()
	for _, v := range values {
		var bits uint64
		if v {
			bits = 1
		}
		// Bools need one byte, but the slots must match the vector's
		// element width, which the length prefix can push wider.
		b.sink.writeUInt(bits, byteWidth)
	}
	b.push(value{data: uint64(location), typ: TypeVectorBool, width: width})
}

// FixedIntVector appends a fixed typed vector of 2, 3 or 4 signed
// integers: no length prefix, no type table, length carried by the
// type code.
func (b *Builder) FixedIntVector(values []int64) error {
	return b.fixedScalarVector(len(values), TypeInt, func(byteWidth int) {
		for _, v := range values {
			b.sink.writeInt(v, byteWidth)
		}
	}, func() BitWidth {
		width := Width8
		for _, v := range values {
			width = max(width, widthInt(v))
		}
		return width
	})
}

// FixedUIntVector appends a fixed typed vector of 2, 3 or 4 unsigned
// integers.
func (b *Builder) FixedUIntVector(values []uint64) error {
	return b.fixedScalarVector(len(values), TypeUInt, func(byteWidth int) {
		for _, v := range values {
			b.sink.writeUInt(v, byteWidth)
		}
	}, func() BitWidth {
		width := Width8
		for _, v := range values {
			width = max(width, widthUInt(v))
		}
		return width
	})
}

// FixedFloatVector appends a fixed typed vector of 2, 3 or 4 floats.
func (b *Builder) FixedFloatVector(values []float64) error {
	return b.fixedScalarVector(len(values), TypeFloat, func(byteWidth int) {
		for _, v := range values {
			b.sink.writeFloat(v, byteWidth)
		}
	}, func() BitWidth {
		width := Width32
		for _, v := range values {
			width = max(width, widthFloat(v))
		}
		return width
	})
}

func (b *Builder) fixedScalarVector(length int, element Type, write func(byteWidth int), commonWidth func() BitWidth) error {
	if b.err != nil {
		return b.err
	}
	if length < 2 || length > 4 {
		return b.fail(fmt.Errorf("fixed vector must hold 2, 3 or 4 elements, got %d", length))
	}
	vectorType, err := typedVector(element, length)
	if err != nil {
		return b.fail(err)
	}
	if !b.ensure(length*8 + 8) {
		return b.err
	}
	width := commonWidth()
	byteWidth := b.align(width)
	location := b.sink.len()
	write(byteWidth)
	b.push(value{data: uint64(location), typ: vectorType, width: width})
	return nil
}

// Finish validates that exactly one value remains, emits the root
// suffix (root value, packed type byte, root byte width), and returns
// the completed buffer. The builder must not be used afterwards.
func (b *Builder) Finish() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.stack) != 1 {
		return nil, b.fail(fmt.Errorf("%w: %d values pending at finish, want exactly 1", ErrUnbalanced, len(b.stack)))
	}
	if !b.ensure(16) {
		return nil, b.err
	}
	root := b.stack[0]
	byteWidth := b.align(root.elemWidth(b.sink.len(), 0))
	b.writeAny(root, byteWidth)
	b.sink.push(root.storedPackedType(Width8))
	b.sink.push(byte(byteWidth))
	return b.sink.buf, nil
}

// mapPairs sorts the alternating key/value tail of the stack by the
// byte content of the keys as written in the buffer. Key entries
// always point at NUL-terminated byte sequences, so the comparison
// reads the buffer directly — offsets alone would reflect interning
// order, not key order.
type mapPairs struct {
	entries []value
	buf     []byte
}

func (p *mapPairs) Len() int {
	return len(p.entries) / 2
}

func (p *mapPairs) key(i int) []byte {
	start := int(p.entries[2*i].data)
	end := bytes.IndexByte(p.buf[start:], 0)
	return p.buf[start : start+end]
}

func (p *mapPairs) Less(i, j int) bool {
	return bytes.Compare(p.key(i), p.key(j)) < 0
}

func (p *mapPairs) Swap(i, j int) {
	p.entries[2*i], p.entries[2*j] = p.entries[2*j], p.entries[2*i]
	p.entries[2*i+1], p.entries[2*j+1] = p.entries[2*j+1], p.entries[2*i+1]
}
