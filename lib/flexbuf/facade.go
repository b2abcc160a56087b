// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package flexbuf

// BuildMap constructs a finished buffer whose root is a map. The
// populate callback receives a MapBuilder scoped to the root map; the
// scope is closed and the buffer finished on return.
//
//	data, err := flexbuf.BuildMap(func(m *flexbuf.MapBuilder) {
//		m.String("name", "chunk-0")
//		m.Int("size", 4096)
//	})
func BuildMap(populate func(*MapBuilder)) ([]byte, error) {
	builder := NewBuilder()
	root := MapBuilder{builder: builder, start: builder.StartMap()}
	populate(&root)
	if err := builder.EndMap(root.start); err != nil {
		return nil, err
	}
	return builder.Finish()
}

// BuildVector constructs a finished buffer whose root is a
// heterogeneous vector.
func BuildVector(populate func(*VectorBuilder)) ([]byte, error) {
	builder := NewBuilder()
	root := VectorBuilder{builder: builder, start: builder.StartVector()}
	populate(&root)
	if err := builder.EndVector(root.start, false, false); err != nil {
		return nil, err
	}
	return builder.Finish()
}

// MapBuilder appends key/value pairs to one open map scope. All
// methods delegate to the underlying Builder; errors stick to the
// Builder and surface from Finish, so populate callbacks can chain
// calls without per-call error handling.
type MapBuilder struct {
	builder *Builder
	start   int
}

// Null adds a null entry.
func (m *MapBuilder) Null(key string) {
	m.builder.Key(key)
	m.builder.Null()
}

// Bool adds a boolean entry.
func (m *MapBuilder) Bool(key string, v bool) {
	m.builder.Key(key)
	m.builder.Bool(v)
}

// Int adds a signed integer entry.
func (m *MapBuilder) Int(key string, v int64) {
	m.builder.Key(key)
	m.builder.Int(v)
}

// UInt adds an unsigned integer entry.
func (m *MapBuilder) UInt(key string, v uint64) {
	m.builder.Key(key)
	m.builder.UInt(v)
}

// Float adds a floating point entry.
func (m *MapBuilder) Float(key string, v float64) {
	m.builder.Key(key)
	m.builder.Float(v)
}

// IndirectInt adds a signed integer stored out-of-line.
func (m *MapBuilder) IndirectInt(key string, v int64) {
	m.builder.Key(key)
	m.builder.IndirectInt(v)
}

// IndirectUInt adds an unsigned integer stored out-of-line.
func (m *MapBuilder) IndirectUInt(key string, v uint64) {
	m.builder.Key(key)
	m.builder.IndirectUInt(v)
}

// IndirectFloat adds a float stored out-of-line.
func (m *MapBuilder) IndirectFloat(key string, v float64) {
	m.builder.Key(key)
	m.builder.IndirectFloat(v)
}

// String adds a string entry.
func (m *MapBuilder) String(key, v string) {
	m.builder.Key(key)
	m.builder.String(v)
}

// Blob adds a binary blob entry.
func (m *MapBuilder) Blob(key string, v []byte) {
	m.builder.Key(key)
	m.builder.Blob(v)
}

// IntVector adds a typed vector of signed integers.
func (m *MapBuilder) IntVector(key string, values []int64) {
	m.builder.Key(key)
	m.builder.IntVector(values)
}

// UIntVector adds a typed vector of unsigned integers.
func (m *MapBuilder) UIntVector(key string, values []uint64) {
	m.builder.Key(key)
	m.builder.UIntVector(values)
}

// FloatVector adds a typed vector of floats.
func (m *MapBuilder) FloatVector(key string, values []float64) {
	m.builder.Key(key)
	m.builder.FloatVector(values)
}

// BoolVector adds a typed vector of booleans.
func (m *MapBuilder) BoolVector(key string, values []bool) {
	m.builder.Key(key)
	m.builder.BoolVector(values)
}

// FixedIntVector adds a fixed tuple of 2, 3 or 4 signed integers.
func (m *MapBuilder) FixedIntVector(key string, values []int64) {
	m.builder.Key(key)
	m.builder.FixedIntVector(values)
}

// FixedUIntVector adds a fixed tuple of 2, 3 or 4 unsigned integers.
func (m *MapBuilder) FixedUIntVector(key string, values []uint64) {
	m.builder.Key(key)
	m.builder.FixedUIntVector(values)
}

// FixedFloatVector adds a fixed tuple of 2, 3 or 4 floats.
func (m *MapBuilder) FixedFloatVector(key string, values []float64) {
	m.builder.Key(key)
	m.builder.FixedFloatVector(values)
}

// Map adds a nested map populated by the callback.
func (m *MapBuilder) Map(key string, populate func(*MapBuilder)) {
	m.builder.Key(key)
	nested := MapBuilder{builder: m.builder, start: m.builder.StartMap()}
	populate(&nested)
	m.builder.EndMap(nested.start)
}

// Vector adds a nested heterogeneous vector populated by the
// callback.
func (m *MapBuilder) Vector(key string, populate func(*VectorBuilder)) {
	m.builder.Key(key)
	nested := VectorBuilder{builder: m.builder, start: m.builder.StartVector()}
	populate(&nested)
	m.builder.EndVector(nested.start, false, false)
}

// VectorBuilder appends elements to one open vector scope.
type VectorBuilder struct {
	builder *Builder
	start   int
}

// Null adds a null element.
func (v *VectorBuilder) Null() {
	v.builder.Null()
}

// Bool adds a boolean element.
func (v *VectorBuilder) Bool(b bool) {
	v.builder.Bool(b)
}

// Int adds a signed integer element.
func (v *VectorBuilder) Int(i int64) {
	v.builder.Int(i)
}

// UInt adds an unsigned integer element.
func (v *VectorBuilder) UInt(u uint64) {
	v.builder.UInt(u)
}

// Float adds a floating point element.
func (v *VectorBuilder) Float(f float64) {
	v.builder.Float(f)
}

// IndirectInt adds a signed integer stored out-of-line.
func (v *VectorBuilder) IndirectInt(i int64) {
	v.builder.IndirectInt(i)
}

// IndirectUInt adds an unsigned integer stored out-of-line.
func (v *VectorBuilder) IndirectUInt(u uint64) {
	v.builder.IndirectUInt(u)
}

// IndirectFloat adds a float stored out-of-line.
func (v *VectorBuilder) IndirectFloat(f float64) {
	v.builder.IndirectFloat(f)
}

// String adds a string element.
func (v *VectorBuilder) String(s string) {
	v.builder.String(s)
}

// Blob adds a binary blob element.
func (v *VectorBuilder) Blob(data []byte) {
	v.builder.Blob(data)
}

// IntVector adds a nested typed vector of signed integers.
func (v *VectorBuilder) IntVector(values []int64) {
	v.builder.IntVector(values)
}

// UIntVector adds a nested typed vector of unsigned integers.
func (v *VectorBuilder) UIntVector(values []uint64) {
	v.builder.UIntVector(values)
}

// FloatVector adds a nested typed vector of floats.
func (v *VectorBuilder) FloatVector(values []float64) {
	v.builder.FloatVector(values)
}

// BoolVector adds a nested typed vector of booleans.
func (v *VectorBuilder) BoolVector(values []bool) {
	v.builder.BoolVector(values)
}

// FixedIntVector adds a fixed tuple of 2, 3 or 4 signed integers.
func (v *VectorBuilder) FixedIntVector(values []int64) {
	v.builder.FixedIntVector(values)
}

// FixedUIntVector adds a fixed tuple of 2, 3 or 4 unsigned integers.
func (v *VectorBuilder) FixedUIntVector(values []uint64) {
	v.builder.FixedUIntVector(values)
}

// FixedFloatVector adds a fixed tuple of 2, 3 or 4 floats.
func (v *VectorBuilder) FixedFloatVector(values []float64) {
	v.builder.FixedFloatVector(values)
}

// Map adds a nested map populated by the callback.
func (v *VectorBuilder) Map(populate func(*MapBuilder)) {
	nested := MapBuilder{builder: v.builder, start: v.builder.StartMap()}
	populate(&nested)
	v.builder.EndMap(nested.start)
}

// Vector adds a nested heterogeneous vector populated by the
// callback.
func (v *VectorBuilder) Vector(populate func(*VectorBuilder)) {
	nested := VectorBuilder{builder: v.builder, start: v.builder.StartVector()}
	populate(&nested)
	v.builder.EndVector(nested.start, false, false)
}
