// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package flexbuf

import "math"

// widthUInt returns the smallest width whose unsigned range contains v.
func widthUInt(v uint64) BitWidth {
	switch {
	case v <= math.MaxUint8:
		return Width8
	case v <= math.MaxUint16:
		return Width16
	case v <= math.MaxUint32:
		return Width32
	default:
		return Width64
	}
}

// widthInt returns the smallest width whose signed range contains v.
// The shift folds the sign bit into the magnitude so a single unsigned
// comparison chain covers both halves of each range: for v >= 0 the
// doubled value must fit, for v < 0 the doubled complement must.
func widthInt(v int64) BitWidth {
	doubled := uint64(v) << 1
	if v >= 0 {
		return widthUInt(doubled)
	}
	return widthUInt(^doubled)
}

// widthFloat returns Width32 when v survives a round trip through
// float32 bit-exactly, else Width64. NaN always reports Width64; its
// payload bits are not preserved by the narrowing conversion.
func widthFloat(v float64) BitWidth {
	if float64(float32(v)) == v {
		return Width32
	}
	return Width64
}

// paddingBytes returns how many zero bytes must be appended to a
// buffer of the given size so that the next write lands on a multiple
// of byteWidth. byteWidth must be a power of two.
func paddingBytes(size, byteWidth int) int {
	return -size & (byteWidth - 1)
}
