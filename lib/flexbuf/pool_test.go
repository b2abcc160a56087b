// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package flexbuf

import "testing"

func TestOffsetPool(t *testing.T) {
	var pool offsetPool

	if _, ok := pool.lookup([]byte("missing")); ok {
		t.Error("lookup on empty pool should miss")
	}

	pool.remember([]byte("alpha"), 10)
	pool.remember([]byte("beta"), 20)

	offset, ok := pool.lookup([]byte("alpha"))
	if !ok || offset != 10 {
		t.Errorf("lookup(alpha) = (%d, %v), want (10, true)", offset, ok)
	}
	offset, ok = pool.lookup([]byte("beta"))
	if !ok || offset != 20 {
		t.Errorf("lookup(beta) = (%d, %v), want (20, true)", offset, ok)
	}
	if _, ok := pool.lookup([]byte("alph")); ok {
		t.Error("lookup of a prefix should miss")
	}
}

func TestOffsetPoolEmptyContent(t *testing.T) {
	// The empty string is a legal key and a legal string value.
	var pool offsetPool
	pool.remember(nil, 7)
	offset, ok := pool.lookup([]byte{})
	if !ok || offset != 7 {
		t.Errorf("lookup(empty) = (%d, %v), want (7, true)", offset, ok)
	}
}
