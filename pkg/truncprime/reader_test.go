// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walkBytes(stream []byte, base uint32, mode Mode, root *big.Int) error {
	r, err := NewTreeReader(bytes.NewReader(stream), base, mode, root)
	if err != nil {
		return err
	}
	return r.Walk(func(*big.Int, int) error { return nil })
}

func TestReaderStreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
		mode   Mode
		want   error
	}{
		{"empty stream", nil, ModeRight, ErrTruncatedStream},
		{"bad marker", []byte{0x00, 0xFF}, ModeRight, ErrBadRootMarker},
		{"half marker", []byte{0xFF}, ModeLeftOrRight, ErrTruncatedStream},
		{"truncated subtree", []byte{0xFF, 2}, ModeRight, ErrTruncatedStream},
		{"zero digit label", []byte{0xFF, 0, 0xFF, 0xFF}, ModeRight, ErrBadLabel},
		{"digit above base", []byte{0xFF, 12, 0xFF, 0xFF}, ModeRight, ErrBadLabel},
		{"bad side byte", []byte{0xFF, 0xFF, 2, 3, 0xFF, 0xFF}, ModeLeftOrRight, ErrBadLabel},
		{"trailing bytes", []byte{0xFF, 0xFF, 0x00}, ModeRight, ErrTrailingBytes},
		{"missing final end", []byte{0xFF, 2, 0xFF}, ModeRight, ErrTruncatedStream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := walkBytes(tt.stream, 10, tt.mode, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReaderEmptyForest(t *testing.T) {
	// A run over a forest with no prime roots is just the marker and
	// the closing terminator.
	assert.NoError(t, walkBytes([]byte{0xFF, 0xFF}, 10, ModeRight, nil))
	assert.NoError(t, walkBytes([]byte{0xFF, 0xFF, 0xFF}, 10, ModeLeftAndRight, nil))
}

func TestReaderDigitLengths(t *testing.T) {
	stream, _, _ := runSearch(t, Config{Base: 10, Mode: ModeRight, MaxLength: 3})
	r, err := NewTreeReader(bytes.NewReader(stream), 10, ModeRight, nil)
	require.NoError(t, err)
	err = r.Walk(func(v *big.Int, digits int) error {
		assert.Equal(t, digitCount(v, 10), digits)
		return nil
	})
	require.NoError(t, err)
}

func TestReaderLeftAndRightForestRoots(t *testing.T) {
	// Pair roots: (0,7) is the one-digit root 7, (2,3) the two-digit
	// root 23. Both childless.
	stream := []byte{0xFF, 0xFF, 0, 7, 0xFF, 2, 3, 0xFF, 0xFF}
	r, err := NewTreeReader(bytes.NewReader(stream), 10, ModeLeftAndRight, nil)
	require.NoError(t, err)
	var values []int64
	var lengths []int
	err = r.Walk(func(v *big.Int, digits int) error {
		values = append(values, v.Int64())
		lengths = append(lengths, digits)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 23}, values)
	assert.Equal(t, []int{1, 2}, lengths)
}

func TestReaderRoundTripExplicitRoot(t *testing.T) {
	root := big.NewInt(59)
	stream, _, _ := runSearch(t, Config{Base: 10, Mode: ModeRight, MaxLength: 4, Root: root})
	got := decodeAll(t, stream, 10, ModeRight, root)
	// Descendants of 59 in preorder: 593, its child 5939, then the
	// childless 599.
	assert.Equal(t, []int64{593, 5939, 599}, got)
}

func TestReaderVisitErrorStopsWalk(t *testing.T) {
	stream, _, _ := runSearch(t, Config{Base: 10, Mode: ModeRight, MaxLength: 3})
	r, err := NewTreeReader(bytes.NewReader(stream), 10, ModeRight, nil)
	require.NoError(t, err)
	calls := 0
	err = r.Walk(func(*big.Int, int) error {
		calls++
		return errWriteRefused
	})
	assert.ErrorIs(t, err, errWriteRefused)
	assert.Equal(t, 1, calls)
}
