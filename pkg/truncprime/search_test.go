// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runSearch is a test helper: run one search and return the stream
// bytes, the digest and the search itself.
func runSearch(t *testing.T, cfg Config) ([]byte, uint64, *Search) {
	t.Helper()
	var buf bytes.Buffer
	s, err := NewSearch(cfg, &buf)
	require.NoError(t, err)
	hash, err := s.Run(context.Background())
	require.NoError(t, err)
	return buf.Bytes(), hash, s
}

// decodeAll decodes a stream and returns the visited values in
// preorder as int64s (tests stay below 2^63).
func decodeAll(t *testing.T, stream []byte, base uint32, mode Mode, root *big.Int) []int64 {
	t.Helper()
	r, err := NewTreeReader(bytes.NewReader(stream), base, mode, root)
	require.NoError(t, err)
	var got []int64
	err = r.Walk(func(v *big.Int, digits int) error {
		got = append(got, v.Int64())
		return nil
	})
	require.NoError(t, err)
	return got
}

func TestSearchConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"base too small", Config{Base: 1, Mode: ModeRight}, ErrBaseRange},
		{"base too large", Config{Base: 256, Mode: ModeRight}, ErrBaseRange},
		{"unknown mode", Config{Base: 10, Mode: Mode(9)}, ErrUnknownMode},
		{"negative root", Config{Base: 10, Mode: ModeRight, Root: big.NewInt(-5)}, ErrNegativeRoot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSearch(tt.cfg, &bytes.Buffer{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSearchNegativeMaxLength(t *testing.T) {
	_, err := NewSearch(Config{Base: 10, Mode: ModeRight, MaxLength: -1}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestRightSearchSingleDigits(t *testing.T) {
	// With a one digit budget the stream is just the four prime
	// digits, each a childless subtree.
	stream, _, _ := runSearch(t, Config{Base: 10, Mode: ModeRight, MaxLength: 1})
	want := []byte{0xFF, 2, 0xFF, 3, 0xFF, 5, 0xFF, 7, 0xFF, 0xFF}
	assert.Equal(t, want, stream)
}

func TestRightSearchPreorder(t *testing.T) {
	stream, _, _ := runSearch(t, Config{Base: 10, Mode: ModeRight, MaxLength: 3})
	got := decodeAll(t, stream, 10, ModeRight, nil)
	want := []int64{
		2, 23, 233, 239, 29, 293,
		3, 31, 311, 313, 317, 37, 373, 379,
		5, 53, 59, 593, 599,
		7, 71, 719, 73, 733, 739, 79, 797,
	}
	assert.Equal(t, want, got)
}

func TestLeftSearchPreorder(t *testing.T) {
	stream, _, _ := runSearch(t, Config{Base: 10, Mode: ModeLeft, MaxLength: 2})
	got := decodeAll(t, stream, 10, ModeLeft, nil)
	want := []int64{
		2,
		3, 13, 23, 43, 53, 73, 83,
		5,
		7, 17, 37, 47, 67, 97,
	}
	assert.Equal(t, want, got)
}

func TestLeftOrRightSearchEmitsDuplicates(t *testing.T) {
	// 23 is reachable by appending 3 on the right of 2 and by
	// appending 2 on the left of 3, so it appears twice.
	stream, _, _ := runSearch(t, Config{Base: 10, Mode: ModeLeftOrRight, MaxLength: 2})
	got := decodeAll(t, stream, 10, ModeLeftOrRight, nil)
	count := map[int64]int{}
	for _, v := range got {
		count[v]++
	}
	assert.Equal(t, 2, count[23])
	assert.Equal(t, 2, count[53])
	assert.Equal(t, 2, count[37])
	assert.Equal(t, 1, count[29])
}

func TestLeftAndRightSearchMembers(t *testing.T) {
	stream, _, s := runSearch(t, Config{Base: 10, Mode: ModeLeftAndRight, MaxLength: 4})
	got := decodeAll(t, stream, 10, ModeLeftAndRight, nil)
	oracle := BPSWOracle{}
	for _, v := range got {
		assert.True(t, IsLeftAndRightTruncatable(big.NewInt(v), 10, oracle),
			"decoded value %d is not left-and-right truncatable", v)
	}
	// The forest roots: 4 single-digit primes and 21 two-digit primes.
	assert.Equal(t, uint64(4), s.Stats().CountAt(1))
	assert.Equal(t, uint64(21), s.Stats().CountAt(2))
}

func TestSearchEveryValueHasProperty(t *testing.T) {
	oracle := BPSWOracle{}
	for _, mode := range []Mode{ModeRight, ModeLeft, ModeLeftOrRight, ModeLeftAndRight} {
		t.Run(mode.String(), func(t *testing.T) {
			stream, _, _ := runSearch(t, Config{Base: 10, Mode: mode, MaxLength: 4})
			for _, v := range decodeAll(t, stream, 10, mode, nil) {
				assert.True(t, IsTruncatable(big.NewInt(v), 10, mode, oracle),
					"value %d fails the %s property", v, mode)
			}
		})
	}
}

func TestExplicitRootSubtree(t *testing.T) {
	stream, _, _ := runSearch(t, Config{
		Base: 10, Mode: ModeRight, MaxLength: 3, Root: big.NewInt(23),
	})
	got := decodeAll(t, stream, 10, ModeRight, big.NewInt(23))
	// The root itself is not in the stream, only its descendants.
	assert.Equal(t, []int64{233, 239}, got)
}

func TestExplicitRootVerification(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewSearch(Config{
		Base: 10, Mode: ModeRight, Root: big.NewInt(9), VerifyRoot: true,
	}, &buf)
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRootNotTruncatable)
	assert.Zero(t, buf.Len(), "no output may be produced for a rejected root")
}

func TestHashDistinguishesRuns(t *testing.T) {
	_, h2, _ := runSearch(t, Config{Base: 10, Mode: ModeRight, MaxLength: 2})
	_, h3, _ := runSearch(t, Config{Base: 10, Mode: ModeRight, MaxLength: 3})
	_, hl, _ := runSearch(t, Config{Base: 10, Mode: ModeLeft, MaxLength: 3})
	assert.NotEqual(t, h2, h3)
	assert.NotEqual(t, h3, hl)
}

func TestHashDeterministic(t *testing.T) {
	s1, h1, _ := runSearch(t, Config{Base: 10, Mode: ModeLeftAndRight, MaxLength: 4})
	s2, h2, _ := runSearch(t, Config{Base: 10, Mode: ModeLeftAndRight, MaxLength: 4})
	assert.Equal(t, h1, h2)
	assert.Equal(t, s1, s2)
}

func TestSearchContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	s, err := NewSearch(Config{Base: 10, Mode: ModeRight, MaxLength: 6}, &buf)
	require.NoError(t, err)
	_, err = s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchUnboundedLeftBase10(t *testing.T) {
	// The base 10 left-truncatable tree is finite (largest member has
	// 24 digits), so an unbounded run terminates. Cap the assertion
	// work to the known count of 4260 members.
	stream, _, s := runSearch(t, Config{Base: 10, Mode: ModeLeft})
	assert.Equal(t, uint64(4260), s.Stats().Nodes())
	assert.Equal(t, 24, s.Stats().MaxDigits())
	got := decodeAll(t, stream, 10, ModeLeft, nil)
	assert.Len(t, got, 4260)
}

func TestWriterErrorPropagates(t *testing.T) {
	s, err := NewSearch(Config{Base: 10, Mode: ModeRight, MaxLength: 2}, failingWriter{})
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errWriteRefused)
}

var errWriteRefused = errors.New("write refused")

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errWriteRefused }
