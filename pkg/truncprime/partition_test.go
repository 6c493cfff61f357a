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
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParallelMatchesSequential is the partition invariant: a
// partitioned run must be byte-identical and digest-identical to the
// sequential run of the same configuration, for every mode.
func TestParallelMatchesSequential(t *testing.T) {
	for _, mode := range []Mode{ModeRight, ModeLeft, ModeLeftOrRight, ModeLeftAndRight} {
		t.Run(mode.String(), func(t *testing.T) {
			cfg := Config{Base: 10, Mode: mode, MaxLength: 4}

			seqStream, seqHash, seq := runSearch(t, cfg)

			var parBuf bytes.Buffer
			parHash, parStats, err := ExploreParallel(context.Background(), cfg, 4, &parBuf)
			require.NoError(t, err)

			assert.Equal(t, seqStream, parBuf.Bytes())
			assert.Equal(t, seqHash, parHash)

			var seqReport, parReport bytes.Buffer
			require.NoError(t, seq.Stats().WriteReport(&seqReport, seqHash))
			require.NoError(t, parStats.WriteReport(&parReport, parHash))
			assert.Equal(t, seqReport.String(), parReport.String())
		})
	}
}

func TestParallelWorkerCountIrrelevant(t *testing.T) {
	cfg := Config{Base: 10, Mode: ModeRight, MaxLength: 5}
	var one, many bytes.Buffer
	h1, _, err := ExploreParallel(context.Background(), cfg, 1, &one)
	require.NoError(t, err)
	h2, _, err := ExploreParallel(context.Background(), cfg, 8, &many)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, one.Bytes(), many.Bytes())
}

func TestParallelRejectsExplicitRoot(t *testing.T) {
	cfg := Config{Base: 10, Mode: ModeRight, Root: big.NewInt(23)}
	_, _, err := ExploreParallel(context.Background(), cfg, 2, &bytes.Buffer{})
	require.Error(t, err)
}

func TestParallelValidatesConfig(t *testing.T) {
	_, _, err := ExploreParallel(context.Background(), Config{Base: 1, Mode: ModeRight}, 2, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrBaseRange)
}

func TestParallelContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := ExploreParallel(ctx, Config{Base: 10, Mode: ModeRight, MaxLength: 6}, 2, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}
