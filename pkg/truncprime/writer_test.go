// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeWriterStream(t *testing.T) {
	var buf bytes.Buffer
	w := NewTreeWriter(&buf)
	w.RootMarker(2)
	w.Label(0, 3)
	w.End()
	w.Raw([]byte{1, 7})
	w.End()
	w.End()
	require.NoError(t, w.Flush())

	assert.Equal(t, []byte{0xFF, 0xFF, 0, 3, 0xFF, 1, 7, 0xFF, 0xFF}, buf.Bytes())
	assert.Equal(t, int64(9), w.BytesWritten())
	assert.NoError(t, w.Err())
}

type shortWriter struct {
	limit int
}

var errShortWriter = errors.New("short writer full")

func (s *shortWriter) Write(p []byte) (int, error) {
	if len(p) > s.limit {
		n := s.limit
		s.limit = 0
		return n, errShortWriter
	}
	s.limit -= len(p)
	return len(p), nil
}

func TestTreeWriterStickyError(t *testing.T) {
	w := NewTreeWriter(&shortWriter{limit: 2})
	w.RootMarker(1)
	w.Label(2)
	w.Label(3)
	assert.ErrorIs(t, w.Flush(), errShortWriter)

	// Subsequent writes are suppressed and the error persists.
	before := w.BytesWritten()
	w.Label(5)
	w.End()
	assert.Equal(t, before, w.BytesWritten())
	assert.ErrorIs(t, w.Err(), errShortWriter)
	assert.ErrorIs(t, w.Flush(), errShortWriter)
}
