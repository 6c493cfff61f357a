// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import (
	"bufio"
	"io"
)

// EndByte is the reserved terminator closing each subtree in the tree
// byte stream. The same value marks the synthetic root at the start of
// the stream. Digit labels never reach it: bases stop at 255 and
// appended digits stop at base-1, so label bytes and the terminator
// are disjoint and a reader needs no lookahead beyond one label.
const EndByte byte = 0xFF

// TreeWriter is the serialization sink for the enumerator. It buffers
// output and knows nothing about node values, only the label bytes and
// terminators handed to it.
//
// Write errors are sticky: the first error suppresses all further
// output and is reported by Flush and Err. This keeps the recursive
// emit path free of error plumbing, like the buffered writer it wraps.
type TreeWriter struct {
	w     *bufio.Writer
	err   error
	count int64
}

// NewTreeWriter wraps w in a buffered tree stream writer.
func NewTreeWriter(w io.Writer) *TreeWriter {
	return &TreeWriter{w: bufio.NewWriterSize(w, 1<<20)}
}

// Label emits the byte(s) of one branch label (1 byte for single-sided
// modes, 2 for left-or-right and left-and-right).
func (t *TreeWriter) Label(bs ...byte) {
	if t.err != nil {
		return
	}
	t.Raw(bs)
	streamBytes.Add(float64(len(bs)))
}

// End emits the subtree terminator.
func (t *TreeWriter) End() {
	if t.err != nil {
		return
	}
	if err := t.w.WriteByte(EndByte); err != nil {
		t.err = err
		return
	}
	t.count++
	streamBytes.Inc()
}

// RootMarker emits the reserved root value at the start of a stream:
// width copies of the terminator byte (1 for single-sided modes, 2
// otherwise).
func (t *TreeWriter) RootMarker(width int) {
	for i := 0; i < width; i++ {
		t.End()
	}
}

// Raw copies already-encoded stream bytes, used when concatenating
// independently serialized partition subtrees.
func (t *TreeWriter) Raw(p []byte) {
	if t.err != nil {
		return
	}
	n, err := t.w.Write(p)
	t.count += int64(n)
	if err != nil {
		t.err = err
	}
}

// Flush writes buffered bytes through to the underlying writer and
// returns the first error seen, if any.
func (t *TreeWriter) Flush() error {
	if t.err != nil {
		return t.err
	}
	t.err = t.w.Flush()
	return t.err
}

// Err returns the first write error seen, if any.
func (t *TreeWriter) Err() error {
	return t.err
}

// BytesWritten returns the number of stream bytes emitted so far.
func (t *TreeWriter) BytesWritten() int64 {
	return t.count
}
