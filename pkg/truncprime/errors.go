// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import "errors"

// Configuration errors. All are detected before any search output is
// produced; a run never emits a partial stream for a bad configuration.
var (
	// ErrBaseRange indicates a base outside [2, 255].
	ErrBaseRange = errors.New("base out of valid range (2-255)")

	// ErrUnknownMode indicates a prime-type name other than r, l, lor, lar.
	ErrUnknownMode = errors.New("unknown prime type")

	// ErrNegativeRoot indicates an explicit root below zero.
	ErrNegativeRoot = errors.New("root must be a nonnegative integer")

	// ErrRootNotTruncatable indicates an explicit root that failed the
	// requested truncatable-prime property check.
	ErrRootNotTruncatable = errors.New("root is not a truncatable prime of the requested type")
)

// Stream errors reported by TreeReader.
var (
	// ErrTruncatedStream indicates EOF inside a subtree.
	ErrTruncatedStream = errors.New("tree stream truncated")

	// ErrBadLabel indicates a branch label byte outside the digit
	// alphabet for the stream's base and mode.
	ErrBadLabel = errors.New("branch label out of range")

	// ErrBadRootMarker indicates a stream that does not begin with the
	// reserved root marker byte(s).
	ErrBadRootMarker = errors.New("missing root marker")

	// ErrTrailingBytes indicates bytes after the closing terminator.
	ErrTrailingBytes = errors.New("extra bytes after end of tree")
)
