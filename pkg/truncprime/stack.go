// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import "math/big"

// frame holds the node value under construction at one recursion depth
// together with its residue modulo spModulus, which the search keeps in
// lockstep with every forward and backward arithmetic step.
//
// Invariant: frame d is always derived from frame d-1 plus exactly the
// digit(s) appended at depth d, both before and after every descent.
type frame struct {
	value   *big.Int
	residue uint64
}

// frameStack is the explicit recursion stack. Frames are allocated once
// per depth, reused when the search backtracks and overwritten on the
// next descent, so deep branchy trees cause no reallocation churn.
// Frames are held by pointer: a *frame stays valid while deeper calls
// grow the stack.
type frameStack struct {
	frames []*frame
}

func newFrameStack() *frameStack {
	return &frameStack{frames: []*frame{{value: new(big.Int)}}}
}

// ensureDepth guarantees frame d exists. New frames start at zero; the
// caller populates them before use.
func (s *frameStack) ensureDepth(d int) {
	for len(s.frames) <= d {
		s.frames = append(s.frames, &frame{value: new(big.Int)})
	}
}

// at returns the frame at depth d, which must already exist.
func (s *frameStack) at(d int) *frame {
	return s.frames[d]
}

// depthCapacity returns the number of allocated frames.
func (s *frameStack) depthCapacity() int {
	return len(s.frames)
}
