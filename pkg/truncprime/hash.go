// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import (
	"math/big"
	"math/bits"
)

// The tree digest. Every node contributes its own value and, in
// traversal order, the digest of each child mixed with the branch path
// number, so two runs that disagree on any node value, branch label or
// child ordering produce different digests with overwhelming
// probability. All arithmetic is modulo 2^64.
//
//	hash(node) = low64(node.value) >> 1
//	for each child (path d, digest c) in order:
//	    hash ^= rot32(8191*(127*hash - d) + c)
//
// where rot32 swaps the two 32-bit halves. The reported digest of a
// full run is hash(root); for a full-forest run the per-root digests
// are folded into an initial 0 using the root path numbers, which is
// also how partitioned subtree digests recombine.

// rot32 swaps the upper and lower 32 bits.
func rot32(h uint64) uint64 {
	return bits.RotateLeft64(h, 32)
}

// hashUpdate folds one child digest c reached via path number d into h.
func hashUpdate(h, d, c uint64) uint64 {
	return h ^ rot32(8191*(127*h-d)+c)
}

// hashInit seeds a node digest from the node's value.
func hashInit(value *big.Int) uint64 {
	return low64(value) >> 1
}

// low64 returns the low 64 bits of n's magnitude, portably across
// 32- and 64-bit big.Word sizes.
func low64(n *big.Int) uint64 {
	var r uint64
	for i, w := range n.Bits() {
		shift := uint(i) * uint(bits.UintSize)
		if shift >= 64 {
			break
		}
		r |= uint64(w) << shift
	}
	return r
}
