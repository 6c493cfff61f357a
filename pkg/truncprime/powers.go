// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import "math/big"

// powerTable memoizes base^k alongside base^k mod spModulus.
//
// The table is append-only: a request past the current length computes
// the missing entries by repeated multiplication and never recomputes
// or shrinks. Entry 0 is always 1.
type powerTable struct {
	base uint64
	pows []*big.Int
	mods []uint64
}

func newPowerTable(base uint32) *powerTable {
	return &powerTable{
		base: uint64(base),
		pows: []*big.Int{big.NewInt(1)},
		mods: []uint64{1},
	}
}

// grow extends the table so index k is valid.
func (t *powerTable) grow(k int) {
	for len(t.pows) <= k {
		prev := t.pows[len(t.pows)-1]
		next := new(big.Int).Mul(prev, big.NewInt(int64(t.base)))
		t.pows = append(t.pows, next)
		// base < 2^8 and mods[i] < spModulus < 2^54, so the product
		// fits in a uint64 without overflow.
		t.mods = append(t.mods, t.mods[len(t.mods)-1]*t.base%spModulus)
	}
}

// get returns base^k, growing the table if needed.
func (t *powerTable) get(k int) *big.Int {
	t.grow(k)
	return t.pows[k]
}

// mod returns base^k mod spModulus, growing the table if needed.
func (t *powerTable) mod(k int) uint64 {
	t.grow(k)
	return t.mods[k]
}
