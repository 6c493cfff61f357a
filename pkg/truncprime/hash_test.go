// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import (
	"math/big"
	"testing"
)

func TestRot32(t *testing.T) {
	if got := rot32(0x00000001_00000002); got != 0x00000002_00000001 {
		t.Errorf("rot32 = %#x, want halves swapped", got)
	}
	if got := rot32(rot32(0xDEADBEEF12345678)); got != 0xDEADBEEF12345678 {
		t.Errorf("rot32 applied twice = %#x, want identity", got)
	}
}

func TestHashInit(t *testing.T) {
	if got := hashInit(big.NewInt(23)); got != 11 {
		t.Errorf("hashInit(23) = %d, want 11", got)
	}
	if got := hashInit(big.NewInt(0)); got != 0 {
		t.Errorf("hashInit(0) = %d, want 0", got)
	}
}

func TestHashUpdateSensitivity(t *testing.T) {
	h := hashInit(big.NewInt(23))
	base := hashUpdate(h, 3, 101)
	if base == hashUpdate(h, 9, 101) {
		t.Error("digest must depend on the path number")
	}
	if base == hashUpdate(h, 3, 102) {
		t.Error("digest must depend on the child digest")
	}
	if base == hashUpdate(h+1, 3, 101) {
		t.Error("digest must depend on the accumulator")
	}
	// Order matters: folding two children in swapped order diverges.
	ab := hashUpdate(hashUpdate(h, 1, 50), 2, 60)
	ba := hashUpdate(hashUpdate(h, 2, 60), 1, 50)
	if ab == ba {
		t.Error("digest must depend on child order")
	}
}

func TestLow64(t *testing.T) {
	tests := []struct {
		name string
		n    *big.Int
		want uint64
	}{
		{"zero", big.NewInt(0), 0},
		{"small", big.NewInt(73939133), 73939133},
		{"max uint64", new(big.Int).SetUint64(^uint64(0)), ^uint64(0)},
		{"truncates high bits", new(big.Int).Lsh(big.NewInt(1), 64), 0},
		{"keeps low word", new(big.Int).Add(new(big.Int).Lsh(big.NewInt(5), 64), big.NewInt(9)), 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := low64(tt.n); got != tt.want {
				t.Errorf("low64 = %d, want %d", got, tt.want)
			}
		})
	}
}
