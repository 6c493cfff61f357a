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

func TestCheckers(t *testing.T) {
	oracle := BPSWOracle{}
	tests := []struct {
		name string
		n    int64
		base uint32
		mode Mode
		want bool
	}{
		// Right truncatable.
		{"r single digit", 7, 10, ModeRight, true},
		{"r member", 23, 10, ModeRight, true},
		{"r deep member", 73939133, 10, ModeRight, true},
		{"r prime with composite prefix", 251, 10, ModeRight, false},
		{"r composite", 24, 10, ModeRight, false},
		{"r one", 1, 10, ModeRight, false},
		{"r zero", 0, 10, ModeRight, false},
		{"r base itself in prime base", 2, 2, ModeRight, false},

		// Left truncatable.
		{"l member", 317, 10, ModeLeft, true},
		{"l suffix composite", 163, 10, ModeLeft, false},
		{"l member chain", 9137, 10, ModeLeft, true},
		{"l zero digit", 103, 10, ModeLeft, false},
		{"l prime with composite suffix", 149, 10, ModeLeft, false},

		// Left or right truncatable.
		{"lor single digit", 5, 10, ModeLeftOrRight, true},
		{"lor forced path", 139, 10, ModeLeftOrRight, true},
		{"lor branch", 373, 10, ModeLeftOrRight, true},
		{"lor zero digit", 109, 10, ModeLeftOrRight, false},
		{"lor dead end", 19, 10, ModeLeftOrRight, false},

		// Left and right truncatable.
		{"lar one digit", 3, 10, ModeLeftAndRight, true},
		{"lar two digit", 23, 10, ModeLeftAndRight, true},
		{"lar three digit", 131, 10, ModeLeftAndRight, true},
		{"lar zero center", 101, 10, ModeLeftAndRight, false},
		{"lar four digit", 3137, 10, ModeLeftAndRight, true},
		{"lar composite center", 113, 10, ModeLeftAndRight, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsTruncatable(big.NewInt(tt.n), tt.base, tt.mode, oracle)
			if got != tt.want {
				t.Errorf("IsTruncatable(%d, base %d, %s) = %v, want %v",
					tt.n, tt.base, tt.mode, got, tt.want)
			}
		})
	}
}

func TestCheckerUnknownMode(t *testing.T) {
	if IsTruncatable(big.NewInt(23), 10, Mode(7), BPSWOracle{}) {
		t.Error("unknown mode must never report membership")
	}
}
