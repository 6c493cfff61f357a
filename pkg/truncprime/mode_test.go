// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import (
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Mode
		wantErr bool
	}{
		{"right", "r", ModeRight, false},
		{"left", "l", ModeLeft, false},
		{"left or right", "lor", ModeLeftOrRight, false},
		{"left and right", "lar", ModeLeftAndRight, false},
		{"empty", "", 0, true},
		{"uppercase", "R", 0, true},
		{"unknown", "rl", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestModeRoundTrip(t *testing.T) {
	for _, m := range []Mode{ModeRight, ModeLeft, ModeLeftOrRight, ModeLeftAndRight} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", m.String(), got, err, m)
		}
	}
}

func TestModeGeometry(t *testing.T) {
	tests := []struct {
		mode        Mode
		maxChildren uint32
		statsCols   uint32
		digits      int
		labelWidth  int
	}{
		{ModeRight, 9, 10, 1, 1},
		{ModeLeft, 9, 10, 1, 1},
		{ModeLeftOrRight, 18, 20, 1, 2},
		{ModeLeftAndRight, 81, 100, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			if got := tt.mode.MaxChildren(10); got != tt.maxChildren {
				t.Errorf("MaxChildren(10) = %d, want %d", got, tt.maxChildren)
			}
			if got := tt.mode.StatsColumns(10); got != tt.statsCols {
				t.Errorf("StatsColumns(10) = %d, want %d", got, tt.statsCols)
			}
			if got := tt.mode.DigitsPerLevel(); got != tt.digits {
				t.Errorf("DigitsPerLevel() = %d, want %d", got, tt.digits)
			}
			if got := tt.mode.LabelWidth(); got != tt.labelWidth {
				t.Errorf("LabelWidth() = %d, want %d", got, tt.labelWidth)
			}
		})
	}
}
