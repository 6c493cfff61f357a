// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import "fmt"

// Mode selects which truncation directions must hold for membership.
//
// The set is closed; all mode-specific behavior in this package
// dispatches on it with a switch rather than function values.
type Mode int

const (
	// ModeRight requires every prefix to be prime (A024770 in base 10).
	// Children append one digit on the right.
	ModeRight Mode = iota

	// ModeLeft requires every suffix to be prime (A024785 in base 10).
	// Children append one digit on the left.
	ModeLeft

	// ModeLeftOrRight requires that at every step at least one of the
	// two truncations leads back to a valid member (A137812 in base 10).
	// Children append one digit on either side; the same value may be
	// reachable along several paths, so the enumeration can emit
	// duplicates.
	ModeLeftOrRight

	// ModeLeftAndRight requires both the leading and trailing digit to
	// be strippable at every step (A077390 in base 10). Children append
	// a digit pair, one on each end, so each level adds two digits.
	ModeLeftAndRight
)

// ParseMode converts the short prime-type name used by the CLI and by
// run profiles ("r", "l", "lor", "lar") into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "r":
		return ModeRight, nil
	case "l":
		return ModeLeft, nil
	case "lor":
		return ModeLeftOrRight, nil
	case "lar":
		return ModeLeftAndRight, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// String returns the short prime-type name.
func (m Mode) String() string {
	switch m {
	case ModeRight:
		return "r"
	case ModeLeft:
		return "l"
	case ModeLeftOrRight:
		return "lor"
	case ModeLeftAndRight:
		return "lar"
	default:
		return "unknown"
	}
}

// MaxChildren returns the largest possible fan-out of a node:
// base-1 for single-sided modes, 2*(base-1) for left-or-right and
// (base-1)^2 for left-and-right (appended digits are never zero).
func (m Mode) MaxChildren(base uint32) uint32 {
	switch m {
	case ModeLeftOrRight:
		return 2 * (base - 1)
	case ModeLeftAndRight:
		return (base - 1) * (base - 1)
	default:
		return base - 1
	}
}

// StatsColumns returns the width of the per-fan-out statistics table.
// It is sized so a fan-out count indexes the table directly, exactly
// like the table in the reference stats output: base columns for
// single-sided modes, 2*base for left-or-right, base*base for
// left-and-right.
func (m Mode) StatsColumns(base uint32) uint32 {
	switch m {
	case ModeLeftOrRight:
		return 2 * base
	case ModeLeftAndRight:
		return base * base
	default:
		return base
	}
}

// DigitsPerLevel returns how many digits one recursion level appends:
// 2 for left-and-right (one per end), 1 otherwise. Left-or-right
// branches are single digits on one side or the other, not pairs.
func (m Mode) DigitsPerLevel() int {
	if m == ModeLeftAndRight {
		return 2
	}
	return 1
}

// LabelWidth returns the number of bytes encoding one branch label in
// the tree byte stream: 1 for single-sided modes, 2 for the others
// ((side, digit) for left-or-right, (left, right) for left-and-right).
func (m Mode) LabelWidth() int {
	if m == ModeLeftOrRight || m == ModeLeftAndRight {
		return 2
	}
	return 1
}
