// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import "math/big"

// Property checkers for standalone values. These are independent of
// the enumeration: they truncate a candidate downward rather than
// build upward, so they serve to verify explicit roots and to spot
// check converter output.
//
// All checkers treat nonpositive values as non-members and require
// base >= 2.

// IsTruncatable dispatches to the checker for the given mode.
func IsTruncatable(n *big.Int, base uint32, mode Mode, oracle Oracle) bool {
	switch mode {
	case ModeRight:
		return IsRightTruncatable(n, base, oracle)
	case ModeLeft:
		return IsLeftTruncatable(n, base, oracle)
	case ModeLeftOrRight:
		return IsLeftOrRightTruncatable(n, base, oracle)
	case ModeLeftAndRight:
		return IsLeftAndRightTruncatable(n, base, oracle)
	default:
		return false
	}
}

// IsRightTruncatable reports whether every prefix of n, including n
// itself, is prime (A024770 in base 10). Equivalently n is reachable
// in the right-truncatable tree by appending nonzero digits.
func IsRightTruncatable(n *big.Int, base uint32, oracle Oracle) bool {
	if n.Sign() <= 0 {
		return false
	}
	b := big.NewInt(int64(base))
	v := new(big.Int).Set(n)
	rem := new(big.Int)
	for v.Sign() > 0 {
		if !probablePrime(v, oracle) {
			return false
		}
		v.QuoRem(v, b, rem)
		// A prime ending in a zero digit only happens when the value
		// is the base itself; its one-digit prefix 1 is not prime, so
		// this is always a rejection.
		if rem.Sign() == 0 && v.Sign() > 0 {
			return false
		}
	}
	return true
}

// IsLeftTruncatable reports whether every suffix of n, including n
// itself, is prime and n contains no zero digits (A024785 in base 10).
func IsLeftTruncatable(n *big.Int, base uint32, oracle Oracle) bool {
	if n.Sign() <= 0 {
		return false
	}
	b := big.NewInt(int64(base))
	digits := digitCount(n, base)
	// p is the place value of the leading digit, shrinking as digits
	// are stripped.
	p := new(big.Int).Exp(b, big.NewInt(int64(digits-1)), nil)
	v := new(big.Int).Set(n)
	d := new(big.Int)
	for v.Sign() > 0 {
		if !probablePrime(v, oracle) {
			return false
		}
		d.Quo(v, p)
		if d.Sign() == 0 {
			// Interior zero digit; the value was never built by
			// appending nonzero digits on the left.
			return false
		}
		v.Sub(v, d.Mul(d, p))
		p.Quo(p, b)
	}
	return true
}

// IsLeftOrRightTruncatable reports whether n can be reduced to a
// single-digit prime by repeatedly removing either the leading or the
// trailing digit, with every intermediate value prime (A137812 in
// base 10). Zero digits never occur in members.
func IsLeftOrRightTruncatable(n *big.Int, base uint32, oracle Oracle) bool {
	if n.Sign() <= 0 {
		return false
	}
	b := big.NewInt(int64(base))
	if n.Cmp(b) < 0 {
		return probablePrime(n, oracle)
	}
	if !probablePrime(n, oracle) {
		return false
	}

	// Reject zero digits up front; no member contains one, and it
	// simplifies the descent below.
	scratch := new(big.Int).Set(n)
	rem := new(big.Int)
	digits := 0
	for scratch.Sign() > 0 {
		digits++
		scratch.QuoRem(scratch, b, rem)
		if rem.Sign() == 0 {
			return false
		}
	}

	// Walk down one truncation at a time. When only one of the two
	// truncations is prime the path is forced and the loop continues;
	// only when both are prime does the search branch.
	cur := new(big.Int).Set(n)
	p := new(big.Int).Exp(b, big.NewInt(int64(digits-1)), nil)
	d := new(big.Int)
	left := new(big.Int)
	right := new(big.Int)
	for {
		if cur.Cmp(b) < 0 {
			return true
		}
		d.Quo(cur, p)
		left.Sub(cur, new(big.Int).Mul(d, p))
		right.Quo(cur, b)
		p.Quo(p, b)
		leftPrime := probablePrime(left, oracle)
		rightPrime := probablePrime(right, oracle)
		switch {
		case leftPrime && rightPrime:
			return IsLeftOrRightTruncatable(right, base, oracle) ||
				IsLeftOrRightTruncatable(left, base, oracle)
		case rightPrime:
			cur.Set(right)
		case leftPrime:
			cur.Set(left)
		default:
			return false
		}
	}
}

// IsLeftAndRightTruncatable reports whether stripping the leading and
// trailing digit together, down to a one- or two-digit core, keeps
// every intermediate value prime (A077390 in base 10). The core
// itself must be prime too; a value like 101 whose center digit is
// zero is not a member.
func IsLeftAndRightTruncatable(n *big.Int, base uint32, oracle Oracle) bool {
	if n.Sign() <= 0 {
		return false
	}
	b := big.NewInt(int64(base))
	bSquared := new(big.Int).Mul(b, b)
	digits := digitCount(n, base)
	p := new(big.Int).Exp(b, big.NewInt(int64(digits-1)), nil)
	v := new(big.Int).Set(n)
	d := new(big.Int)
	for {
		if !probablePrime(v, oracle) {
			return false
		}
		if digits <= 2 {
			return true
		}
		d.Quo(v, p)
		if d.Sign() == 0 {
			return false
		}
		v.Sub(v, d.Mul(d, p))
		v.Quo(v, b)
		p.Quo(p, bSquared)
		digits -= 2
	}
}
