// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import "math/big"

// Oracle is the externally supplied probable-primality test. It must
// be deterministic for a fixed input; the search only consumes the
// boolean verdict and never inspects witnesses or bases.
//
// Calls may be arbitrarily expensive for large values. The search
// treats them as synchronous and applies its own cheap rejection
// filters first, so implementations need no small-number fast paths.
type Oracle interface {
	IsProbablePrime(n *big.Int) bool
}

// BPSWOracle is the default oracle: math/big's ProbablyPrime(0),
// which runs a Baillie-PSW test (a base-2 Miller-Rabin round plus a
// Lucas test). It is deterministic and has no known composite that
// passes; it is exact for all inputs below 2^64.
type BPSWOracle struct{}

// IsProbablePrime reports whether n is probably prime under BPSW.
func (BPSWOracle) IsProbablePrime(n *big.Int) bool {
	return n.ProbablyPrime(0)
}

var _ Oracle = BPSWOracle{}

const (
	// spModulus is the product of the primes up to 43. Frame residues
	// are kept modulo this value so most composites are rejected with a
	// handful of uint64 divisions before the oracle runs. It is below
	// 2^54, leaving room to multiply by a digit (< 2^8) or add two
	// residues without overflowing uint64.
	spModulus uint64 = 13082761331670030

	// trialDivisionLimit is 47^2. Below it, surviving trial division by
	// the primes up to 43 proves primality outright.
	trialDivisionLimit = 47 * 47

	// smallPrimeMask has bit p set for every prime p below 64.
	smallPrimeMask uint64 = 2891462833508853932
)

// trialDivide reports whether the residue survives trial division by
// the primes up to 43 (true means "possibly prime").
func trialDivide(residue uint64) bool {
	return residue%2 != 0 &&
		residue%3 != 0 &&
		residue%5 != 0 &&
		residue%7 != 0 &&
		residue%11 != 0 &&
		residue%13 != 0 &&
		residue%17 != 0 &&
		residue%19 != 0 &&
		residue%23 != 0 &&
		residue%29 != 0 &&
		residue%31 != 0 &&
		residue%37 != 0 &&
		residue%41 != 0 &&
		residue%43 != 0
}

// probablePrime tests a standalone value with no tracked residue. Used
// by the property checkers and the pull iterator, where candidates are
// not produced by incremental frame arithmetic.
func probablePrime(n *big.Int, oracle Oracle) bool {
	if n.Sign() <= 0 {
		return false
	}
	if n.IsUint64() {
		if v := n.Uint64(); v < 64 {
			return smallPrimeMask&(1<<v) != 0
		}
	}
	return oracle.IsProbablePrime(n)
}

// digitCount returns the number of base-b digits of n, with 0 having
// zero digits.
func digitCount(n *big.Int, base uint32) int {
	if n == nil || n.Sign() <= 0 {
		return 0
	}
	count := 0
	b := big.NewInt(int64(base))
	t := new(big.Int).Set(n)
	for t.Sign() > 0 {
		t.Quo(t, b)
		count++
	}
	return count
}
