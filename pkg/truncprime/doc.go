// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package truncprime enumerates truncatable primes by digit extension.
//
// A truncatable prime is a prime whose prefixes (right-truncatable),
// suffixes (left-truncatable), or both (per mode) are all prime in a
// chosen positional base. The search space is a tree: the root is a
// 1- or 2-digit prime and each child appends one more digit on the
// left and/or right such that the longer number is still prime.
//
// # Components
//
// The package provides:
//
//   - Search: the depth-first digit-extension engine over the four
//     truncation modes, with exact backtracking arithmetic on an
//     explicit frame stack and a small-prime residue prefilter in
//     front of the probable-primality oracle.
//   - Iterator: a resumable pull-based variant of the same engine
//     with optional pre-/post-order node visits.
//   - TreeWriter / TreeReader: the self-delimiting binary tree codec
//     (tree := value children* end, end byte 0xFF).
//   - Stats: per-(digit length, fan-out) counters with min/max node
//     values and the order-sensitive 64-bit tree digest used to
//     cross-check independent runs.
//   - IsRightTruncatable and friends: property checkers used to
//     validate an explicit root before partitioned exploration.
//   - ExploreParallel: the partitioned driver running one Search per
//     depth-1/2 root and recombining byte streams, stats and digests.
//
// # Primality
//
// Primality is delegated to an Oracle. The default wraps
// math/big's ProbablyPrime(0), a Baillie-PSW test. Candidates are
// cheaply rejected first by trial division on a running residue
// modulo the product of the primes up to 43, maintained incrementally
// alongside each frame value.
//
// # Concurrency
//
// A Search is single-threaded and owns all of its state; parallelism
// comes from running independent Search instances over disjoint
// subtrees (see ExploreParallel).
package truncprime
