// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/big"
	"time"

	"github.com/AleutianAI/truncprimes/pkg/logging"
)

// Config describes one search run.
type Config struct {
	// Base is the number base, 2 through 255.
	Base uint32

	// Mode selects the truncation property.
	Mode Mode

	// MaxLength bounds the digit length of emitted primes. Zero means
	// unbounded; the search then runs until the tree is exhausted,
	// which happens for every base and mode except left-or-right runs
	// in bases with infinite chains.
	MaxLength int

	// Root, when non-nil and positive, restricts the run to the
	// subtree under that value. Nil or zero enumerates the full
	// forest from all valid smallest roots.
	Root *big.Int

	// VerifyRoot checks an explicit Root for the requested property
	// before any output is produced.
	VerifyRoot bool

	// Oracle is the probable-primality test; nil selects BPSWOracle.
	Oracle Oracle

	// Logger receives progress events; nil discards them.
	Logger *logging.Logger
}

// Search runs the digit-extension enumeration for one configuration,
// streaming the tree byte encoding and aggregating statistics as it
// goes. A Search is single-use and not safe for concurrent use;
// partitioned runs construct one per worker.
type Search struct {
	base      uint32
	baseBig   *big.Int
	mode      Mode
	maxLength int
	root      *big.Int
	verify    bool

	writer *TreeWriter
	stats  *Stats
	oracle Oracle
	log    *logging.Logger

	stack  *frameStack
	powers *powerTable

	// rootLen and maxDepth are reset for each root explored; maxDepth
	// counts digits below the root (two per level in the two-sided
	// mode).
	rootLen  int
	maxDepth int
}

var bigOne = big.NewInt(1)

// NewSearch validates cfg and prepares a run writing the tree stream
// to out. No output is produced until Run.
func NewSearch(cfg Config, out io.Writer) (*Search, error) {
	if cfg.Base < 2 || cfg.Base > 255 {
		// The byte encoding caps the base at 255: digits must fit one
		// byte with 255 left over as the terminator.
		return nil, fmt.Errorf("%w: %d", ErrBaseRange, cfg.Base)
	}
	switch cfg.Mode {
	case ModeRight, ModeLeft, ModeLeftOrRight, ModeLeftAndRight:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(cfg.Mode))
	}
	if cfg.MaxLength < 0 {
		return nil, fmt.Errorf("max length must be nonnegative, got %d", cfg.MaxLength)
	}
	if cfg.Root != nil && cfg.Root.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNegativeRoot, cfg.Root)
	}
	oracle := cfg.Oracle
	if oracle == nil {
		oracle = BPSWOracle{}
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}
	s := &Search{
		base:      cfg.Base,
		baseBig:   big.NewInt(int64(cfg.Base)),
		mode:      cfg.Mode,
		maxLength: cfg.MaxLength,
		verify:    cfg.VerifyRoot,
		writer:    NewTreeWriter(out),
		oracle:    oracle,
		log:       log,
		stack:     newFrameStack(),
		powers:    newPowerTable(cfg.Base),
	}
	if cfg.Root != nil && cfg.Root.Sign() > 0 {
		s.root = new(big.Int).Set(cfg.Root)
	}
	s.stats = NewStats(cfg.Base, cfg.Mode, s.root, cfg.MaxLength)
	return s, nil
}

// Stats returns the aggregate built up by Run. It is only meaningful
// after Run returns.
func (s *Search) Stats() *Stats {
	return s.stats
}

// BytesWritten returns the number of tree stream bytes emitted so far.
func (s *Search) BytesWritten() int64 {
	return s.writer.BytesWritten()
}

// lengthLimit maps the unbounded sentinel to an effectively infinite
// digit budget.
func (s *Search) lengthLimit() int {
	if s.maxLength == 0 {
		return math.MaxInt32
	}
	return s.maxLength
}

// setRoot points the bottom stack frame at the given root value and
// derives rootLen and maxDepth from it.
func (s *Search) setRoot(value *big.Int) {
	f := s.stack.at(0)
	f.value.Set(value)
	f.residue = new(big.Int).Mod(value, big.NewInt(int64(spModulus))).Uint64()
	s.rootLen = digitCount(value, s.base)
	if limit := s.lengthLimit(); limit >= s.rootLen {
		s.maxDepth = limit - s.rootLen
	} else {
		s.maxDepth = 0
	}
}

// Run executes the search. It writes the complete tree stream, flushes
// it and returns the tree digest. The stream and the digest cover the
// whole run: the root's subtree for an explicit root, the entire
// forest otherwise.
func (s *Search) Run(ctx context.Context) (uint64, error) {
	if s.root != nil && s.verify {
		if !IsTruncatable(s.root, s.base, s.mode, s.oracle) {
			return 0, fmt.Errorf("%w: %s (%s, base %d)",
				ErrRootNotTruncatable, s.root, s.mode, s.base)
		}
	}
	started := time.Now()
	s.writer.RootMarker(s.mode.LabelWidth())

	var hash uint64
	var err error
	if s.root != nil {
		hash, err = s.runSubtree(ctx)
	} else {
		hash, err = s.runForest(ctx)
	}
	if err != nil {
		return 0, err
	}
	if err := s.writer.Flush(); err != nil {
		return 0, fmt.Errorf("flush tree stream: %w", err)
	}
	s.log.Info("search complete",
		"mode", s.mode.String(),
		"base", s.base,
		"nodes", s.stats.Nodes(),
		"bytes", s.writer.BytesWritten(),
		"hash", hash,
		"elapsed", time.Since(started))
	return hash, nil
}

// runSubtree explores the configured explicit root and returns the
// subtree digest. Used directly by the partition driver, which emits
// the root marker and labels itself.
func (s *Search) runSubtree(ctx context.Context) (uint64, error) {
	s.setRoot(s.root)
	started := time.Now()
	hash, err := s.explore(ctx, 0)
	rootDuration.Observe(time.Since(started).Seconds())
	return hash, err
}

// runForest enumerates all valid smallest roots, exploring the subtree
// under each prime one and folding the per-root digests together the
// same way a node folds its children.
func (s *Search) runForest(ctx context.Context) (uint64, error) {
	var hash uint64
	f := s.stack.at(0)

	// Single-digit roots. Left-and-right trees grow two digits per
	// level, so these cover the odd lengths for that mode.
	if s.lengthLimit() >= 1 {
		for r := uint64(2); r < uint64(s.base); r++ {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			f.value.SetUint64(r)
			f.residue = r
			s.rootLen = 1
			s.maxDepth = s.lengthLimit() - 1
			if !s.testPrime(f.value, f.residue) {
				continue
			}
			if s.mode.LabelWidth() == 2 {
				s.writer.Label(0, byte(r))
			} else {
				s.writer.Label(byte(r))
			}
			started := time.Now()
			c, err := s.explore(ctx, 0)
			rootDuration.Observe(time.Since(started).Seconds())
			if err != nil {
				return 0, err
			}
			hash = hashUpdate(hash, r, c)
			s.log.Debug("root subtree done", "root", r, "hash", c)
		}
	}

	// Two-digit roots, left-and-right only: the even lengths. A zero
	// right digit is allowed here because nothing is ever truncated
	// past a two-digit value.
	if s.mode == ModeLeftAndRight && s.lengthLimit() >= 2 {
		for rl := uint64(1); rl < uint64(s.base); rl++ {
			for rr := uint64(0); rr < uint64(s.base); rr++ {
				if err := ctx.Err(); err != nil {
					return 0, err
				}
				v := rl*uint64(s.base) + rr
				f.value.SetUint64(v)
				f.residue = v
				s.rootLen = 2
				s.maxDepth = s.lengthLimit() - 2
				if !s.testPrime(f.value, f.residue) {
					continue
				}
				s.writer.Label(byte(rl), byte(rr))
				started := time.Now()
				c, err := s.explore(ctx, 0)
				rootDuration.Observe(time.Since(started).Seconds())
				if err != nil {
					return 0, err
				}
				hash = hashUpdate(hash, v, c)
				s.log.Debug("root subtree done", "root", v, "hash", c)
			}
		}
	}

	s.writer.End()
	return hash, nil
}

// explore descends into the subtree of the node held at stack frame
// depth, emitting child labels and terminators, recording the node's
// statistics and returning its subtree digest.
func (s *Search) explore(ctx context.Context, depth int) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	switch s.mode {
	case ModeRight:
		return s.exploreRight(ctx, depth)
	case ModeLeft:
		return s.exploreLeft(ctx, depth)
	case ModeLeftOrRight:
		return s.exploreLeftOrRight(ctx, depth)
	default:
		return s.exploreLeftAndRight(ctx, depth)
	}
}

// recordNode books the node at the given depth into the statistics
// after all its children have been explored.
func (s *Search) recordNode(depth, children int) {
	digits := s.rootLen + depth*s.mode.DigitsPerLevel()
	s.stats.record(digits, children, s.stack.at(depth).value)
}

func (s *Search) exploreRight(ctx context.Context, depth int) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	node := s.stack.at(depth)
	hash := hashInit(node.value)
	children := 0
	if depth+1 <= s.maxDepth {
		s.stack.ensureDepth(depth + 1)
		cur := s.stack.at(depth + 1)
		// Left shift creates a zero digit on the right; each candidate
		// then increments it in place.
		cur.value.Mul(node.value, s.baseBig)
		cur.residue = node.residue * uint64(s.base) % spModulus
		for d := uint32(1); d < s.base; d++ {
			cur.value.Add(cur.value, bigOne)
			cur.residue++
			if cur.residue == spModulus {
				cur.residue = 0
			}
			if s.testPrime(cur.value, cur.residue) {
				s.writer.Label(byte(d))
				c, err := s.exploreRight(ctx, depth+1)
				if err != nil {
					return 0, err
				}
				children++
				hash = hashUpdate(hash, uint64(d), c)
			}
		}
	}
	s.writer.End()
	s.recordNode(depth, children)
	return hash, nil
}

func (s *Search) exploreLeft(ctx context.Context, depth int) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	node := s.stack.at(depth)
	hash := hashInit(node.value)
	children := 0
	if depth+1 <= s.maxDepth {
		s.stack.ensureDepth(depth + 1)
		cur := s.stack.at(depth + 1)
		// The new leading digit sits at position rootLen+depth; each
		// candidate adds one more copy of that power.
		pow := s.powers.get(s.rootLen + depth)
		pmod := s.powers.mod(s.rootLen + depth)
		cur.value.Set(node.value)
		cur.residue = node.residue
		for d := uint32(1); d < s.base; d++ {
			cur.value.Add(cur.value, pow)
			cur.residue = (cur.residue + pmod) % spModulus
			if s.testPrime(cur.value, cur.residue) {
				s.writer.Label(byte(d))
				c, err := s.exploreLeft(ctx, depth+1)
				if err != nil {
					return 0, err
				}
				children++
				hash = hashUpdate(hash, uint64(d), c)
			}
		}
	}
	s.writer.End()
	s.recordNode(depth, children)
	return hash, nil
}

func (s *Search) exploreLeftOrRight(ctx context.Context, depth int) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	node := s.stack.at(depth)
	hash := hashInit(node.value)
	children := 0
	if depth+1 <= s.maxDepth {
		s.stack.ensureDepth(depth + 1)
		cur := s.stack.at(depth + 1)
		// Append on the left first, then on the right; the byte stream
		// and the digest both depend on this order. Path numbers for
		// right appends are offset by the base so the two sides never
		// collide.
		pow := s.powers.get(s.rootLen + depth)
		pmod := s.powers.mod(s.rootLen + depth)
		cur.value.Set(node.value)
		cur.residue = node.residue
		for d := uint32(1); d < s.base; d++ {
			cur.value.Add(cur.value, pow)
			cur.residue = (cur.residue + pmod) % spModulus
			if s.testPrime(cur.value, cur.residue) {
				s.writer.Label(0, byte(d))
				c, err := s.exploreLeftOrRight(ctx, depth+1)
				if err != nil {
					return 0, err
				}
				children++
				hash = hashUpdate(hash, uint64(d), c)
			}
		}
		cur.value.Mul(node.value, s.baseBig)
		cur.residue = node.residue * uint64(s.base) % spModulus
		for d := uint32(1); d < s.base; d++ {
			cur.value.Add(cur.value, bigOne)
			cur.residue++
			if cur.residue == spModulus {
				cur.residue = 0
			}
			if s.testPrime(cur.value, cur.residue) {
				s.writer.Label(1, byte(d))
				c, err := s.exploreLeftOrRight(ctx, depth+1)
				if err != nil {
					return 0, err
				}
				children++
				hash = hashUpdate(hash, uint64(s.base)+uint64(d), c)
			}
		}
	}
	s.writer.End()
	s.recordNode(depth, children)
	return hash, nil
}

func (s *Search) exploreLeftAndRight(ctx context.Context, depth int) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	node := s.stack.at(depth)
	hash := hashInit(node.value)
	children := 0
	// Each level adds two digits, one per end.
	if 2*(depth+1) <= s.maxDepth {
		s.stack.ensureDepth(depth + 1)
		cur := s.stack.at(depth + 1)
		pow := s.powers.get(s.rootLen + 2*depth + 1)
		pmod := s.powers.mod(s.rootLen + 2*depth + 1)
		cur.value.Mul(node.value, s.baseBig)
		cur.residue = node.residue * uint64(s.base) % spModulus
		bm1 := uint64(s.base) - 1
		bigBm1 := big.NewInt(int64(bm1))
		for dl := uint32(1); dl < s.base; dl++ {
			cur.value.Add(cur.value, pow)
			cur.residue = (cur.residue + pmod) % spModulus
			for dr := uint32(1); dr < s.base; dr++ {
				cur.value.Add(cur.value, bigOne)
				cur.residue++
				if cur.residue == spModulus {
					cur.residue = 0
				}
				if s.testPrime(cur.value, cur.residue) {
					s.writer.Label(byte(dl), byte(dr))
					c, err := s.exploreLeftAndRight(ctx, depth+1)
					if err != nil {
						return 0, err
					}
					children++
					hash = hashUpdate(hash, uint64(dl)*uint64(s.base)+uint64(dr), c)
				}
			}
			// Undo the right digit increments before moving to the
			// next left digit.
			cur.value.Sub(cur.value, bigBm1)
			if cur.residue >= bm1 {
				cur.residue -= bm1
			} else {
				cur.residue = spModulus - (bm1 - cur.residue)
			}
		}
	}
	s.writer.End()
	s.recordNode(depth, children)
	return hash, nil
}

// testPrime runs the layered primality ladder on a candidate whose
// residue modulo spModulus has been maintained incrementally. Small
// values are settled exactly without touching the oracle; everything
// else must survive trial division by the residue's small primes
// before the oracle is consulted.
func (s *Search) testPrime(n *big.Int, residue uint64) bool {
	candidatesTested.Inc()
	if n.IsUint64() {
		if v := n.Uint64(); v < 1<<16 {
			var ok bool
			switch {
			case v < 64:
				ok = smallPrimeMask&(1<<v) != 0
			case v < trialDivisionLimit:
				// Below 47^2 surviving trial division is a proof.
				ok = trialDivide(v)
			default:
				ok = trialDivide(v) && s.oracle.IsProbablePrime(n)
			}
			if ok {
				primesFound.WithLabelValues(s.mode.String()).Inc()
			}
			return ok
		}
	}
	if !trialDivide(residue) {
		prefilterRejects.Inc()
		return false
	}
	oracleCalls.Inc()
	if !s.oracle.IsProbablePrime(n) {
		return false
	}
	primesFound.WithLabelValues(s.mode.String()).Inc()
	return true
}
