// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"math/big"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// partitionJob is one root subtree scheduled on its own worker. Each
// job owns a full Search writing into a private buffer, so workers
// share nothing; order is restored during assembly.
type partitionJob struct {
	root   uint64
	label  [2]byte
	width  int
	path   uint64
	search *Search
	buf    bytes.Buffer
	hash   uint64
}

// ExploreParallel runs a full-forest search with root subtrees spread
// across workers, then assembles the results in root order. The output
// stream, statistics and digest are identical to a sequential Run of
// the same configuration; the digest construction folds per-subtree
// digests exactly the way a sequential run folds them, so partitioning
// is invisible downstream.
//
// cfg.Root must be unset: an explicit-root run is a single subtree and
// has nothing to partition. workers <= 0 uses GOMAXPROCS.
func ExploreParallel(ctx context.Context, cfg Config, workers int, out io.Writer) (uint64, *Stats, error) {
	if cfg.Root != nil && cfg.Root.Sign() > 0 {
		return 0, nil, fmt.Errorf("explicit root %s cannot be partitioned; run sequentially", cfg.Root)
	}
	if cfg.Base < 2 || cfg.Base > 255 {
		return 0, nil, fmt.Errorf("%w: %d", ErrBaseRange, cfg.Base)
	}
	switch cfg.Mode {
	case ModeRight, ModeLeft, ModeLeftOrRight, ModeLeftAndRight:
	default:
		return 0, nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(cfg.Mode))
	}
	if cfg.MaxLength < 0 {
		return 0, nil, fmt.Errorf("max length must be nonnegative, got %d", cfg.MaxLength)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	oracle := cfg.Oracle
	if oracle == nil {
		oracle = BPSWOracle{}
	}
	log := cfg.Logger

	limit := cfg.MaxLength
	if limit == 0 {
		limit = math.MaxInt32
	}

	// Enumerate the prime roots in the order a sequential run visits
	// them and pre-build one Search per root. Configuration problems
	// surface here, before any output.
	var jobs []*partitionJob
	addJob := func(root uint64, label [2]byte, width int) error {
		j := &partitionJob{root: root, label: label, width: width, path: root}
		sub := Config{
			Base:      cfg.Base,
			Mode:      cfg.Mode,
			MaxLength: cfg.MaxLength,
			Root:      new(big.Int).SetUint64(root),
			Oracle:    oracle,
		}
		s, err := NewSearch(sub, &j.buf)
		if err != nil {
			return err
		}
		j.search = s
		jobs = append(jobs, j)
		return nil
	}

	scratch := new(big.Int)
	pairWidth := cfg.Mode.LabelWidth()
	if limit >= 1 {
		for r := uint64(2); r < uint64(cfg.Base); r++ {
			if !probablePrime(scratch.SetUint64(r), oracle) {
				continue
			}
			label := [2]byte{byte(r), 0}
			if pairWidth == 2 {
				label = [2]byte{0, byte(r)}
			}
			if err := addJob(r, label, pairWidth); err != nil {
				return 0, nil, err
			}
		}
	}
	if cfg.Mode == ModeLeftAndRight && limit >= 2 {
		for rl := uint64(1); rl < uint64(cfg.Base); rl++ {
			for rr := uint64(0); rr < uint64(cfg.Base); rr++ {
				v := rl*uint64(cfg.Base) + rr
				if !probablePrime(scratch.SetUint64(v), oracle) {
					continue
				}
				if err := addJob(v, [2]byte{byte(rl), byte(rr)}, 2); err != nil {
					return 0, nil, err
				}
			}
		}
	}

	started := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			h, err := j.search.runSubtree(gctx)
			if err != nil {
				return fmt.Errorf("subtree of root %d: %w", j.root, err)
			}
			if err := j.search.writer.Flush(); err != nil {
				return fmt.Errorf("subtree of root %d: %w", j.root, err)
			}
			j.hash = h
			if log != nil {
				log.Debug("partition done",
					"root", j.root,
					"bytes", j.buf.Len(),
					"hash", h)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}

	// Assembly: subtree streams concatenate behind their labels in
	// root order, and subtree digests fold into the forest digest with
	// the root path numbers, the same update used at every tree level.
	w := NewTreeWriter(out)
	w.RootMarker(cfg.Mode.LabelWidth())
	var hash uint64
	stats := NewStats(cfg.Base, cfg.Mode, nil, cfg.MaxLength)
	for _, j := range jobs {
		w.Label(j.label[:j.width]...)
		w.Raw(j.buf.Bytes())
		hash = hashUpdate(hash, j.path, j.hash)
		if err := stats.Merge(j.search.Stats()); err != nil {
			return 0, nil, err
		}
	}
	w.End()
	if err := w.Flush(); err != nil {
		return 0, nil, fmt.Errorf("flush tree stream: %w", err)
	}
	if log != nil {
		log.Info("partitioned search complete",
			"mode", cfg.Mode.String(),
			"base", cfg.Base,
			"workers", workers,
			"subtrees", len(jobs),
			"nodes", stats.Nodes(),
			"bytes", w.BytesWritten(),
			"hash", hash,
			"elapsed", time.Since(started))
	}
	return hash, stats, nil
}
