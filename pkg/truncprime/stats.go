// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
)

// Stats aggregates per-node statistics for one search run, bucketed by
// (digit length, fan-out). Bucketing by digit length directly, rather
// than by recursion depth, lets odd- and even-length left-and-right
// primes share one table and lets independently searched partitions
// merge without offset bookkeeping.
//
// For left-or-right runs the same prime can be reached along several
// paths, so counts are per-path and the report carries a note saying
// counts are not applicable.
//
// Stats is not safe for concurrent use; partitioned runs keep one Stats
// per worker and Merge afterwards.
type Stats struct {
	base      uint32
	mode      Mode
	root      *big.Int
	maxLength int
	cols      int

	// rows is indexed by digit length and grown on demand; nil entries
	// are lengths with no primes recorded.
	rows []*statsRow
}

// statsRow is one digit-length bucket. counts[k] is the number of
// nodes with fan-out k; min[k]/max[k] are the extreme values among
// them, nil until the first node lands in the cell.
type statsRow struct {
	counts []uint64
	min    []*big.Int
	max    []*big.Int
}

// NewStats creates an empty aggregate for the given run parameters.
// root and maxLength only label the report header; root may be nil for
// a full-forest run and maxLength 0 means unbounded.
func NewStats(base uint32, mode Mode, root *big.Int, maxLength int) *Stats {
	s := &Stats{
		base:      base,
		mode:      mode,
		maxLength: maxLength,
		cols:      int(mode.StatsColumns(base)),
	}
	if root != nil {
		s.root = new(big.Int).Set(root)
	}
	return s
}

func (s *Stats) row(digits int) *statsRow {
	for len(s.rows) <= digits {
		s.rows = append(s.rows, nil)
	}
	if s.rows[digits] == nil {
		s.rows[digits] = &statsRow{
			counts: make([]uint64, s.cols),
			min:    make([]*big.Int, s.cols),
			max:    make([]*big.Int, s.cols),
		}
	}
	return s.rows[digits]
}

// record adds one node with the given digit length, fan-out and value.
// The value is copied; callers may keep mutating it.
func (s *Stats) record(digits, children int, value *big.Int) {
	r := s.row(digits)
	r.counts[children]++
	if r.min[children] == nil || r.min[children].Cmp(value) > 0 {
		r.min[children] = new(big.Int).Set(value)
	}
	if r.max[children] == nil || r.max[children].Cmp(value) < 0 {
		r.max[children] = new(big.Int).Set(value)
	}
}

// Nodes returns the total number of nodes recorded.
func (s *Stats) Nodes() uint64 {
	var total uint64
	for _, r := range s.rows {
		if r == nil {
			continue
		}
		for _, c := range r.counts {
			total += c
		}
	}
	return total
}

// CountAt returns the number of nodes recorded with the given digit
// length, summed over fan-outs.
func (s *Stats) CountAt(digits int) uint64 {
	if digits < 0 || digits >= len(s.rows) || s.rows[digits] == nil {
		return 0
	}
	var total uint64
	for _, c := range s.rows[digits].counts {
		total += c
	}
	return total
}

// MaxDigits returns the largest digit length with at least one node.
func (s *Stats) MaxDigits() int {
	for d := len(s.rows) - 1; d >= 0; d-- {
		if s.rows[d] != nil {
			return d
		}
	}
	return 0
}

// Merge folds other into s. Both sides must describe the same base and
// prime type; the receiver keeps its own root and length labels.
func (s *Stats) Merge(other *Stats) error {
	if other.base != s.base || other.mode != s.mode {
		return fmt.Errorf("cannot merge statistics for %s base %d into %s base %d",
			other.mode, other.base, s.mode, s.base)
	}
	for digits, or := range other.rows {
		if or == nil {
			continue
		}
		r := s.row(digits)
		for k := 0; k < s.cols; k++ {
			r.counts[k] += or.counts[k]
			if or.min[k] != nil && (r.min[k] == nil || r.min[k].Cmp(or.min[k]) > 0) {
				r.min[k] = new(big.Int).Set(or.min[k])
			}
			if or.max[k] != nil && (r.max[k] == nil || r.max[k].Cmp(or.max[k]) < 0) {
				r.max[k] = new(big.Int).Set(or.max[k])
			}
		}
	}
	return nil
}

// bigOrZero renders a possibly-unset cell; empty cells print as 0.
func bigOrZero(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.Text(10)
}

// WriteReport writes the statistics in CSV-with-comments form, ending
// with the run's tree digest. Layout per populated digit length: one
// counts row labeled with the length, then an unlabeled min row and an
// unlabeled max row, each cell indexed by fan-out with an "all"
// aggregate first.
func (s *Stats) WriteReport(w io.Writer, hash uint64) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# prime_type = %s\n", s.mode)
	fmt.Fprintf(bw, "# base = %d\n", s.base)
	fmt.Fprintf(bw, "# root = %s\n", bigOrZero(s.root))
	fmt.Fprintf(bw, "# max_length = %d\n", s.maxLength)
	if s.mode == ModeLeftOrRight {
		fmt.Fprintf(bw, "# NOTE: counts are not applicable\n")
	}
	fmt.Fprintf(bw, "digits,all")
	for k := 0; k < s.cols; k++ {
		fmt.Fprintf(bw, ",%d", k)
	}
	fmt.Fprintf(bw, "\n")

	for digits, r := range s.rows {
		if r == nil {
			continue
		}
		var countAll uint64
		var minAll, maxAll *big.Int
		for k := 0; k < s.cols; k++ {
			countAll += r.counts[k]
			if r.min[k] != nil && (minAll == nil || minAll.Cmp(r.min[k]) > 0) {
				minAll = r.min[k]
			}
			if r.max[k] != nil && (maxAll == nil || maxAll.Cmp(r.max[k]) < 0) {
				maxAll = r.max[k]
			}
		}
		if countAll == 0 {
			continue
		}
		fmt.Fprintf(bw, "%d,%d", digits, countAll)
		for k := 0; k < s.cols; k++ {
			fmt.Fprintf(bw, ",%d", r.counts[k])
		}
		fmt.Fprintf(bw, "\n,%s", bigOrZero(minAll))
		for k := 0; k < s.cols; k++ {
			fmt.Fprintf(bw, ",%s", bigOrZero(r.min[k]))
		}
		fmt.Fprintf(bw, "\n,%s", bigOrZero(maxAll))
		for k := 0; k < s.cols; k++ {
			fmt.Fprintf(bw, ",%s", bigOrZero(r.max[k]))
		}
		fmt.Fprintf(bw, "\n")
	}
	fmt.Fprintf(bw, "# hash = %d\n", hash)
	return bw.Flush()
}
