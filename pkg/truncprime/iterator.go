// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import (
	"fmt"
	"math"
	"math/big"
)

// Order selects which tree events carry node details out of an
// Iterator alongside the raw stream bytes.
type Order int

const (
	// BytesOnly yields stream bytes with no node details.
	BytesOnly Order = iota

	// PreOrder attaches node details to each label yield, before the
	// node's children are known.
	PreOrder

	// PostOrder attaches node details to each terminator yield, after
	// the node's fan-out has been counted.
	PostOrder
)

// Value carries the details of the node a byte sequence belongs to.
type Value struct {
	// Num is the node value. It aliases iterator scratch space and is
	// only valid until the next call to Next.
	Num *big.Int

	// Digits is the node's digit length in the iterator's base.
	Digits int

	// Children is the node's fan-out, or -1 when yielded in preorder
	// before the subtree has been walked.
	Children int

	// Path is the branch path number from the node's parent, the same
	// numbering the tree digest uses. Undefined for the root.
	Path uint64
}

// iterFrame is one suspended level of the enumeration. n is the
// workspace for candidate children of the node one level up; i is the
// resume point in the append loop; c counts children found so far;
// label holds the bytes yielded when the frame was entered.
type iterFrame struct {
	n     *big.Int
	i     uint64
	c     int
	label [2]byte
}

// IteratorConfig describes an incremental enumeration of one subtree.
type IteratorConfig struct {
	// Base is the number base, 2 through 255.
	Base uint32

	// Mode selects the truncation property.
	Mode Mode

	// Root is the subtree root, which must be positive. The iterator
	// does not verify it; pair with IsTruncatable when needed.
	Root *big.Int

	// MaxLength bounds emitted digit lengths; zero means unbounded.
	MaxLength int

	// RootLabel is the label yielded for the root itself, LabelWidth
	// bytes. The caller chooses it because the right bytes depend on
	// how the subtree is being spliced into a larger stream.
	RootLabel []byte

	// Order selects when Next attaches node details.
	Order Order

	// Oracle is the probable-primality test; nil selects BPSWOracle.
	Oracle Oracle
}

// Iterator produces the tree byte stream of one subtree a few bytes at
// a time, suspending the enumeration between calls instead of driving
// a callback. It emits exactly the bytes Search would write for the
// same subtree: the root label first, then nested child labels and
// terminators, ending with the root's own terminator.
type Iterator struct {
	base      uint32
	baseBig   *big.Int
	mode      Mode
	order     Order
	oracle    Oracle
	rootLen   int
	maxLength int

	powers *powerTable
	frames []*iterFrame
	depth  int

	ret [2]byte
	val Value
}

// NewIterator validates cfg and positions the enumeration before the
// root label.
func NewIterator(cfg IteratorConfig) (*Iterator, error) {
	if cfg.Base < 2 || cfg.Base > 255 {
		return nil, fmt.Errorf("%w: %d", ErrBaseRange, cfg.Base)
	}
	switch cfg.Mode {
	case ModeRight, ModeLeft, ModeLeftOrRight, ModeLeftAndRight:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(cfg.Mode))
	}
	if cfg.Root == nil || cfg.Root.Sign() <= 0 {
		return nil, fmt.Errorf("iterator root must be positive")
	}
	if len(cfg.RootLabel) != cfg.Mode.LabelWidth() {
		return nil, fmt.Errorf("root label must be %d byte(s), got %d",
			cfg.Mode.LabelWidth(), len(cfg.RootLabel))
	}
	oracle := cfg.Oracle
	if oracle == nil {
		oracle = BPSWOracle{}
	}
	maxLength := cfg.MaxLength
	if maxLength <= 0 {
		maxLength = math.MaxInt32
	}
	it := &Iterator{
		base:      cfg.Base,
		baseBig:   big.NewInt(int64(cfg.Base)),
		mode:      cfg.Mode,
		order:     cfg.Order,
		oracle:    oracle,
		rootLen:   digitCount(cfg.Root, cfg.Base),
		maxLength: maxLength,
		powers:    newPowerTable(cfg.Base),
		depth:     1,
	}
	// Frame 0 pins the root value; frame 1 is where enumeration of
	// its children resumes.
	root := &iterFrame{n: new(big.Int).Set(cfg.Root)}
	work := &iterFrame{n: new(big.Int)}
	copy(work.label[:], cfg.RootLabel)
	it.frames = []*iterFrame{root, work}
	return it, nil
}

func (it *Iterator) frame(d int) *iterFrame {
	for len(it.frames) <= d {
		it.frames = append(it.frames, &iterFrame{n: new(big.Int)})
	}
	return it.frames[d]
}

// push enters a new frame for the prime just found in cur's workspace,
// labeled with the given bytes.
func (it *Iterator) push(label0, label1 byte) {
	it.depth++
	f := it.frame(it.depth)
	f.label[0] = label0
	f.label[1] = label1
	f.i = 0
	f.c = 0
}

// setValue fills the details struct for the node held at frame d-1.
func (it *Iterator) setValue(d int, children int) *Value {
	prev := it.frames[d-1]
	mult := it.mode.DigitsPerLevel()
	it.val = Value{
		Num:      prev.n,
		Digits:   it.rootLen + (d-1)*mult,
		Children: children,
		Path:     prev.i - 1,
	}
	return &it.val
}

// Next produces the next byte sequence of the stream. The returned
// slice aliases internal storage and is valid until the next call.
// val is non-nil only when the configured Order attaches details to
// this sequence. ok is false once the subtree is exhausted.
func (it *Iterator) Next() (seq []byte, val *Value, ok bool) {
	if it.depth == 0 {
		return nil, nil, false
	}
	switch it.mode {
	case ModeRight, ModeLeft:
		return it.nextSingle()
	case ModeLeftOrRight:
		return it.nextLeftOrRight()
	default:
		return it.nextLeftAndRight()
	}
}

// yieldLabel emits the label bytes of the frame just entered, with
// preorder details for the node one level down.
func (it *Iterator) yieldLabel(cur *iterFrame, width int) ([]byte, *Value, bool) {
	var v *Value
	if it.order == PreOrder {
		v = it.setValue(it.depth, -1)
	}
	it.ret[0] = cur.label[0]
	it.ret[1] = cur.label[1]
	return it.ret[:width], v, true
}

// yieldEnd emits the terminator closing the current frame's node and
// pops back to the parent.
func (it *Iterator) yieldEnd(cur *iterFrame) ([]byte, *Value, bool) {
	var v *Value
	if it.order == PostOrder {
		v = it.setValue(it.depth, cur.c)
	}
	it.depth--
	it.ret[0] = EndByte
	return it.ret[:1], v, true
}

// nextSingle advances right- or left-truncatable enumeration, which
// differ only in how a candidate child is built from the parent.
func (it *Iterator) nextSingle() ([]byte, *Value, bool) {
	for {
		cur := it.frames[it.depth]
		prev := it.frames[it.depth-1]
		switch {
		case cur.i == 0:
			cur.i = 1
			return it.yieldLabel(cur, 1)
		case it.rootLen+it.depth > it.maxLength:
			// Children would exceed the digit budget.
			cur.i = uint64(it.base)
		case cur.i < uint64(it.base):
			if cur.i == 1 {
				if it.mode == ModeRight {
					cur.n.Mul(prev.n, it.baseBig)
				} else {
					cur.n.Set(prev.n)
				}
			}
			if it.mode == ModeRight {
				cur.n.Add(cur.n, bigOne)
			} else {
				cur.n.Add(cur.n, it.powers.get(it.rootLen+it.depth-1))
			}
			cur.i++
			if probablePrime(cur.n, it.oracle) {
				d := byte(cur.i - 1)
				cur.c++
				it.push(d, 0)
			}
		default:
			return it.yieldEnd(cur)
		}
	}
}

func (it *Iterator) nextLeftOrRight() ([]byte, *Value, bool) {
	b := uint64(it.base)
	for {
		cur := it.frames[it.depth]
		prev := it.frames[it.depth-1]
		switch {
		case cur.i == 0:
			cur.i = 1
			return it.yieldLabel(cur, 2)
		case it.rootLen+it.depth > it.maxLength:
			cur.i = 2 * b
		case cur.i < b: // left appends
			if cur.i == 1 {
				cur.n.Set(prev.n)
			}
			cur.n.Add(cur.n, it.powers.get(it.rootLen+it.depth-1))
			cur.i++
			if probablePrime(cur.n, it.oracle) {
				cur.c++
				it.push(0, byte(cur.i-1))
			}
		case cur.i == b: // switch sides
			cur.n.Mul(prev.n, it.baseBig)
			cur.i++
		case cur.i < 2*b: // right appends
			cur.n.Add(cur.n, bigOne)
			cur.i++
			if probablePrime(cur.n, it.oracle) {
				cur.c++
				it.push(1, byte(cur.i-1-b))
			}
		default:
			return it.yieldEnd(cur)
		}
	}
}

func (it *Iterator) nextLeftAndRight() ([]byte, *Value, bool) {
	b := uint64(it.base)
	for {
		cur := it.frames[it.depth]
		prev := it.frames[it.depth-1]
		switch {
		case cur.i == 0:
			// Skipping straight to b makes the first append step a
			// left-digit increment, so the left digit is never zero.
			cur.i = b
			return it.yieldLabel(cur, 2)
		case it.rootLen+2*it.depth > it.maxLength:
			cur.i = b * b
		case cur.i < b*b:
			if cur.i == b {
				cur.n.Mul(prev.n, it.baseBig)
			}
			if cur.i%b == 0 {
				// Next left digit; rewind the right digit to zero
				// first unless this is the initial shift.
				if cur.i != b {
					cur.n.Sub(cur.n, big.NewInt(int64(b-1)))
				}
				cur.n.Add(cur.n, it.powers.get(it.rootLen+2*it.depth-1))
				cur.i++
			} else {
				cur.n.Add(cur.n, bigOne)
				cur.i++
				if probablePrime(cur.n, it.oracle) {
					cur.c++
					it.push(byte((cur.i-1)/b), byte((cur.i-1)%b))
				}
			}
		default:
			return it.yieldEnd(cur)
		}
	}
}
