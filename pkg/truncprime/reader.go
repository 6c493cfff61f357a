// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// TreeReader decodes a tree byte stream back into the node values, in
// the exact preorder the search emitted them. Decoding needs the same
// base, mode and explicit root the producing run used; none of them
// are stored in the stream.
//
// The reader validates structure (root marker, label ranges, balanced
// terminators, no trailing bytes) but does not require sibling labels
// to be sorted, so streams assembled from independently produced
// partitions decode the same as sequential ones.
type TreeReader struct {
	r       *bufio.Reader
	base    uint32
	baseBig *big.Int
	mode    Mode
	root    *big.Int

	powers *powerTable
	values []*big.Int
	tmp    *big.Int
}

// NewTreeReader prepares a decoder for the stream in r.
// root mirrors the generating run: nil or zero for a full forest.
func NewTreeReader(r io.Reader, base uint32, mode Mode, root *big.Int) (*TreeReader, error) {
	if base < 2 || base > 255 {
		return nil, fmt.Errorf("%w: %d", ErrBaseRange, base)
	}
	switch mode {
	case ModeRight, ModeLeft, ModeLeftOrRight, ModeLeftAndRight:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
	if root != nil && root.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNegativeRoot, root)
	}
	t := &TreeReader{
		r:       bufio.NewReaderSize(r, 1<<16),
		base:    base,
		baseBig: big.NewInt(int64(base)),
		mode:    mode,
		powers:  newPowerTable(base),
		values:  []*big.Int{new(big.Int)},
		tmp:     new(big.Int),
	}
	if root != nil && root.Sign() > 0 {
		t.root = new(big.Int).Set(root)
	}
	return t, nil
}

// value returns the scratch big.Int for the given depth, growing the
// pool as the tree deepens.
func (t *TreeReader) value(depth int) *big.Int {
	for len(t.values) <= depth {
		t.values = append(t.values, new(big.Int))
	}
	return t.values[depth]
}

func (t *TreeReader) readByte() (byte, error) {
	b, err := t.r.ReadByte()
	if errors.Is(err, io.EOF) {
		return 0, ErrTruncatedStream
	}
	return b, err
}

// Walk decodes the whole stream, invoking visit for every node value
// in preorder with its digit length. The explicit root itself is not
// visited; forest roots are. The *big.Int passed to visit is reused
// between calls, so retain a copy if needed.
func (t *TreeReader) Walk(visit func(value *big.Int, digits int) error) error {
	for i := 0; i < t.mode.LabelWidth(); i++ {
		b, err := t.readByte()
		if err != nil {
			return err
		}
		if b != EndByte {
			return fmt.Errorf("%w: byte %d at offset %d", ErrBadRootMarker, b, i)
		}
	}

	var err error
	if t.mode == ModeLeftAndRight && t.root == nil {
		err = t.walkPairRoots(visit)
	} else {
		rootLen := 0
		v := t.value(0)
		if t.root != nil {
			v.Set(t.root)
			rootLen = digitCount(t.root, t.base)
		} else {
			v.SetInt64(0)
		}
		err = t.walkChildren(0, rootLen, visit)
	}
	if err != nil {
		return err
	}

	if _, err := t.r.ReadByte(); !errors.Is(err, io.EOF) {
		if err != nil {
			return err
		}
		return ErrTrailingBytes
	}
	return nil
}

// walkPairRoots handles the full left-and-right forest, whose roots
// are two-byte pairs: a one-digit root when the left byte is zero, a
// two-digit root otherwise. Subtrees then nest normally.
func (t *TreeReader) walkPairRoots(visit func(*big.Int, int) error) error {
	for {
		ld, err := t.readByte()
		if err != nil {
			return err
		}
		if ld == EndByte {
			return nil
		}
		rd, err := t.readByte()
		if err != nil {
			return err
		}
		if uint32(ld) >= t.base || uint32(rd) >= t.base {
			return fmt.Errorf("%w: root pair (%d,%d) for base %d", ErrBadLabel, ld, rd, t.base)
		}
		rootLen := 2
		if ld == 0 {
			rootLen = 1
		}
		v := t.value(0)
		v.SetUint64(uint64(ld)*uint64(t.base) + uint64(rd))
		if err := visit(v, rootLen); err != nil {
			return err
		}
		if err := t.walkChildren(0, rootLen, visit); err != nil {
			return err
		}
	}
}

// walkChildren decodes the children of the node held in the depth
// scratch value, recursing through their subtrees, and consumes the
// terminator closing the node. rootLen is the digit length of the
// subtree's root, which fixes place values for left appends.
func (t *TreeReader) walkChildren(depth, rootLen int, visit func(*big.Int, int) error) error {
	parent := t.value(depth)
	parentDigits := rootLen + depth*t.mode.DigitsPerLevel()
	for {
		b, err := t.readByte()
		if err != nil {
			return err
		}
		if b == EndByte {
			return nil
		}
		child := t.value(depth + 1)
		switch t.mode {
		case ModeRight:
			if b == 0 || uint32(b) >= t.base {
				return fmt.Errorf("%w: digit %d for base %d", ErrBadLabel, b, t.base)
			}
			child.Mul(parent, t.baseBig)
			child.Add(child, t.tmp.SetUint64(uint64(b)))

		case ModeLeft:
			if b == 0 || uint32(b) >= t.base {
				return fmt.Errorf("%w: digit %d for base %d", ErrBadLabel, b, t.base)
			}
			t.tmp.Mul(t.powers.get(parentDigits), t.tmp.SetUint64(uint64(b)))
			child.Add(parent, t.tmp)

		case ModeLeftOrRight:
			d, err := t.readByte()
			if err != nil {
				return err
			}
			if b > 1 {
				return fmt.Errorf("%w: side byte %d", ErrBadLabel, b)
			}
			if d == 0 || uint32(d) >= t.base {
				return fmt.Errorf("%w: digit %d for base %d", ErrBadLabel, d, t.base)
			}
			if b == 0 {
				t.tmp.Mul(t.powers.get(parentDigits), t.tmp.SetUint64(uint64(d)))
				child.Add(parent, t.tmp)
			} else {
				child.Mul(parent, t.baseBig)
				child.Add(child, t.tmp.SetUint64(uint64(d)))
			}

		default: // ModeLeftAndRight
			dr, err := t.readByte()
			if err != nil {
				return err
			}
			if b == 0 || uint32(b) >= t.base || dr == 0 || uint32(dr) >= t.base {
				return fmt.Errorf("%w: digit pair (%d,%d) for base %d", ErrBadLabel, b, dr, t.base)
			}
			t.tmp.Mul(t.powers.get(parentDigits+1), t.tmp.SetUint64(uint64(b)))
			child.Add(t.tmp, child.Mul(parent, t.baseBig))
			child.Add(child, t.tmp.SetUint64(uint64(dr)))
		}

		if err := visit(child, parentDigits+t.mode.DigitsPerLevel()); err != nil {
			return err
		}
		if err := t.walkChildren(depth+1, rootLen, visit); err != nil {
			return err
		}
	}
}
