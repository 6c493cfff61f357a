// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bufio"
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/truncprimes/pkg/truncprime"
)

func runConvert(cmd *cobra.Command, args []string) error {
	if flagOutputBase < 2 || flagOutputBase > 62 {
		return fmt.Errorf("output base %d out of valid range (2-62)", flagOutputBase)
	}
	mode, err := truncprime.ParseMode(flagPrimeType)
	if err != nil {
		return err
	}
	var root *big.Int
	if flagRoot != "" {
		n, ok := new(big.Int).SetString(flagRoot, 10)
		if !ok || n.Sign() < 0 {
			return fmt.Errorf("root must be a nonnegative decimal integer, got %q", flagRoot)
		}
		if n.Sign() > 0 {
			root = n
		}
	}

	in := os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}

	reader, err := truncprime.NewTreeReader(in, flagBase, mode, root)
	if err != nil {
		return err
	}

	w := bufio.NewWriterSize(os.Stdout, 1<<16)
	err = reader.Walk(func(value *big.Int, digits int) error {
		if _, err := w.WriteString(value.Text(int(flagOutputBase))); err != nil {
			return err
		}
		return w.WriteByte('\n')
	})
	if err != nil {
		return err
	}
	return w.Flush()
}
