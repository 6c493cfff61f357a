// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/truncprimes/pkg/truncprime"
)

func runCheck(cmd *cobra.Command, args []string) error {
	if flagBase < 2 || flagBase > 255 {
		return fmt.Errorf("base %d out of valid range (2-255)", flagBase)
	}
	mode, err := truncprime.ParseMode(flagPrimeType)
	if err != nil {
		return err
	}
	oracle := truncprime.BPSWOracle{}

	failures := 0
	for _, arg := range args {
		n, ok := new(big.Int).SetString(arg, 10)
		if !ok {
			return fmt.Errorf("not a decimal integer: %q", arg)
		}
		verdict := truncprime.IsTruncatable(n, flagBase, mode, oracle)
		if !verdict {
			failures++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", n, verdict)
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d numbers failed the %s property", failures, len(args), mode)
	}
	return nil
}
