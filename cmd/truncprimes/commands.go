// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"

	"github.com/AleutianAI/truncprimes/pkg/config"
)

// --- Global Command Variables ---
var (
	flagProfile     string
	flagBase        uint32
	flagPrimeType   string
	flagMaxLength   int
	flagRoot        string
	flagVerifyRoot  bool
	flagOut         string
	flagStatsOut    string
	flagParallel    int
	flagMetricsPort int
	flagLogLevel    string
	flagLogDir      string
	flagLogJSON     bool
	flagOutputBase  uint32 // convert only

	rootCmd = &cobra.Command{
		Use:   "truncprimes",
		Short: "Enumerate, convert and check truncatable primes",
		Long: `truncprimes explores the trees of truncatable primes in any base
from 2 to 255: right (A024770), left (A024785), left-or-right (A137812)
and left-and-right (A077390) truncatable. It streams a compact binary
tree encoding to stdout and a statistics report with a verifiable tree
digest to stderr.`,
		SilenceUsage: true,
	}

	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Run a search and stream the tree byte encoding",
		Long: `Runs the digit-extension search for the configured base and prime
type. The tree bytes go to --out (default stdout) and the statistics
report with the tree digest goes to --stats (default stderr). Full
forest runs can be partitioned across workers with --parallel; the
output and digest are identical to a sequential run.`,
		RunE: runGenerate, // Defined in cmd_generate.go
	}

	convertCmd = &cobra.Command{
		Use:   "convert [file]",
		Short: "Decode a tree byte stream into one prime per line",
		Long: `Reads a tree byte stream from the given file or stdin and prints
the decoded primes in preorder, one per line, rendered in
--output-base. The base, prime type and root must match the run that
produced the stream; they are not stored in it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConvert, // Defined in cmd_convert.go
	}

	checkCmd = &cobra.Command{
		Use:   "check [number...]",
		Short: "Check numbers for a truncatable-prime property",
		Long: `Tests each decimal number for the configured truncation property
and prints one verdict per line. Exits nonzero when any number fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck, // Defined in cmd_check.go
	}
)

func init() {
	defaults := config.Default()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagProfile, "profile", "", "YAML run profile; flags override its values")
	pf.Uint32VarP(&flagBase, "base", "b", defaults.Base, "number base (2-255)")
	pf.StringVarP(&flagPrimeType, "prime-type", "p", defaults.PrimeType, "prime type: r, l, lor, lar")
	pf.StringVar(&flagLogLevel, "log-level", defaults.LogLevel, "log level: debug, info, warn, error")
	pf.StringVar(&flagLogDir, "log-dir", "", "directory for JSON log files")
	pf.BoolVar(&flagLogJSON, "log-json", false, "log JSON to stderr instead of text")

	gf := generateCmd.Flags()
	gf.IntVarP(&flagMaxLength, "max-length", "l", 0, "longest digit length to emit, 0 for unbounded")
	gf.StringVarP(&flagRoot, "root", "r", "", "explicit subtree root (decimal), empty for the full forest")
	gf.BoolVar(&flagVerifyRoot, "verify-root", false, "verify the explicit root's property before running")
	gf.StringVarP(&flagOut, "out", "o", "", "tree stream destination, empty or - for stdout")
	gf.StringVar(&flagStatsOut, "stats", "", "statistics destination, empty or - for stderr")
	gf.IntVar(&flagParallel, "parallel", 0, "workers for full-forest runs, 0 sequential, negative for GOMAXPROCS")
	gf.IntVar(&flagMetricsPort, "metrics-port", 0, "serve Prometheus metrics on 127.0.0.1:PORT while running")

	cf := convertCmd.Flags()
	cf.StringVarP(&flagRoot, "root", "r", "", "root the stream was generated with (decimal)")
	cf.Uint32VarP(&flagOutputBase, "output-base", "O", 10, "base for printed numbers (2-62)")

	rootCmd.AddCommand(generateCmd, convertCmd, checkCmd)
}

// buildProfile resolves the effective run profile: file values when
// --profile is given, overridden by any flag the user set explicitly.
func buildProfile(cmd *cobra.Command) (config.Profile, error) {
	p := config.Default()
	if flagProfile != "" {
		loaded, err := config.Load(flagProfile)
		if err != nil {
			return p, err
		}
		p = loaded
	}
	set := func(name string) bool { return cmd.Flags().Changed(name) }
	if flagProfile == "" || set("base") {
		p.Base = flagBase
	}
	if flagProfile == "" || set("prime-type") {
		p.PrimeType = flagPrimeType
	}
	if set("max-length") {
		p.MaxLength = flagMaxLength
	}
	if set("root") {
		p.Root = flagRoot
	}
	if set("verify-root") {
		p.VerifyRoot = flagVerifyRoot
	}
	if set("out") {
		p.Output = flagOut
	}
	if set("stats") {
		p.StatsOutput = flagStatsOut
	}
	if set("parallel") {
		p.Parallel = flagParallel
	}
	if set("metrics-port") {
		p.MetricsPort = flagMetricsPort
	}
	if flagProfile == "" || set("log-level") {
		p.LogLevel = flagLogLevel
	}
	if set("log-dir") {
		p.LogDir = flagLogDir
	}
	if set("log-json") {
		p.LogJSON = flagLogJSON
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
