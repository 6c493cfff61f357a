// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/truncprimes/pkg/config"
	"github.com/AleutianAI/truncprimes/pkg/logging"
	"github.com/AleutianAI/truncprimes/pkg/telemetry"
	"github.com/AleutianAI/truncprimes/pkg/truncprime"
)

// newLogger builds the run logger from profile settings and tags it
// with a fresh run ID so partitioned runs and file logs correlate.
func newLogger(p config.Profile, service string) *logging.Logger {
	level := logging.LevelInfo
	switch p.LogLevel {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  p.LogDir,
		Service: service,
		JSON:    p.LogJSON,
	})
	return logger.With("run_id", uuid.NewString())
}

// openOut resolves an output destination: empty or "-" means the
// fallback stream, anything else is created as a file.
func openOut(path string, fallback *os.File) (*os.File, func() error, error) {
	if path == "" || path == "-" {
		return fallback, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	p, err := buildProfile(cmd)
	if err != nil {
		return err
	}
	mode, err := p.Mode()
	if err != nil {
		return err
	}
	root, err := p.RootInt()
	if err != nil {
		return err
	}

	logger := newLogger(p, "generate")
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if p.MetricsPort != 0 {
		metrics := telemetry.Start(p.MetricsPort, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metrics.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics shutdown failed", "error", err)
			}
		}()
	}

	out, closeOut, err := openOut(p.Output, os.Stdout)
	if err != nil {
		return err
	}
	defer closeOut()
	statsOut, closeStats, err := openOut(p.StatsOutput, os.Stderr)
	if err != nil {
		return err
	}
	defer closeStats()

	cfg := truncprime.Config{
		Base:       p.Base,
		Mode:       mode,
		MaxLength:  p.MaxLength,
		Root:       root,
		VerifyRoot: p.VerifyRoot,
		Logger:     logger,
	}

	logger.Info("starting search",
		"base", p.Base,
		"prime_type", p.PrimeType,
		"max_length", p.MaxLength,
		"root", p.Root,
		"parallel", p.Parallel)

	var hash uint64
	var stats *truncprime.Stats
	if p.Parallel != 0 && root == nil {
		workers := p.Parallel
		if workers < 0 {
			workers = 0 // GOMAXPROCS
		}
		hash, stats, err = truncprime.ExploreParallel(ctx, cfg, workers, out)
		if err != nil {
			return err
		}
	} else {
		search, err := truncprime.NewSearch(cfg, out)
		if err != nil {
			return err
		}
		hash, err = search.Run(ctx)
		if err != nil {
			return err
		}
		stats = search.Stats()
	}

	if err := stats.WriteReport(statsOut, hash); err != nil {
		return fmt.Errorf("write statistics: %w", err)
	}
	return nil
}
