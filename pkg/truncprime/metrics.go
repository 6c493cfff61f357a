// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package truncprime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics for the Search Engine
// =============================================================================

var (
	// candidatesTested counts every candidate child value examined,
	// before any filtering.
	candidatesTested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "truncprimes",
		Subsystem: "search",
		Name:      "candidates_total",
		Help:      "Candidate values examined by the digit-extension search",
	})

	// prefilterRejects counts candidates eliminated by the small-prime
	// residue trial division before the oracle was consulted.
	prefilterRejects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "truncprimes",
		Subsystem: "search",
		Name:      "prefilter_rejects_total",
		Help:      "Candidates rejected by small-prime residue trial division",
	})

	// oracleCalls counts invocations of the probable-primality oracle.
	oracleCalls = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "truncprimes",
		Subsystem: "search",
		Name:      "oracle_calls_total",
		Help:      "Probable-primality oracle invocations",
	})

	// primesFound counts candidates that passed the full ladder, one
	// per tree node emitted. Labels: mode.
	primesFound = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "truncprimes",
		Subsystem: "search",
		Name:      "primes_total",
		Help:      "Truncatable primes found, by prime type",
	}, []string{"mode"})

	// streamBytes counts tree stream bytes handed to the sink, labels
	// and terminators included.
	streamBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "truncprimes",
		Subsystem: "search",
		Name:      "stream_bytes_total",
		Help:      "Tree stream bytes emitted",
	})

	// rootDuration observes wall time spent exploring one root subtree.
	rootDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "truncprimes",
		Subsystem: "search",
		Name:      "root_duration_seconds",
		Help:      "Time to exhaust one root subtree",
		Buckets:   []float64{0.001, 0.01, 0.1, 1, 10, 60, 600, 3600},
	})
)
