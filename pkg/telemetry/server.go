// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package telemetry exposes the process Prometheus registry over HTTP
// for long-running searches. Short CLI invocations never start it.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/truncprimes/pkg/logging"
)

// Server serves /metrics on localhost until shut down.
type Server struct {
	srv *http.Server
	log *logging.Logger
}

// Start begins serving the default Prometheus registry on
// 127.0.0.1:port in a background goroutine. Listen failures are
// logged, not fatal: a busy metrics port should not kill a
// multi-day search.
func Start(port int, log *logging.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	s := &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf("127.0.0.1:%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
	go func() {
		log.Info("metrics listener started", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics listener failed", "addr", s.srv.Addr, "error", err)
		}
	}()
	return s
}

// Shutdown stops the listener, waiting for in-flight scrapes up to
// the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
