// Package main implements a mock U-Fund API server for development and
// testing. It serves the needs, users, basket, inbox, and receipts routes
// from an in-memory store seeded from JSON files, so the CLI and its tests
// can run without the real backend.
//
// Usage:
//
//	mock-ufund -port 8080 -seed ./seed
//
// Seed files are JSON arrays of needs; every *.json file under the seed
// directory (recursively) is merged into the catalog, and edits to the seed
// directory reload the catalog live. With -nats set, catalog changes are
// published to the need-change feed.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/theeman05/SWEN-261-StudentUFund/notify"
)

func main() {
	port := flag.Int("port", 8080, "port to listen on")
	seedDir := flag.String("seed", "", "directory of JSON seed files (watched for changes)")
	natsURL := flag.String("nats", "", "NATS server URL for the need-change feed (optional)")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q: %v\n", *logLevel, err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	st := newStore()

	if *natsURL != "" {
		pub, err := notify.NewPublisher(*natsURL, logger)
		if err != nil {
			logger.Error("connecting to NATS", "url", *natsURL, "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		st.onChange = pub.Publish
		logger.Info("need-change feed enabled", "url", *natsURL)
	}

	if *seedDir != "" {
		needs, err := loadSeed(*seedDir)
		if err != nil {
			logger.Error("loading seed", "dir", *seedDir, "error", err)
			os.Exit(1)
		}
		st.ReplaceCatalog(needs)
		logger.Info("seed loaded", "dir", *seedDir, "needs", len(needs))

		watcher, err := watchSeed(*seedDir, st, logger)
		if err != nil {
			logger.Error("watching seed", "dir", *seedDir, "error", err)
			os.Exit(1)
		}
		defer watcher.Close()
	}

	srv := &server{store: st, metrics: newMetrics(), logger: logger}
	addr := fmt.Sprintf(":%d", *port)
	logger.Info("mock U-Fund server listening", "addr", addr)
	if err := http.ListenAndServe(addr, newMux(srv)); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
