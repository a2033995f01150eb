// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Command scraper runs the operator catalog scraper end to end: it
// verifies a small fixed set of known pages, parses the compatibility
// table, fetches every listed operator's page, and writes the
// canonical Markdown dump to -out. Exit code 0 on success; non-zero on
// verification failure or on a compatibility-page fetch failure.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/go-core-stack/doccopy/catalog/scrape"
)

func main() {
	var (
		compatURL  = flag.String("compat", "", "compatibility table Markdown URL (required)")
		baseURL    = flag.String("base", "", "operator docs base URL (required)")
		dirListing = flag.String("dirlisting", "", "directory-listing API base path, empty disables the crawled-index fallback")
		outPath    = flag.String("out", "operators.md", "path to write the canonical Markdown dump")
		concurrent = flag.Int("concurrency", 5, "concurrent per-operator page fetches")
		timeout    = flag.Duration("timeout", 2*time.Minute, "overall scrape timeout")
	)
	flag.Parse()

	if *compatURL == "" || *baseURL == "" {
		log.Println("scraper: -compat and -base are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cfg := scrape.Config{
		CompatibilityURL:        *compatURL,
		OperatorBaseURL:         *baseURL,
		DirectoryListingBaseURL: *dirListing,
		ConcurrentFetches:       *concurrent,
		VerificationTargets: []scrape.VerificationTarget{
			{URL: *compatURL, RequireTable: true},
		},
	}

	s, err := scrape.New(cfg, nil)
	if err != nil {
		log.Printf("scraper: setup failed: %v", err)
		os.Exit(1)
	}

	dump, err := s.Run(ctx)
	if err != nil {
		log.Printf("scraper: run failed: %v", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outPath, []byte(dump), 0o644); err != nil {
		log.Printf("scraper: writing %q: %v", *outPath, err)
		os.Exit(1)
	}

	log.Printf("scraper: wrote dump to %s", *outPath)
}
