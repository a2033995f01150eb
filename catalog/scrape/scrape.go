// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package scrape implements the operator catalog scraper: a
// verification phase, a compatibility-table parse, a bounded-
// concurrency per-operator page fetch, and a canonical Markdown dump
// emission.
package scrape

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/go-core-stack/doccopy/errors"
)

// Config parameterizes a scrape run: where to fetch the compatibility
// table and operator pages from, the static category→directory map,
// and the concurrency budget for phase 2's per-operator fetches.
type Config struct {
	CompatibilityURL        string
	OperatorBaseURL         string
	DirectoryListingBaseURL string
	StaticCategoryDirs      map[string]string
	ConcurrentFetches       int
	VerificationTargets     []VerificationTarget
}

// Scraper runs a three-phase scrape, preceded by
// the verification phase.
type Scraper struct {
	cfg      Config
	fetcher  *Fetcher
	resolver *DirectoryResolver
}

// New constructs a Scraper. lister, if non-nil, backs the directory
// resolver's crawled-index fallback.
func New(cfg Config, lister DirectoryLister) (*Scraper, error) {
	if cfg.ConcurrentFetches <= 0 {
		cfg.ConcurrentFetches = 5
	}
	fetcher, err := NewFetcher()
	if err != nil {
		return nil, err
	}
	return &Scraper{
		cfg:      cfg,
		fetcher:  fetcher,
		resolver: NewDirectoryResolver(cfg.StaticCategoryDirs, lister),
	}, nil
}

// Run executes the verification phase followed by the three scrape
// phases, returning the canonical Markdown dump.
func (s *Scraper) Run(ctx context.Context) (string, error) {
	if err := Verify(ctx, s.fetcher, s.cfg.VerificationTargets); err != nil {
		return "", err
	}

	rows, err := s.fetchCompatibilityTable(ctx)
	if err != nil {
		return "", err
	}

	pages, notListed := s.fetchOperatorPages(ctx, rows)

	return EmitDump(pages, notListed), nil
}

func (s *Scraper) fetchCompatibilityTable(ctx context.Context) ([]CompatRow, error) {
	body, err := s.fetcher.FetchPage(ctx, s.cfg.CompatibilityURL)
	if err != nil {
		return nil, errors.Wrapf(errors.Unknown, "fetching compatibility page: %v", err)
	}
	return parseCompatibilityTable(body)
}

// fetchOperatorPages runs Phase 2: one Markdown fetch per listed
// operator, in bounded-concurrency batches, each batch separated by
// interBatchDelay to respect the upstream host's quota.
func (s *Scraper) fetchOperatorPages(ctx context.Context, rows []CompatRow) ([]Page, []NotListedEntry) {
	var listed []CompatRow
	var notListed []NotListedEntry

	for _, r := range rows {
		if r.Listed {
			listed = append(listed, r)
		} else {
			notListed = append(notListed, NotListedEntry{
				Operator: r.Operator,
				Category: r.Category,
				Reason:   "not listed as supported for this platform",
			})
		}
	}

	pages := make([]Page, len(listed))
	ok := make([]bool, len(listed))

	batchSize := s.cfg.ConcurrentFetches
	for start := 0; start < len(listed); start += batchSize {
		end := min(start+batchSize, len(listed))
		s.fetchBatch(ctx, listed[start:end], pages[start:end], ok[start:end])
		if end < len(listed) {
			if ctx.Err() != nil {
				break
			}
			select {
			case <-ctx.Done():
			case <-time.After(interBatchDelay):
			}
		}
	}

	var result []Page
	for i, row := range listed {
		if ok[i] {
			result = append(result, pages[i])
		} else {
			notListed = append(notListed, NotListedEntry{
				Operator: row.Operator,
				Category: row.Category,
				Reason:   "page fetch or directory resolution failed",
			})
		}
	}

	return result, notListed
}

func (s *Scraper) fetchBatch(ctx context.Context, rows []CompatRow, out []Page, ok []bool) {
	g, gctx := errgroup.WithContext(ctx)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			page, err := s.fetchOnePage(gctx, row)
			if err != nil {
				return nil // recorded as not-listed by the caller, not a fatal batch error
			}
			out[i] = page
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Scraper) fetchOnePage(ctx context.Context, row CompatRow) (Page, error) {
	dir, err := s.resolver.Resolve(ctx, s.cfg.DirectoryListingBaseURL, row.Category, row.Operator)
	if err != nil {
		return Page{}, err
	}

	url := strings.TrimRight(s.cfg.OperatorBaseURL, "/") + "/" + dir + "/" + operatorFilename(row.Operator)
	body, err := s.fetcher.FetchPage(ctx, url)
	if err != nil {
		return Page{}, err
	}
	content, err := parsePage(body)
	if err != nil {
		return Page{}, err
	}

	return Page{
		Category:    row.Category,
		Operator:    row.Operator,
		Description: content.Description,
		Syntax:      content.Syntax,
		Link:        url,
	}, nil
}
