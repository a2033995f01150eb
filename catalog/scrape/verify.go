// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package scrape

import (
	"context"
	"strings"

	"github.com/go-core-stack/doccopy/errors"
)

// VerificationTarget is one known-good URL the verification phase
// checks before trusting the rest of the scrape, per the "preceded
// by a verification phase" requirement.
type VerificationTarget struct {
	URL                string
	RequireTable       bool
	RequireFrontmatter bool
}

// ErrScrapeVerification marks the verification phase's failure mode
// (a ScrapeVerification error kind); every error Verify returns starts
// with its message, and the scraper aborts without attempting phases
// 1-3 when Verify fails.
var ErrScrapeVerification = errors.Wrap(errors.Unknown, "scrape verification failed")

// Verify fetches every target and asserts its required structural
// invariant: a pipe table for RequireTable, a parseable frontmatter
// description for RequireFrontmatter. The first failure aborts with a
// new error whose message is ErrScrapeVerification's message followed
// by the specific cause; it does not wrap ErrScrapeVerification itself.
func Verify(ctx context.Context, fetcher *Fetcher, targets []VerificationTarget) error {
	for _, target := range targets {
		body, err := fetcher.FetchPage(ctx, target.URL)
		if err != nil {
			return errors.Wrapf(errors.Unknown, "%v: fetching %q: %v", ErrScrapeVerification, target.URL, err)
		}
		if target.RequireTable && !strings.Contains(body, "|") {
			return errors.Wrapf(errors.Unknown, "%v: %q has no pipe table", ErrScrapeVerification, target.URL)
		}
		if target.RequireFrontmatter {
			content, err := parsePage(body)
			if err != nil || content.Description == "" {
				return errors.Wrapf(errors.Unknown, "%v: %q has no usable frontmatter description", ErrScrapeVerification, target.URL)
			}
		}
	}
	return nil
}
