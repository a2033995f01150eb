// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package scrape

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/go-core-stack/doccopy/errors"
	"github.com/go-core-stack/doccopy/rate"
)

const (
	pageLimiterKey = "operator-pages"
	dirLimiterKey  = "directory-listing"

	// pageFetchRate paces per-operator page fetches; dirListingRate is
	// stricter since the listing API's quota is tighter than the page
	// limiting: "directory-listing API calls are spaced further apart").
	pageFetchRate  = 5
	dirListingRate = 1

	// interBatchDelay is the spacing between concurrent fetch batches -
	// an empirical value, not derived from any documented quota, just
	// what keeps the upstream host happy.
	interBatchDelay = 300 * time.Millisecond
)

// Fetcher retrieves Markdown pages over HTTP, pacing requests through
// rate.LimitManager so the scraper's bounded concurrent batches never
// exceed the upstream host's tolerance.
type Fetcher struct {
	client  *resty.Client
	mgr     *rate.LimitManager
	pageLim *rate.Limiter
	dirLim  *rate.Limiter
}

// NewFetcher constructs a Fetcher with independent rate budgets for
// operator-page fetches and directory-listing crawls.
func NewFetcher() (*Fetcher, error) {
	client := resty.New().
		SetTimeout(15 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second)

	mgr := rate.NewLimitManager(pageFetchRate + dirListingRate)
	pageLim, err := mgr.NewLimiter(pageLimiterKey, pageFetchRate, pageFetchRate*2)
	if err != nil {
		return nil, err
	}
	dirLim, err := mgr.NewLimiter(dirLimiterKey, dirListingRate, dirListingRate*2)
	if err != nil {
		return nil, err
	}

	return &Fetcher{client: client, mgr: mgr, pageLim: pageLim, dirLim: dirLim}, nil
}

// FetchPage retrieves url's body as text, paced by the page-fetch
// limiter.
func (f *Fetcher) FetchPage(ctx context.Context, url string) (string, error) {
	f.pageLim.SetInUse(true)
	defer f.pageLim.SetInUse(false)
	if err := f.pageLim.WaitN(ctx, 1); err != nil {
		return "", err
	}
	return f.doFetch(ctx, url)
}

// FetchDirectoryListing retrieves url's body as text, paced by the
// stricter directory-listing limiter.
func (f *Fetcher) FetchDirectoryListing(ctx context.Context, url string) (string, error) {
	f.dirLim.SetInUse(true)
	defer f.dirLim.SetInUse(false)
	if err := f.dirLim.WaitN(ctx, 1); err != nil {
		return "", err
	}
	return f.doFetch(ctx, url)
}

func (f *Fetcher) doFetch(ctx context.Context, url string) (string, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", errors.Wrapf(errors.Unknown, "fetching %q: %v", url, err)
	}
	if resp.IsError() {
		return "", errors.Wrapf(errors.Unknown, "fetching %q: status %d", url, resp.StatusCode())
	}
	return resp.String(), nil
}
