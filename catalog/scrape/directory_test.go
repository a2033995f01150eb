// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package scrape

import (
	"context"
	"testing"
)

type fakeLister struct {
	files []string
	calls int
}

func (f *fakeLister) ListFiles(ctx context.Context, path string) ([]string, error) {
	f.calls++
	return f.files, nil
}

func Test_DirectoryResolver_StaticMapWins(t *testing.T) {
	lister := &fakeLister{files: []string{"eq.md"}}
	r := NewDirectoryResolver(map[string]string{"Comparison": "reference/operator/query"}, lister)

	dir, err := r.Resolve(context.Background(), "base", "Comparison", "$eq")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != "reference/operator/query" {
		t.Errorf("expected static map directory, got %q", dir)
	}
	if lister.calls != 0 {
		t.Errorf("static map hit should not consult the crawled index")
	}
}

func Test_DirectoryResolver_CrawledIndexFallback(t *testing.T) {
	lister := &fakeLister{files: []string{"reference/operator/aggregation/size.md"}}
	r := NewDirectoryResolver(nil, lister)

	dir, err := r.Resolve(context.Background(), "base", "Array", "$size")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != "reference/operator/aggregation" {
		t.Errorf("expected crawled directory, got %q", dir)
	}
}

func Test_DirectoryResolver_CaseVariantRetry(t *testing.T) {
	lister := &fakeLister{files: []string{"reference/operator/query/EQ.md"}}
	r := NewDirectoryResolver(nil, lister)

	dir, err := r.Resolve(context.Background(), "base", "Comparison", "$eq")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != "reference/operator/query" {
		t.Errorf("expected case-variant match, got %q", dir)
	}
}

func Test_DirectoryResolver_NotFound(t *testing.T) {
	lister := &fakeLister{files: []string{"reference/operator/query/eq.md"}}
	r := NewDirectoryResolver(nil, lister)

	if _, err := r.Resolve(context.Background(), "base", "Comparison", "$nonexistent"); err == nil {
		t.Fatalf("expected an error for an unresolved operator")
	}
}

func Test_DirectoryResolver_IndexBuiltOnce(t *testing.T) {
	lister := &fakeLister{files: []string{"reference/operator/query/eq.md", "reference/operator/query/gt.md"}}
	r := NewDirectoryResolver(nil, lister)

	if _, err := r.Resolve(context.Background(), "base", "Comparison", "$eq"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Resolve(context.Background(), "base", "Comparison", "$gt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lister.calls != 1 {
		t.Errorf("expected the crawl to happen exactly once, got %d calls", lister.calls)
	}
}
