// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package scrape

import (
	"context"
	"strings"

	"github.com/go-core-stack/doccopy/errors"
)

// DirectoryLister enumerates the filenames present under a docs-tree
// path, the way the host platform's listing API does. A real
// implementation hits that API over HTTP; tests supply an in-memory
// fake.
type DirectoryLister interface {
	ListFiles(ctx context.Context, path string) ([]string, error)
}

// DirectoryResolver finds the page filename for a given (category,
// operator) pair via a three-fallback chain: a
// static category→directory map, a crawled global filename index
// matched against the expected filename exactly as crawled, and a
// case-variant retry of the expected filename against that same
// index folded to lowercase.
type DirectoryResolver struct {
	// StaticMap maps a category to its known docs-tree directory.
	StaticMap map[string]string
	lister    DirectoryLister

	// index maps a filename (without extension), in the casing it was
	// crawled with, to the directory it was found in.
	index map[string]string
	// lowerIndex maps the same filenames folded to lowercase, used
	// only by the case-variant retry once an exact match fails.
	lowerIndex map[string]string
	indexedOK  bool
}

// NewDirectoryResolver constructs a resolver backed by staticMap and,
// for pages the static map doesn't cover, lister.
func NewDirectoryResolver(staticMap map[string]string, lister DirectoryLister) *DirectoryResolver {
	return &DirectoryResolver{StaticMap: staticMap, lister: lister}
}

// Resolve returns the directory containing operator's page. It tries,
// in order: the static category map; an exact match against the
// crawled global filename index (built on first use by crawling
// basePath); and a case-variant retry of the expected filename ("eq"
// vs "Eq" vs "EQ") against that index folded to lowercase.
func (d *DirectoryResolver) Resolve(ctx context.Context, basePath, category, operator string) (string, error) {
	filename := operatorFilename(operator)

	if dir, ok := d.StaticMap[category]; ok {
		return dir, nil
	}

	if err := d.ensureIndexed(ctx, basePath); err != nil {
		return "", err
	}
	if dir, ok := d.index[filename]; ok {
		return dir, nil
	}

	for _, variant := range caseVariants(filename) {
		if dir, ok := d.lowerIndex[strings.ToLower(variant)]; ok {
			return dir, nil
		}
	}

	return "", errors.Wrapf(errors.NotFound, "no directory resolved for operator %q (category %q)", operator, category)
}

func (d *DirectoryResolver) ensureIndexed(ctx context.Context, basePath string) error {
	if d.indexedOK {
		return nil
	}
	if d.lister == nil {
		d.index = map[string]string{}
		d.lowerIndex = map[string]string{}
		d.indexedOK = true
		return nil
	}
	files, err := d.lister.ListFiles(ctx, basePath)
	if err != nil {
		return errors.Wrapf(errors.Unknown, "crawling directory index under %q: %v", basePath, err)
	}
	idx := make(map[string]string, len(files))
	lower := make(map[string]string, len(files))
	for _, f := range files {
		dir, name := splitDirFile(f)
		idx[name] = dir
		lower[strings.ToLower(name)] = dir
	}
	d.index = idx
	d.lowerIndex = lower
	d.indexedOK = true
	return nil
}

// operatorFilename derives the expected bare filename (no extension)
// for operator, stripping its leading "$" sigils.
func operatorFilename(operator string) string {
	return strings.TrimLeft(operator, "$")
}

func splitDirFile(path string) (dir, name string) {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", trimMarkdownExt(path)
	}
	return path[:idx], trimMarkdownExt(path[idx+1:])
}

func trimMarkdownExt(name string) string {
	return strings.TrimSuffix(name, ".md")
}

// caseVariants returns a short list of alternate casings worth a
// retry: lowercase, uppercase, and title case.
func caseVariants(name string) []string {
	if name == "" {
		return nil
	}
	lower := strings.ToLower(name)
	upper := strings.ToUpper(name)
	title := strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
	seen := map[string]bool{}
	var out []string
	for _, v := range []string{lower, upper, title} {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
