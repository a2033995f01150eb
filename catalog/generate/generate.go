// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package generate implements the operator catalog's Generator
// category→file grouping, snippet resolution, doc-link
// computation, and registry emission from a merged set of
// scraped pages. The emitted Go source only registers entries; it
// contains no filter function, and filtering is done by the
// catalog/filter package over the registry.
package generate

import (
	"fmt"

	"github.com/go-core-stack/doccopy/catalog"
	"github.com/go-core-stack/doccopy/catalog/scrape"
)

// Config parameterizes a generation run.
type Config struct {
	// CategoryMeta maps a scraped category name to its registry meta
	// tag. Categories missing from this map are skipped with a warning
	// (an UnknownCategory kind).
	CategoryMeta map[string]catalog.MetaTag
	// CategoryFile maps a category to the generated output file it
	// belongs to, for the category→file grouping pass. A category
	// missing from this map groups under its own name.
	CategoryFile map[string]string

	Snippets SnippetConfig
	Links    *LinkResolver

	// CrossCategory marks (category, operator) pairs whose page was
	// resolved under another category's directory, per LinkResolver's
	// crossCategory parameter.
	CrossCategory map[SnippetKey]bool
	// BsonTypes gives the applicable BSON types for the operators that
	// have one; omitted entries are treated as universal.
	BsonTypes map[SnippetKey][]string
}

// Result is a completed generation run's output.
type Result struct {
	Registry *catalog.Registry
	Files    map[string][]scrape.Page
	Warnings []string
}

// Generate builds a Registry and a category→file grouping from pages,
// applying snippet resolution and doc-link computation to each entry,
// and collecting non-fatal warnings for unmapped categories and
// missing snippet templates.
func Generate(pages []scrape.Page, cfg Config) Result {
	registry := catalog.NewRegistry()
	files := make(map[string][]scrape.Page)
	var warnings []string
	warnedMissingSnippet := make(map[string]bool)

	for _, p := range pages {
		meta, ok := cfg.CategoryMeta[p.Category]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unmapped category %q for operator %q, skipped", p.Category, p.Operator))
			continue
		}

		key := SnippetKey{Category: p.Category, Operator: p.Operator}
		snippet := ResolveSnippet(cfg.Snippets, p.Category, p.Operator, p.Operator)
		if snippet == "" {
			if _, hasTmpl := cfg.Snippets.CategoryTmpl[p.Category]; !hasTmpl && !warnedMissingSnippet[p.Category] {
				warnedMissingSnippet[p.Category] = true
				warnings = append(warnings, fmt.Sprintf("no snippet template for category %q", p.Category))
			}
		}

		link := p.Link
		if cfg.Links != nil {
			resolved := cfg.Links.Resolve(string(meta), p.Operator, p.Link, cfg.CrossCategory[key])
			link = resolved.Link
		}

		registry.Register(catalog.OperatorEntry{
			Value:               p.Operator,
			Meta:                meta,
			Description:         p.Description,
			Snippet:             snippet,
			Link:                link,
			ApplicableBsonTypes: cfg.BsonTypes[key],
		})

		file := p.Category
		if mapped, ok := cfg.CategoryFile[p.Category]; ok {
			file = mapped
		}
		files[file] = append(files[file], p)
	}

	return Result{Registry: registry, Files: files, Warnings: warnings}
}

// WarnUnmatchedOverrides reports, as warning strings, every override
// entry whose (category, operator) has no corresponding page in
// scraped.
func WarnUnmatchedOverrides(scraped []scrape.Page, overrides []scrape.Page) []string {
	present := make(map[SnippetKey]bool, len(scraped))
	for _, p := range scraped {
		present[SnippetKey{Category: p.Category, Operator: p.Operator}] = true
	}

	var warnings []string
	for _, o := range overrides {
		key := SnippetKey{Category: o.Category, Operator: o.Operator}
		if !present[key] {
			warnings = append(warnings, fmt.Sprintf("override target %q (category %q) has no matching scraped entry", o.Operator, o.Category))
		}
	}
	return warnings
}
