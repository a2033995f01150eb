// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package merge implements the operator catalog's Override Merger
// a second Markdown file, in the same
// dump grammar the scraper emits, overrides scraped field values on a
// per-(category, operator, field) basis. Empty override fields never
// override a scraped value.
package merge

import "github.com/go-core-stack/doccopy/catalog/scrape"

type key struct {
	category string
	operator string
}

func keyOf(p scrape.Page) key {
	return key{category: p.Category, operator: p.Operator}
}

// Parse parses an override Markdown document using the scraper's dump
// grammar.
func Parse(markdown string) []scrape.Page {
	pages, _ := scrape.ParseDump(markdown)
	return pages
}

// Apply overrides scraped's field values with overrides' non-empty
// fields, matched by (category, operator). Entries in scraped with no
// matching override pass through unchanged; override entries with no
// matching scraped page are ignored here (the generator surfaces those
// as "override target with no matching scraped entry" warnings).
func Apply(scraped []scrape.Page, overrides []scrape.Page) []scrape.Page {
	index := indexByKey(overrides)

	result := make([]scrape.Page, len(scraped))
	for i, p := range scraped {
		if o, ok := index[keyOf(p)]; ok {
			result[i] = applyFields(p, o)
		} else {
			result[i] = p
		}
	}
	return result
}

// Compose combines two override sets into one, field-by-field, with o2
// favored over o1 - the law merge(merge(s, o1), o2) ==
// merge(s, Compose(o1, o2)) depends on this matching Apply's
// non-empty-wins semantics exactly.
func Compose(o1, o2 []scrape.Page) []scrape.Page {
	seen := make(map[key]bool, len(o1)+len(o2))
	index2 := indexByKey(o2)

	var result []scrape.Page
	for _, p := range o1 {
		seen[keyOf(p)] = true
		if o, ok := index2[keyOf(p)]; ok {
			result = append(result, applyFields(p, o))
		} else {
			result = append(result, p)
		}
	}
	for _, p := range o2 {
		if !seen[keyOf(p)] {
			result = append(result, p)
		}
	}
	return result
}

func indexByKey(pages []scrape.Page) map[key]scrape.Page {
	idx := make(map[key]scrape.Page, len(pages))
	for _, p := range pages {
		idx[keyOf(p)] = p
	}
	return idx
}

func applyFields(base, override scrape.Page) scrape.Page {
	merged := base
	if override.Description != "" {
		merged.Description = override.Description
	}
	if override.Syntax != "" {
		merged.Syntax = override.Syntax
	}
	if override.Link != "" {
		merged.Link = override.Link
	}
	return merged
}
