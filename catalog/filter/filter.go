// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package filter implements the operator catalog's completion filter
// a pure function over a Registry's entries, selecting by meta
// tag prefix and, optionally, BSON type applicability.
package filter

import "github.com/go-core-stack/doccopy/catalog"

// Filter selects the subset of a registry's entries matching a set of
// meta-tag prefixes and, optionally, a set of BSON types. It holds no
// state beyond the registry it reads from, so repeated calls with the
// same arguments always return the same result.
type Filter struct {
	registry *catalog.Registry
}

// New constructs a Filter reading from registry.
func New(registry *catalog.Registry) *Filter {
	return &Filter{registry: registry}
}

// Apply returns every entry whose meta tag matches one of metaPrefixes
// (equal to, or a ":"-delimited descendant of, the prefix), and - when
// bsonTypes is non-empty - that is either universal (no
// ApplicableBsonTypes recorded) or intersects bsonTypes. Registration
// order is preserved in the result.
func (f *Filter) Apply(metaPrefixes []catalog.MetaTag, bsonTypes []string) []catalog.OperatorEntry {
	var out []catalog.OperatorEntry
	for _, entry := range f.registry.Entries() {
		if !matchesAnyPrefix(entry.Meta, metaPrefixes) {
			continue
		}
		if !matchesBsonTypes(entry, bsonTypes) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func matchesAnyPrefix(meta catalog.MetaTag, prefixes []catalog.MetaTag) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if meta.Matches(p) {
			return true
		}
	}
	return false
}

func matchesBsonTypes(entry catalog.OperatorEntry, requested []string) bool {
	if len(requested) == 0 || entry.IsUniversal() {
		return true
	}
	for _, want := range requested {
		for _, have := range entry.ApplicableBsonTypes {
			if want == have {
				return true
			}
		}
	}
	return false
}
