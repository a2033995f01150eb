// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package catalog holds the shared registry types for the operator
// catalog pipeline: the scraper and generator populate an OperatorEntry
// registry at process start, and the completion filter reads it
// read-only from then on.
package catalog

import "strings"

// MetaTag is a hierarchical identifier of the form "root" or
// "root:sub". A filter prefix p matches a tag m iff m == p or m begins
// with p + ":".
type MetaTag string

// Matches reports whether prefix p matches this tag under the
// hierarchical prefix rule.
func (m MetaTag) Matches(prefix MetaTag) bool {
	if m == prefix {
		return true
	}
	return strings.HasPrefix(string(m), string(prefix)+":")
}

// OperatorEntry describes a single catalog entry: a MongoDB query or
// aggregation operator, its metadata tag, and the optional snippet,
// doc link, and BSON type applicability computed by the generator.
//
// Invariants: (Value, Meta) is unique across the registry; Description
// is non-empty; Snippet, if present, is a non-empty template string;
// Link, if present, begins with "https://".
type OperatorEntry struct {
	Value               string
	Meta                MetaTag
	Description         string
	Snippet             string
	Link                string
	ApplicableBsonTypes []string
	ReturnType          string
}

// HasSnippet reports whether the entry carries a resolved snippet.
func (e OperatorEntry) HasSnippet() bool {
	return e.Snippet != ""
}

// IsUniversal reports whether the entry applies regardless of the BSON
// type of the value it's invoked against - no ApplicableBsonTypes
// recorded means "applies everywhere".
func (e OperatorEntry) IsUniversal() bool {
	return len(e.ApplicableBsonTypes) == 0
}

// Registry is the process-wide, append-only vector of catalog entries.
// It is populated once at generation time (or by a generated init file
// in a real build) and is never mutated after that; the completion
// filter only ever reads from it.
type Registry struct {
	entries []OperatorEntry
}

// NewRegistry constructs an empty registry. Generator output typically
// calls Register once per discovered operator in scrape/merge order.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends entry to the registry, preserving call order - the
// completion filter's "order of registration is preserved" guarantee
// depends on entries never being reordered or removed.
func (r *Registry) Register(entry OperatorEntry) {
	r.entries = append(r.entries, entry)
}

// Entries returns the registry's entries. The returned slice must be
// treated as read-only by callers; it aliases the registry's backing
// array.
func (r *Registry) Entries() []OperatorEntry {
	return r.entries
}

// Len reports the number of registered entries.
func (r *Registry) Len() int {
	return len(r.entries)
}
