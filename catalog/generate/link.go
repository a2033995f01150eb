// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package generate

import (
	"strings"
)

// LinkResolver computes the canonical doc link for an operator,
// comparing the computed form against the scraped URL (doc-link
// emission).
type LinkResolver struct {
	BaseURL  string
	MetaDirs map[string]string
}

// ResolvedLink is what LinkResolver.Resolve returns: the link text to
// emit, and an optional comment for literal (non-computed) links.
type ResolvedLink struct {
	Link    string
	Comment string
}

// Resolve compares the directory-derived computed link against
// scrapedURL. crossCategory is true when the directory resolver had to
// fall back to another category's directory for this operator (a
// cross-category inference); it always emits the scraped URL
// literally, with an explanatory comment.
func (r *LinkResolver) Resolve(meta, operator, scrapedURL string, crossCategory bool) ResolvedLink {
	dir, ok := r.MetaDirs[meta]
	if !ok {
		return ResolvedLink{Link: scrapedURL}
	}

	computed := strings.TrimRight(r.BaseURL, "/") + "/" + dir + "/" + strings.ToLower(strings.TrimLeft(operator, "$"))

	if crossCategory {
		return ResolvedLink{Link: scrapedURL, Comment: "doc link inferred from another category"}
	}
	if scrapedURL == computed {
		return ResolvedLink{Link: computed}
	}
	return ResolvedLink{Link: scrapedURL}
}
