// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package scrape

import "strings"

// Page is one fully-resolved operator, ready for dump emission.
type Page struct {
	Category    string
	Operator    string
	Description string
	Syntax      string
	Link        string
}

// NotListedEntry records an operator that appeared in the
// compatibility table but wasn't emitted as a full Page, along with
// why - unresolved directory, failed fetch, or failed verification of
// its page content.
type NotListedEntry struct {
	Operator string
	Category string
	Reason   string
}

// EmitDump renders the canonical Markdown dump
// Phase 3: one "## Category" section per distinct category (in first-
// seen order), each containing one "### Operator" block per page (in
// first-seen order within the category), followed by a trailing
// "## Not Listed" section.
func EmitDump(pages []Page, notListed []NotListedEntry) string {
	var b strings.Builder

	order, byCategory := groupByCategory(pages)
	for _, category := range order {
		b.WriteString("## " + category + "\n\n")
		for _, p := range byCategory[category] {
			b.WriteString("### " + p.Operator + "\n\n")
			b.WriteString("- **Description:** " + p.Description + "\n")
			if p.Syntax != "" {
				b.WriteString("- **Syntax:** " + p.Syntax + "\n")
			}
			if p.Link != "" {
				b.WriteString("- **Doc Link:** " + p.Link + "\n")
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Not Listed\n\n")
	for _, n := range notListed {
		b.WriteString("- **" + n.Operator + "** (" + n.Category + ") — " + n.Reason + "\n")
	}

	return b.String()
}

func groupByCategory(pages []Page) ([]string, map[string][]Page) {
	var order []string
	byCategory := make(map[string][]Page)
	for _, p := range pages {
		if _, ok := byCategory[p.Category]; !ok {
			order = append(order, p.Category)
		}
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}
	return order, byCategory
}
