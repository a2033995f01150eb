// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package scrape

import "strings"

// ParseDump is EmitDump's inverse: it recovers the Pages and
// NotListedEntries from a canonical dump, used both by the Override
// Merger (which parses a second dump-shaped file with the same
// grammar) and by round-trip tests.
func ParseDump(dump string) ([]Page, []NotListedEntry) {
	lines := strings.Split(strings.ReplaceAll(dump, "\r\n", "\n"), "\n")

	var pages []Page
	var notListed []NotListedEntry

	currentCategory := ""
	inNotListed := false
	var current *Page

	flush := func() {
		if current != nil {
			pages = append(pages, *current)
			current = nil
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "## Not Listed":
			flush()
			inNotListed = true
		case strings.HasPrefix(trimmed, "## "):
			flush()
			inNotListed = false
			currentCategory = strings.TrimPrefix(trimmed, "## ")
		case strings.HasPrefix(trimmed, "### "):
			flush()
			current = &Page{Category: currentCategory, Operator: strings.TrimPrefix(trimmed, "### ")}
		case strings.HasPrefix(trimmed, "- **Description:**"):
			if current != nil {
				current.Description = strings.TrimSpace(strings.TrimPrefix(trimmed, "- **Description:**"))
			}
		case strings.HasPrefix(trimmed, "- **Syntax:**"):
			if current != nil {
				current.Syntax = strings.TrimSpace(strings.TrimPrefix(trimmed, "- **Syntax:**"))
			}
		case strings.HasPrefix(trimmed, "- **Doc Link:**"):
			if current != nil {
				current.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, "- **Doc Link:**"))
			}
		case inNotListed && strings.HasPrefix(trimmed, "- **"):
			if n, ok := parseNotListedLine(trimmed); ok {
				notListed = append(notListed, n)
			}
		}
	}
	flush()

	return pages, notListed
}

// parseNotListedLine parses "- **$op** (Category) — reason".
func parseNotListedLine(line string) (NotListedEntry, bool) {
	rest := strings.TrimPrefix(line, "- **")
	end := strings.Index(rest, "**")
	if end < 0 {
		return NotListedEntry{}, false
	}
	operator := rest[:end]
	rest = strings.TrimSpace(rest[end+2:])

	if !strings.HasPrefix(rest, "(") {
		return NotListedEntry{}, false
	}
	closeParen := strings.Index(rest, ")")
	if closeParen < 0 {
		return NotListedEntry{}, false
	}
	category := rest[1:closeParen]
	reason := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest[closeParen+1:]), "—"))

	return NotListedEntry{Operator: operator, Category: category, Reason: reason}, true
}
