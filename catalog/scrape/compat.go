// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package scrape

import (
	"regexp"
	"strconv"
	"strings"
)

// CompatRow is one parsed data row of the compatibility table: the
// category it was found under, the operator's bare name, and whether
// it's considered listed for this platform.
type CompatRow struct {
	Category string
	Operator string
	Listed   bool
}

var (
	linkPattern       = regexp.MustCompile(`^\[([^\]]*)\]\(([^)]*)\)$`)
	bracketedOpRegex  = regexp.MustCompile(`^\$\[\w+\]$`)
	bracketedAnywhere = regexp.MustCompile(`\$\[\w+\]`)
	numericCell       = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	listedMarker      = regexp.MustCompile(`(?i)yes|✅|✓`)
	deprecatedMarker  = regexp.MustCompile(`(?i)deprecated`)
)

// parseCompatibilityTable walks a Markdown document line by line,
// tracking the current "## Heading" section, and parses every pipe
// table it finds into CompatRows.
func parseCompatibilityTable(markdown string) ([]CompatRow, error) {
	lines := strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n")

	var rows []CompatRow
	currentSection := ""
	inTable := false
	sawSeparator := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "#") {
			currentSection = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			inTable = false
			sawSeparator = false
			continue
		}

		if !strings.HasPrefix(trimmed, "|") {
			inTable = false
			sawSeparator = false
			continue
		}

		inTable = true
		cells := splitTableRow(trimmed)

		if !sawSeparator {
			if isSeparatorRow(cells) {
				sawSeparator = true
			}
			continue
		}

		row, ok := parseDataRow(currentSection, cells)
		if ok {
			rows = append(rows, row)
		}
	}

	return rows, nil
}

func splitTableRow(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func isSeparatorRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		stripped := strings.Trim(c, " :")
		if stripped == "" {
			continue
		}
		for _, r := range stripped {
			if r != '-' {
				return false
			}
		}
	}
	return true
}

func parseDataRow(section string, cells []string) (CompatRow, bool) {
	if len(cells) < 2 {
		return CompatRow{}, false
	}

	rawCategory := cells[0]
	rawOperator := cells[1]

	if strings.Contains(rawCategory, "%") {
		return CompatRow{}, false
	}

	operatorCell := numericCell.FindString(strings.TrimSpace(rawOperator))
	if operatorCell != "" {
		// A purely numeric operator column marks a summary/total row.
		if _, err := strconv.ParseFloat(operatorCell, 64); err == nil {
			return CompatRow{}, false
		}
	}

	category := rawCategory
	if isVariableExpressionSection(section) && !strings.HasPrefix(category, "$$") {
		category = "$$" + category
	}

	operator := extractOperatorName(rawOperator)
	if operator == "" {
		return CompatRow{}, false
	}

	listed := rowIsListed(cells[2:])

	return CompatRow{Category: category, Operator: operator, Listed: listed}, true
}

// extractOperatorName derives the bare operator token from a raw
// table cell: strips surrounding backticks, resolves a Markdown link
// to its display text, and recovers the "$[identifier]" form that a
// naive link-stripping pass would otherwise mangle into "identifier]".
func extractOperatorName(raw string) string {
	cell := strings.TrimSpace(raw)
	cell = strings.Trim(cell, "`")

	if bracketedOpRegex.MatchString(cell) {
		return cell
	}
	// A "$[identifier]"-style token embedded in a cell confuses naive
	// Markdown link parsing (the brackets look like link syntax);
	// recover it before trying to unwrap a real link.
	if m := bracketedAnywhere.FindString(cell); m != "" {
		return m
	}

	if m := linkPattern.FindStringSubmatch(cell); m != nil {
		text := strings.Trim(strings.TrimSpace(m[1]), "`")
		return text
	}

	return cell
}

func rowIsListed(flags []string) bool {
	joined := strings.Join(flags, " ")
	if deprecatedMarker.MatchString(joined) {
		return false
	}
	return listedMarker.MatchString(joined)
}

func isVariableExpressionSection(section string) bool {
	return strings.Contains(strings.ToLower(section), "variable")
}
