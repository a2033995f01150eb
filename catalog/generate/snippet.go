// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package generate

import "strings"

const valuePlaceholder = "{{VALUE}}"

// SnippetKey identifies a (category, operator) pair for snippet
// lookup purposes.
type SnippetKey struct {
	Category string
	Operator string
}

// SnippetConfig holds the three snippet sources consulted, in
// descending precedence, by ResolveSnippet: an explicit per-operator override, a
// scraped/authored per-operator snippet, and a per-category DEFAULT
// template.
type SnippetConfig struct {
	Overrides    map[SnippetKey]string
	PerOperator  map[SnippetKey]string
	CategoryTmpl map[string]string
}

// ResolveSnippet returns the snippet for (category, operator, value),
// deterministically: Overrides > PerOperator > CategoryTmpl (with
// "{{VALUE}}" substituted by value) > "" (no snippet).
func ResolveSnippet(cfg SnippetConfig, category, operator, value string) string {
	key := SnippetKey{Category: category, Operator: operator}

	if s, ok := cfg.Overrides[key]; ok && s != "" {
		return s
	}
	if s, ok := cfg.PerOperator[key]; ok && s != "" {
		return s
	}
	if tmpl, ok := cfg.CategoryTmpl[category]; ok && tmpl != "" {
		return strings.ReplaceAll(tmpl, valuePlaceholder, value)
	}
	return ""
}
