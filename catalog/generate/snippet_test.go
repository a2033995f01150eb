// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package generate

import "testing"

func Test_ResolveSnippet_Precedence(t *testing.T) {
	key := SnippetKey{Category: "Comparison", Operator: "$eq"}
	cfg := SnippetConfig{
		Overrides:    map[SnippetKey]string{key: "override snippet"},
		PerOperator:  map[SnippetKey]string{key: "per-operator snippet"},
		CategoryTmpl: map[string]string{"Comparison": "{ field: { {{VALUE}}: <value> } }"},
	}
	if got := ResolveSnippet(cfg, "Comparison", "$eq", "$eq"); got != "override snippet" {
		t.Errorf("override must win, got %q", got)
	}

	cfg.Overrides = nil
	if got := ResolveSnippet(cfg, "Comparison", "$eq", "$eq"); got != "per-operator snippet" {
		t.Errorf("per-operator snippet must win over default template, got %q", got)
	}

	cfg.PerOperator = nil
	if got := ResolveSnippet(cfg, "Comparison", "$eq", "$eq"); got != "{ field: { $eq: <value> } }" {
		t.Errorf("default template with substitution expected, got %q", got)
	}

	cfg.CategoryTmpl = nil
	if got := ResolveSnippet(cfg, "Comparison", "$eq", "$eq"); got != "" {
		t.Errorf("expected no snippet when nothing is configured, got %q", got)
	}
}
