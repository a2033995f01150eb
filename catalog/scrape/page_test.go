// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package scrape

import "testing"

const samplePage = "---\r\ntitle: $eq\r\ndescription: \"Matches values equal to a specified value.\"\r\n---\r\n\r\n## Syntax\r\n\r\n```json\r\n{ <field>: { $eq: <value> } }\r\n```\r\n\r\n## Examples\r\n"

func Test_ParsePage(t *testing.T) {
	content, err := parsePage(samplePage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.Description != "Matches values equal to a specified value." {
		t.Errorf("unexpected description: %q", content.Description)
	}
	if content.Syntax != "{ <field>: { $eq: <value> } }" {
		t.Errorf("unexpected syntax: %q", content.Syntax)
	}
}

func Test_ParsePage_NoFrontmatter(t *testing.T) {
	_, err := parsePage("# No frontmatter here\n")
	if err == nil {
		t.Fatalf("expected an error for a page with no frontmatter block")
	}
}

func Test_ParsePage_NoSyntaxBlock(t *testing.T) {
	content, err := parsePage("---\ndescription: \"x\"\n---\n\nNo syntax section.\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.Syntax != "" {
		t.Errorf("expected empty syntax, got %q", content.Syntax)
	}
}
