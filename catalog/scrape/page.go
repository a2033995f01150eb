// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package scrape

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-core-stack/doccopy/errors"
)

var syntaxHeadingPattern = regexp.MustCompile(`(?m)^##\s+Syntax\s*$`)

type frontmatter struct {
	Description string `yaml:"description"`
}

// PageContent is what phase 2 extracts from a single operator's page:
// its description (from YAML frontmatter) and its syntax block (the
// first fenced code block after a "## Syntax" heading).
type PageContent struct {
	Description string
	Syntax      string
}

// parsePage extracts frontmatter and syntax from a single operator
// page's raw Markdown body.
func parsePage(raw string) (PageContent, error) {
	body := strings.ReplaceAll(raw, "\r\n", "\n")

	desc, err := extractDescription(body)
	if err != nil {
		return PageContent{}, err
	}

	syntax := extractSyntax(body)

	return PageContent{Description: desc, Syntax: syntax}, nil
}

// extractDescription parses the leading "---"-delimited YAML
// frontmatter block and returns its description field, with
// surrounding quotes stripped.
func extractDescription(body string) (string, error) {
	trimmed := strings.TrimLeft(body, "\n")
	if !strings.HasPrefix(trimmed, "---") {
		return "", errors.Wrap(errors.NotFound, "page has no frontmatter block")
	}
	rest := trimmed[3:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", errors.Wrap(errors.InvalidArgument, "frontmatter block never closes")
	}
	yamlBlock := rest[:end]

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(yamlBlock), &fm); err != nil {
		return "", errors.Wrapf(errors.InvalidArgument, "parsing frontmatter: %v", err)
	}
	return strings.Trim(strings.TrimSpace(fm.Description), `"'`), nil
}

// extractSyntax finds the first fenced code block following a
// "## Syntax" heading and returns its contents (without the fences).
func extractSyntax(body string) string {
	loc := syntaxHeadingPattern.FindStringIndex(body)
	if loc == nil {
		return ""
	}
	rest := body[loc[1]:]

	fenceStart := strings.Index(rest, "```")
	if fenceStart < 0 {
		return ""
	}
	afterFence := rest[fenceStart+3:]
	// skip an optional language tag on the opening fence line
	if nl := strings.IndexByte(afterFence, '\n'); nl >= 0 {
		afterFence = afterFence[nl+1:]
	}
	fenceEnd := strings.Index(afterFence, "```")
	if fenceEnd < 0 {
		return ""
	}
	return strings.TrimRight(afterFence[:fenceEnd], "\n")
}
