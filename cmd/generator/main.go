// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Command generator turns a scraped operator dump (and an optional
// override dump) into a generated Go source file registering the
// operator catalog. Exit code 0 on successful emission; warnings for
// unmapped override categories, missing snippet categories, and
// unmatched override targets are printed but never fail the run.
package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/go-core-stack/doccopy/catalog"
	"github.com/go-core-stack/doccopy/catalog/generate"
	"github.com/go-core-stack/doccopy/catalog/merge"
	"github.com/go-core-stack/doccopy/catalog/scrape"
)

func main() {
	var (
		scrapedPath  = flag.String("scraped", "", "scraped Markdown dump path (required)")
		overridePath = flag.String("override", "", "override Markdown dump path, optional")
		categoryMeta = flag.String("categorymeta", "", "category=metaTag mapping file, one per line")
		categoryFile = flag.String("categoryfile", "", "category=outputFile grouping file, one per line")
		snippets     = flag.String("snippets", "", "category=DEFAULT-template mapping file, one per line")
		outPath      = flag.String("out", "catalog_generated.go", "path to write the generated Go source")
		packageName  = flag.String("package", "generated", "package name of the generated source")
	)
	flag.Parse()

	if *scrapedPath == "" {
		log.Println("generator: -scraped is required")
		os.Exit(1)
	}

	scrapedDump, err := os.ReadFile(*scrapedPath)
	if err != nil {
		log.Printf("generator: reading %q: %v", *scrapedPath, err)
		os.Exit(1)
	}
	scrapedPages, _ := scrape.ParseDump(string(scrapedDump))

	pages := scrapedPages
	if *overridePath != "" {
		overrideDump, err := os.ReadFile(*overridePath)
		if err != nil {
			log.Printf("generator: reading %q: %v", *overridePath, err)
			os.Exit(1)
		}
		overridePages := merge.Parse(string(overrideDump))
		pages = merge.Apply(scrapedPages, overridePages)
		for _, w := range generate.WarnUnmatchedOverrides(scrapedPages, overridePages) {
			log.Printf("generator: warning: %s", w)
		}
	}

	cfg := generate.Config{
		CategoryMeta: mustLoadMetaMapping(*categoryMeta),
		CategoryFile: mustLoadStringMapping(*categoryFile),
		Snippets: generate.SnippetConfig{
			CategoryTmpl: mustLoadStringMapping(*snippets),
		},
	}

	result := generate.Generate(pages, cfg)
	for _, w := range result.Warnings {
		log.Printf("generator: warning: %s", w)
	}

	src := generate.EmitGoSource(*packageName, result)
	if err := os.WriteFile(*outPath, []byte(src), 0o644); err != nil {
		log.Printf("generator: writing %q: %v", *outPath, err)
		os.Exit(1)
	}

	log.Printf("generator: wrote %d entries to %s", result.Registry.Len(), *outPath)
}

func mustLoadStringMapping(path string) map[string]string {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		log.Printf("generator: reading %q: %v", path, err)
		os.Exit(1)
	}
	defer f.Close()

	out := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

func mustLoadMetaMapping(path string) map[string]catalog.MetaTag {
	raw := mustLoadStringMapping(path)
	if raw == nil {
		return nil
	}
	out := make(map[string]catalog.MetaTag, len(raw))
	for k, v := range raw {
		out[k] = catalog.MetaTag(v)
	}
	return out
}
