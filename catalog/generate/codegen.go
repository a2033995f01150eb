// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package generate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-core-stack/doccopy/catalog"
)

// EmitGoSource renders a Go source file that registers every entry in
// result.Registry against a package-level catalog.Registry at package
// init time - the "single in-memory vector registered at module
// initialization" persistent-state layout.
func EmitGoSource(packageName string, result Result) string {
	var b strings.Builder

	b.WriteString("// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved\n")
	b.WriteString("// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>\n\n")
	b.WriteString("// Code generated by cmd/generator. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", packageName)
	b.WriteString("import \"github.com/go-core-stack/doccopy/catalog\"\n\n")
	b.WriteString("// Catalog is the process-wide operator registry, populated once below.\n")
	b.WriteString("var Catalog = catalog.NewRegistry()\n\n")
	b.WriteString("func init() {\n")

	entries := append([]catalog.OperatorEntry(nil), result.Registry.Entries()...)
	for _, e := range entries {
		b.WriteString("\tCatalog.Register(catalog.OperatorEntry{\n")
		fmt.Fprintf(&b, "\t\tValue:       %s,\n", strconv.Quote(e.Value))
		fmt.Fprintf(&b, "\t\tMeta:        %s,\n", strconv.Quote(string(e.Meta)))
		fmt.Fprintf(&b, "\t\tDescription: %s,\n", strconv.Quote(e.Description))
		if e.Snippet != "" {
			fmt.Fprintf(&b, "\t\tSnippet:     %s,\n", strconv.Quote(e.Snippet))
		}
		if e.Link != "" {
			fmt.Fprintf(&b, "\t\tLink:        %s,\n", strconv.Quote(e.Link))
		}
		if len(e.ApplicableBsonTypes) > 0 {
			types := append([]string(nil), e.ApplicableBsonTypes...)
			sort.Strings(types)
			quoted := make([]string, len(types))
			for i, t := range types {
				quoted[i] = strconv.Quote(t)
			}
			fmt.Fprintf(&b, "\t\tApplicableBsonTypes: []string{%s},\n", strings.Join(quoted, ", "))
		}
		b.WriteString("\t})\n")
	}

	b.WriteString("}\n")
	return b.String()
}
