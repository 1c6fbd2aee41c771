// Command validate is the CI gate for authored content. It validates every
// scenario and overlay document under a directory and exits non-zero if any
// document is invalid, printing the full aggregated error report so authors
// can fix everything in one pass.
package main

import (
	"fmt"
	"os"

	"github.com/jwebster45206/career-engine/pkg/content"
)

func main() {
	dir := "./data/scenarios"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	fmt.Printf("Validating content in %s...\n", dir)

	v := content.NewValidator()
	report, err := v.ValidateDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	templates, overlays := 0, 0
	for _, doc := range report.Documents {
		label := fmt.Sprintf("%s (document %d)", doc.File, doc.Index)
		if doc.ID != "" {
			label = fmt.Sprintf("%s (%s %s)", doc.File, doc.Kind, doc.ID)
		}
		if doc.Valid() {
			fmt.Printf("  ok    %s\n", label)
			switch doc.Kind {
			case content.KindTemplate:
				templates++
			case content.KindOverlay:
				overlays++
			}
			continue
		}
		fmt.Printf("  FAIL  %s\n", label)
		for _, e := range doc.Errors {
			fmt.Printf("        - %s\n", e.Error())
		}
	}

	if !report.Valid() {
		fmt.Fprintf(os.Stderr, "\n%d document(s) checked, %d error(s) found\n",
			len(report.Documents), report.ErrorCount())
		os.Exit(1)
	}

	fmt.Printf("\nAll content is valid: %d template(s), %d overlay(s)\n", templates, overlays)
}
