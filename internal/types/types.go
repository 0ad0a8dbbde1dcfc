// Package types defines cross-package values used by the ctxsnap CLI.
package types

import (
	"fmt"
	"strings"
)

const (
	CommandGenerate = "generate"
	CommandInit     = "init"
)

// GenerationSummary captures what one generate run produced.
type GenerationSummary struct {
	OutputPath     string
	TextFiles      int
	BinaryFiles    int
	OversizedFiles int
	TotalSize      string
	TotalTokens    int
	Model          string
}

// TotalFiles returns the number of file blocks written.
func (summary GenerationSummary) TotalFiles() int {
	return summary.TextFiles + summary.BinaryFiles + summary.OversizedFiles
}

// String renders the summary as a single human-readable line.
func (summary GenerationSummary) String() string {
	label := "files"
	if summary.TotalFiles() == 1 {
		label = "file"
	}
	var details []string
	if summary.BinaryFiles > 0 {
		details = append(details, fmt.Sprintf("%d binary", summary.BinaryFiles))
	}
	if summary.OversizedFiles > 0 {
		details = append(details, fmt.Sprintf("%d over size limit", summary.OversizedFiles))
	}
	detailSuffix := ""
	if len(details) > 0 {
		detailSuffix = " (" + strings.Join(details, ", ") + ")"
	}
	tokenSuffix := ""
	if summary.TotalTokens > 0 {
		tokenSuffix = fmt.Sprintf(", %d tokens", summary.TotalTokens)
		if summary.Model != "" {
			tokenSuffix += fmt.Sprintf(" (model: %s)", summary.Model)
		}
	}
	return fmt.Sprintf("Summary: %d %s%s, %s%s", summary.TotalFiles(), label, detailSuffix, summary.TotalSize, tokenSuffix)
}
