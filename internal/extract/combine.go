package extract

import (
	"fmt"
	"strings"
)

// FileBreak separates file sections in combined module text.
const FileBreak = "----- FILE BREAK -----"

// Combine assembles extracted files into one module text. Each file is
// wrapped in name markers so generated content references can point back
// to its source.
func Combine(results []Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("<%s>\n%s\n</%s>", r.File, r.Text, r.File))
	}
	return strings.Join(parts, "\n"+FileBreak+"\n")
}
