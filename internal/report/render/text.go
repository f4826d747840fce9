// Package render lays report blocks out as plain text or as paginated page
// images.
package render

import (
	"bufio"
	"io"
	"strings"

	"successplan/internal/report"
)

// Text writes blocks as plain text, one heading per block.
func Text(w io.Writer, blocks []report.Block) error {
	bw := bufio.NewWriter(w)
	for i, b := range blocks {
		if i > 0 {
			bw.WriteString("\n")
		}
		bw.WriteString(b.Title + "\n")
		bw.WriteString(strings.Repeat("=", len([]rune(b.Title))) + "\n")
		for _, it := range b.Items {
			bw.WriteString(it.Text + "\n")
			if it.Detail != "" {
				bw.WriteString("   " + it.Detail + "\n")
			}
		}
	}
	return bw.Flush()
}
