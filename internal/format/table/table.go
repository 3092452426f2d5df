// Package table lines up option labels in columns.
package table

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Format joins each row's cells with a single space, padding every column to
// its widest cell. Trailing padding is dropped so short rows stay short.
func Format(rows [][]string, alignments []Alignment) []string {
	if len(rows) == 0 {
		return nil
	}
	widths := columnWidths(rows)
	out := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for c, cell := range row {
			if c > 0 {
				b.WriteByte(' ')
			}
			pad := strings.Repeat(" ", max(widths[c]-ansi.StringWidth(cell), 0))
			if c < len(alignments) && alignments[c] == AlignRight {
				b.WriteString(pad)
				b.WriteString(cell)
				continue
			}
			b.WriteString(cell)
			b.WriteString(pad)
		}
		out[i] = strings.TrimRight(b.String(), " ")
	}
	return out
}

func columnWidths(rows [][]string) []int {
	var widths []int
	for _, row := range rows {
		for c, cell := range row {
			if c >= len(widths) {
				widths = append(widths, 0)
			}
			widths[c] = max(widths[c], ansi.StringWidth(cell))
		}
	}
	return widths
}
