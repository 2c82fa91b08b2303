// Package formatter renders run results as aligned plain-text tables.
package formatter

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"setsplitter/internal/writer"
)

var summaryHeader = []string{"SET", "CARDS", "BYTES", "FILE"}

// numeric columns are right aligned.
var numericColumn = []bool{false, true, true, false}

// FormatSummary renders one row per written set plus a total row, e.g.
//
//	| SET | CARDS | BYTES | FILE              |
//	| --- | ----- | ----- | ----------------- |
//	| NEO |   512 | 90210 | Scryfall/NEO_.txt |
func FormatSummary(summary *writer.Summary) string {
	rows := [][]string{summaryHeader}

	for _, set := range summary.Sets {
		rows = append(rows, []string{
			set.Code,
			strconv.Itoa(set.Cards),
			strconv.Itoa(set.Bytes),
			set.Path,
		})
	}

	rows = append(rows, []string{
		"TOTAL",
		strconv.Itoa(summary.TotalCards()),
		strconv.Itoa(summary.TotalBytes()),
		strconv.Itoa(len(summary.Sets)) + " files",
	})

	return strings.Join(FormatTable(rows, numericColumn), "\n") + "\n"
}

// FormatTable pads rows into a pipe table. The first row is the header and
// gets a dashed separator under it. Widths are display widths, so wide
// runes line up in a terminal.
func FormatTable(rows [][]string, rightAlign []bool) []string {
	if len(rows) == 0 {
		return nil
	}

	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	colWidths := make([]int, colCount)

	for _, row := range rows {
		for i, cell := range row {
			if width := runewidth.StringWidth(cell); width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	// Markdown needs at least three dashes per separator cell.
	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	separator := make([]string, colCount)
	for i, width := range colWidths {
		separator[i] = strings.Repeat("-", width)
	}

	lines := make([]string, 0, len(rows)+1)

	for i, row := range rows {
		lines = append(lines, renderRow(row, colWidths, rightAlign))

		if i == 0 {
			lines = append(lines, renderRow(separator, colWidths, nil))
		}
	}

	return lines
}

func renderRow(row []string, colWidths []int, rightAlign []bool) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, width := range colWidths {
		content := ""
		if j < len(row) {
			content = row[j]
		}

		sb.WriteString(" ")

		if j < len(rightAlign) && rightAlign[j] {
			sb.WriteString(runewidth.FillLeft(content, width))
		} else {
			sb.WriteString(runewidth.FillRight(content, width))
		}

		sb.WriteString(" |")
	}

	return sb.String()
}
