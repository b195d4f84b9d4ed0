package tablestore

import "strings"

// Sentinel tokens written by spreadsheet tooling for missing values. They are
// normalized to empty strings on every write so they never round-trip.
var sentinels = map[string]struct{}{
	"nan":  {},
	"NaT":  {},
	"None": {},
	"<NA>": {},
}

// CleanCell trims a cell and maps sentinel empty-ish tokens to "".
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if _, ok := sentinels[s]; ok {
		return ""
	}
	return s
}

// PadRow extends row with empty cells up to width. Rows wider than the
// header are left as-is.
func PadRow(row []string, width int) []string {
	for len(row) < width {
		row = append(row, "")
	}
	return row
}

// CleanRows applies CleanCell to every cell and pads each row to width.
func CleanRows(rows [][]string, width int) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cleaned := make([]string, 0, width)
		for _, cell := range row {
			cleaned = append(cleaned, CleanCell(cell))
		}
		out[i] = PadRow(cleaned, width)
	}
	return out
}
