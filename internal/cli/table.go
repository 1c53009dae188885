package cli

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ansiEscape matches SGR sequences so swatch cells measure by what they show.
var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Align selects how a column's cells are padded.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Table formats rows into space separated columns under a dashed header.
type Table struct {
	headers []string
	rows    [][]string
	align   []Align
	padding int
}

// NewTable creates a new table with the given headers, all left aligned.
func NewTable(headers []string) *Table {
	return &Table{
		headers: headers,
		align:   make([]Align, len(headers)),
		padding: 2,
	}
}

// SetAlign sets the alignment of column col. Out of range columns are ignored.
func (t *Table) SetAlign(col int, a Align) {
	if col >= 0 && col < len(t.align) {
		t.align[col] = a
	}
}

// AddRow adds a row, padding or truncating it to the header count.
func (t *Table) AddRow(row ...string) {
	fitted := make([]string, len(t.headers))
	copy(fitted, row)
	t.rows = append(t.rows, fitted)
}

// Render formats and returns the table.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visibleWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], visibleWidth(cell))
		}
	}

	gap := strings.Repeat(" ", t.padding)
	var b strings.Builder
	writeLine := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = pad(cell, widths[i], t.align[i])
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, gap), " "))
		b.WriteByte('\n')
	}

	writeLine(t.headers)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeLine(sep)
	for _, row := range t.rows {
		writeLine(row)
	}
	return b.String()
}

func visibleWidth(s string) int {
	return utf8.RuneCountInString(ansiEscape.ReplaceAllString(s, ""))
}

func pad(s string, width int, a Align) string {
	n := width - visibleWidth(s)
	if n <= 0 {
		return s
	}
	if a == AlignRight {
		return strings.Repeat(" ", n) + s
	}
	return s + strings.Repeat(" ", n)
}
