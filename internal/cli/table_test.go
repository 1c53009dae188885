package cli

import (
	"strings"
	"testing"

	"github.com/jmylchreest/tessera/internal/colour"
)

func TestTableRender(t *testing.T) {
	table := NewTable([]string{"Tile", "Count", "Share"})
	table.SetAlign(1, AlignRight)
	table.AddRow("T", "4", "10.0%")
	table.AddRow("O", "36", "90.0%")

	want := "Tile  Count  Share\n" +
		"----  -----  -----\n" +
		"T         4  10.0%\n" +
		"O        36  90.0%\n"
	if got := table.Render(); got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestTableRowFitting(t *testing.T) {
	table := NewTable([]string{"A", "B"})
	table.AddRow("1")
	table.AddRow("1", "2", "3")

	if len(table.rows[0]) != 2 || table.rows[0][1] != "" {
		t.Errorf("short row = %q, want padded to 2 cells", table.rows[0])
	}
	if len(table.rows[1]) != 2 {
		t.Errorf("long row = %q, want truncated to 2 cells", table.rows[1])
	}
}

func TestTableEmpty(t *testing.T) {
	if got := NewTable(nil).Render(); got != "" {
		t.Errorf("Render() = %q, want empty", got)
	}

	lines := strings.Split(strings.TrimSuffix(NewTable([]string{"Only"}).Render(), "\n"), "\n")
	if len(lines) != 2 || lines[1] != "----" {
		t.Errorf("header-only table = %q", lines)
	}
}

func TestVisibleWidth(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{name: "plain", in: "tile", want: 4},
		{name: "unicode", in: "★ ☆", want: 3},
		{name: "swatch", in: colour.Preview(colour.White, 3), want: 3},
		{name: "empty", in: "", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := visibleWidth(tt.in); got != tt.want {
				t.Errorf("visibleWidth(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		in    string
		width int
		align Align
		want  string
	}{
		{"ab", 4, AlignLeft, "ab  "},
		{"ab", 4, AlignRight, "  ab"},
		{"abcdef", 3, AlignLeft, "abcdef"},
		{"", 2, AlignRight, "  "},
	}
	for _, tt := range tests {
		if got := pad(tt.in, tt.width, tt.align); got != tt.want {
			t.Errorf("pad(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
