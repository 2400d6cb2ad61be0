package parser

import (
	"strings"
	"unicode"

	"github.com/jwoLondon/Rivulet/pkg/symbols"
)

// Grid is a rectangular block of characters, indexed [row][column].
type Grid [][]rune

// NewGrid splits source into lines, drops blank leading and trailing lines and
// pads every line with spaces to the width of the longest one.
func NewGrid(source string) Grid {
	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
	for len(lines) > 0 && isBlank(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && isBlank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	rows := make([][]rune, len(lines))
	for i, line := range lines {
		rows[i] = []rune(line)
	}
	return pad(rows)
}

func isBlank(line string) bool {
	return strings.TrimFunc(line, unicode.IsSpace) == ""
}

func pad(rows [][]rune) Grid {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	out := make(Grid, len(rows))
	for i, row := range rows {
		line := make([]rune, width)
		copy(line, row)
		for j := len(row); j < width; j++ {
			line[j] = ' '
		}
		out[i] = line
	}
	return out
}

// Height is the number of rows.
func (g Grid) Height() int {
	return len(g)
}

// Width is the number of columns.
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// At returns the character at p, or a space outside the grid.
func (g Grid) At(p Point) rune {
	if !g.contains(p) {
		return ' '
	}
	return g[p.Y][p.X]
}

func (g Grid) contains(p Point) bool {
	return p.Y >= 0 && p.Y < len(g) && p.X >= 0 && p.X < len(g[p.Y])
}

// Neighbor returns the cell one step from p in direction d.
func (g Grid) Neighbor(p Point, d symbols.Direction) (Point, bool) {
	dx, dy := d.Step()
	n := Point{X: p.X + dx, Y: p.Y + dy}
	return n, g.contains(n)
}

// Slice copies the rectangle with corners from and to, inclusive.
func (g Grid) Slice(from, to Point) Grid {
	out := make(Grid, 0, to.Y-from.Y+1)
	for y := from.Y; y <= to.Y; y++ {
		row := make([]rune, to.X-from.X+1)
		copy(row, g[y][from.X:to.X+1])
		out = append(out, row)
	}
	return out
}

// String renders the grid with one line per row.
func (g Grid) String() string {
	var b strings.Builder
	for i, row := range g {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(row))
	}
	return b.String()
}

// rowBlank reports whether columns [from, to] of row y are all spaces.
func (g Grid) rowBlank(y, from, to int) bool {
	for x := from; x <= to; x++ {
		if g[y][x] != ' ' {
			return false
		}
	}
	return true
}
