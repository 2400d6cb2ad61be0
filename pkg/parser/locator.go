package parser

import (
	"math"
	"sort"

	"github.com/jwoLondon/Rivulet/pkg/symbols"
)

// Location is the rectangle of one glyph in the program grid. Start is the
// innermost (rightmost) Start marker, End the End marker; Level counts the
// stacked Start markers.
type Location struct {
	Start Point
	End   Point
	Level int
}

// Left is the first column of the glyph, covering the stacked Start markers.
func (l Location) Left() int {
	return l.Start.X - l.Level + 1
}

type startMarker struct {
	at    Point
	level int
}

// Locate finds every Start/End marker pair in grid. Locations are ordered by
// the row, then the column, of their Start marker.
func Locate(grid Grid, table *symbols.Table) ([]Location, error) {
	var starts []*startMarker
	var ends []Point

	for y, row := range grid {
		for x, ch := range row {
			p := Point{X: x, Y: y}
			switch {
			case table.Is(ch, symbols.StartGlyph):
				if x+1 < len(row) && table.Is(row[x+1], symbols.StartGlyph) {
					// only the rightmost marker of a stack opens the glyph
					continue
				}
				if hasContinuation(grid, table, p, symbols.Up) || hasContinuation(grid, table, p, symbols.Down) {
					continue
				}
				level := 1
				for i := x - 1; i >= 0 && table.Is(row[i], symbols.StartGlyph); i-- {
					level++
				}
				starts = append(starts, &startMarker{at: p, level: level})
			case table.Is(ch, symbols.EndGlyph):
				if hasContinuation(grid, table, p, symbols.Up) || hasContinuation(grid, table, p, symbols.Down) {
					continue
				}
				ends = append(ends, p)
			}
		}
	}

	if len(starts) == 0 && len(ends) == 0 {
		return nil, &SyntaxError{Message: "No start glyph found in program", Err: ErrNoGlyphs}
	}

	locations := make([]Location, 0, len(ends))
	for _, end := range ends {
		var candidates []*startMarker
		blankRow := -1
		for _, s := range starts {
			if s.at.X >= end.X || s.at.Y >= end.Y {
				continue
			}
			if encloses(starts, s, end) {
				continue
			}
			if y, ok := blankRowBetween(grid, s, end); ok {
				blankRow = y
				continue
			}
			candidates = append(candidates, s)
		}
		if len(candidates) == 0 {
			at := end
			if blankRow >= 0 {
				return nil, syntaxErrorf(&at, "No start found for end glyph at %s: row %d is blank", end, blankRow)
			}
			return nil, syntaxErrorf(&at, "No start found for end glyph at %s", end)
		}
		closest := candidates[0]
		for _, c := range candidates[1:] {
			if distance(c.at, end) < distance(closest.at, end) {
				closest = c
			}
		}
		locations = append(locations, Location{Start: closest.at, End: end, Level: closest.level})
		starts = removeStart(starts, closest)
	}

	if len(starts) > 0 {
		at := starts[0].at
		return nil, syntaxErrorf(&at, "Start glyph at %s has no matching end", at)
	}

	sort.Slice(locations, func(i, j int) bool {
		a, b := locations[i].Start, locations[j].Start
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return locations, nil
}

// hasContinuation reports whether the neighbor of p in direction d has a
// reading that points back at p.
func hasContinuation(grid Grid, table *symbols.Table, p Point, d symbols.Direction) bool {
	n, ok := grid.Neighbor(p, d)
	if !ok {
		return false
	}
	for _, r := range table.ReadingsFor(grid.At(n)) {
		if r.Has(d.Opposite()) {
			return true
		}
	}
	return false
}

// encloses reports whether a Start other than s lies inside the rectangle s..end.
func encloses(starts []*startMarker, s *startMarker, end Point) bool {
	for _, other := range starts {
		if other == s {
			continue
		}
		if other.at.X >= s.at.X && other.at.X <= end.X && other.at.Y >= s.at.Y && other.at.Y <= end.Y {
			return true
		}
	}
	return false
}

func blankRowBetween(grid Grid, s *startMarker, end Point) (int, bool) {
	left := s.at.X - s.level + 1
	for y := s.at.Y + 1; y < end.Y; y++ {
		if grid.rowBlank(y, left, end.X) {
			return y, true
		}
	}
	return 0, false
}

func distance(a, b Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

func removeStart(starts []*startMarker, target *startMarker) []*startMarker {
	out := starts[:0]
	for _, s := range starts {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

// carve copies a located glyph out of the program and blanks its markers.
func carve(grid Grid, loc Location) Grid {
	glyph := grid.Slice(Point{X: loc.Left(), Y: loc.Start.Y}, loc.End)
	for i := 0; i < loc.Level; i++ {
		glyph[0][i] = ' '
	}
	last := glyph[len(glyph)-1]
	last[len(last)-1] = ' '
	return glyph
}
