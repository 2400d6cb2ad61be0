package parser

import (
	"github.com/jwoLondon/Rivulet/pkg/symbols"
)

type lexer struct {
	grid     Grid
	primes   Primes
	table    *symbols.Table
	commands *symbols.CommandTable
}

// Lex traces every strand of one glyph. Tokens come back in row-major order of
// their start cells.
func Lex(grid Grid, primes Primes, table *symbols.Table, commands *symbols.CommandTable) ([]*Token, error) {
	lx := &lexer{grid: grid, primes: primes, table: table, commands: commands}
	starts, err := lx.findStarts()
	if err != nil {
		return nil, err
	}

	tokens := make([]*Token, 0, len(starts))
	for _, tok := range starts {
		if err := lx.trace(tok); err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func (lx *lexer) findStarts() ([]*Token, error) {
	var out []*Token
	for y, row := range lx.grid {
		for x := range row {
			tok, err := lx.startAt(Point{X: x, Y: y})
			if err != nil {
				return nil, err
			}
			if tok != nil {
				out = append(out, tok)
			}
		}
	}
	return out, nil
}

// startAt applies the hook test: a start character must attach to exactly one
// neighboring strand body.
func (lx *lexer) startAt(p Point) (*Token, error) {
	ch := lx.grid.At(p)
	sym, ok := lx.table.SymbolFor(ch)
	if !ok || !sym.HasRole(symbols.RoleStart) {
		return nil, nil
	}

	var matched []symbols.Direction
	for _, d := range hookDirections(sym) {
		n, ok := lx.grid.Neighbor(p, d)
		if !ok {
			continue
		}
		nch := lx.grid.At(n)
		if nch == ch && (lx.table.Is(nch, symbols.StartGlyph) || lx.table.Is(nch, symbols.EndGlyph)) {
			continue
		}
		for _, r := range lx.table.ReadingsFor(nch) {
			if r.Role != symbols.RolePreStart && r.Has(d.Opposite()) {
				matched = append(matched, d)
				break
			}
		}
	}
	if len(matched) != 1 {
		return nil, nil
	}

	var reading *symbols.Reading
	for i, r := range sym.Readings {
		if r.Role != symbols.RoleStart || len(r.Directions) != 1 || r.Directions[0] != matched[0] {
			continue
		}
		if reading != nil {
			return nil, internalErrorf(&p, "more than one start reading of %q points %s", ch, matched[0])
		}
		reading = &sym.Readings[i]
	}
	if reading == nil {
		return nil, nil
	}
	return &Token{
		Type:      reading.Kind,
		Start:     p,
		Direction: matched[0],
	}, nil
}

// hookDirections are the arms a start character can attach through: the
// directions of its corner and continue readings, or of its start readings
// when it has neither.
func hookDirections(sym *symbols.Symbol) []symbols.Direction {
	var dirs []symbols.Direction
	for _, role := range []symbols.Role{symbols.RoleCorner, symbols.RoleContinue} {
		if r, ok := sym.Reading(role); ok {
			dirs = appendDirections(dirs, r.Directions)
		}
	}
	if len(dirs) > 0 {
		return dirs
	}
	for _, r := range sym.Readings {
		if r.Role == symbols.RoleStart {
			dirs = appendDirections(dirs, r.Directions)
		}
	}
	return dirs
}

func appendDirections(dirs []symbols.Direction, add symbols.DirectionSet) []symbols.Direction {
	for _, d := range add {
		if !symbols.DirectionSet(dirs).Has(d) {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// trace follows a strand from its start until it terminates, accumulating its
// payloads into tok.
func (lx *lexer) trace(tok *Token) error {
	cur := tok.Start
	arrival := tok.Direction
	limit := lx.grid.Width() * lx.grid.Height()

	for step := 0; ; step++ {
		if step > limit {
			return internalErrorf(&tok.Start, "strand from %s does not terminate", tok.Start)
		}
		next, ok := lx.grid.Neighbor(cur, arrival)
		if !ok {
			return syntaxErrorf(&cur, "strand from %s runs off the glyph at %s", tok.Start, cur)
		}
		ch := lx.grid.At(next)
		tok.Cells = append(tok.Cells, Cell{Point: next, Char: ch})

		sym, ok := lx.table.SymbolFor(ch)
		if !ok {
			return internalErrorf(&next, "blank space found mid-strand at char %s", next)
		}

		back := arrival.Opposite()
		var nextDir symbols.Direction
		turns := false
		for _, role := range []symbols.Role{symbols.RoleContinue, symbols.RoleCorner} {
			r, ok := sym.Reading(role)
			if !ok || !r.Has(back) {
				continue
			}
			other, ok := r.Directions.Other(back)
			if !ok {
				return internalErrorf(&next, "ambiguous %s reading for char %s", role, next)
			}
			nextDir, turns = other, true
			break
		}

		continues := sym.HasRole(symbols.RoleContinue)
		if continues && turns {
			lx.accumulate(tok, next, nextDir)
		}

		if sym.HasRole(symbols.RoleEnd) || sym.HasRole(symbols.RoleLocMarker) {
			if !(continues && turns && lx.connects(next, nextDir)) {
				return lx.markEnd(tok, next, sym, arrival, nextDir, turns)
			}
		}

		if turns {
			cur, arrival = next, nextDir
			continue
		}
		return syntaxErrorf(&next, "No valid reading found for char %s", next)
	}
}

func (lx *lexer) accumulate(tok *Token, at Point, d symbols.Direction) {
	switch d {
	case symbols.Right:
		tok.Value += int64(lx.primes.At(at.Y))
	case symbols.Left:
		tok.Value -= int64(lx.primes.At(at.Y))
	case symbols.Down:
		tok.VertValue += lx.primes.At(columnWeight(tok.Start.X, at.X))
	case symbols.Up:
		tok.VertValue -= lx.primes.At(columnWeight(tok.Start.X, at.X))
	}
}

// columnWeight is |floor((start - col) / 2)|, the prime index used for vertical
// runs.
func columnWeight(start, col int) int {
	diff := start - col
	q := diff / 2
	if diff%2 != 0 && diff < 0 {
		q--
	}
	if q < 0 {
		q = -q
	}
	return q
}

// connects reports whether the character after p in direction d leads back to p.
func (lx *lexer) connects(p Point, d symbols.Direction) bool {
	n, ok := lx.grid.Neighbor(p, d)
	if !ok {
		return false
	}
	for _, r := range lx.table.ReadingsFor(lx.grid.At(n)) {
		if r.Has(d.Opposite()) {
			return true
		}
	}
	return false
}

func (lx *lexer) markEnd(tok *Token, at Point, sym *symbols.Symbol, arrival, nextDir symbols.Direction, turns bool) error {
	tok.End = at

	if tok.IsQuestion() {
		tok.Value, tok.VertValue = 0, 0
		return nil
	}

	if marker, ok := sym.Reading(symbols.RoleLocMarker); ok && marker.Has(arrival.Opposite()) {
		tok.Value = 0
		if tok.IsData() {
			tok.Subtype = SubtypeRef
			tok.VertValue = 0
			return nil
		}
		cmd, err := lx.command(tok)
		if err != nil {
			return err
		}
		tok.Subtype = SubtypeList2List
		tok.Command = cmd.Variant(true)
		return nil
	}

	if tok.IsData() {
		tok.Subtype = SubtypeValue
		tok.VertValue = 0
		return nil
	}
	cmd, err := lx.command(tok)
	if err != nil {
		return err
	}
	tok.Value = 0
	if turns && nextDir.Horizontal() {
		tok.Subtype = SubtypeList
		tok.Command = cmd.Variant(true)
	} else {
		tok.Subtype = SubtypeElement
		tok.Command = cmd.Variant(false)
	}
	return nil
}

func (lx *lexer) command(tok *Token) (symbols.Command, error) {
	cmd, ok := lx.commands.CommandFor(tok.VertValue)
	if !ok {
		return symbols.Command{}, syntaxErrorf(&tok.Start, "Command not found for %d", tok.VertValue)
	}
	return cmd, nil
}
