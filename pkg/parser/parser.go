package parser

import (
	"github.com/jwoLondon/Rivulet/pkg/symbols"
)

// Glyph is one located program region after lexing and arranging.
type Glyph struct {
	Index    int
	Level    int
	Location Location
	Grid     Grid
	Tokens   []*Token
	ListSize int
}

// Test returns the glyph's first question marker, or nil.
func (g *Glyph) Test() *Token {
	for _, tok := range g.Tokens {
		if tok.IsQuestion() {
			return tok
		}
	}
	return nil
}

// Program is a parsed Rivulet source.
type Program struct {
	Glyphs []*Glyph
	Primes Primes
	Width  int
	Height int
}

// ListSize is the number of lists a run allocates: one per row of the tallest glyph.
func (p *Program) ListSize() int {
	size := 0
	for _, g := range p.Glyphs {
		if g.ListSize > size {
			size = g.ListSize
		}
	}
	return size
}

// Addresses are the list addresses a run allocates.
func (p *Program) Addresses() []int {
	values := p.Primes.Values()
	if n := p.ListSize(); n < len(values) {
		values = values[:n]
	}
	return values
}

type config struct {
	table    *symbols.Table
	commands *symbols.CommandTable
}

// Option configures Parse.
type Option func(*config)

// WithTable replaces the built-in lexicon.
func WithTable(table *symbols.Table) Option {
	return func(c *config) {
		if table != nil {
			c.table = table
		}
	}
}

// WithCommands replaces the built-in command table.
func WithCommands(commands *symbols.CommandTable) Option {
	return func(c *config) {
		if commands != nil {
			c.commands = commands
		}
	}
}

// Parse locates, lexes and arranges every glyph of src.
func Parse(src string, opts ...Option) (*Program, error) {
	cfg := config{table: symbols.Default(), commands: symbols.DefaultCommands()}
	for _, opt := range opts {
		opt(&cfg)
	}

	grid := NewGrid(src)
	locations, err := Locate(grid, cfg.table)
	if err != nil {
		return nil, err
	}

	program := &Program{Width: grid.Width(), Height: grid.Height()}
	size := 0
	for i, loc := range locations {
		glyph := &Glyph{Index: i, Level: loc.Level, Location: loc, Grid: carve(grid, loc)}
		glyph.ListSize = glyph.Grid.Height()
		if n := max(glyph.Grid.Height(), glyph.Grid.Width()); n > size {
			size = n
		}
		program.Glyphs = append(program.Glyphs, glyph)
	}
	program.Primes = NewPrimes(size)

	for _, glyph := range program.Glyphs {
		tokens, err := Lex(glyph.Grid, program.Primes, cfg.table, cfg.commands)
		if err != nil {
			return nil, inGlyph(glyph.Index, err)
		}
		glyph.Tokens, err = arrange(tokens, program.Primes, cfg.table)
		if err != nil {
			return nil, inGlyph(glyph.Index, err)
		}
	}
	return program, nil
}
