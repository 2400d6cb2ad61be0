package symbols

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Role is the part a character plays in a reading.
type Role string

const (
	RoleStart     Role = "start"
	RoleCorner    Role = "corner"
	RoleContinue  Role = "continue"
	RoleEnd       Role = "end"
	RoleLocMarker Role = "loc_marker"
	RolePreStart  Role = "pre_start"
)

func (r Role) valid() bool {
	switch r {
	case RoleStart, RoleCorner, RoleContinue, RoleEnd, RoleLocMarker, RolePreStart:
		return true
	}
	return false
}

// Kind is the strand type a start reading begins.
type Kind string

const (
	KindData           Kind = "data"
	KindAction         Kind = "action"
	KindQuestionMarker Kind = "question_marker"
)

// Names of the symbols the locator and lexer look for.
const (
	StartGlyph = "start_glyph"
	EndGlyph   = "end_glyph"
	Horizontal = "horizontal"
)

// ErrAmbiguousSymbol is reported when one character belongs to several records.
var ErrAmbiguousSymbol = errors.New("symbols: character belongs to more than one symbol")

// Reading is one interpretation of a character.
type Reading struct {
	Role       Role         `yaml:"pos"`
	Directions DirectionSet `yaml:"dir"`
	Kind       Kind         `yaml:"type,omitempty"`
}

// Has reports whether the reading includes direction d.
func (r Reading) Has(d Direction) bool {
	return r.Directions.Has(d)
}

// Symbol groups the characters that share a name and readings.
type Symbol struct {
	Name     string
	Chars    []rune
	Readings []Reading
}

// Reading returns the first reading with the given role.
func (s *Symbol) Reading(role Role) (Reading, bool) {
	if s == nil {
		return Reading{}, false
	}
	for _, r := range s.Readings {
		if r.Role == role {
			return r, true
		}
	}
	return Reading{}, false
}

// HasRole reports whether any reading has the given role.
func (s *Symbol) HasRole(role Role) bool {
	_, ok := s.Reading(role)
	return ok
}

// Table answers "readings for a character" and "characters for a name".
type Table struct {
	byChar map[rune]*Symbol
	byName map[string][]rune
	names  []string
}

type symbolYAML struct {
	Name     string    `yaml:"name"`
	Symbol   []string  `yaml:"symbol"`
	Readings []Reading `yaml:"readings"`
}

//go:embed lexicon.yml
var lexiconYAML []byte

var (
	defaultTableOnce sync.Once
	defaultTable     *Table
	defaultTableErr  error
)

// Default returns the built-in box-drawing lexicon.
func Default() *Table {
	defaultTableOnce.Do(func() {
		defaultTable, defaultTableErr = LoadTable(bytes.NewReader(lexiconYAML))
	})
	if defaultTableErr != nil {
		panic(fmt.Sprintf("symbols: embedded lexicon: %v", defaultTableErr))
	}
	return defaultTable
}

// LoadTable decodes a lexicon document.
func LoadTable(r io.Reader) (*Table, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw []symbolYAML
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("symbols: lexicon is empty")
		}
		return nil, fmt.Errorf("symbols: parse lexicon: %w", err)
	}
	return newTable(raw)
}

// newTable builds the lookup maps once from a list of records.
func newTable(records []symbolYAML) (*Table, error) {
	t := &Table{
		byChar: make(map[rune]*Symbol),
		byName: make(map[string][]rune),
	}
	for i, rec := range records {
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			return nil, fmt.Errorf("symbols: record %d has no name", i)
		}
		sym := &Symbol{Name: name, Readings: rec.Readings}
		for _, reading := range rec.Readings {
			if !reading.Role.valid() {
				return nil, fmt.Errorf("symbols: %s: unknown pos %q", name, reading.Role)
			}
			if len(reading.Directions) == 0 {
				return nil, fmt.Errorf("symbols: %s: %s reading has no directions", name, reading.Role)
			}
			if reading.Role == RoleStart && reading.Kind == "" {
				return nil, fmt.Errorf("symbols: %s: start reading has no type", name)
			}
		}
		for _, s := range rec.Symbol {
			if utf8.RuneCountInString(s) != 1 {
				return nil, fmt.Errorf("symbols: %s: symbol %q must be a single character", name, s)
			}
			ch, _ := utf8.DecodeRuneInString(s)
			if prev, ok := t.byChar[ch]; ok {
				return nil, fmt.Errorf("%w: %q in %s and %s", ErrAmbiguousSymbol, ch, prev.Name, name)
			}
			t.byChar[ch] = sym
			sym.Chars = append(sym.Chars, ch)
		}
		if _, seen := t.byName[name]; !seen {
			t.names = append(t.names, name)
		}
		t.byName[name] = append(t.byName[name], sym.Chars...)
	}
	sort.Strings(t.names)
	return t, nil
}

// ReadingsFor returns every reading of ch, or nil when ch is not in the lexicon.
func (t *Table) ReadingsFor(ch rune) []Reading {
	if sym, ok := t.byChar[ch]; ok {
		return sym.Readings
	}
	return nil
}

// SymbolFor returns the record ch belongs to.
func (t *Table) SymbolFor(ch rune) (*Symbol, bool) {
	sym, ok := t.byChar[ch]
	return sym, ok
}

// SymbolsNamed returns the characters registered under name.
func (t *Table) SymbolsNamed(name string) []rune {
	return t.byName[name]
}

// Is reports whether ch belongs to the symbol called name.
func (t *Table) Is(ch rune, name string) bool {
	sym, ok := t.byChar[ch]
	return ok && sym.Name == name
}

// Names returns the symbol names in sorted order.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}
