package symbols

import (
	"errors"
	"strings"
	"testing"
)

func TestOppositeIsInvolution(t *testing.T) {
	for _, d := range Directions {
		if d.Opposite() == d {
			t.Fatalf("%s is its own opposite", d)
		}
		if d.Opposite().Opposite() != d {
			t.Fatalf("opposite of opposite of %s = %s", d, d.Opposite().Opposite())
		}
		dx, dy := d.Step()
		ox, oy := d.Opposite().Step()
		if dx+ox != 0 || dy+oy != 0 {
			t.Fatalf("steps of %s and its opposite do not cancel", d)
		}
	}
}

func TestDirectionSetOther(t *testing.T) {
	set := DirectionSet{Left, Down}
	if got, ok := set.Other(Left); !ok || got != Down {
		t.Fatalf("Other(left) = %s, %v; want down", got, ok)
	}
	if _, ok := set.Other(Up); ok {
		t.Fatalf("Other(up) should fail for a set without up")
	}
	if _, ok := (DirectionSet{Up, Down, Left}).Other(Up); ok {
		t.Fatalf("Other should fail when two directions remain")
	}
}

func TestDefaultTableReadings(t *testing.T) {
	table := Default()

	readings := table.ReadingsFor('╷')
	if len(readings) != 2 {
		t.Fatalf("expected two readings for end glyph, got %d", len(readings))
	}
	if readings[0].Role != RoleStart || readings[0].Kind != KindQuestionMarker {
		t.Fatalf("unexpected first reading %+v", readings[0])
	}

	if got := table.ReadingsFor('x'); got != nil {
		t.Fatalf("expected no readings for an unknown character, got %+v", got)
	}

	corner, ok := table.SymbolFor('└')
	if !ok || corner.Name != "ne_corner" {
		t.Fatalf("expected └ to share the ne_corner record, got %+v", corner)
	}
	if table.ReadingsFor('╰')[0].Kind != KindData {
		t.Fatalf("╰ should start data strands")
	}
}

func TestSymbolsNamed(t *testing.T) {
	table := Default()
	if got := string(table.SymbolsNamed(StartGlyph)); got != "╵" {
		t.Fatalf("start glyph chars = %q", got)
	}
	if got := string(table.SymbolsNamed("sw_corner")); got != "╮┐" {
		t.Fatalf("sw_corner chars = %q", got)
	}
	if !table.Is('─', Horizontal) {
		t.Fatalf("expected ─ to be horizontal")
	}
	if table.SymbolsNamed("missing") != nil {
		t.Fatalf("expected no chars for an unknown name")
	}
}

func TestLoadTableRejectsDuplicateCharacters(t *testing.T) {
	doc := `
- name: a
  symbol: ["─"]
  readings: [{pos: continue, dir: [left, right]}]
- name: b
  symbol: ["─"]
  readings: [{pos: end, dir: [left, right]}]
`
	_, err := LoadTable(strings.NewReader(doc))
	if !errors.Is(err, ErrAmbiguousSymbol) {
		t.Fatalf("expected ErrAmbiguousSymbol, got %v", err)
	}
}

func TestLoadTableRejectsUnknownFields(t *testing.T) {
	doc := `
- name: a
  symbol: ["─"]
  facing: [left]
  readings: [{pos: continue, dir: [left, right]}]
`
	if _, err := LoadTable(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
}

func TestLoadTableRejectsBadDirection(t *testing.T) {
	doc := `
- name: a
  symbol: ["─"]
  readings: [{pos: continue, dir: [sideways]}]
`
	_, err := LoadTable(strings.NewReader(doc))
	if err == nil || !strings.Contains(err.Error(), "sideways") {
		t.Fatalf("expected direction error, got %v", err)
	}
}

func TestDefaultCommands(t *testing.T) {
	commands := DefaultCommands()

	insert, ok := commands.CommandFor(1)
	if !ok || insert.Name != "insert" {
		t.Fatalf("CommandFor(1) = %+v, %v", insert, ok)
	}
	if got := insert.Variant(true).Name; got != "append" {
		t.Fatalf("list variant of insert = %q, want append", got)
	}
	if got := insert.Variant(false).Name; got != "insert" {
		t.Fatalf("element variant of insert = %q", got)
	}

	overwrite, _ := commands.CommandFor(0)
	if got := overwrite.Variant(true).Name; got != "overwrite" {
		t.Fatalf("overwrite has no list form, got %q", got)
	}
	for code, want := range map[int]string{-3: "mod_assignment", -4: "root_assignment", 2: "multiplication_assignment"} {
		cmd, ok := commands.CommandFor(code)
		if !ok || cmd.Name != want {
			t.Fatalf("CommandFor(%d) = %q, want %q", code, cmd.Name, want)
		}
	}
	if _, ok := commands.CommandFor(99); ok {
		t.Fatalf("expected no command for 99")
	}
	codes := commands.Codes()
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
}

func TestLoadCommandsRejectsNonIntegerCode(t *testing.T) {
	_, err := LoadCommands(strings.NewReader(`"one": {name: overwrite}`))
	if err == nil || !strings.Contains(err.Error(), "not an integer") {
		t.Fatalf("expected integer error, got %v", err)
	}
}
