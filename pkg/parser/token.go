package parser

import (
	"fmt"

	"github.com/jwoLondon/Rivulet/pkg/symbols"
)

// Subtype refines a token's type once its strand has been traced.
type Subtype string

const (
	SubtypeValue     Subtype = "value"
	SubtypeRef       Subtype = "ref"
	SubtypeList2List Subtype = "list2list"
	SubtypeList      Subtype = "list"
	SubtypeElement   Subtype = "element"
	SubtypeFirst     Subtype = "first"
	SubtypeSecond    Subtype = "second"
)

// BlockKind is the control structure a question marker opens.
type BlockKind string

const (
	BlockWhile BlockKind = "while"
	BlockIf    BlockKind = "if"
)

// Scope selects what a question marker tests.
type Scope string

const (
	ScopeCell Scope = "cell"
	ScopeList Scope = "list"
)

// CellRef addresses one cell of one list.
type CellRef struct {
	List int
	Cell int
}

func (r CellRef) String() string {
	return fmt.Sprintf("list[%d][%d]", r.List, r.Cell)
}

// Cell is one visited grid position of a strand.
type Cell struct {
	Point
	Char rune
}

// Token is a traced strand. Coordinates are relative to the glyph.
type Token struct {
	Type      symbols.Kind
	Subtype   Subtype
	Start     Point
	Direction symbols.Direction
	End       Point
	Cells     []Cell

	// Value is the horizontal payload of data strands; VertValue the vertical
	// payload that selects an action's command.
	Value     int64
	VertValue int

	// List and AssignToCell are the target of data tokens.
	List         int
	AssignToCell int

	// Ref is set for ref data strands, list2list actions and question markers.
	Ref *CellRef

	Command symbols.Command
	Action  *Token

	Block  BlockKind
	Scope  Scope
	Second *Token
}

// IsData reports whether the token assigns to a cell.
func (t *Token) IsData() bool {
	return t.Type == symbols.KindData
}

// IsQuestion reports whether the token is a question marker.
func (t *Token) IsQuestion() bool {
	return t.Type == symbols.KindQuestionMarker
}

// LastCell returns the final visited cell of the strand.
func (t *Token) LastCell() (Cell, bool) {
	if len(t.Cells) == 0 {
		return Cell{}, false
	}
	return t.Cells[len(t.Cells)-1], true
}

func (t *Token) String() string {
	switch {
	case t.IsQuestion():
		return fmt.Sprintf("question_marker(%s) at %s", t.Subtype, t.Start)
	case t.Type == symbols.KindAction:
		return fmt.Sprintf("action(%s %s) at %s", t.Subtype, t.Command.Name, t.Start)
	}
	return fmt.Sprintf("data(%s) at %s -> list[%d][%d]", t.Subtype, t.Start, t.List, t.AssignToCell)
}
