package parser

import (
	"sort"

	"github.com/jwoLondon/Rivulet/pkg/symbols"
)

// arrange orders the traced strands of one glyph into execution order and
// resolves their addresses. The result holds the data tokens, sorted by
// column then row, followed by the first question marker when the glyph has a
// test. Action strands hang off the data token they modify.
func arrange(tokens []*Token, primes Primes, table *symbols.Table) ([]*Token, error) {
	var data, questions, actions []*Token
	for _, tok := range tokens {
		switch tok.Type {
		case symbols.KindData:
			data = append(data, tok)
		case symbols.KindQuestionMarker:
			questions = append(questions, tok)
		case symbols.KindAction:
			actions = append(actions, tok)
		}
	}

	sortByColumn(data)
	perRow := make(map[int]int)
	for _, tok := range data {
		tok.List = primes.At(tok.Start.Y)
		tok.AssignToCell = perRow[tok.Start.Y]
		perRow[tok.Start.Y]++
	}

	// cellLeftOf resolves a reference point to the cell that the next data
	// token at that point would occupy.
	cellLeftOf := func(p Point) *CellRef {
		n := 0
		for _, tok := range data {
			if tok.Start.Y == p.Y && tok.Start.X < p.X {
				n++
			}
		}
		return &CellRef{List: primes.At(p.Y), Cell: n}
	}

	out := append([]*Token(nil), data...)

	first, err := pairQuestions(questions, table)
	if err != nil {
		return nil, err
	}
	if first != nil {
		first.Ref = cellLeftOf(first.Start)
		out = append(out, first)
	}

	for _, tok := range data {
		if tok.Subtype == SubtypeRef {
			tok.Ref = cellLeftOf(tok.End)
		}
	}

	sortByColumn(actions)
	column, nth := -1, 0
	for _, act := range actions {
		if act.Start.X == column {
			nth++
		} else {
			column, nth = act.Start.X, 0
		}
		if act.Subtype == SubtypeList2List {
			act.Ref = cellLeftOf(act.End)
		}
		target := nthInColumn(data, act.Start.X, nth)
		if target == nil {
			return nil, syntaxErrorf(&act.Start, "action strand at %s has no data strand to act on", act.Start)
		}
		target.Action = act
	}
	return out, nil
}

func sortByColumn(tokens []*Token) {
	sort.SliceStable(tokens, func(i, j int) bool {
		a, b := tokens[i].Start, tokens[j].Start
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
}

func nthInColumn(data []*Token, x, n int) *Token {
	for _, tok := range data {
		if tok.Start.X != x {
			continue
		}
		if n == 0 {
			return tok
		}
		n--
	}
	return nil
}

// pairQuestions links the two question strands of a test and classifies it.
// It returns nil when the glyph has no test.
func pairQuestions(questions []*Token, table *symbols.Table) (*Token, error) {
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Start.Y < questions[j].Start.Y
	})
	switch len(questions) {
	case 0:
		return nil, nil
	case 1:
		return nil, syntaxErrorf(&questions[0].Start, "question marker at %s has no second marker", questions[0].Start)
	case 2:
	default:
		return nil, syntaxErrorf(&questions[2].Start, "more than two question markers, the third at %s", questions[2].Start)
	}

	first, second := questions[0], questions[1]
	if second.Start != first.End {
		return nil, syntaxErrorf(&second.Start, "second question marker at %s does not begin where the first ends (%s)", second.Start, first.End)
	}
	first.Subtype, second.Subtype = SubtypeFirst, SubtypeSecond
	if first.Start.X < first.End.X {
		first.Block = BlockWhile
	} else {
		first.Block = BlockIf
	}
	first.Scope = ScopeCell
	if last, ok := second.LastCell(); ok && table.Is(last.Char, symbols.Horizontal) {
		first.Scope = ScopeList
	}
	first.Second = second
	return first, nil
}
