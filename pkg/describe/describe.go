// Package describe renders parsed programs as readable pseudocode.
package describe

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/jwoLondon/Rivulet/pkg/parser"
	"github.com/jwoLondon/Rivulet/pkg/runtime"
)

// assignments maps element commands to the operator written between target
// and source. Commands absent here have their own layout.
var assignments = map[string]string{
	runtime.OpAdd:       "+=",
	runtime.OpSubtract:  "-=",
	runtime.OpOverwrite: "=",
	runtime.OpMultiply:  "*=",
	runtime.OpDivide:    "//=",
	runtime.OpMod:       "%=",
	runtime.OpExponent:  "**=",
}

// reversed maps commands whose source is the left operand.
var reversed = map[string]string{
	runtime.OpReverseSubtract: "-",
	runtime.OpReverseDivide:   "//",
	runtime.OpReverseMod:      "%",
	runtime.OpReverseExponent: "**",
}

// Program writes one block of pseudocode per glyph, indented by level.
func Program(w io.Writer, p *parser.Program) error {
	bw := bufio.NewWriter(w)
	for i, g := range p.Glyphs {
		if i > 0 {
			bw.WriteString("\n")
		}
		indent := strings.Repeat("    ", g.Level-1)
		fmt.Fprintf(bw, "%sglyph %d (level %d):\n", indent, g.Index, g.Level)
		for _, tok := range g.Tokens {
			fmt.Fprintf(bw, "%s    %s\n", indent, Token(tok))
		}
	}
	return bw.Flush()
}

// Token renders a single arranged token as one line of pseudocode.
func Token(tok *parser.Token) string {
	if tok.IsQuestion() {
		return question(tok)
	}
	target := fmt.Sprintf("list[%d][%d]", tok.List, tok.AssignToCell)
	list := fmt.Sprintf("list[%d]", tok.List)
	src := source(tok)

	act := tok.Action
	if act == nil {
		return fmt.Sprintf("%s += %s", target, src)
	}
	op := act.Command.Name
	if act.Subtype == parser.SubtypeList2List {
		return list2list(tok, act)
	}

	switch op {
	case runtime.OpInsert:
		return fmt.Sprintf("%s.insert(%d, %s)", list, tok.AssignToCell, src)
	case runtime.OpAppend:
		return fmt.Sprintf("%s.append(%s)", list, src)
	case runtime.OpPop:
		if tok.Ref != nil {
			return fmt.Sprintf("%s += list[%d].pop(%d)", target, tok.Ref.List, tok.Ref.Cell)
		}
		return fmt.Sprintf("%s += %s", target, src)
	case runtime.OpPopAndAppend:
		if tok.Ref != nil {
			return fmt.Sprintf("%s.append(list[%d].pop(%d))", list, tok.Ref.List, tok.Ref.Cell)
		}
		return fmt.Sprintf("%s.append(%s)", list, src)
	}

	if act.Subtype == parser.SubtypeList {
		target = list + "[*]"
	}
	if sym, ok := assignments[op]; ok {
		return fmt.Sprintf("%s %s %s", target, sym, src)
	}
	if sym, ok := reversed[op]; ok {
		return fmt.Sprintf("%s = %s %s %s", target, src, sym, target)
	}
	switch op {
	case runtime.OpRoot:
		return fmt.Sprintf("%s = root(%s, %s)", target, target, src)
	case runtime.OpReverseRoot:
		return fmt.Sprintf("%s = root(%s, %s)", target, src, target)
	}
	return fmt.Sprintf("%s %s %s", target, op, src)
}

func source(tok *parser.Token) string {
	if tok.Subtype == parser.SubtypeRef && tok.Ref != nil {
		return fmt.Sprintf("list[%d][%d]", tok.Ref.List, tok.Ref.Cell)
	}
	return fmt.Sprintf("%d", tok.Value)
}

func list2list(tok, act *parser.Token) string {
	dst := fmt.Sprintf("list[%d]", tok.List)
	src := "list[?]"
	if act.Ref != nil {
		src = fmt.Sprintf("list[%d]", act.Ref.List)
	}
	switch op := act.Command.Name; op {
	case runtime.OpAppend:
		return fmt.Sprintf("%s.extend(%s)", dst, src)
	case runtime.OpInsert:
		return fmt.Sprintf("%s.insert(%d, *%s)", dst, tok.AssignToCell, src)
	case runtime.OpPopAndAppend:
		return fmt.Sprintf("%s.append(%s.pop())", dst, src)
	case runtime.OpPop:
		return fmt.Sprintf("%s[i] += %s[i]; %s.clear()", dst, src, src)
	default:
		if sym, ok := assignments[op]; ok {
			return fmt.Sprintf("%s[i] %s %s[i]", dst, sym, src)
		}
		return fmt.Sprintf("%s[i] = %s(%s[i], %s[i])", dst, op, dst, src)
	}
}

func question(tok *parser.Token) string {
	cond := "?"
	if ref := tok.Ref; ref != nil {
		if tok.Scope == parser.ScopeList {
			cond = fmt.Sprintf("all(list[%d] > 0)", ref.List)
		} else {
			cond = fmt.Sprintf("list[%d][%d] > 0", ref.List, ref.Cell)
		}
	}
	if tok.Block == parser.BlockWhile {
		return fmt.Sprintf("while %s: repeat", cond)
	}
	return fmt.Sprintf("if %s else rollback", cond)
}

// Summary writes a field-by-field listing of every token, as printed by
// "rivulet parse".
func Summary(w io.Writer, p *parser.Program) error {
	bw := bufio.NewWriter(w)
	for _, g := range p.Glyphs {
		loc := g.Location
		fmt.Fprintf(bw, "glyph %d: level %d, start %s, end %s, %d tokens\n", g.Index, g.Level, loc.Start, loc.End, len(g.Tokens))
		for _, tok := range g.Tokens {
			fmt.Fprintf(bw, "  %-15s %-9s at %-7s", tok.Type, tok.Subtype, tok.Start)
			switch {
			case tok.IsQuestion():
				fmt.Fprintf(bw, " %s %s test of %s", tok.Block, tok.Scope, tok.Ref)
			default:
				fmt.Fprintf(bw, " list[%d][%d]", tok.List, tok.AssignToCell)
				if tok.Ref != nil {
					fmt.Fprintf(bw, " ref %s", tok.Ref)
				} else {
					fmt.Fprintf(bw, " value %d", tok.Value)
				}
				if act := tok.Action; act != nil {
					fmt.Fprintf(bw, " action %s (%s)", act.Command.Name, act.Subtype)
				}
			}
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}
