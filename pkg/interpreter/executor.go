package interpreter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwoLondon/Rivulet/pkg/parser"
	"github.com/jwoLondon/Rivulet/pkg/runtime"
)

// ErrPassLimit is returned when a block needs more passes than WithMaxPasses allows.
var ErrPassLimit = errors.New("interpreter: pass limit exceeded")

// Outcome is the control decision a glyph hands to its block.
type Outcome int

const (
	Continue Outcome = iota
	Repeat
	Rollback
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Repeat:
		return "repeat"
	case Rollback:
		return "rollback"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// GlyphEvent is passed to the debug hook after every glyph.
type GlyphEvent struct {
	Glyph   *parser.Glyph
	Pass    int
	Outcome Outcome
	// State is a deep copy taken before any rollback is applied.
	State *runtime.State
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithDebugHook registers fn to observe every executed glyph.
func WithDebugHook(fn func(GlyphEvent)) Option {
	return func(i *Interpreter) {
		i.hook = fn
	}
}

// WithMaxPasses bounds the passes of a single block entry. Zero means no limit.
func WithMaxPasses(n int) Option {
	return func(i *Interpreter) {
		if n >= 0 {
			i.maxPasses = n
		}
	}
}

// Interpreter executes parsed programs.
type Interpreter struct {
	hook      func(GlyphEvent)
	maxPasses int
}

// New returns an interpreter configured by opts.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run executes program against a fresh state.
func (i *Interpreter) Run(ctx context.Context, program *parser.Program) (*runtime.State, error) {
	state := runtime.NewState(program.Addresses())
	if err := i.Exec(ctx, program, state); err != nil {
		return state, err
	}
	return state, nil
}

// Exec executes program against an existing state, adding any lists the
// program addresses that state lacks.
func (i *Interpreter) Exec(ctx context.Context, program *parser.Program, state *runtime.State) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if ctx == nil {
		ctx = context.Background()
	}
	state.Extend(program.Addresses())
	return i.runBlock(ctx, BuildTree(program.Glyphs), state)
}

// runBlock snapshots the state at the start of every pass. Repeat starts a new
// pass at once; Rollback restores the pass snapshot and leaves the block.
func (i *Interpreter) runBlock(ctx context.Context, block *Block, state *runtime.State) error {
	for pass := 1; ; pass++ {
		if i.maxPasses > 0 && pass > i.maxPasses {
			return fmt.Errorf("block at level %d: %w after %d passes", block.Level, ErrPassLimit, i.maxPasses)
		}
		snapshot := state.Clone()
		repeat := false

	members:
		for _, child := range block.Children {
			switch n := child.(type) {
			case *Block:
				if err := i.runBlock(ctx, n, state); err != nil {
					return err
				}
			case *Leaf:
				if err := ctx.Err(); err != nil {
					return err
				}
				outcome, err := runGlyph(n.Glyph, state)
				if err != nil {
					return err
				}
				if i.hook != nil {
					i.hook(GlyphEvent{Glyph: n.Glyph, Pass: pass, Outcome: outcome, State: state.Clone()})
				}
				switch outcome {
				case Rollback:
					state.Restore(snapshot)
					return nil
				case Repeat:
					repeat = true
					break members
				}
			}
		}
		if !repeat {
			return nil
		}
	}
}

func runGlyph(glyph *parser.Glyph, state *runtime.State) (Outcome, error) {
	outcome := Continue
	for _, tok := range glyph.Tokens {
		if tok.IsQuestion() {
			outcome = evaluateTest(tok, state)
			continue
		}
		if err := applyToken(tok, state); err != nil {
			return Continue, fmt.Errorf("glyph %d: strand at %s: %w", glyph.Index, tok.Start, err)
		}
	}
	return outcome, nil
}

func evaluateTest(tok *parser.Token, state *runtime.State) Outcome {
	ref := tok.Ref
	passed := false
	switch tok.Scope {
	case parser.ScopeList:
		list, _ := state.List(ref.List)
		passed = len(list) > 0
		for _, v := range list {
			if v <= 0 {
				passed = false
				break
			}
		}
	default:
		passed = ref.Cell < state.Len(ref.List) && state.Cell(ref.List, ref.Cell) > 0
	}
	switch {
	case !passed:
		return Rollback
	case tok.Block == parser.BlockWhile:
		return Repeat
	}
	return Continue
}

func applyToken(tok *parser.Token, state *runtime.State) error {
	act := tok.Action
	op := ""
	if act != nil {
		op = act.Command.Name
	}
	list, cell := tok.List, tok.AssignToCell

	if op != runtime.OpAppend && op != runtime.OpPopAndAppend {
		if err := state.Ensure(list, cell); err != nil {
			return err
		}
	}

	source := tok.Value
	if tok.Subtype == parser.SubtypeRef {
		if !state.Has(tok.Ref.List) {
			return outOfBounds(tok.Ref.List)
		}
		source = state.Cell(tok.Ref.List, tok.Ref.Cell)
	}

	switch {
	case act == nil:
		return state.Set(list, cell, state.Cell(list, cell)+source)
	case act.Subtype == parser.SubtypeList2List:
		return applyList2List(tok, act, state)
	case op == runtime.OpInsert:
		return state.Insert(list, cell, source)
	case op == runtime.OpAppend:
		return state.Append(list, source)
	case op == runtime.OpPop:
		if err := state.Set(list, cell, state.Cell(list, cell)+source); err != nil {
			return err
		}
		if tok.Subtype == parser.SubtypeRef {
			state.Remove(tok.Ref.List, tok.Ref.Cell)
		}
		return nil
	case op == runtime.OpPopAndAppend:
		if tok.Subtype == parser.SubtypeRef {
			source, _ = state.Remove(tok.Ref.List, tok.Ref.Cell)
		}
		return state.Append(list, source)
	case act.Subtype == parser.SubtypeList:
		for j := 0; j < state.Len(list); j++ {
			v, err := runtime.Apply(op, state.Cell(list, j), source)
			if err != nil {
				return err
			}
			if err := state.Set(list, j, v); err != nil {
				return err
			}
		}
		return nil
	}
	v, err := runtime.Apply(op, state.Cell(list, cell), source)
	if err != nil {
		return err
	}
	return state.Set(list, cell, v)
}

// applyList2List combines the whole list the action points at into the data
// strand's list.
func applyList2List(tok, act *parser.Token, state *runtime.State) error {
	from := act.Ref.List
	values, ok := state.List(from)
	if !ok {
		return outOfBounds(from)
	}
	list := tok.List

	switch act.Command.Name {
	case runtime.OpAppend:
		return state.Append(list, values...)
	case runtime.OpInsert:
		return state.Insert(list, tok.AssignToCell, values...)
	case runtime.OpPopAndAppend:
		if v, ok := state.Pop(from); ok {
			return state.Append(list, v)
		}
		return nil
	case runtime.OpPop:
		for j, v := range values {
			if err := state.Set(list, j, state.Cell(list, j)+v); err != nil {
				return err
			}
		}
		state.Clear(from)
		return nil
	}
	for j, v := range values {
		result, err := runtime.Apply(act.Command.Name, state.Cell(list, j), v)
		if err != nil {
			return err
		}
		if err := state.Set(list, j, result); err != nil {
			return err
		}
	}
	return nil
}

func outOfBounds(list int) error {
	return &parser.SyntaxError{
		Message: fmt.Sprintf("list reference list[%d] is out of bounds", list),
		Err:     runtime.ErrUnknownList,
	}
}
