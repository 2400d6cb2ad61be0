package interpreter

import "github.com/jwoLondon/Rivulet/pkg/parser"

// Node is an element of the block tree: a *Leaf or a *Block.
type Node interface {
	node()
}

// Leaf wraps one glyph.
type Leaf struct {
	Glyph *parser.Glyph
}

// Block is a run of nodes sharing one nesting level. Children one level
// deeper are grouped into nested blocks.
type Block struct {
	Level    int
	Children []Node
}

func (*Leaf) node()  {}
func (*Block) node() {}

// BuildTree nests glyphs by level. The root block is level 1; a glyph deeper
// than the current level opens a child block, a shallower one closes it.
func BuildTree(glyphs []*parser.Glyph) *Block {
	root, _ := buildBlock(glyphs, 0, 1)
	return root
}

func buildBlock(glyphs []*parser.Glyph, i, level int) (*Block, int) {
	block := &Block{Level: level}
	for i < len(glyphs) {
		g := glyphs[i]
		switch {
		case g.Level == level:
			block.Children = append(block.Children, &Leaf{Glyph: g})
			i++
		case g.Level > level:
			var child *Block
			child, i = buildBlock(glyphs, i, level+1)
			block.Children = append(block.Children, child)
		default:
			return block, i
		}
	}
	return block, i
}

// Glyphs lists the leaves of b in execution order.
func (b *Block) Glyphs() []*parser.Glyph {
	var out []*parser.Glyph
	for _, child := range b.Children {
		switch n := child.(type) {
		case *Leaf:
			out = append(out, n.Glyph)
		case *Block:
			out = append(out, n.Glyphs()...)
		}
	}
	return out
}
