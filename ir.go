package augsql

import "fmt"

// Placeholder is a resolved parameter slot: exactly one of Name/Ordinal is
// meaningful, selected by whether the slot came from a named or a
// positional (anonymous/numbered) notation.
type Placeholder struct {
	Name    string
	Ordinal int
	Type    PlaceholderType
	Pos     Position
}

func (p Placeholder) named() bool { return p.Name != "" }

// key identifies a placeholder for refs-set membership and parameter
// lookup: named placeholders key by name, positional ones by ordinal.
func (p Placeholder) key() string {
	if p.named() {
		return "n:" + p.Name
	}

	return fmt.Sprintf("o:%d", p.Ordinal)
}

// displayKey is the human-facing identifier used in error messages.
func (p Placeholder) displayKey() string {
	if p.named() {
		return p.Name
	}

	return fmt.Sprintf("$%d", p.Ordinal)
}

// Node is one element of a parsed template's flattened tree.
type Node interface {
	isNode()
}

// LiteralNode is SQL text emitted verbatim.
type LiteralNode struct {
	Text string
}

func (*LiteralNode) isNode() {}

// PlaceholderNode binds a single value at render time.
type PlaceholderNode struct {
	Placeholder Placeholder
}

func (*PlaceholderNode) isNode() {}

// InListNode is the lexically-folded "<lead> IN ( <placeholder> ) <trail>"
// (or NOT IN) construct.
type InListNode struct {
	Lead        string
	Trail       string
	Placeholder Placeholder
	Negated     bool
}

func (*InListNode) isNode() {}

// BlockNode is a "{{ ... }}" conditional region. Refs holds only the
// placeholders mentioned directly inside this block (not inside nested
// child blocks).
type BlockNode struct {
	Children []Node
	Refs     map[string]Placeholder
}

func (*BlockNode) isNode() {}

// ParsedTemplate is the immutable result of parsing a template string
// under a given dialect. It is safe for concurrent reads and is what the
// cache stores.
type ParsedTemplate struct {
	Dialect         string
	Text            string
	Nodes           []Node
	PositionalCount int
	NamedSet        map[string]struct{}
}
