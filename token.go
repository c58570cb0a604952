package augsql

// tokenKind enumerates the token shapes the lexer emits.
type tokenKind int

const (
	tokLiteral tokenKind = iota
	tokBlockOpen
	tokBlockClose
	tokPlaceholder
)

// placeholderForm distinguishes the three placeholder notations the
// grammar accepts.
type placeholderForm int

const (
	formAnonymous placeholderForm = iota
	formNumbered
	formNamed
)

// token is a single lexical unit produced by the lexer. Literal tokens
// carry verbatim SQL text (including passed-through strings, identifiers,
// and comments); placeholder tokens carry their resolved form and type.
type token struct {
	kind tokenKind
	pos  Position
	text string

	form    placeholderForm
	name    string
	ordinal int
	ptype   PlaceholderType
}
