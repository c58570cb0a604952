package augsql

import "regexp"

// fill matches a run of whitespace and/or SQL comments (block or line),
// the same filler the lexer itself skips over between tokens, so folding
// doesn't care whether "IN (" and the placeholder are separated by plain
// spaces or a commented-out aside.
const fill = `(?:\s+|/\*[\s\S]*?\*/|--[^\n]*(?:\n|$))*`

var (
	reNotInTail = regexp.MustCompile(`(?i)\bNOT\s+IN\s*\(` + fill + `$`)
	reInTail    = regexp.MustCompile(`(?i)\bIN\s*\(` + fill + `$`)
	reHeadClose = regexp.MustCompile(`^` + fill + `\)`)
)

// parse turns a template string into a ParsedTemplate with a single
// left-to-right reduction over the token stream.
func parse(dialect, src string) (*ParsedTemplate, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks, namedSet: map[string]struct{}{}}

	nodes, err := p.run()
	if err != nil {
		return nil, err
	}

	return &ParsedTemplate{
		Dialect:         dialect,
		Text:            src,
		Nodes:           nodes,
		PositionalCount: p.maxOrdinal,
		NamedSet:        p.namedSet,
	}, nil
}

type parser struct {
	toks       []token
	stack      []*BlockNode
	top        []Node
	maxOrdinal int
	namedSet   map[string]struct{}
}

func (p *parser) append(n Node) {
	if len(p.stack) > 0 {
		b := p.stack[len(p.stack)-1]
		b.Children = append(b.Children, n)

		return
	}

	p.top = append(p.top, n)
}

func (p *parser) addRef(ph Placeholder) {
	if len(p.stack) == 0 {
		return
	}

	b := p.stack[len(p.stack)-1]
	b.Refs[ph.key()] = ph
}

func (p *parser) run() ([]Node, error) {
	i := 0

	for i < len(p.toks) {
		tok := p.toks[i]

		switch tok.kind {
		case tokLiteral:
			if consumed := p.tryInList(i); consumed > 0 {
				i += consumed

				continue
			}

			if tok.text != "" {
				p.append(&LiteralNode{Text: tok.text})
			}

			i++

		case tokBlockOpen:
			p.stack = append(p.stack, &BlockNode{Refs: map[string]Placeholder{}})
			i++

		case tokBlockClose:
			if len(p.stack) == 0 {
				return nil, &ParseError{Pos: tok.pos, Message: "unmatched '}}'"}
			}

			b := p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.append(b)
			i++

		case tokPlaceholder:
			ph := p.resolve(tok)
			p.addRef(ph)
			p.append(&PlaceholderNode{Placeholder: ph})
			i++
		}
	}

	if len(p.stack) > 0 {
		return nil, &ParseError{Message: "unmatched '{{' at end of template"}
	}

	return p.top, nil
}

// tryInList looks for "<lead>IN (" ending the literal at i, a placeholder
// at i+1, and ")<trail>" starting the literal at i+2. It returns the
// number of tokens folded (3) on a match, or 0 otherwise. This detection
// is purely lexical, with no understanding of surrounding SQL.
func (p *parser) tryInList(i int) int {
	if i+2 >= len(p.toks) {
		return 0
	}

	lit := p.toks[i]
	ph := p.toks[i+1]
	trailTok := p.toks[i+2]

	if ph.kind != tokPlaceholder || trailTok.kind != tokLiteral {
		return 0
	}

	negated := false

	loc := reNotInTail.FindStringIndex(lit.text)
	if loc != nil {
		negated = true
	} else {
		loc = reInTail.FindStringIndex(lit.text)
	}

	if loc == nil {
		return 0
	}

	closeLoc := reHeadClose.FindStringIndex(trailTok.text)
	if closeLoc == nil {
		return 0
	}

	lead := lit.text[:loc[0]]
	trail := trailTok.text[closeLoc[1]:]

	placeholder := p.resolve(ph)
	p.addRef(placeholder)
	p.append(&InListNode{Lead: lead, Trail: trail, Placeholder: placeholder, Negated: negated})

	return 3
}

func (p *parser) resolve(tok token) Placeholder {
	ph := Placeholder{Pos: tok.pos, Type: tok.ptype}

	switch tok.form {
	case formNamed:
		ph.Name = tok.name
		p.namedSet[tok.name] = struct{}{}
	case formNumbered:
		ph.Ordinal = tok.ordinal

		if tok.ordinal > p.maxOrdinal {
			p.maxOrdinal = tok.ordinal
		}
	default:
		p.maxOrdinal++
		ph.Ordinal = p.maxOrdinal
	}

	return ph
}
