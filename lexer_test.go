package augsql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLexLiteralPassthrough(t *testing.T) {
	toks, err := lex(`SELECT 1 -- trailing comment
FROM t /* block */ WHERE "col" = 'it''s fine'`)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, tokLiteral, toks[0].kind)
}

func TestLexAnonymousPlaceholder(t *testing.T) {
	toks, err := lex(`WHERE id = ?i AND name = ?nsa`)
	require.NoError(t, err)

	var phs []token

	for _, tok := range toks {
		if tok.kind == tokPlaceholder {
			phs = append(phs, tok)
		}
	}

	require.Len(t, phs, 2)
	require.Equal(t, formAnonymous, phs[0].form)
	require.Equal(t, KindInt, phs[0].ptype.Kind)
	require.False(t, phs[0].ptype.Nullable)

	require.True(t, phs[1].ptype.Nullable)
	require.True(t, phs[1].ptype.Array)
	require.Equal(t, KindStr, phs[1].ptype.Kind)
}

func TestLexUnknownTypeSuffix(t *testing.T) {
	_, err := lex(`?zz`)
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestLexNumberedPlaceholders(t *testing.T) {
	toks, err := lex(`$1 = :2`)
	require.NoError(t, err)
	require.Len(t, toks, 3)
	require.Equal(t, formNumbered, toks[0].form)
	require.Equal(t, 1, toks[0].ordinal)
	require.Equal(t, formNumbered, toks[2].form)
	require.Equal(t, 2, toks[2].ordinal)
}

func TestLexNamedPlaceholderWithTypeTag(t *testing.T) {
	toks, err := lex(`:user_id!nua`)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, formNamed, toks[0].form)
	require.Equal(t, "user_id", toks[0].name)
	require.Equal(t, KindUInt, toks[0].ptype.Kind)
	require.True(t, toks[0].ptype.Nullable)
	require.True(t, toks[0].ptype.Array)
}

func TestLexBlockDelimiters(t *testing.T) {
	toks, err := lex(`a {{ b }} c`)
	require.NoError(t, err)
	require.Len(t, toks, 5)
	require.Equal(t, tokLiteral, toks[0].kind)
	require.Equal(t, tokBlockOpen, toks[1].kind)
	require.Equal(t, tokLiteral, toks[2].kind)
	require.Equal(t, tokBlockClose, toks[3].kind)
	require.Equal(t, tokLiteral, toks[4].kind)
}

func TestLexPostgresEscapeString(t *testing.T) {
	toks, err := lex(`E'it\'s'`)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, `E'it\'s'`, toks[0].text)
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := lex(`SELECT 'oops`)
	require.Error(t, err)
}

func TestLexUnterminatedBlockComment(t *testing.T) {
	_, err := lex(`SELECT 1 /* oops`)
	require.Error(t, err)
}

func TestLexPlaceholderInsideStringNotRecognized(t *testing.T) {
	toks, err := lex(`'?i'`)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, tokLiteral, toks[0].kind)
}
