package augsql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseInListFolding(t *testing.T) {
	pt, err := parse("postgres", `SELECT * FROM t WHERE id IN (?ia)`)
	require.NoError(t, err)
	require.Len(t, pt.Nodes, 1)

	in, ok := pt.Nodes[0].(*InListNode)
	require.True(t, ok)
	require.False(t, in.Negated)
	require.Equal(t, KindInt, in.Placeholder.Type.Kind)
	require.Equal(t, "SELECT * FROM t WHERE id ", in.Lead)
}

func TestParseNotInListFolding(t *testing.T) {
	pt, err := parse("postgres", `WHERE id NOT IN ( ?ia )`)
	require.NoError(t, err)

	in, ok := pt.Nodes[len(pt.Nodes)-1].(*InListNode)
	require.True(t, ok)
	require.True(t, in.Negated)
}

func TestParseInListFoldingToleratesComments(t *testing.T) {
	pt, err := parse("postgres", `WHERE id IN (/* c */ ?ia -- trailing
)`)
	require.NoError(t, err)

	in, ok := pt.Nodes[len(pt.Nodes)-1].(*InListNode)
	require.True(t, ok)
	require.False(t, in.Negated)
	require.Equal(t, KindInt, in.Placeholder.Type.Kind)
}

func TestParseBlockDirectRefsOnly(t *testing.T) {
	pt, err := parse("postgres", `{{ AND name = :name {{ AND age = :age }} }}`)
	require.NoError(t, err)
	require.Len(t, pt.Nodes, 1)

	outer, ok := pt.Nodes[0].(*BlockNode)
	require.True(t, ok)
	require.Contains(t, outer.Refs, "n:name")
	require.NotContains(t, outer.Refs, "n:age")

	var inner *BlockNode

	for _, c := range outer.Children {
		if b, ok := c.(*BlockNode); ok {
			inner = b
		}
	}

	require.NotNil(t, inner)
	require.Contains(t, inner.Refs, "n:age")
}

func TestParseUnmatchedBlockOpen(t *testing.T) {
	_, err := parse("postgres", `{{ dangling`)
	require.Error(t, err)
}

func TestParseUnmatchedBlockClose(t *testing.T) {
	_, err := parse("postgres", `dangling }}`)
	require.Error(t, err)
}

func TestParseAnonymousOrdinalsIncrement(t *testing.T) {
	pt, err := parse("postgres", `? ? ?`)
	require.NoError(t, err)
	require.Equal(t, 3, pt.PositionalCount)

	var ordinals []int

	for _, n := range pt.Nodes {
		if lit, isLit := n.(*LiteralNode); isLit {
			require.Equal(t, " ", lit.Text)

			continue
		}

		ph, ok := n.(*PlaceholderNode)
		require.True(t, ok)
		ordinals = append(ordinals, ph.Placeholder.Ordinal)
	}

	require.Equal(t, []int{1, 2, 3}, ordinals)
}

func TestParseNumberedOrdinalAdvancesMax(t *testing.T) {
	pt, err := parse("postgres", `$3 ?`)
	require.NoError(t, err)
	require.Equal(t, 4, pt.PositionalCount)
}

func TestParseNamedSetTracksDistinctNames(t *testing.T) {
	pt, err := parse("postgres", `:a = :b AND :a = :a`)
	require.NoError(t, err)
	require.Len(t, pt.NamedSet, 2)
	require.Contains(t, pt.NamedSet, "a")
	require.Contains(t, pt.NamedSet, "b")
}
