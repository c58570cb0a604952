package augsql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRequiresDialect(t *testing.T) {
	_, err := New()
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestTemplateRenderAndCacheHit(t *testing.T) {
	var logged []RenderInfo

	tpl, err := New(Postgres(), WithLog(func(_ context.Context, info RenderInfo) {
		logged = append(logged, info)
	}))
	require.NoError(t, err)

	const text = `SELECT * FROM t WHERE id = ?i`

	sql, values, err := tpl.Render(context.Background(), text, Positional(int64(1)))
	require.NoError(t, err)
	require.Equal(t, `SELECT * FROM t WHERE id = $1`, sql)
	require.Equal(t, []Value{IntValue(1)}, values)

	_, _, err = tpl.Render(context.Background(), text, Positional(int64(2)))
	require.NoError(t, err)

	require.Len(t, logged, 2)
	require.False(t, logged[0].Cached)
	require.True(t, logged[1].Cached)
}

func TestTemplateRenderInline(t *testing.T) {
	tpl, err := New(Postgres())
	require.NoError(t, err)

	sql, err := tpl.RenderInline(context.Background(), `WHERE id = ?i`, Positional(int64(3)))
	require.NoError(t, err)
	require.Equal(t, `WHERE id = 3`, sql)
}

func TestTemplateWithDisabledCacheNeverHits(t *testing.T) {
	var logged []RenderInfo

	tpl, err := New(Postgres(), DisableCache(), WithLog(func(_ context.Context, info RenderInfo) {
		logged = append(logged, info)
	}))
	require.NoError(t, err)

	const text = `SELECT 1`

	_, _, err = tpl.Render(context.Background(), text, Params{})
	require.NoError(t, err)

	_, _, err = tpl.Render(context.Background(), text, Params{})
	require.NoError(t, err)

	require.Len(t, logged, 2)
	require.False(t, logged[0].Cached)
	require.False(t, logged[1].Cached)
}

func TestTemplateUnknownDialectErrors(t *testing.T) {
	_, err := New(Config{Dialect: "oracle"})
	require.Error(t, err)
}
