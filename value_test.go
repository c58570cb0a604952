package augsql

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestTypeTagParsing(t *testing.T) {
	cases := []struct {
		tag  string
		want PlaceholderType
	}{
		{"", PlaceholderType{Kind: KindAny}},
		{"i", PlaceholderType{Kind: KindInt}},
		{"u", PlaceholderType{Kind: KindUInt}},
		{"d", PlaceholderType{Kind: KindDecimal}},
		{"ud", PlaceholderType{Kind: KindUDecimal}},
		{"s", PlaceholderType{Kind: KindStr}},
		{"j", PlaceholderType{Kind: KindJSON}},
		{"ni", PlaceholderType{Kind: KindInt, Nullable: true}},
		{"ia", PlaceholderType{Kind: KindInt, Array: true}},
		{"nuda", PlaceholderType{Kind: KindUDecimal, Nullable: true, Array: true}},
	}

	for _, c := range cases {
		got, ok := typeTag(c.tag)
		require.True(t, ok, c.tag)
		require.Equal(t, c.want, got, c.tag)
	}
}

func TestTypeTagRejectsUnknownSuffix(t *testing.T) {
	_, ok := typeTag("zz")
	require.False(t, ok)
}

func TestCoerceDecimalPreservesPrecision(t *testing.T) {
	v, err := coerce(PlaceholderType{Kind: KindDecimal}, "10.00", "price", 0)
	require.NoError(t, err)
	require.Equal(t, "10.00", v.AsAny())
}

func TestCoerceUDecimalRejectsNegative(t *testing.T) {
	_, err := coerce(PlaceholderType{Kind: KindUDecimal}, "-1.5", "price", 0)
	require.Error(t, err)
}

func TestCoerceDecimalFromNativeDecimal(t *testing.T) {
	d := decimal.RequireFromString("3.14159")

	v, err := coerce(PlaceholderType{Kind: KindDecimal}, d, "pi", 0)
	require.NoError(t, err)
	require.Equal(t, "3.14159", v.AsAny())
}

func TestCoerceIntRejectsFractionalFloat(t *testing.T) {
	_, err := coerce(PlaceholderType{Kind: KindInt}, 3.5, "n", 0)
	require.Error(t, err)
}

func TestCoerceUIntRejectsNegative(t *testing.T) {
	_, err := coerce(PlaceholderType{Kind: KindUInt}, -1, "n", 0)
	require.Error(t, err)
}

func TestCoerceNullRequiresNullable(t *testing.T) {
	_, err := coerce(PlaceholderType{Kind: KindInt}, nil, "n", 0)
	require.Error(t, err)

	v, err := coerce(PlaceholderType{Kind: KindInt, Nullable: true}, nil, "n", 0)
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestCoerceArrayOfStrings(t *testing.T) {
	v, err := coerce(PlaceholderType{Kind: KindStr, Array: true}, []string{"a", "b"}, "names", 0)
	require.NoError(t, err)
	require.Equal(t, VArray, v.Kind())

	out := v.AsAny().([]any)
	require.Equal(t, []any{"a", "b"}, out)
}

func TestJSONValuePassesThroughStringAndMarshalsOther(t *testing.T) {
	v, err := JSONValue(`{"a":1}`)
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(v.AsAny().(json.RawMessage)))

	v2, err := JSONValue(map[string]int{"a": 1})
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(v2.AsAny().(json.RawMessage)))
}
