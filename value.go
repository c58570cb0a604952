package augsql

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// TypeKind is the closed set of placeholder type tags the grammar
// understands: ?, ?i, ?u, ?d, ?ud, ?s, ?j.
type TypeKind int

const (
	KindAny TypeKind = iota
	KindInt
	KindUInt
	KindDecimal
	KindUDecimal
	KindStr
	KindJSON
)

func (k TypeKind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindUInt:
		return "UInt"
	case KindDecimal:
		return "Decimal"
	case KindUDecimal:
		return "UDecimal"
	case KindStr:
		return "Str"
	case KindJSON:
		return "Json"
	default:
		return "Any"
	}
}

// PlaceholderType is a base kind plus two orthogonal flags: whether a
// null value is accepted, and whether the slot binds an array of the
// base kind rather than a single scalar.
type PlaceholderType struct {
	Kind     TypeKind
	Nullable bool
	Array    bool
}

// typeTag parses the suffix that follows "?" or "!" in the grammar:
// optional "n" (nullable), optional type code, optional "a" (array).
// It returns ok=false if the tag is not a recognized combination.
func typeTag(s string) (PlaceholderType, bool) {
	var pt PlaceholderType

	if len(s) > 0 && s[0] == 'n' {
		pt.Nullable = true
		s = s[1:]
	}

	if len(s) >= 2 && s[:2] == "ud" {
		pt.Kind = KindUDecimal
		s = s[2:]
	} else if len(s) >= 1 {
		switch s[0] {
		case 'i':
			pt.Kind = KindInt
			s = s[1:]
		case 'u':
			pt.Kind = KindUInt
			s = s[1:]
		case 'd':
			pt.Kind = KindDecimal
			s = s[1:]
		case 's':
			pt.Kind = KindStr
			s = s[1:]
		case 'j':
			pt.Kind = KindJSON
			s = s[1:]
		}
	}

	if len(s) > 0 && s[0] == 'a' {
		pt.Array = true
		s = s[1:]
	}

	if s != "" {
		return PlaceholderType{}, false
	}

	return pt, true
}

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	VNull ValueKind = iota
	VBool
	VInt
	VFloat
	VStr
	VBytes
	VJSON
	VArray
	VClauseFragment
)

// Value is the single currency of bound data flowing out of the renderer.
type Value struct {
	kind     ValueKind
	b        bool
	i        int64
	f        float64
	s        string
	bytes    []byte
	arr      []Value
	fragment *ClauseFragment
}

// ClauseFragment is a pre-rendered SQL snippet with its own bound values,
// produced by a clause helper (package clause) and inlined by the renderer,
// which rewrites its neutral "?" markers to the dialect's own markers.
type ClauseFragment struct {
	SQL    string
	Params []Value
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == VNull }

func Null() Value                { return Value{kind: VNull} }
func BoolValue(b bool) Value     { return Value{kind: VBool, b: b} }
func IntValue(i int64) Value     { return Value{kind: VInt, i: i} }
func FloatValue(f float64) Value { return Value{kind: VFloat, f: f} }
func StrValue(s string) Value    { return Value{kind: VStr, s: s} }
func BytesValue(b []byte) Value  { return Value{kind: VBytes, bytes: b} }
func ArrayValue(vs []Value) Value {
	return Value{kind: VArray, arr: vs}
}

func FragmentValue(f *ClauseFragment) Value {
	return Value{kind: VClauseFragment, fragment: f}
}

// JSONValue serializes arg to a compact JSON byte payload, unless arg is
// already a string or []byte, which is passed through verbatim (the
// explicit Json(...) constructor semantics).
func JSONValue(arg any) (Value, error) {
	switch t := arg.(type) {
	case string:
		return Value{kind: VJSON, s: t}, nil
	case []byte:
		return Value{kind: VJSON, s: string(t)}, nil
	case nil:
		return Null(), nil
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return Value{}, err
		}

		return Value{kind: VJSON, s: string(data)}, nil
	}
}

// AsAny converts a Value back to a plain Go value, suitable for a
// database/sql driver argument. An Array reaches this point when a typed
// array placeholder is bound outside an IN list, and converts to []any;
// a ClauseFragment never does (the renderer inlines it) and converts to nil.
func (v Value) AsAny() any {
	switch v.kind {
	case VNull:
		return nil
	case VBool:
		return v.b
	case VInt:
		return v.i
	case VFloat:
		return v.f
	case VStr:
		return v.s
	case VBytes:
		return v.bytes
	case VJSON:
		return json.RawMessage(v.s)
	case VArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.AsAny()
		}

		return out
	default:
		return nil
	}
}

func (v Value) describe() string {
	switch v.kind {
	case VNull:
		return "null"
	case VBool:
		return "bool"
	case VInt:
		return "int"
	case VFloat:
		return "float"
	case VStr:
		return "string"
	case VBytes:
		return "bytes"
	case VJSON:
		return "json"
	case VArray:
		return fmt.Sprintf("array[%d]", len(v.arr))
	case VClauseFragment:
		return "clause-fragment"
	default:
		return "unknown"
	}
}

// coerce converts a raw caller-supplied value (a Go native, an explicit
// Value, or a []any or typed slice for arrays) into a Value that satisfies pt,
// per pt's coercion rules. key/index identify the placeholder for error
// messages; key is used when known, index otherwise.
func coerce(pt PlaceholderType, raw any, key string, index int) (Value, error) {
	if raw == nil {
		if pt.Nullable {
			return Null(), nil
		}

		return Value{}, paramErr(key, index, pt.String(), "null")
	}

	if v, ok := raw.(Value); ok {
		if v.kind == VClauseFragment {
			return v, nil
		}

		if v.kind == VNull {
			if pt.Nullable {
				return Null(), nil
			}

			return Value{}, paramErr(key, index, pt.String(), "null")
		}

		if !pt.Array {
			return coerceScalarValue(pt, v, key, index)
		}
	}

	if f, ok := raw.(*ClauseFragment); ok {
		return FragmentValue(f), nil
	}

	if pt.Array {
		return coerceArray(pt, raw, key, index)
	}

	return coerceScalar(pt, raw, key, index)
}

func (pt PlaceholderType) String() string {
	s := pt.Kind.String()
	if pt.Nullable {
		s = "nullable " + s
	}
	if pt.Array {
		s += " array"
	}

	return s
}

func paramErr(key string, index int, expected, got string) error {
	return &ParameterError{Key: key, Index: index, Expected: expected, Got: got}
}

func coerceArray(pt PlaceholderType, raw any, key string, index int) (Value, error) {
	var elems []any

	switch t := raw.(type) {
	case []any:
		elems = t
	case Value:
		if t.kind == VArray {
			out := make([]Value, len(t.arr))

			for i, e := range t.arr {
				scalarPT := pt
				scalarPT.Array = false

				if e.kind == VNull {
					if !pt.Nullable {
						return Value{}, paramErr(fmt.Sprintf("%s[%d]", key, i), index, pt.Kind.String(), "null")
					}

					out[i] = Null()

					continue
				}

				cv, err := coerceScalarValue(scalarPT, e, key, index)
				if err != nil {
					return Value{}, err
				}

				out[i] = cv
			}

			return ArrayValue(out), nil
		}

		return Value{}, paramErr(key, index, pt.Kind.String()+" array", t.describe())
	default:
		elems = reflectToSlice(raw)
		if elems == nil {
			return Value{}, paramErr(key, index, pt.Kind.String()+" array", fmt.Sprintf("%T", raw))
		}
	}

	out := make([]Value, len(elems))
	scalarPT := pt
	scalarPT.Array = false

	for i, e := range elems {
		if e == nil {
			if !pt.Nullable {
				return Value{}, paramErr(fmt.Sprintf("%s[%d]", key, i), index, pt.Kind.String(), "null")
			}

			out[i] = Null()

			continue
		}

		cv, err := coerceScalar(scalarPT, e, fmt.Sprintf("%s[%d]", key, i), index)
		if err != nil {
			return Value{}, err
		}

		out[i] = cv
	}

	return ArrayValue(out), nil
}

func coerceScalarValue(pt PlaceholderType, v Value, key string, index int) (Value, error) {
	return coerceScalar(pt, v.AsAny(), key, index)
}

func coerceScalar(pt PlaceholderType, raw any, key string, index int) (Value, error) {
	switch pt.Kind {
	case KindAny:
		return anyToValue(raw)
	case KindInt:
		return coerceInt(raw, key, index, false)
	case KindUInt:
		return coerceInt(raw, key, index, true)
	case KindDecimal:
		return coerceDecimal(raw, key, index, false)
	case KindUDecimal:
		return coerceDecimal(raw, key, index, true)
	case KindStr:
		s, ok := raw.(string)
		if !ok {
			return Value{}, paramErr(key, index, "Str", fmt.Sprintf("%T", raw))
		}

		return StrValue(s), nil
	case KindJSON:
		return JSONValue(raw)
	default:
		return anyToValue(raw)
	}
}

func anyToValue(raw any) (Value, error) {
	switch t := raw.(type) {
	case bool:
		return BoolValue(t), nil
	case string:
		return StrValue(t), nil
	case []byte:
		return BytesValue(t), nil
	case int:
		return IntValue(int64(t)), nil
	case int8:
		return IntValue(int64(t)), nil
	case int16:
		return IntValue(int64(t)), nil
	case int32:
		return IntValue(int64(t)), nil
	case int64:
		return IntValue(t), nil
	case uint:
		return IntValue(int64(t)), nil
	case uint32:
		return IntValue(int64(t)), nil
	case uint64:
		return IntValue(int64(t)), nil
	case float32:
		return FloatValue(float64(t)), nil
	case float64:
		return FloatValue(t), nil
	case decimal.Decimal:
		return StrValue(t.String()), nil
	default:
		return Value{}, paramErr("", 0, "Any", fmt.Sprintf("%T", raw))
	}
}

func coerceInt(raw any, key string, index int, unsigned bool) (Value, error) {
	var i int64

	switch t := raw.(type) {
	case int:
		i = int64(t)
	case int8:
		i = int64(t)
	case int16:
		i = int64(t)
	case int32:
		i = int64(t)
	case int64:
		i = t
	case uint:
		i = int64(t)
	case uint32:
		i = int64(t)
	case uint64:
		if t > math.MaxInt64 {
			return Value{}, paramErr(key, index, kindName(unsigned), "overflow")
		}

		i = int64(t)
	case float32:
		i = int64(t)

		if float64(i) != float64(t) {
			return Value{}, paramErr(key, index, kindName(unsigned), "float with fractional part")
		}
	case float64:
		i = int64(t)

		if float64(i) != t {
			return Value{}, paramErr(key, index, kindName(unsigned), "float with fractional part")
		}
	case string:
		parsed, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return Value{}, paramErr(key, index, kindName(unsigned), "non-numeric string")
		}

		i = parsed
	default:
		return Value{}, paramErr(key, index, kindName(unsigned), fmt.Sprintf("%T", raw))
	}

	if unsigned && i < 0 {
		return Value{}, paramErr(key, index, "UInt", "negative")
	}

	return IntValue(i), nil
}

func kindName(unsigned bool) string {
	if unsigned {
		return "UInt"
	}

	return "Int"
}

// coerceDecimal preserves precision: a numeric string is validated as a
// decimal.Decimal and then bound as the original string, unchanged, rather
// than round-tripped through float64.
func coerceDecimal(raw any, key string, index int, unsigned bool) (Value, error) {
	name := "Decimal"
	if unsigned {
		name = "UDecimal"
	}

	var d decimal.Decimal

	verbatim := ""

	switch t := raw.(type) {
	case decimal.Decimal:
		d = t
	case string:
		parsed, err := decimal.NewFromString(t)
		if err != nil {
			return Value{}, paramErr(key, index, name, "non-numeric string")
		}

		d = parsed
		verbatim = t
	case int:
		d = decimal.NewFromInt(int64(t))
	case int64:
		d = decimal.NewFromInt(t)
	case float32:
		d = decimal.NewFromFloat(float64(t))
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return Value{}, paramErr(key, index, name, "non-finite float")
		}

		d = decimal.NewFromFloat(t)
	default:
		return Value{}, paramErr(key, index, name, fmt.Sprintf("%T", raw))
	}

	if unsigned && d.IsNegative() {
		return Value{}, paramErr(key, index, name, "negative")
	}

	if verbatim != "" {
		return StrValue(verbatim), nil
	}

	return StrValue(d.String()), nil
}

// reflectToSlice best-effort converts a concrete typed slice (e.g.
// []string, []int64) into []any so coerceArray can walk it element by
// element. Returns nil if raw is not a slice.
func reflectToSlice(raw any) []any {
	switch t := raw.(type) {
	case []string:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = v
		}

		return out
	case []int:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = v
		}

		return out
	case []int64:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = v
		}

		return out
	case []float64:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = v
		}

		return out
	case []Value:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = v
		}

		return out
	default:
		return nil
	}
}
