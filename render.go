package augsql

import (
	"fmt"
	"strconv"
	"strings"
)

// Options controls render-time behavior that is orthogonal to the
// template and dialect.
type Options struct {
	// CollapsibleIN rewrites an empty IN (...) to FALSE and NOT IN (...)
	// to TRUE instead of raising a ParameterError. Default true.
	CollapsibleIN bool
	// AssocArrays is an opaque passthrough affecting only downstream
	// row-decoding behavior; the core never inspects it.
	AssocArrays bool
	// ApplicationName is an opaque passthrough, not interpreted by the
	// core.
	ApplicationName string
	// DebugComments annotates elided (non-IN) blocks with a trailing SQL
	// comment naming nothing in particular; collapsed IN/NOT IN always
	// carries its comment regardless of this flag. Default false.
	DebugComments bool
}

// DefaultOptions returns the default render options: collapsible IN
// enabled, debug comments on skipped blocks disabled.
func DefaultOptions() Options {
	return Options{CollapsibleIN: true}
}

// Render walks a ParsedTemplate's IR against params and emits a SQL
// string plus the ordered values to bind.
func Render(pt *ParsedTemplate, dialect Dialect, params Params, opts Options) (string, []Value, error) {
	r := &renderer{dialect: dialect, params: params, opts: opts, reuse: map[string]int{}}

	if err := r.renderNodes(pt.Nodes); err != nil {
		return "", nil, err
	}

	return r.buf.String(), r.values, nil
}

// RenderInline is the "inline dry" render mode: it substitutes literal
// SQL text for every bound value instead of a marker, producing a string
// unsuitable for execution and intended only for logs.
func RenderInline(pt *ParsedTemplate, dialect Dialect, params Params, opts Options) (string, error) {
	r := &renderer{dialect: dialect, params: params, opts: opts, reuse: map[string]int{}, inline: true}

	if err := r.renderNodes(pt.Nodes); err != nil {
		return "", err
	}

	return r.buf.String(), nil
}

type renderer struct {
	dialect Dialect
	params  Params
	opts    Options
	inline  bool

	buf           strings.Builder
	values        []Value
	markerCounter int
	reuse         map[string]int // placeholder key -> already-bound marker ordinal (Postgres positional reuse)
}

func (r *renderer) renderNodes(nodes []Node) error {
	for _, n := range nodes {
		if err := r.renderNode(n); err != nil {
			return err
		}
	}

	return nil
}

func (r *renderer) renderNode(n Node) error {
	switch v := n.(type) {
	case *LiteralNode:
		r.buf.WriteString(v.Text)

		return nil
	case *PlaceholderNode:
		return r.renderPlaceholder(v.Placeholder)
	case *InListNode:
		return r.renderInList(v)
	case *BlockNode:
		return r.renderBlock(v)
	default:
		return fmt.Errorf("augsql: unknown node type %T", n)
	}
}

// renderBlock implements the block-satisfaction rule: a block is skipped
// iff any placeholder it directly references is absent from params. A
// present-but-null value under a non-nullable placeholder is not a skip
// condition — the block renders and the placeholder's own coercion
// raises ParameterError.
func (r *renderer) renderBlock(b *BlockNode) error {
	for _, ph := range b.Refs {
		if _, present := r.params.lookup(ph); !present {
			if r.opts.DebugComments {
				r.buf.WriteString("/* skipped */")
			}

			return nil
		}
	}

	return r.renderNodes(b.Children)
}

func (r *renderer) renderPlaceholder(ph Placeholder) error {
	raw, present := r.params.lookup(ph)
	if !present {
		return missingPlaceholder(ph.displayKey())
	}

	v, err := coerce(ph.Type, raw, ph.displayKey(), ph.Ordinal)
	if err != nil {
		return err
	}

	if v.kind == VClauseFragment {
		return r.inlineFragment(v.fragment)
	}

	return r.bind(ph, v)
}

// bind emits a marker (or literal, in inline mode) and records v, honoring
// the positional-reuse rule: a named placeholder referenced more than
// once binds its value exactly once on dialects that support positional
// reuse (Postgres' $1), and once per occurrence otherwise.
func (r *renderer) bind(ph Placeholder, v Value) error {
	if r.inline {
		lit, err := r.inlineLiteral(v)
		if err != nil {
			return err
		}

		r.buf.WriteString(lit)

		return nil
	}

	if r.dialect.PositionalReuse() {
		key := ph.key()

		if ordinal, ok := r.reuse[key]; ok {
			r.buf.WriteString(r.dialect.Marker(ordinal))

			return nil
		}

		r.values = append(r.values, v)
		r.markerCounter++
		r.reuse[key] = r.markerCounter
		r.buf.WriteString(r.dialect.Marker(r.markerCounter))

		return nil
	}

	r.values = append(r.values, v)
	r.markerCounter++
	r.buf.WriteString(r.dialect.Marker(r.markerCounter))

	return nil
}

// inlineFragment splices a ClauseFragment's SQL into the output,
// rewriting its neutral "?" placeholders (doubled "??" escapes a literal
// question mark) to the renderer's current dialect/counter scheme, one
// per entry in f.Params, in order. Keeping fragments dialect-agnostic at
// authoring time lets clause helpers be built once and rendered under
// any dialect.
func (r *renderer) inlineFragment(f *ClauseFragment) error {
	sql := f.SQL
	args := f.Params

	for {
		idx := strings.IndexByte(sql, '?')
		if idx < 0 {
			r.buf.WriteString(sql)

			return nil
		}

		if idx+1 < len(sql) && sql[idx+1] == '?' {
			r.buf.WriteString(sql[:idx+1])
			sql = sql[idx+2:]

			continue
		}

		if len(args) == 0 {
			return fmt.Errorf("augsql: clause fragment references more placeholders than bound params")
		}

		r.buf.WriteString(sql[:idx])

		v := args[0]
		args = args[1:]
		sql = sql[idx+1:]

		if r.inline {
			lit, err := r.inlineLiteral(v)
			if err != nil {
				return err
			}

			r.buf.WriteString(lit)

			continue
		}

		if err := r.bindRaw(v); err != nil {
			return err
		}
	}
}

// bindRaw binds v to a fresh marker with no positional-reuse bookkeeping;
// used for IN-list expansion and clause-fragment splicing, where each
// occurrence is logically a distinct value.
func (r *renderer) bindRaw(v Value) error {
	r.values = append(r.values, v)
	r.markerCounter++
	r.buf.WriteString(r.dialect.Marker(r.markerCounter))

	return nil
}

func (r *renderer) renderInList(n *InListNode) error {
	raw, present := r.params.lookup(n.Placeholder)

	var elems []Value

	if present {
		es, err := r.inListElements(n.Placeholder, raw)
		if err != nil {
			return err
		}

		elems = es
	} else if !r.opts.CollapsibleIN {
		return missingPlaceholder(n.Placeholder.displayKey())
	}

	if len(elems) == 0 {
		if !r.opts.CollapsibleIN {
			return &ParameterError{
				Key:     n.Placeholder.displayKey(),
				Message: fmt.Sprintf("empty IN list for %q under strict mode", n.Placeholder.displayKey()),
			}
		}

		r.buf.WriteString(n.Lead)

		if n.Negated {
			r.buf.WriteString("TRUE /* NOT IN ")
		} else {
			r.buf.WriteString("FALSE /* IN ")
		}

		r.buf.WriteString(n.Placeholder.displayKey())
		r.buf.WriteString(" */")
		r.buf.WriteString(n.Trail)

		return nil
	}

	r.buf.WriteString(n.Lead)

	if n.Negated {
		r.buf.WriteString("NOT IN (")
	} else {
		r.buf.WriteString("IN (")
	}

	for i, v := range elems {
		if i > 0 {
			r.buf.WriteString(", ")
		}

		if r.inline {
			lit, err := r.inlineLiteral(v)
			if err != nil {
				return err
			}

			r.buf.WriteString(lit)

			continue
		}

		if err := r.bindRaw(v); err != nil {
			return err
		}
	}

	r.buf.WriteString(")")
	r.buf.WriteString(n.Trail)

	return nil
}

// inListElements resolves the array of scalar Values an IN/NOT IN list
// binds, auto-wrapping a non-array scalar into a one-element list.
func (r *renderer) inListElements(ph Placeholder, raw any) ([]Value, error) {
	scalarType := ph.Type
	scalarType.Array = false

	var elemsAny []any

	switch t := raw.(type) {
	case []any:
		elemsAny = t
	case Value:
		if t.kind == VArray {
			out := make([]Value, len(t.arr))

			for i, e := range t.arr {
				if e.kind == VNull {
					if !ph.Type.Nullable {
						return nil, paramErr(fmt.Sprintf("%s[%d]", ph.displayKey(), i), 0, scalarType.Kind.String(), "null")
					}

					out[i] = Null()

					continue
				}

				cv, err := coerceScalar(scalarType, e.AsAny(), fmt.Sprintf("%s[%d]", ph.displayKey(), i), 0)
				if err != nil {
					return nil, err
				}

				out[i] = cv
			}

			return out, nil
		}

		elemsAny = []any{raw}
	default:
		if s := reflectToSlice(raw); s != nil {
			elemsAny = s
		} else {
			elemsAny = []any{raw}
		}
	}

	out := make([]Value, len(elemsAny))

	for i, e := range elemsAny {
		if e == nil {
			if !ph.Type.Nullable {
				return nil, paramErr(fmt.Sprintf("%s[%d]", ph.displayKey(), i), 0, scalarType.Kind.String(), "null")
			}

			out[i] = Null()

			continue
		}

		v, err := coerceScalar(scalarType, e, fmt.Sprintf("%s[%d]", ph.displayKey(), i), 0)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

// inlineLiteral formats v as SQL text suitable only for logs: strings are
// single-quoted with doubled-quote escaping, NULL and booleans follow the
// dialect, and the unicode string prefix is applied.
func (r *renderer) inlineLiteral(v Value) (string, error) {
	switch v.kind {
	case VNull:
		return r.dialect.NullLiteral(), nil
	case VBool:
		return r.dialect.BoolLiteral(v.b), nil
	case VInt:
		return strconv.FormatInt(v.i, 10), nil
	case VFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64), nil
	case VStr:
		return r.dialect.UnicodeStringPrefix() + quoteLiteral(v.s), nil
	case VJSON:
		return quoteLiteral(v.s), nil
	case VBytes:
		return quoteLiteral(string(v.bytes)), nil
	default:
		return "", fmt.Errorf("augsql: cannot inline value kind %v", v.kind)
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
