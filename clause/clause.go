// Package clause implements three whitelisted SQL-fragment helpers:
// SelectClause, ByClause, and PaginateClause. Each produces an
// augsql.ClauseFragment that the caller places under a named
// placeholder; the renderer inlines its SQL, rewriting only its "?"
// markers, and never injects a user-supplied identifier itself.
package clause

import (
	"strconv"
	"strings"

	"github.com/augsql/augsql"
)

// SelectClause renders a whitelisted column list. Unknown display names
// passed to Render are silently dropped.
type SelectClause struct {
	whitelist map[string]string
}

// NewSelectClause builds a SelectClause from a display-name → SQL
// expression whitelist. A bare expression equal to its own display name
// is treated as an identity alias (no "AS" suffix). The whitelist must be
// non-empty; construction-time validation surfaces a ConfigurationError
// synchronously rather than deferring the failure to Render.
func NewSelectClause(whitelist map[string]string) (*SelectClause, error) {
	if len(whitelist) == 0 {
		return nil, &augsql.ConfigurationError{Message: "select clause whitelist must not be empty"}
	}

	cloned := make(map[string]string, len(whitelist))
	for k, v := range whitelist {
		cloned[k] = v
	}

	return &SelectClause{whitelist: cloned}, nil
}

// Render joins the allowed expressions named by names, in order, aliasing
// each with its dialect-quoted display name unless the entry is an
// identity alias.
func (c *SelectClause) Render(dialect augsql.Dialect, names []string) (*augsql.ClauseFragment, error) {
	parts := make([]string, 0, len(names))

	for _, name := range names {
		expr, ok := c.whitelist[name]
		if !ok {
			continue
		}

		if expr == name {
			parts = append(parts, expr)

			continue
		}

		quoted, err := dialect.QuoteIdent(name)
		if err != nil {
			return nil, err
		}

		parts = append(parts, expr+" AS "+quoted)
	}

	return &augsql.ClauseFragment{SQL: strings.Join(parts, ", ")}, nil
}

// ByEntry is one ORDER BY / GROUP BY entry: a whitelisted display name and
// an optional direction. An empty Direction means the bare-name form
// (implicit ASC).
type ByEntry struct {
	Name      string
	Direction string
}

// ByClause renders a whitelisted ORDER BY / GROUP BY list. Direction
// strings are trimmed and upper-cased; anything other than ASC/DESC
// defaults to ASC.
type ByClause struct {
	whitelist map[string]string
}

// NewByClause builds a ByClause from the same whitelist shape as
// SelectClause.
func NewByClause(whitelist map[string]string) (*ByClause, error) {
	if len(whitelist) == 0 {
		return nil, &augsql.ConfigurationError{Message: "by clause whitelist must not be empty"}
	}

	cloned := make(map[string]string, len(whitelist))
	for k, v := range whitelist {
		cloned[k] = v
	}

	return &ByClause{whitelist: cloned}, nil
}

// Render joins the allowed entries, in order, unknown display names
// silently dropped.
func (c *ByClause) Render(entries []ByEntry) (*augsql.ClauseFragment, error) {
	parts := make([]string, 0, len(entries))

	for _, e := range entries {
		expr, ok := c.whitelist[e.Name]
		if !ok {
			continue
		}

		dir := strings.ToUpper(strings.TrimSpace(e.Direction))
		if dir != "ASC" && dir != "DESC" {
			dir = "ASC"
		}

		parts = append(parts, expr+" "+dir)
	}

	return &augsql.ClauseFragment{SQL: strings.Join(parts, ", ")}, nil
}

// PaginateClause is a stateful LIMIT/OFFSET builder: perPage is the
// default page size, clamped at invocation time to [minPerPage,
// maxPerPage].
type PaginateClause struct {
	perPage    int
	minPerPage int
	maxPerPage int
}

// NewPaginateClause validates and builds a PaginateClause. minPerPage
// must not exceed maxPerPage, and perPage must be positive; violations
// surface synchronously as a ConfigurationError.
func NewPaginateClause(perPage, minPerPage, maxPerPage int) (*PaginateClause, error) {
	if perPage <= 0 {
		return nil, &augsql.ConfigurationError{Message: "paginate clause perPage must be positive"}
	}

	if minPerPage > maxPerPage {
		return nil, &augsql.ConfigurationError{Message: "paginate clause minPerPage must not exceed maxPerPage"}
	}

	return &PaginateClause{perPage: perPage, minPerPage: minPerPage, maxPerPage: maxPerPage}, nil
}

// Render clamps perPage (or the clause's default, if nil) to
// [minPerPage, maxPerPage] and produces a "LIMIT <n> OFFSET <page*n>"
// fragment with n and the offset bound as values rather than inlined as
// literal text.
func (c *PaginateClause) Render(page int, perPage *int) (*augsql.ClauseFragment, error) {
	if page < 0 {
		return nil, &augsql.ParameterError{Message: "page must be >= 0, got " + strconv.Itoa(page)}
	}

	pp := c.perPage
	if perPage != nil {
		pp = *perPage
	}

	if pp < c.minPerPage {
		pp = c.minPerPage
	}

	if pp > c.maxPerPage {
		pp = c.maxPerPage
	}

	offset := page * pp

	return &augsql.ClauseFragment{
		SQL:    "LIMIT ? OFFSET ?",
		Params: []augsql.Value{augsql.IntValue(int64(pp)), augsql.IntValue(int64(offset))},
	}, nil
}
