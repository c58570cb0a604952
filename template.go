package augsql

import (
	"context"
	"time"

	"github.com/augsql/augsql/cache"
)

// Template bundles a dialect, a parsed-template cache, render options,
// and an optional logging hook into a single reusable entry point for
// rendering templates against params.
type Template struct {
	dialect Dialect
	cache   *cache.Cache[*ParsedTemplate]
	opts    Options
	log     func(ctx context.Context, info RenderInfo)
}

// New builds a Template from a layered Config. The Config's Dialect field
// is required.
func New(configs ...Config) (*Template, error) {
	c := Config{}.With(configs...)

	if c.Dialect == "" {
		return nil, &ConfigurationError{Message: "template requires a dialect"}
	}

	dialect, err := dialectByName(c.Dialect)
	if err != nil {
		return nil, err
	}

	ch, err := buildCache(c)
	if err != nil {
		return nil, err
	}

	return &Template{
		dialect: dialect,
		cache:   ch,
		opts:    resolveOptions(c),
		log:     c.Log,
	}, nil
}

// Dialect reports the dialect this Template renders for.
func (t *Template) Dialect() Dialect { return t.dialect }

func (t *Template) parse(text string) (*ParsedTemplate, bool, error) {
	key := t.dialect.Name() + "\x00" + text

	if pt, ok := t.cache.Get(key); ok {
		return pt, true, nil
	}

	pt, err := parse(t.dialect.Name(), text)
	if err != nil {
		return nil, false, err
	}

	t.cache.Put(key, pt)

	return pt, false, nil
}

// Render parses (or retrieves from cache) text and renders it against
// params, returning the SQL string and ordered bind values.
func (t *Template) Render(ctx context.Context, text string, params Params) (sql string, values []Value, err error) {
	start := time.Now()

	var cached bool

	defer func() {
		if t.log != nil {
			t.log(ctx, RenderInfo{
				Duration: time.Since(start),
				Dialect:  t.dialect.Name(),
				Template: text,
				SQL:      sql,
				Values:   values,
				Cached:   cached,
				Err:      err,
			})
		}
	}()

	pt, isCached, err := t.parse(text)
	if err != nil {
		return "", nil, err
	}

	cached = isCached

	sql, values, err = Render(pt, t.dialect, params, t.opts)
	if err != nil {
		return "", nil, err
	}

	return sql, values, nil
}

// RenderInline parses (or retrieves from cache) text and renders it
// against params with every bound value inlined as literal SQL text,
// intended only for logging — the result is not safe to execute.
func (t *Template) RenderInline(ctx context.Context, text string, params Params) (sql string, err error) {
	start := time.Now()

	var cached bool

	defer func() {
		if t.log != nil {
			t.log(ctx, RenderInfo{
				Duration: time.Since(start),
				Dialect:  t.dialect.Name(),
				Template: text,
				SQL:      sql,
				Cached:   cached,
				Err:      err,
			})
		}
	}()

	pt, isCached, err := t.parse(text)
	if err != nil {
		return "", err
	}

	cached = isCached

	sql, err = RenderInline(pt, t.dialect, params, t.opts)
	if err != nil {
		return "", err
	}

	return sql, nil
}
