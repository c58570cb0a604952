package augsql

import (
	"context"
	"time"

	"github.com/augsql/augsql/cache"
)

// Config holds the settings a Template is built with: dialect, cache
// shape, render options, and an optional logging hook. Individual
// settings are built with the package-level constructors below and
// layered onto a base Config with With.
type Config struct {
	Dialect       string
	ShardCount    int
	ShardCapacity int
	NoCache       bool
	Options       *Options
	Log           func(ctx context.Context, info RenderInfo)
}

// With returns a new Config with all provided configs layered on top of
// c, in order. A later config's non-zero fields override earlier ones.
func (c Config) With(configs ...Config) Config {
	merged := c

	for _, o := range configs {
		if o.Dialect != "" {
			merged.Dialect = o.Dialect
		}

		if o.ShardCount != 0 {
			merged.ShardCount = o.ShardCount
		}

		if o.ShardCapacity != 0 {
			merged.ShardCapacity = o.ShardCapacity
		}

		if o.NoCache {
			merged.NoCache = true
		}

		if o.Options != nil {
			merged.Options = o.Options
		}

		if o.Log != nil {
			merged.Log = o.Log
		}
	}

	return merged
}

// Postgres returns a Config targeting PostgreSQL's $N placeholder style.
func Postgres() Config { return Config{Dialect: "postgres"} }

// MySQL returns a Config targeting MySQL's ? placeholder style.
func MySQL() Config { return Config{Dialect: "mysql"} }

// MSSQL returns a Config targeting SQL Server's @pN placeholder style.
func MSSQL() Config { return Config{Dialect: "mssql"} }

// WithOptions sets the render Options applied to every Render call.
func WithOptions(opts Options) Config {
	return Config{Options: &opts}
}

// Cache sets the shard count and per-shard capacity of the parsed
// template cache. Zero values fall back to the cache package's defaults.
func Cache(shardCount, shardCapacity int) Config {
	return Config{ShardCount: shardCount, ShardCapacity: shardCapacity}
}

// DisableCache turns off parsed-template caching entirely; every Render
// call reparses its template text.
func DisableCache() Config {
	return Config{NoCache: true}
}

// WithLog installs a callback invoked after every Render/RenderInline
// call with timing and outcome metadata.
func WithLog(f func(ctx context.Context, info RenderInfo)) Config {
	return Config{Log: f}
}

// RenderInfo is the metadata passed to a Config's Log hook after each
// render call: how long it took, what was rendered, and whether the
// parsed template came from cache.
type RenderInfo struct {
	Duration time.Duration
	Dialect  string
	Template string
	SQL      string
	Values   []Value
	Cached   bool
	Err      error
}

func buildCache(c Config) (*cache.Cache[*ParsedTemplate], error) {
	if c.NoCache {
		return cache.Disabled[*ParsedTemplate](), nil
	}

	cc, err := cache.New[*ParsedTemplate](c.ShardCount, c.ShardCapacity)
	if err != nil {
		return nil, &ConfigurationError{Message: err.Error()}
	}

	return cc, nil
}

func resolveOptions(c Config) Options {
	if c.Options != nil {
		return *c.Options
	}

	return DefaultOptions()
}
