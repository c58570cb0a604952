package augsql

import (
	"strconv"
	"strings"
)

// Dialect is the pure-function surface a SQL dialect must provide:
// placeholder marker, identifier quoting, boolean/null/unicode-string
// literals, and LIKE-pattern escaping.
type Dialect interface {
	Name() string
	Marker(ordinal int) string
	QuoteIdent(name string) (string, error)
	BoolLiteral(b bool) string
	NullLiteral() string
	UnicodeStringPrefix() string
	EscapeLike(s string) string
	// PositionalReuse reports whether a single bound value can be
	// referenced by position more than once (Postgres' $1), as opposed to
	// needing one bind per occurrence (MySQL's ?).
	PositionalReuse() bool
}

var identAlphabet = func() [256]bool {
	var a [256]bool

	for c := 'a'; c <= 'z'; c++ {
		a[c] = true
	}

	for c := 'A'; c <= 'Z'; c++ {
		a[c] = true
	}

	for c := '0'; c <= '9'; c++ {
		a[c] = true
	}

	a['_'] = true

	return a
}()

func validateIdent(name string) error {
	if name == "" {
		return &ValidationError{Input: name, Message: "identifier must not be empty"}
	}

	for i := 0; i < len(name); i++ {
		if !identAlphabet[name[i]] {
			return &ValidationError{Input: name, Message: "identifier contains characters outside the permitted alphabet"}
		}
	}

	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

	return r.Replace(s)
}

type postgres struct{}

func (postgres) Name() string                 { return "postgres" }
func (postgres) Marker(ordinal int) string     { return "$" + strconv.Itoa(ordinal) }
func (postgres) BoolLiteral(b bool) string     { return boolWord(b) }
func (postgres) NullLiteral() string           { return "NULL" }
func (postgres) UnicodeStringPrefix() string   { return "" }
func (postgres) EscapeLike(s string) string    { return escapeLike(s) }
func (postgres) PositionalReuse() bool         { return true }

func (postgres) QuoteIdent(name string) (string, error) {
	if err := validateIdent(name); err != nil {
		return "", err
	}

	return `"` + name + `"`, nil
}

type mysql struct{}

func (mysql) Name() string               { return "mysql" }
func (mysql) Marker(int) string          { return "?" }
func (mysql) BoolLiteral(b bool) string  { return boolWord(b) }
func (mysql) NullLiteral() string        { return "NULL" }
func (mysql) UnicodeStringPrefix() string { return "" }
func (mysql) EscapeLike(s string) string { return escapeLike(s) }
func (mysql) PositionalReuse() bool      { return false }

func (mysql) QuoteIdent(name string) (string, error) {
	if err := validateIdent(name); err != nil {
		return "", err
	}

	return "`" + name + "`", nil
}

type mssql struct{}

func (mssql) Name() string                { return "mssql" }
func (mssql) Marker(ordinal int) string   { return "@p" + strconv.Itoa(ordinal) }
func (mssql) BoolLiteral(b bool) string   { return boolBit(b) }
func (mssql) NullLiteral() string         { return "NULL" }
func (mssql) UnicodeStringPrefix() string { return "N" }
func (mssql) EscapeLike(s string) string  { return escapeLike(s) }
func (mssql) PositionalReuse() bool       { return false }

func (mssql) QuoteIdent(name string) (string, error) {
	if err := validateIdent(name); err != nil {
		return "", err
	}

	return "[" + name + "]", nil
}

func boolWord(b bool) string {
	if b {
		return "TRUE"
	}

	return "FALSE"
}

func boolBit(b bool) string {
	if b {
		return "1"
	}

	return "0"
}

var (
	dialectPostgres Dialect = postgres{}
	dialectMySQL    Dialect = mysql{}
	dialectMSSQL    Dialect = mssql{}
)

// PostgresDialect returns the PostgreSQL Dialect adapter.
func PostgresDialect() Dialect { return dialectPostgres }

// MySQLDialect returns the MySQL Dialect adapter.
func MySQLDialect() Dialect { return dialectMySQL }

// MSSQLDialect returns the Microsoft SQL Server Dialect adapter.
func MSSQLDialect() Dialect { return dialectMSSQL }

// dialectByName resolves the cache-key/Config dialect name to a Dialect
// implementation. Unknown names are a ConfigurationError.
func dialectByName(name string) (Dialect, error) {
	switch name {
	case "postgres":
		return dialectPostgres, nil
	case "mysql":
		return dialectMySQL, nil
	case "mssql":
		return dialectMSSQL, nil
	default:
		return nil, &ConfigurationError{Message: "unknown dialect " + name}
	}
}
