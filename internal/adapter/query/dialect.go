// Package query builds the SQL shared by the postgres and sqlite entry
// repositories. Only the placeholder format differs between dialects.
package query

import (
	"github.com/Masterminds/squirrel"
)

// Dialect selects placeholder style and a few dialect-specific fragments.
type Dialect struct {
	Name        string
	Placeholder squirrel.PlaceholderFormat
	// Like is the case-insensitive match operator.
	Like string
}

var (
	Postgres = Dialect{Name: "postgres", Placeholder: squirrel.Dollar, Like: "ILIKE"}
	// SQLite's LIKE is case-insensitive for ASCII by default.
	SQLite = Dialect{Name: "sqlite", Placeholder: squirrel.Question, Like: "LIKE"}
)

func (d Dialect) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.Placeholder)
}
