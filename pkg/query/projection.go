// Package query builds parameterized SQL from logical field names.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap binds logical field names to qualified columns (alias.column)
// of a single table.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	columns map[string]string
	order   []string
}

// NewProjectionMap creates a ProjectionMap for schema.table under alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project maps column to the logical field name. Projection order is the
// SELECT column order, so scan functions must follow it.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", p.alias, column)
	p.columns[field] = qualified
	p.order = append(p.order, qualified)
	return p
}

// From returns the qualified table reference with its alias.
func (p *ProjectionMap) From() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column resolves a logical field name. ok is false for unmapped fields.
func (p *ProjectionMap) Column(field string) (col string, ok bool) {
	col, ok = p.columns[field]
	return col, ok
}

// Columns returns the projected columns as a SELECT list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.order, ", ")
}
