package query

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

const placeholder = "$%d"

type condition struct {
	clause string
	args   []any
}

// SortField is one ORDER BY term expressed as a logical field name.
type SortField struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending"`
}

// Builder assembles SELECT statements with positional parameters numbered
// in the order conditions are added.
type Builder struct {
	projection  *ProjectionMap
	conditions  []condition
	sort        []SortField
	defaultSort []SortField
}

// NewBuilder creates a Builder over projection. defaultSort applies when no
// caller sort resolves to a projected field.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:  projection,
		defaultSort: defaultSort,
	}
}

// ParseSortFields parses "title,-created_at" into sort fields; a leading "-"
// sorts descending.
func ParseSortFields(s string) []SortField {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if after, ok := strings.CutPrefix(part, "-"); ok {
			fields = append(fields, SortField{Field: after, Descending: true})
			continue
		}
		fields = append(fields, SortField{Field: part})
	}
	return fields
}

// Build returns an ordered SELECT over every matching row.
func (b *Builder) Build() (string, []any) {
	where, args := b.buildWhere()
	return fmt.Sprintf(
		"SELECT %s FROM %s%s%s",
		b.projection.Columns(),
		b.projection.From(),
		where,
		b.buildOrderBy(),
	), args
}

// BuildCount returns a COUNT(*) over the matching rows.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.buildWhere()
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.projection.From(), where), args
}

// BuildPage returns an ordered SELECT limited to one page (1-indexed).
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	where, args := b.buildWhere()
	return fmt.Sprintf(
		"SELECT %s FROM %s%s%s LIMIT %d OFFSET %d",
		b.projection.Columns(),
		b.projection.From(),
		where,
		b.buildOrderBy(),
		pageSize,
		(page-1)*pageSize,
	), args
}

// BuildSingle returns a SELECT for the row whose field equals value.
func (b *Builder) BuildSingle(field string, value any) (string, []any) {
	return fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		b.projection.Columns(),
		b.projection.From(),
		b.column(field),
	), []any{value}
}

// OrderByFields replaces the default ordering. Unmapped fields are ignored.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = fields
	return b
}

// WhereEquals adds field = value. No-op for nil values.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	return b.where(b.column(field)+" = "+placeholder, value)
}

// WhereContains adds a case-insensitive substring match. No-op for nil or empty values.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	return b.where(b.column(field)+" ILIKE "+placeholder, "%"+*value+"%")
}

// WhereHasElement matches rows whose JSONB array field contains value.
// No-op for nil or empty values.
func (b *Builder) WhereHasElement(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	element, _ := json.Marshal([]string{*value})
	return b.where(b.column(field)+" @> "+placeholder+"::jsonb", string(element))
}

// WhereSearch ORs a case-insensitive substring match across fields.
// No-op for nil or empty search.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}

	clauses := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, field := range fields {
		clauses[i] = b.column(field) + " ILIKE " + placeholder
		args[i] = "%" + *search + "%"
	}
	return b.where("("+strings.Join(clauses, " OR ")+")", args...)
}

func (b *Builder) where(clause string, args ...any) *Builder {
	b.conditions = append(b.conditions, condition{clause: clause, args: args})
	return b
}

// column panics for unmapped fields: condition fields are fixed by the
// calling repository, never taken from request input.
func (b *Builder) column(field string) string {
	col, ok := b.projection.Column(field)
	if !ok {
		panic(fmt.Sprintf("query: field %q is not projected", field))
	}
	return col
}

func (b *Builder) buildOrderBy() string {
	parts := b.orderTerms(b.sort)
	if len(parts) == 0 {
		parts = b.orderTerms(b.defaultSort)
	}
	if len(parts) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func (b *Builder) orderTerms(fields []SortField) []string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		col, ok := b.projection.Column(f.Field)
		if !ok {
			continue
		}
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	return parts
}

func (b *Builder) buildWhere() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(b.conditions))
	var args []any
	for _, cond := range b.conditions {
		clause := cond.clause
		for _, arg := range cond.args {
			args = append(args, arg)
			clause = strings.Replace(clause, placeholder, fmt.Sprintf("$%d", len(args)), 1)
		}
		clauses = append(clauses, clause)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}
