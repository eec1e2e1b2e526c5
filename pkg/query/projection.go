// Package query builds SQL statements from logical field names. A
// ProjectionMap translates view properties into qualified columns and
// a Builder assembles filtered, sorted, paginated SELECT statements
// with numbered parameters.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view property names to qualified column
// references. Projections added after a Join qualify against the
// joined table's alias.
type ProjectionMap struct {
	from    string
	alias   string
	columns map[string]string
	order   []string
}

// NewProjectionMap starts a projection rooted at schema.table with the
// given alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		from:    fmt.Sprintf("%s.%s %s", schema, table, alias),
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project maps a database column to a view property name under the
// current alias.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", p.alias, column)
	p.columns[viewName] = qualified
	p.order = append(p.order, qualified)
	return p
}

// Join appends a join clause and switches the current alias, so later
// Project calls reference the joined table.
func (p *ProjectionMap) Join(schema, table, alias, joinType, on string) *ProjectionMap {
	p.from = fmt.Sprintf("%s %s %s.%s %s ON %s", p.from, joinType, schema, table, alias, on)
	p.alias = alias
	return p
}

// Column resolves a view property to its qualified column, passing
// unmapped names through unchanged.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.columns[viewName]; ok {
		return col
	}
	return viewName
}

// Mapped reports whether a view property has a projected column.
func (p *ProjectionMap) Mapped(viewName string) bool {
	_, ok := p.columns[viewName]
	return ok
}

// Columns returns the full select list in projection order.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.order, ", ")
}

// From returns the FROM clause including any joins.
func (p *ProjectionMap) From() string {
	return p.from
}
