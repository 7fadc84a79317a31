package database

import "strings"

// QueryBuilder writes statements once with ? and renders them for a dialect.
type QueryBuilder struct {
	dialect Dialect
}

// NewQueryBuilder creates a new QueryBuilder for the given dialect.
func NewQueryBuilder(dialect Dialect) *QueryBuilder {
	return &QueryBuilder{dialect: dialect}
}

// Build rewrites each ? as the dialect's placeholder, numbering left to
// right. SQLite queries come back unchanged.
//
//	input:    "SELECT seed FROM layouts WHERE id = ? AND room_size = ?"
//	Postgres: "SELECT seed FROM layouts WHERE id = $1 AND room_size = $2"
func (qb *QueryBuilder) Build(query string) string {
	if qb.dialect.Type() == DialectSQLite || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, part := range strings.SplitAfter(query, "?") {
		if strings.HasSuffix(part, "?") {
			n++
			b.WriteString(part[:len(part)-1])
			b.WriteString(qb.dialect.Placeholder(n))
			continue
		}
		b.WriteString(part)
	}
	return b.String()
}

// Insert renders a multi-row INSERT of rows tuples into table.
func (qb *QueryBuilder) Insert(table string, columns []string, rows int) string {
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES ")
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tuple)
	}
	return qb.Build(b.String())
}

// RowsPerStatement is how many tuples of width columns fit under the
// dialect's parameter limit.
func (qb *QueryBuilder) RowsPerStatement(columns int) int {
	if columns <= 0 {
		return 0
	}
	return max(1, qb.dialect.MaxParams()/columns)
}
