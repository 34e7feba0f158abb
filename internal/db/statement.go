package db

import (
	"fmt"
	"strings"

	"github.com/tordrt/docstore/internal/codec"
	"github.com/tordrt/docstore/internal/filter"
	"github.com/tordrt/docstore/internal/schema"
)

// Namespaces keep SET and WHERE parameter names apart in one statement. Named
// parameters must also start with a letter, which a bare field name may not.
const (
	SetNamespace   = "set_"
	WhereNamespace = "where_"
)

// Statement accumulates SQL text and bindings for one dialect
type Statement struct {
	dialect Dialect
	buf     strings.Builder
	args    []any
}

// NewStatement starts an empty statement
func NewStatement(d Dialect) *Statement {
	return &Statement{dialect: d}
}

// SQL returns the statement text
func (s *Statement) SQL() string {
	return s.buf.String()
}

// Args returns the bindings in placeholder order
func (s *Statement) Args() []any {
	return s.args
}

func (s *Statement) write(parts ...string) *Statement {
	for _, p := range parts {
		s.buf.WriteString(p)
	}
	return s
}

func (s *Statement) ident(name string) *Statement {
	return s.write(s.dialect.Quote(name))
}

func (s *Statement) bind(name string, value any) *Statement {
	s.args = append(s.args, s.dialect.Arg(name, value))
	return s.write(s.dialect.Placeholder(name, len(s.args)))
}

// where renders the conjunction, or 1 = 1 when it is empty
func (s *Statement) where(t *filter.Translation) *Statement {
	s.write(" WHERE ")
	if t.Empty() {
		return s.write("1 = 1")
	}

	for i, p := range t.Predicates {
		if i > 0 {
			s.write(" AND ")
		}
		s.ident(p.Column).write(" ", string(p.Op))
		if !p.Op.Unary() {
			s.write(" ").bind(p.Param, p.Value)
		}
	}
	return s
}

// CreateTable defines the key and data columns if the table is absent
func CreateTable(d Dialect, def *schema.Definition) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s %s PRIMARY KEY NOT NULL, %s %s NOT NULL)",
		d.Quote(def.TableName),
		d.Quote(def.PrimaryKey), d.KeyColumnType(def.PrimaryKeyType),
		d.Quote(schema.DataColumn), d.DataColumnType())
}

// AddColumn adds one nullable index column
func AddColumn(d Dialect, table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", d.Quote(table), d.Quote(column), d.IndexColumnType())
}

// Insert writes a single row
func Insert(d Dialect, def *schema.Definition, row *codec.Row) *Statement {
	s := NewStatement(d)
	s.write("INSERT INTO ").ident(def.TableName).write(" (").ident(def.PrimaryKey).write(", ").ident(schema.DataColumn)
	for _, col := range row.Columns {
		s.write(", ").ident(col)
	}

	s.write(") VALUES (")
	s.bind(SetNamespace+def.PrimaryKey, row.Key).write(", ").bind(SetNamespace+schema.DataColumn, row.Data)
	for i, col := range row.Columns {
		s.write(", ").bind(SetNamespace+col, row.Values[i])
	}
	return s.write(")")
}

// Select reads the key and data of matching rows; limit 0 means no limit
func Select(d Dialect, def *schema.Definition, t *filter.Translation, limit int) *Statement {
	s := NewStatement(d)
	s.write("SELECT ").ident(def.PrimaryKey).write(", ").ident(schema.DataColumn).write(" FROM ").ident(def.TableName)
	s.where(t)
	if limit > 0 {
		s.write(fmt.Sprintf(" LIMIT %d", limit))
	}
	return s
}

// Count counts matching rows
func Count(d Dialect, def *schema.Definition, t *filter.Translation) *Statement {
	s := NewStatement(d)
	s.write("SELECT COUNT(*) FROM ").ident(def.TableName)
	return s.where(t)
}

// Update overwrites the data and index columns of rows matching where. SET
// bindings use SetNamespace, so where must be translated with a different one.
func Update(d Dialect, def *schema.Definition, row *codec.Row, where *filter.Translation) *Statement {
	s := NewStatement(d)
	s.write("UPDATE ").ident(def.TableName).write(" SET ")
	s.ident(schema.DataColumn).write(" = ").bind(SetNamespace+schema.DataColumn, row.Data)
	for i, col := range row.Columns {
		s.write(", ").ident(col).write(" = ").bind(SetNamespace+col, row.Values[i])
	}
	return s.where(where)
}

// Delete removes matching rows
func Delete(d Dialect, def *schema.Definition, t *filter.Translation) *Statement {
	s := NewStatement(d)
	s.write("DELETE FROM ").ident(def.TableName)
	return s.where(t)
}

// DeleteAll removes every row
func DeleteAll(d Dialect, table string) string {
	return "DELETE FROM " + d.Quote(table)
}
