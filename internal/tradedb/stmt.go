package tradedb

import (
	"reflect"
	"strings"
)

// The statement builder turns entity structs into parameterized SQL. Column
// names come from the db struct tags, so every mutation path shares one
// source of truth with the entity model.

// col is a single column name/value pair.
type col struct {
	name  string
	value any
}

// recordOf lists the db-tagged columns of an entity in declaration order.
func recordOf(entity any) []col {
	v := reflect.ValueOf(entity)
	t := v.Type()
	cols := make([]col, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, col{name: tag, value: v.Field(i).Interface()})
	}
	return cols
}

// columnsOf returns just the column names of an entity.
func columnsOf(entity any) []string {
	record := recordOf(entity)
	names := make([]string, len(record))
	for i, c := range record {
		names[i] = c.name
	}
	return names
}

// valuesOf returns just the bind values of an entity.
func valuesOf(entity any) []any {
	record := recordOf(entity)
	values := make([]any, len(record))
	for i, c := range record {
		values[i] = c.value
	}
	return values
}

// buildInsert builds "INSERT INTO tbl(a,b) VALUES(?,?)".
func buildInsert(table string, columns []string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString("(")
	b.WriteString(strings.Join(columns, ","))
	b.WriteString(") VALUES(")
	for i := range columns {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
	}
	b.WriteString(")")
	return b.String()
}

// buildUpdate builds "UPDATE tbl SET a=?,b=? WHERE id=? AND id2=?".
func buildUpdate(table string, columns, idColumns []string) string {
	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET ")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(c)
		b.WriteString("=?")
	}
	b.WriteString(" WHERE ")
	for i, c := range idColumns {
		if i > 0 {
			b.WriteString(" AND ")
		}
		b.WriteString(c)
		b.WriteString("=?")
	}
	return b.String()
}

// insertStmt builds the full-record insert for an entity.
func insertStmt(table string, entity any) (string, []any) {
	record := recordOf(entity)
	columns := make([]string, len(record))
	bind := make([]any, len(record))
	for i, c := range record {
		columns[i] = c.name
		bind[i] = c.value
	}
	return buildInsert(table, columns), bind
}

// updateStmt builds a column-level update from changed columns plus the key
// columns identifying the row.
func updateStmt(table string, changed []col, ids []col) (string, []any) {
	columns := make([]string, len(changed))
	bind := make([]any, 0, len(changed)+len(ids))
	for i, c := range changed {
		columns[i] = c.name
		bind = append(bind, c.value)
	}
	idColumns := make([]string, len(ids))
	for i, c := range ids {
		idColumns[i] = c.name
		bind = append(bind, c.value)
	}
	return buildUpdate(table, columns, idColumns), bind
}

// diffColumns lists the columns whose value differs between two records of
// the same entity type, in declaration order.
func diffColumns(old, new any) []col {
	oldRec := recordOf(old)
	newRec := recordOf(new)
	var changed []col
	for i, c := range newRec {
		if oldRec[i].value != c.value {
			changed = append(changed, c)
		}
	}
	return changed
}
