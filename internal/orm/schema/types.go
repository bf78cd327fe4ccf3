// Package schema describes the tables the record layer maps: column names and
// their semantic types, primary keys and foreign keys. Tables are plain data,
// declared once per entity type and never mutated after first use.
package schema

import (
	"fmt"
	"strings"
)

// ColumnType is the semantic type of a column
type ColumnType int

const (
	// TypeUnknown marks a column discovered by probing the table
	TypeUnknown ColumnType = iota
	TypeInt
	TypeBool
	TypeText
	TypeDecimal
	TypeDate
	TypeEnum
)

// String returns the string representation of the column type
func (t ColumnType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeText:
		return "text"
	case TypeDecimal:
		return "decimal"
	case TypeDate:
		return "date"
	case TypeEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ParseColumnType converts a string to a ColumnType
func ParseColumnType(s string) (ColumnType, error) {
	switch s {
	case "int":
		return TypeInt, nil
	case "bool":
		return TypeBool, nil
	case "text":
		return TypeText, nil
	case "decimal":
		return TypeDecimal, nil
	case "date":
		return TypeDate, nil
	case "enum":
		return TypeEnum, nil
	case "unknown":
		return TypeUnknown, nil
	default:
		return 0, fmt.Errorf("unknown column type: %s", s)
	}
}

// Column is a single column of a table
type Column struct {
	Name       string
	Type       ColumnType
	EnumValues []string // For TypeEnum
}

// String returns a string representation of the column
func (c Column) String() string {
	if c.Type == TypeEnum {
		return fmt.Sprintf("%s enum%v", c.Name, c.EnumValues)
	}
	return fmt.Sprintf("%s %s", c.Name, c.Type)
}

// Allows reports whether value is in the enumerated domain of the column.
// Non-enum columns allow every value.
func (c Column) Allows(value string) bool {
	if c.Type != TypeEnum {
		return true
	}
	for _, v := range c.EnumValues {
		if v == value {
			return true
		}
	}
	return false
}

// Table is the static metadata of one mapped table
type Table struct {
	Name    string
	Columns []Column // Ordered; insert and update statements follow this order
	// Keys is ordered for composite-key support, but every operation in the
	// record layer only uses Keys[0].
	Keys []string
	// ForeignKeys maps a local column to "<table>.<column>". Descriptive only;
	// the database enforces it.
	ForeignKeys map[string]string
}

// ColumnNames returns the column names in catalog order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn returns true if name is a column of the table
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// PrimaryKey returns the first key column, or "" when the table has no keys
func (t *Table) PrimaryKey() string {
	if len(t.Keys) == 0 {
		return ""
	}
	return t.Keys[0]
}

// IsKey returns true if name is one of the key columns
func (t *Table) IsKey(name string) bool {
	for _, k := range t.Keys {
		if k == name {
			return true
		}
	}
	return false
}

// Validate checks that the columns cover the keys and every foreign key column
func (t *Table) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("table name is required")
	}
	if len(t.Keys) == 0 {
		return fmt.Errorf("table %s: at least one key column is required", t.Name)
	}

	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if seen[c.Name] {
			return fmt.Errorf("table %s: duplicate column %s", t.Name, c.Name)
		}
		seen[c.Name] = true
		if c.Type == TypeEnum && len(c.EnumValues) == 0 {
			return fmt.Errorf("table %s: enum column %s has no values", t.Name, c.Name)
		}
	}

	// A table without declared columns is filled in by a probe later
	if len(t.Columns) == 0 {
		return nil
	}

	for _, k := range t.Keys {
		if !seen[k] {
			return fmt.Errorf("table %s: key %s is not a column", t.Name, k)
		}
	}
	for col, target := range t.ForeignKeys {
		if !seen[col] {
			return fmt.Errorf("table %s: foreign key %s is not a column", t.Name, col)
		}
		if !strings.Contains(target, ".") {
			return fmt.Errorf("table %s: foreign key %s target %q must be table.column", t.Name, col, target)
		}
	}
	return nil
}

// WithColumns returns a copy of the table whose columns are the given names
// with TypeUnknown. Used when a table is declared without columns and the
// column list comes from the database.
func (t *Table) WithColumns(names []string) *Table {
	clone := &Table{
		Name:        t.Name,
		Keys:        append([]string(nil), t.Keys...),
		ForeignKeys: t.ForeignKeys,
		Columns:     make([]Column, len(names)),
	}
	for i, n := range names {
		clone.Columns[i] = Column{Name: n, Type: TypeUnknown}
	}
	return clone
}

// Row is one result row keyed by column name
type Row map[string]interface{}
