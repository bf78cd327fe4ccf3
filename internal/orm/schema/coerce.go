package schema

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the text form of calendar dates, both bound and returned
const DateLayout = "2006-01-02"

// BindValue converts a value into a SQL bind parameter. Calendar dates are
// serialized to YYYY-MM-DD; every other value passes through unchanged.
func BindValue(value interface{}) interface{} {
	switch v := value.(type) {
	case time.Time:
		return v.Format(DateLayout)
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.Format(DateLayout)
	default:
		return value
	}
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a valid date: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Normalize converts driver values in row to the Go types implied by the
// column types: int64, bool, string, decimal.Decimal and time.Time. Columns
// not in the table and values that fail to convert are left as returned by
// the driver, except that []byte always becomes string.
func (t *Table) Normalize(row Row) Row {
	for name, value := range row {
		if value == nil {
			continue
		}
		col, ok := t.Column(name)
		if !ok {
			row[name] = textBytes(value)
			continue
		}
		row[name] = normalizeValue(col.Type, value)
	}
	return row
}

func normalizeValue(typ ColumnType, value interface{}) interface{} {
	switch typ {
	case TypeInt:
		if s, ok := textOf(value); ok {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return i
			}
			return s
		}
		switch v := value.(type) {
		case int:
			return int64(v)
		case int32:
			return int64(v)
		case uint64:
			return int64(v)
		}
	case TypeBool:
		switch v := value.(type) {
		case int64:
			return v != 0
		case bool:
			return v
		}
		if s, ok := textOf(value); ok {
			if b, err := strconv.ParseBool(s); err == nil {
				return b
			}
			return s
		}
	case TypeDecimal:
		switch v := value.(type) {
		case float64:
			return decimal.NewFromFloat(v)
		case int64:
			return decimal.NewFromInt(v)
		}
		if s, ok := textOf(value); ok {
			if d, err := decimal.NewFromString(s); err == nil {
				return d
			}
			return s
		}
	case TypeDate:
		if s, ok := textOf(value); ok {
			if len(s) >= len(DateLayout) {
				if d, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
					return d
				}
			}
			return s
		}
	}
	return textBytes(value)
}

func textOf(value interface{}) (string, bool) {
	switch v := value.(type) {
	case []byte:
		return string(v), true
	case string:
		return v, true
	}
	return "", false
}

func textBytes(value interface{}) interface{} {
	if b, ok := value.([]byte); ok {
		return string(b)
	}
	return value
}
