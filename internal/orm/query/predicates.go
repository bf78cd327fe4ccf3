// Package query provides predicate construction for WHERE clauses
package query

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/mongoose-kitchen/mongoose/internal/orm/dialect"
	"github.com/mongoose-kitchen/mongoose/internal/orm/schema"
)

// ErrUnsupportedOperator is returned for comparison tokens outside the
// supported vocabulary
var ErrUnsupportedOperator = errors.New("unsupported comparison operator")

// Operator represents a comparison operator
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpLessThan
	OpLessThanOrEqual
	OpLike
	OpBetween
)

// String returns the string representation of the operator
func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	case OpGreaterThan:
		return ">"
	case OpGreaterThanOrEqual:
		return ">="
	case OpLessThan:
		return "<"
	case OpLessThanOrEqual:
		return "<="
	case OpLike:
		return "LIKE"
	case OpBetween:
		return "BETWEEN"
	default:
		return "UNKNOWN"
	}
}

// ParseOperator converts a comparison token to an Operator. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseOperator(token string) (Operator, error) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "=":
		return OpEqual, nil
	case "!=", "<>":
		return OpNotEqual, nil
	case ">":
		return OpGreaterThan, nil
	case ">=":
		return OpGreaterThanOrEqual, nil
	case "<":
		return OpLessThan, nil
	case "<=":
		return OpLessThanOrEqual, nil
	case "LIKE":
		return OpLike, nil
	case "BETWEEN":
		return OpBetween, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedOperator, token)
	}
}

// Cond pairs an operator token with its operand, e.g. Cond{"=", true} or
// Cond{"BETWEEN", Range{begin, end}}
type Cond struct {
	Op    string
	Value interface{}
}

// Range is the inclusive operand of a BETWEEN comparison
type Range struct {
	Low  interface{}
	High interface{}
}

// Comparison represents a single WHERE condition
type Comparison struct {
	Column   string
	Operator Operator
	Operand  interface{}
}

// Comparisons turns a column -> condition mapping into comparisons ordered by
// column name, so placeholder binding does not depend on map iteration.
func Comparisons(conds map[string]Cond) ([]Comparison, error) {
	columns := make([]string, 0, len(conds))
	for col := range conds {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	out := make([]Comparison, 0, len(columns))
	for _, col := range columns {
		op, err := ParseOperator(conds[col].Op)
		if err != nil {
			return nil, err
		}
		out = append(out, Comparison{Column: col, Operator: op, Operand: conds[col].Value})
	}
	return out, nil
}

// Where renders comparisons joined by combinator into a WHERE body (without
// the WHERE keyword) and its bind arguments. The combinator is trimmed and
// inserted as given; an empty combinator means AND. Column names are emitted
// as-is, so callers check them against the catalog first.
func Where(d dialect.Dialect, combinator string, comparisons []Comparison) (string, []interface{}, error) {
	if len(comparisons) == 0 {
		return "", nil, nil
	}

	combinator = strings.TrimSpace(combinator)
	if combinator == "" {
		combinator = "AND"
	}

	counter := dialect.NewCounter(d)
	args := make([]interface{}, 0, len(comparisons))
	parts := make([]string, 0, len(comparisons))

	for _, c := range comparisons {
		sql, err := comparisonToSQL(c, counter, &args)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
	}

	return strings.Join(parts, " "+combinator+" "), args, nil
}

// comparisonToSQL converts a comparison to SQL with parameterized values
func comparisonToSQL(c Comparison, counter *dialect.Counter, args *[]interface{}) (string, error) {
	switch c.Operator {
	case OpEqual, OpNotEqual, OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual, OpLike:
		*args = append(*args, schema.BindValue(c.Operand))
		return fmt.Sprintf("%s %s %s", c.Column, c.Operator, counter.Next()), nil

	case OpBetween:
		low, high, err := rangeBounds(c.Operand)
		if err != nil {
			return "", fmt.Errorf("column %s: %w", c.Column, err)
		}
		*args = append(*args, schema.BindValue(low), schema.BindValue(high))
		lowTok := counter.Next()
		return fmt.Sprintf("%s BETWEEN %s AND %s", c.Column, lowTok, counter.Next()), nil

	default:
		return "", fmt.Errorf("%w: %v", ErrUnsupportedOperator, c.Operator)
	}
}

// rangeBounds accepts a Range or any two-element slice or array
func rangeBounds(operand interface{}) (interface{}, interface{}, error) {
	switch r := operand.(type) {
	case Range:
		return r.Low, r.High, nil
	case *Range:
		if r != nil {
			return r.Low, r.High, nil
		}
	case []interface{}:
		if len(r) == 2 {
			return r[0], r[1], nil
		}
	default:
		v := reflect.ValueOf(operand)
		if (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) && v.Len() == 2 {
			return v.Index(0).Interface(), v.Index(1).Interface(), nil
		}
	}
	return nil, nil, fmt.Errorf("BETWEEN operator requires [low, high] values")
}
