package entity

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mongoose-kitchen/mongoose/internal/orm/record"
)

// IDList converts a decoded JSON value into a list of row ids. It accepts
// slices of integers, integral floats within the int64 range (how
// encoding/json decodes numbers) and json.Number. Anything else, numeric
// strings included, fails with ErrInvalidInputType before the caller touches
// the database.
func IDList(v interface{}) ([]int64, error) {
	switch ids := v.(type) {
	case []int64:
		return ids, nil
	case []int:
		out := make([]int64, len(ids))
		for i, id := range ids {
			out[i] = int64(id)
		}
		return out, nil
	case []interface{}:
		out := make([]int64, 0, len(ids))
		for i, raw := range ids {
			id, err := toID(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: item %d: %v", record.ErrInvalidInputType, i, err)
			}
			out = append(out, id)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected a list of ids, got %T", record.ErrInvalidInputType, v)
	}
}

// ParseID converts one decoded JSON value into a row id
func ParseID(v interface{}) (int64, error) {
	id, err := toID(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", record.ErrInvalidInputType, err)
	}
	return id, nil
}

func toID(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if math.IsNaN(n) || n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		// float64(math.MaxInt64) rounds up to 2^63, which is already out of range
		if n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, fmt.Errorf("%v is out of range", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	default:
		return 0, fmt.Errorf("%T is not an id", v)
	}
}

// FactMap converts a decoded JSON value into a nutrition payload
func FactMap(v interface{}) (map[string]interface{}, error) {
	m, ok := v.(map[string]interface{})
	if !ok || m == nil {
		return nil, fmt.Errorf("%w: nutrition must be an object, got %T", record.ErrInvalidInputType, v)
	}
	return m, nil
}
