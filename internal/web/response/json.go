// Package response renders JSON bodies: documents with calendar dates as
// YYYY-MM-DD and decimals as JSON numbers, and errors as {"error": ...}.
package response

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mongoose-kitchen/mongoose/internal/orm/schema"
)

func setJSONHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
}

// JSON renders payload with the given status code
func JSON(w http.ResponseWriter, status int, payload interface{}) error {
	setJSONHeaders(w)
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(Prepare(payload))
}

// OK renders payload with 200 OK
func OK(w http.ResponseWriter, payload interface{}) error {
	return JSON(w, http.StatusOK, payload)
}

// Prepare converts the values the record layer produces into their wire
// form. Maps and slices are copied; other values pass through.
func Prepare(v interface{}) interface{} {
	switch val := v.(type) {
	case time.Time:
		return val.Format(schema.DateLayout)
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.Format(schema.DateLayout)
	case decimal.Decimal:
		return json.Number(val.String())
	case schema.Row:
		return prepareMap(val)
	case map[string]interface{}:
		return prepareMap(val)
	case map[string]schema.Row:
		out := make(map[string]interface{}, len(val))
		for k, row := range val {
			out[k] = prepareMap(row)
		}
		return out
	case []schema.Row:
		out := make([]interface{}, len(val))
		for i, row := range val {
			out[i] = prepareMap(row)
		}
		return out
	case []map[string]interface{}:
		out := make([]interface{}, len(val))
		for i, m := range val {
			out[i] = prepareMap(m)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = Prepare(item)
		}
		return out
	default:
		return v
	}
}

func prepareMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = Prepare(v)
	}
	return out
}
