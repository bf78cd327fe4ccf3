package schema

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testTable() *Table {
	return &Table{
		Name: "food",
		Columns: []Column{
			{Name: "food_id", Type: TypeInt},
			{Name: "in_fridge", Type: TypeBool},
			{Name: "food_name", Type: TypeText},
			{Name: "fk_nfact_id", Type: TypeInt},
		},
		Keys:        []string{"food_id"},
		ForeignKeys: map[string]string{"fk_nfact_id": "nutritional_fact.nfact_id"},
	}
}

func TestColumnTypeString(t *testing.T) {
	tests := []struct {
		typeVal  ColumnType
		expected string
	}{
		{TypeInt, "int"},
		{TypeBool, "bool"},
		{TypeText, "text"},
		{TypeDecimal, "decimal"},
		{TypeDate, "date"},
		{TypeEnum, "enum"},
		{TypeUnknown, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.typeVal.String(); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
			parsed, err := ParseColumnType(tt.expected)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if parsed != tt.typeVal {
				t.Errorf("round trip: expected %v, got %v", tt.typeVal, parsed)
			}
		})
	}

	if _, err := ParseColumnType("blob"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestTableValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Table)
		expectErr bool
	}{
		{"valid", func(*Table) {}, false},
		{"missing name", func(tb *Table) { tb.Name = "" }, true},
		{"missing keys", func(tb *Table) { tb.Keys = nil }, true},
		{"key not a column", func(tb *Table) { tb.Keys = []string{"id"} }, true},
		{"foreign key not a column", func(tb *Table) {
			tb.ForeignKeys = map[string]string{"nfact": "nutritional_fact.nfact_id"}
		}, true},
		{"foreign key target malformed", func(tb *Table) {
			tb.ForeignKeys = map[string]string{"fk_nfact_id": "nutritional_fact"}
		}, true},
		{"duplicate column", func(tb *Table) {
			tb.Columns = append(tb.Columns, Column{Name: "food_name", Type: TypeText})
		}, true},
		{"enum without values", func(tb *Table) {
			tb.Columns = append(tb.Columns, Column{Name: "group", Type: TypeEnum})
		}, true},
		{"probed table without columns", func(tb *Table) {
			tb.Columns = nil
			tb.ForeignKeys = nil
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := testTable()
			tt.mutate(tb)
			err := tb.Validate()
			if tt.expectErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestTableLookups(t *testing.T) {
	tb := testTable()

	if tb.PrimaryKey() != "food_id" {
		t.Errorf("expected primary key food_id, got %s", tb.PrimaryKey())
	}
	if !tb.IsKey("food_id") || tb.IsKey("food_name") {
		t.Error("IsKey mismatch")
	}
	if !tb.HasColumn("in_fridge") || tb.HasColumn("nutrition") {
		t.Error("HasColumn mismatch")
	}

	names := tb.ColumnNames()
	expected := []string{"food_id", "in_fridge", "food_name", "fk_nfact_id"}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("column %d: expected %s, got %s", i, expected[i], names[i])
		}
	}

	if (&Table{Name: "x"}).PrimaryKey() != "" {
		t.Error("expected empty primary key")
	}
}

func TestColumnAllows(t *testing.T) {
	col := Column{Name: "food_group", Type: TypeEnum, EnumValues: []string{"grain", "meat", "veggies"}}
	if !col.Allows("meat") {
		t.Error("expected meat to be allowed")
	}
	if col.Allows("dairy") {
		t.Error("expected dairy to be rejected")
	}
	if !(Column{Name: "food_name", Type: TypeText}).Allows("anything") {
		t.Error("non-enum columns allow every value")
	}
}

func TestWithColumns(t *testing.T) {
	tb := &Table{Name: "menu", Keys: []string{"id"}}
	probed := tb.WithColumns([]string{"id", "time_of_day", "date"})

	if len(tb.Columns) != 0 {
		t.Error("original table must not change")
	}
	if len(probed.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(probed.Columns))
	}
	for _, c := range probed.Columns {
		if c.Type != TypeUnknown {
			t.Errorf("column %s: expected unknown type, got %v", c.Name, c.Type)
		}
	}
}

func TestBindValue(t *testing.T) {
	day := time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)

	if got := BindValue(day); got != "2024-03-09" {
		t.Errorf("expected 2024-03-09, got %v", got)
	}
	if got := BindValue(&day); got != "2024-03-09" {
		t.Errorf("expected 2024-03-09 from pointer, got %v", got)
	}
	if got := BindValue(42); got != 42 {
		t.Errorf("expected passthrough, got %v", got)
	}
	if got := BindValue(nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.February || d.Day() != 29 {
		t.Errorf("unexpected date %v", d)
	}

	for _, bad := range []string{"2023-02-29", "03/09/2024", "", "2024-3-9"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestNormalize(t *testing.T) {
	tb := &Table{
		Name: "mixed",
		Columns: []Column{
			{Name: "id", Type: TypeInt},
			{Name: "flag", Type: TypeBool},
			{Name: "name", Type: TypeText},
			{Name: "amount", Type: TypeDecimal},
			{Name: "day", Type: TypeDate},
		},
		Keys: []string{"id"},
	}

	row := tb.Normalize(Row{
		"id":     []byte("7"),
		"flag":   int64(1),
		"name":   []byte("rice"),
		"amount": []byte("12.50"),
		"day":    []byte("2024-03-09"),
		"extra":  []byte("kept"),
		"nil":    nil,
	})

	if row["id"] != int64(7) {
		t.Errorf("id: got %#v", row["id"])
	}
	if row["flag"] != true {
		t.Errorf("flag: got %#v", row["flag"])
	}
	if row["name"] != "rice" {
		t.Errorf("name: got %#v", row["name"])
	}
	amount, ok := row["amount"].(decimal.Decimal)
	if !ok || !amount.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("amount: got %#v", row["amount"])
	}
	day, ok := row["day"].(time.Time)
	if !ok || day.Format(DateLayout) != "2024-03-09" {
		t.Errorf("day: got %#v", row["day"])
	}
	if row["extra"] != "kept" {
		t.Errorf("extra: got %#v", row["extra"])
	}
	if row["nil"] != nil {
		t.Errorf("nil: got %#v", row["nil"])
	}
}
