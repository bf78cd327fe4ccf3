package schema

import "testing"

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(testTable()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(testTable()); err == nil {
		t.Error("expected duplicate registration to fail")
	}
	if err := r.Register(&Table{Name: "broken"}); err == nil {
		t.Error("expected invalid table to be rejected")
	}

	r.MustRegister(&Table{
		Name:    "menu",
		Columns: []Column{{Name: "id", Type: TypeInt}},
		Keys:    []string{"id"},
	})

	if r.Count() != 2 {
		t.Errorf("expected 2 tables, got %d", r.Count())
	}

	tables := r.List()
	if tables[0].Name != "food" || tables[1].Name != "menu" {
		t.Errorf("expected sorted tables, got %s, %s", tables[0].Name, tables[1].Name)
	}

	if _, ok := r.Get("menu"); !ok {
		t.Error("expected menu to be registered")
	}
	if _, ok := r.Get("recipes"); ok {
		t.Error("did not expect recipes to be registered")
	}
}

func TestRegistryMustRegisterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewRegistry().MustRegister(&Table{})
}
