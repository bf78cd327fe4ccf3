// Package entity declares the four mapped entities of the kitchen schema:
// foods, nutritional facts, recipes and menus, with their relationship
// operations.
package entity

import (
	"errors"
	"fmt"

	"github.com/mongoose-kitchen/mongoose/internal/orm/record"
	"github.com/mongoose-kitchen/mongoose/internal/orm/relationships"
	"github.com/mongoose-kitchen/mongoose/internal/orm/schema"
)

// ErrInvalidValue is returned when a value falls outside its column's domain
var ErrInvalidValue = errors.New("invalid value")

// Join tables
var (
	// Ingredients links recipes to the foods they use
	Ingredients = &relationships.JoinTable{
		Name:         "ingredients",
		OwnerColumn:  "recipe_id",
		TargetColumn: "food_id",
		Target:       FoodTable,
	}

	// Serves links menus to the recipes they serve
	Serves = &relationships.JoinTable{
		Name:         "serves",
		OwnerColumn:  "menu_id",
		TargetColumn: "recipe_id",
		Target:       RecipeTable,
	}
)

var (
	ingredientsTable = &schema.Table{
		Name: "ingredients",
		Columns: []schema.Column{
			{Name: "recipe_id", Type: schema.TypeInt},
			{Name: "food_id", Type: schema.TypeInt},
		},
		Keys: []string{"recipe_id", "food_id"},
		ForeignKeys: map[string]string{
			"recipe_id": "recipes.rec_id",
			"food_id":   "food.food_id",
		},
	}

	servesTable = &schema.Table{
		Name: "serves",
		Columns: []schema.Column{
			{Name: "menu_id", Type: schema.TypeInt},
			{Name: "recipe_id", Type: schema.TypeInt},
		},
		Keys: []string{"menu_id", "recipe_id"},
		ForeignKeys: map[string]string{
			"menu_id":   "menu.id",
			"recipe_id": "recipes.rec_id",
		},
	}
)

// Catalog returns a registry holding every mapped table, join tables included
func Catalog() *schema.Registry {
	return schema.NewRegistry().MustRegister(
		FoodTable,
		NutritionalFactTable,
		RecipeTable,
		MenuTable,
		ingredientsTable,
		servesTable,
	)
}

// Document merges a record's snapshot with its cached relations, the shape
// the HTTP layer renders
func Document[C ~string](r *record.Record[C]) map[string]interface{} {
	doc := map[string]interface{}(r.Snapshot().Map())
	for name, v := range r.Relations().Map() {
		doc[name] = v
	}
	return doc
}

// CheckValue validates value against the domain of column: enumerated
// columns accept only their listed strings and date columns accept
// time.Time or a YYYY-MM-DD string. Nil is always accepted.
func CheckValue(table *schema.Table, column string, value interface{}) error {
	col, ok := table.Column(column)
	if !ok {
		return &record.InvalidColumnError{Table: table.Name, Column: column}
	}
	if value == nil {
		return nil
	}

	switch col.Type {
	case schema.TypeEnum:
		s, ok := value.(string)
		if !ok || !col.Allows(s) {
			return fmt.Errorf("%w: %s must be one of %v", ErrInvalidValue, column, col.EnumValues)
		}
	case schema.TypeDate:
		if s, ok := value.(string); ok {
			if _, err := schema.ParseDate(s); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidValue, column, err)
			}
		}
	}
	return nil
}

// SplitFields separates a decoded payload into catalog columns and everything
// else (relationship payloads and unknown keys). Column values are checked
// with CheckValue, date strings are parsed and integral JSON numbers on
// integer columns become int64.
func SplitFields(table *schema.Table, payload map[string]interface{}) (columns, extra map[string]interface{}, err error) {
	columns = make(map[string]interface{})
	extra = make(map[string]interface{})

	for k, v := range payload {
		col, ok := table.Column(k)
		if !ok {
			extra[k] = v
			continue
		}
		if err := CheckValue(table, k, v); err != nil {
			return nil, nil, err
		}
		switch col.Type {
		case schema.TypeDate:
			if s, isString := v.(string); isString {
				v, _ = schema.ParseDate(s)
			}
		case schema.TypeInt:
			if f, isFloat := v.(float64); isFloat {
				n, err := toID(f)
				if err != nil {
					return nil, nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, k, err)
				}
				v = n
			}
		}
		columns[k] = v
	}
	return columns, extra, nil
}

// Fields converts a string-keyed field map to an entity's column type
func Fields[C ~string](fields map[string]interface{}) map[C]interface{} {
	out := make(map[C]interface{}, len(fields))
	for k, v := range fields {
		out[C(k)] = v
	}
	return out
}
