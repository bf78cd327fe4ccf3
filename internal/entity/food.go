package entity

import (
	"context"
	"fmt"

	"github.com/mongoose-kitchen/mongoose/internal/orm/record"
	"github.com/mongoose-kitchen/mongoose/internal/orm/relationships"
	"github.com/mongoose-kitchen/mongoose/internal/orm/schema"
)

// FoodColumn identifies a column of the food table
type FoodColumn string

const (
	FoodID          FoodColumn = "food_id"
	FoodInFridge    FoodColumn = "in_fridge"
	FoodName        FoodColumn = "food_name"
	FoodNutritionFK FoodColumn = "fk_nfact_id"
)

// RelNutrition is the relation name of a food's nutritional fact
const RelNutrition = "nutrition"

// FoodTable is the catalog of the food table
var FoodTable = &schema.Table{
	Name: "food",
	Columns: []schema.Column{
		{Name: string(FoodID), Type: schema.TypeInt},
		{Name: string(FoodInFridge), Type: schema.TypeBool},
		{Name: string(FoodName), Type: schema.TypeText},
		{Name: string(FoodNutritionFK), Type: schema.TypeInt},
	},
	Keys:        []string{string(FoodID)},
	ForeignKeys: map[string]string{string(FoodNutritionFK): "nutritional_fact.nfact_id"},
}

// Food is one row of the food table
type Food struct {
	*record.Record[FoodColumn]
	opts []record.Option
}

// NewFood creates an unbound food on conn
func NewFood(ctx context.Context, conn record.Conn, opts ...record.Option) (*Food, error) {
	r, err := record.New[FoodColumn](ctx, conn, FoodTable, opts...)
	if err != nil {
		return nil, err
	}
	return &Food{Record: r, opts: opts}, nil
}

// LoadNutrition loads the nutritional fact the food points at and caches it.
// A food without a fact, or pointing at a missing one, yields an empty row.
func (f *Food) LoadNutrition(ctx context.Context) (schema.Row, error) {
	fk := f.Get(FoodNutritionFK)
	if fk == nil {
		f.Relations().Set(RelNutrition, schema.Row{})
		return schema.Row{}, nil
	}

	fact, err := NewNutritionalFact(ctx, f.Conn(), f.opts...)
	if err != nil {
		return nil, err
	}
	row, err := fact.FindByID(ctx, fk)
	if err != nil {
		return nil, err
	}
	if row == nil {
		row = schema.Row{}
	}

	f.Relations().Set(RelNutrition, row)
	return row, nil
}

// ReplaceNutrition writes facts to the food's nutritional fact.
//
// An empty map deletes the fact row and clears fk_nfact_id in memory only;
// the food row keeps its stored value until the next Flush. A non-empty map
// updates the existing fact, or creates one and points fk_nfact_id at it in
// memory when the food has none. Key columns in facts are ignored.
func (f *Food) ReplaceNutrition(ctx context.Context, facts map[string]interface{}) (schema.Row, error) {
	if facts == nil {
		return nil, fmt.Errorf("%w: nutrition must be an object", record.ErrInvalidInputType)
	}
	if !f.Bound() {
		return nil, fmt.Errorf("replace nutrition: %w", record.ErrInvalidState)
	}

	fields, extra, err := SplitFields(NutritionalFactTable, facts)
	if err != nil {
		return nil, err
	}
	for k := range extra {
		return nil, &record.InvalidColumnError{Table: NutritionalFactTable.Name, Column: k}
	}
	for _, k := range NutritionalFactTable.Keys {
		delete(fields, k)
	}

	fk := f.Get(FoodNutritionFK)

	fact, err := NewNutritionalFact(ctx, f.Conn(), f.opts...)
	if err != nil {
		return nil, err
	}

	if len(facts) == 0 {
		if fk != nil {
			if _, err := fact.DeleteByID(ctx, fk); err != nil {
				return nil, err
			}
			f.Set(FoodNutritionFK, nil)
		}
		f.Relations().Set(RelNutrition, schema.Row{})
		return schema.Row{}, nil
	}

	err = f.Conn().Atomic(ctx, func(ctx context.Context) error {
		if fk != nil {
			row, err := fact.FindByID(ctx, fk)
			if err != nil {
				return err
			}
			if row != nil {
				fact.Update(Fields[NutritionColumn](fields))
				return fact.Flush(ctx)
			}
		}

		id, err := fact.Create(ctx, Fields[NutritionColumn](fields))
		if err != nil {
			return err
		}
		f.Set(FoodNutritionFK, id)
		return nil
	})
	if err != nil {
		return nil, err
	}

	row := fact.Snapshot().Map()
	f.Relations().Set(RelNutrition, row)
	return row, nil
}

// Nutrition returns the nutritional fact of every food in foods, keyed by the
// string form of the fact id, with one query
func Nutrition(ctx context.Context, loader *relationships.Loader, foods []schema.Row) (map[string]schema.Row, error) {
	ids := make([]interface{}, 0, len(foods))
	for _, food := range foods {
		ids = append(ids, food[string(FoodNutritionFK)])
	}
	return loader.LoadByKeys(ctx, NutritionalFactTable, ids)
}
