package entity

import (
	"context"

	"github.com/mongoose-kitchen/mongoose/internal/orm/record"
	"github.com/mongoose-kitchen/mongoose/internal/orm/schema"
)

// NutritionColumn identifies a column of the nutritional_fact table
type NutritionColumn string

const (
	NutritionID        NutritionColumn = "nfact_id"
	NutritionSodium    NutritionColumn = "sodium"
	NutritionFat       NutritionColumn = "fat"
	NutritionCalories  NutritionColumn = "calories"
	NutritionSugar     NutritionColumn = "sugar"
	NutritionProtein   NutritionColumn = "protein"
	NutritionFoodGroup NutritionColumn = "food_group"
	NutritionAmount    NutritionColumn = "amount"
)

// Food groups
const (
	FoodGroupGrain   = "grain"
	FoodGroupMeat    = "meat"
	FoodGroupVeggies = "veggies"
)

// NutritionalFactTable is the catalog of the nutritional_fact table
var NutritionalFactTable = &schema.Table{
	Name: "nutritional_fact",
	Columns: []schema.Column{
		{Name: string(NutritionID), Type: schema.TypeInt},
		{Name: string(NutritionSodium), Type: schema.TypeDecimal},
		{Name: string(NutritionFat), Type: schema.TypeDecimal},
		{Name: string(NutritionCalories), Type: schema.TypeDecimal},
		{Name: string(NutritionSugar), Type: schema.TypeDecimal},
		{Name: string(NutritionProtein), Type: schema.TypeDecimal},
		{Name: string(NutritionFoodGroup), Type: schema.TypeEnum,
			EnumValues: []string{FoodGroupGrain, FoodGroupMeat, FoodGroupVeggies}},
		{Name: string(NutritionAmount), Type: schema.TypeDecimal},
	},
	Keys: []string{string(NutritionID)},
}

// NutritionalFact is one row of the nutritional_fact table
type NutritionalFact struct {
	*record.Record[NutritionColumn]
}

// NewNutritionalFact creates an unbound nutritional fact on conn
func NewNutritionalFact(ctx context.Context, conn record.Conn, opts ...record.Option) (*NutritionalFact, error) {
	r, err := record.New[NutritionColumn](ctx, conn, NutritionalFactTable, opts...)
	if err != nil {
		return nil, err
	}
	return &NutritionalFact{Record: r}, nil
}
