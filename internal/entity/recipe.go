package entity

import (
	"context"
	"fmt"

	"github.com/mongoose-kitchen/mongoose/internal/orm/record"
	"github.com/mongoose-kitchen/mongoose/internal/orm/relationships"
	"github.com/mongoose-kitchen/mongoose/internal/orm/schema"
)

// RecipeColumn identifies a column of the recipes table
type RecipeColumn string

const (
	RecipeID           RecipeColumn = "rec_id"
	RecipeName         RecipeColumn = "rec_name"
	RecipeInstructions RecipeColumn = "instructions"
	RecipeCategory     RecipeColumn = "category"
)

// Recipe categories
const (
	CategoryEntree    = "entree"
	CategoryAppetizer = "appetizer"
	CategoryDessert   = "dessert"
)

// RelIngredients is the relation name of a recipe's foods
const RelIngredients = "ingredients"

// RecipeTable is the catalog of the recipes table
var RecipeTable = &schema.Table{
	Name: "recipes",
	Columns: []schema.Column{
		{Name: string(RecipeID), Type: schema.TypeInt},
		{Name: string(RecipeName), Type: schema.TypeText},
		{Name: string(RecipeInstructions), Type: schema.TypeText},
		{Name: string(RecipeCategory), Type: schema.TypeEnum,
			EnumValues: []string{CategoryEntree, CategoryAppetizer, CategoryDessert}},
	},
	Keys: []string{string(RecipeID)},
}

// Recipe is one row of the recipes table
type Recipe struct {
	*record.Record[RecipeColumn]
	loader *relationships.Loader
}

// NewRecipe creates an unbound recipe on conn
func NewRecipe(ctx context.Context, conn record.Conn, opts ...record.Option) (*Recipe, error) {
	r, err := record.New[RecipeColumn](ctx, conn, RecipeTable, opts...)
	if err != nil {
		return nil, err
	}
	return &Recipe{
		Record: r,
		loader: relationships.NewLoader(r.Conn(), r.Dialect(), r.Logger()),
	}, nil
}

// LoadIngredients loads the foods the recipe uses and caches them. An
// unbound recipe has no ingredients.
func (r *Recipe) LoadIngredients(ctx context.Context) ([]schema.Row, error) {
	rows := []schema.Row{}
	if r.Bound() {
		var err error
		if rows, err = r.loader.Load(ctx, Ingredients, r.ID()); err != nil {
			return nil, err
		}
	}
	r.Relations().Set(RelIngredients, rows)
	return rows, nil
}

// ReplaceIngredients makes foodIDs the recipe's complete ingredient list
func (r *Recipe) ReplaceIngredients(ctx context.Context, foodIDs []int64) ([]schema.Row, error) {
	if !r.Bound() {
		return nil, fmt.Errorf("replace ingredients: %w", record.ErrInvalidState)
	}
	rows, err := r.loader.Replace(ctx, Ingredients, r.ID(), foodIDs)
	if err != nil {
		return nil, err
	}
	r.Relations().Set(RelIngredients, rows)
	return rows, nil
}
