package entity

import (
	"context"
	"fmt"

	"github.com/mongoose-kitchen/mongoose/internal/orm/record"
	"github.com/mongoose-kitchen/mongoose/internal/orm/relationships"
	"github.com/mongoose-kitchen/mongoose/internal/orm/schema"
)

// MenuColumn identifies a column of the menu table
type MenuColumn string

const (
	MenuID        MenuColumn = "id"
	MenuTimeOfDay MenuColumn = "time_of_day"
	MenuDate      MenuColumn = "date"
)

// Times of day
const (
	Breakfast = "breakfast"
	Lunch     = "lunch"
	Dinner    = "dinner"
)

// RelRecipes is the relation name of the recipes a menu serves
const RelRecipes = "recipes"

// MenuTable is the catalog of the menu table
var MenuTable = &schema.Table{
	Name: "menu",
	Columns: []schema.Column{
		{Name: string(MenuID), Type: schema.TypeInt},
		{Name: string(MenuTimeOfDay), Type: schema.TypeEnum,
			EnumValues: []string{Breakfast, Lunch, Dinner}},
		{Name: string(MenuDate), Type: schema.TypeDate},
	},
	Keys: []string{string(MenuID)},
}

// Menu is one row of the menu table
type Menu struct {
	*record.Record[MenuColumn]
	loader *relationships.Loader
}

// NewMenu creates an unbound menu on conn
func NewMenu(ctx context.Context, conn record.Conn, opts ...record.Option) (*Menu, error) {
	r, err := record.New[MenuColumn](ctx, conn, MenuTable, opts...)
	if err != nil {
		return nil, err
	}
	return &Menu{
		Record: r,
		loader: relationships.NewLoader(r.Conn(), r.Dialect(), r.Logger()),
	}, nil
}

// LoadRecipes loads the recipes the menu serves and caches them
func (m *Menu) LoadRecipes(ctx context.Context) ([]schema.Row, error) {
	rows := []schema.Row{}
	if m.Bound() {
		var err error
		if rows, err = m.loader.Load(ctx, Serves, m.ID()); err != nil {
			return nil, err
		}
	}
	m.Relations().Set(RelRecipes, rows)
	return rows, nil
}

// ReplaceRecipes makes recipeIDs the menu's complete recipe list
func (m *Menu) ReplaceRecipes(ctx context.Context, recipeIDs []int64) ([]schema.Row, error) {
	if !m.Bound() {
		return nil, fmt.Errorf("replace recipes: %w", record.ErrInvalidState)
	}
	rows, err := m.loader.Replace(ctx, Serves, m.ID(), recipeIDs)
	if err != nil {
		return nil, err
	}
	m.Relations().Set(RelRecipes, rows)
	return rows, nil
}
