package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/mongoose-kitchen/mongoose/internal/entity"
	"github.com/mongoose-kitchen/mongoose/internal/orm/record"
	"github.com/mongoose-kitchen/mongoose/internal/orm/schema"
	"github.com/mongoose-kitchen/mongoose/internal/web/request"
	"github.com/mongoose-kitchen/mongoose/internal/web/response"
)

type recipeInput struct {
	id             int64
	fields         map[string]interface{}
	ingredients    []int64
	hasIngredients bool
}

func parseRecipes(body map[string]interface{}) ([]recipeInput, error) {
	items, err := request.Items(body, "recipes")
	if err != nil {
		return nil, err
	}

	inputs := make([]recipeInput, len(items))
	for i, item := range items {
		if err := checkValue(entity.RecipeTable, string(entity.RecipeCategory), item,
			"Categories must be one of the following: "+enumList(entity.RecipeTable, string(entity.RecipeCategory))); err != nil {
			return nil, err
		}

		fields, extra, err := entity.SplitFields(entity.RecipeTable, item)
		if err != nil {
			return nil, err
		}
		in := recipeInput{fields: fields}

		if raw, ok := extra[entity.RelIngredients]; ok {
			delete(extra, entity.RelIngredients)
			if in.ingredients, err = entity.IDList(raw); err != nil {
				return nil, response.BadRequestf("Ingredient entries must be a list of ids referencing food items in the database")
			}
			in.hasIngredients = true
		}
		if err := rejectExtra(entity.RecipeTable, extra); err != nil {
			return nil, err
		}
		if in.id, err = takeID(fields, string(entity.RecipeID)); err != nil {
			return nil, err
		}
		inputs[i] = in
	}
	return inputs, nil
}

// saveRecipes creates or updates every recipe in the body
func (h *Handler) saveRecipes(w http.ResponseWriter, r *http.Request) {
	body, err := h.parser.ParseObject(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	inputs, err := parseRecipes(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ids, err := h.saveEach(r.Context(), s, len(inputs), func(ctx context.Context, i int) (interface{}, error) {
		in := inputs[i]
		recipe, err := entity.NewRecipe(ctx, s, h.opts...)
		if err != nil {
			return nil, err
		}

		fields := entity.Fields[entity.RecipeColumn](in.fields)
		if in.id != 0 {
			row, err := recipe.FindByID(ctx, in.id)
			if err != nil {
				return nil, err
			}
			if row == nil {
				return nil, response.NotFoundf("No recipe with id %d found", in.id)
			}
			recipe.Update(fields)
			if err := recipe.Flush(ctx); err != nil {
				return nil, err
			}
		} else if _, err := recipe.Create(ctx, fields); err != nil {
			return nil, err
		}

		if in.hasIngredients {
			if _, err := recipe.ReplaceIngredients(ctx, in.ingredients); err != nil {
				return nil, err
			}
		}
		return recipe.ID(), nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.write(w, r, map[string]interface{}{"recipes": ids})
}

// allRecipes lists every recipe with its ingredients
func (h *Handler) allRecipes(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx := r.Context()

	recipe, err := entity.NewRecipe(ctx, s, h.opts...)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := recipe.All(ctx, "", nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if rows, err = h.withIngredients(ctx, s, rows); err != nil {
		h.fail(w, r, err)
		return
	}

	h.write(w, r, map[string]interface{}{"recipes": rows})
}

// showRecipe renders one recipe by id, or every recipe with a given name
func (h *Handler) showRecipe(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx := r.Context()
	ref := request.ParseRef(request.GetParam(r, "ref"))

	recipe, err := entity.NewRecipe(ctx, s, h.opts...)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if ref.IsID {
		row, err := recipe.FindByID(ctx, ref.ID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if row == nil {
			h.fail(w, r, response.NotFoundf("No recipe with id %d found", ref.ID))
			return
		}
		if _, err := recipe.LoadIngredients(ctx); err != nil {
			h.fail(w, r, err)
			return
		}
		h.write(w, r, map[string]interface{}{"recipe": entity.Document(recipe.Record)})
		return
	}

	rows, err := recipe.FindByAttribute(ctx, entity.RecipeName, ref.Name, 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if len(rows) == 0 {
		h.fail(w, r, response.NotFoundf("No recipes with name %q found", ref.Name))
		return
	}
	if rows, err = h.withIngredients(ctx, s, rows); err != nil {
		h.fail(w, r, err)
		return
	}

	h.write(w, r, map[string]interface{}{"recipes": rows})
}

// deleteRecipe removes one recipe
func (h *Handler) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	h.deleteBy(w, r, func(ctx context.Context, conn record.Conn, id int64) (bool, error) {
		recipe, err := entity.NewRecipe(ctx, conn, h.opts...)
		if err != nil {
			return false, err
		}
		return recipe.DeleteByID(ctx, id)
	})
}

func (h *Handler) withIngredients(ctx context.Context, conn record.Conn, rows []schema.Row) ([]schema.Row, error) {
	key := string(entity.RecipeID)
	grouped, err := h.loader(conn).LoadMany(ctx, entity.Ingredients, ownerIDs(rows, key))
	if err != nil {
		return nil, err
	}
	return attach(rows, key, entity.RelIngredients, grouped), nil
}

// deleteBy runs del for the {id} segment and renders {"success": bool}
func (h *Handler) deleteBy(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, conn record.Conn, id int64) (bool, error)) {
	s, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ref, ok := idParam(r, "id")
	if !ok {
		h.fail(w, r, response.BadRequestf("%s is not a valid id", ref.Value))
		return
	}

	deleted, err := del(r.Context(), s, ref.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, r, map[string]interface{}{"success": deleted})
}

// checkValue reports a value in item outside its column domain with message,
// which may carry one %v verb for the value
func checkValue(table *schema.Table, column string, item map[string]interface{}, message string) error {
	v, ok := item[column]
	if !ok || v == nil {
		return nil
	}
	if err := entity.CheckValue(table, column, v); err != nil {
		if strings.Contains(message, "%v") {
			return response.BadRequestf(message, v)
		}
		return response.BadRequestf("%s", message)
	}
	return nil
}

func enumList(table *schema.Table, column string) string {
	col, _ := table.Column(column)
	return strings.Join(col.EnumValues, ", ")
}

func rejectExtra(table *schema.Table, extra map[string]interface{}) error {
	for k := range extra {
		return &record.InvalidColumnError{Table: table.Name, Column: k}
	}
	return nil
}

// takeID removes the key from fields and returns it as an id. A missing, nil
// or zero key means the item is new.
func takeID(fields map[string]interface{}, key string) (int64, error) {
	raw, ok := fields[key]
	delete(fields, key)
	if !ok || raw == nil {
		return 0, nil
	}
	return entity.ParseID(raw)
}
