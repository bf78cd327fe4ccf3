package api

import (
	"context"
	"net/http"

	"github.com/mongoose-kitchen/mongoose/internal/entity"
	"github.com/mongoose-kitchen/mongoose/internal/orm/query"
	"github.com/mongoose-kitchen/mongoose/internal/orm/record"
	"github.com/mongoose-kitchen/mongoose/internal/orm/relationships"
	"github.com/mongoose-kitchen/mongoose/internal/orm/schema"
	"github.com/mongoose-kitchen/mongoose/internal/web/request"
	"github.com/mongoose-kitchen/mongoose/internal/web/response"
)

const nutritionShapeMessage = "Nutrition entries must be objects similar to nutritional_fact schema"

type foodInput struct {
	id        int64
	fields    map[string]interface{}
	nutrition map[string]interface{}
}

// parseFood reads the "food" list. A top-level "nutrition" object applies to
// every item that does not carry its own.
func parseFood(body map[string]interface{}) ([]foodInput, error) {
	items, err := request.Items(body, "food")
	if err != nil {
		return nil, err
	}

	var shared map[string]interface{}
	if raw, ok := body[entity.RelNutrition]; ok && raw != nil {
		if shared, err = entity.FactMap(raw); err != nil {
			return nil, response.BadRequestf(nutritionShapeMessage)
		}
	}

	inputs := make([]foodInput, len(items))
	for i, item := range items {
		fields, extra, err := entity.SplitFields(entity.FoodTable, item)
		if err != nil {
			return nil, err
		}
		in := foodInput{fields: fields, nutrition: shared}

		if raw, ok := extra[entity.RelNutrition]; ok {
			delete(extra, entity.RelNutrition)
			if in.nutrition, err = entity.FactMap(raw); err != nil {
				return nil, response.BadRequestf(nutritionShapeMessage)
			}
		}
		if in.nutrition != nil {
			if err := checkValue(entity.NutritionalFactTable, string(entity.NutritionFoodGroup), in.nutrition,
				"Food groups must be one of the following: "+enumList(entity.NutritionalFactTable, string(entity.NutritionFoodGroup))); err != nil {
				return nil, err
			}
		}
		if err := rejectExtra(entity.FoodTable, extra); err != nil {
			return nil, err
		}
		if in.id, err = takeID(fields, string(entity.FoodID)); err != nil {
			return nil, err
		}
		inputs[i] = in
	}
	return inputs, nil
}

// saveFood creates or updates every food in the body along with its
// nutritional fact
func (h *Handler) saveFood(w http.ResponseWriter, r *http.Request) {
	body, err := h.parser.ParseObject(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	inputs, err := parseFood(body)
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
		food, err := entity.NewFood(ctx, s, h.opts...)
		if err != nil {
			return nil, err
		}

		fields := entity.Fields[entity.FoodColumn](in.fields)
		if in.id != 0 {
			row, err := food.FindByID(ctx, in.id)
			if err != nil {
				return nil, err
			}
			if row == nil {
				return nil, response.NotFoundf("No food with id %d found", in.id)
			}
			food.Update(fields)
			if err := food.Flush(ctx); err != nil {
				return nil, err
			}
		} else if _, err := food.Create(ctx, fields); err != nil {
			return nil, err
		}

		if in.nutrition != nil {
			before := food.Get(entity.FoodNutritionFK)
			if _, err := food.ReplaceNutrition(ctx, in.nutrition); err != nil {
				return nil, err
			}
			// A newly created fact is only linked in memory until flushed
			if after := food.Get(entity.FoodNutritionFK); after != nil && after != before {
				if err := food.Flush(ctx); err != nil {
					return nil, err
				}
			}
		}
		return food.ID(), nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.write(w, r, map[string]interface{}{"food": ids})
}

// fridge lists the food currently in the fridge
func (h *Handler) fridge(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx := r.Context()

	food, err := entity.NewFood(ctx, s, h.opts...)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := food.All(ctx, "", map[entity.FoodColumn]query.Cond{
		entity.FoodInFridge: {Op: "=", Value: true},
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.write(w, r, map[string]interface{}{"fridge": rows})
}

// allFood lists every food with its nutritional fact
func (h *Handler) allFood(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx := r.Context()

	food, err := entity.NewFood(ctx, s, h.opts...)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := food.All(ctx, "", nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if rows, err = h.withNutrition(ctx, s, rows); err != nil {
		h.fail(w, r, err)
		return
	}

	h.write(w, r, map[string]interface{}{"food": rows})
}

// showFood renders one food by id, or every food with a given name
func (h *Handler) showFood(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx := r.Context()
	ref := request.ParseRef(request.GetParam(r, "ref"))

	food, err := entity.NewFood(ctx, s, h.opts...)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if ref.IsID {
		row, err := food.FindByID(ctx, ref.ID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if row == nil {
			h.fail(w, r, response.NotFoundf("No food with id %d found", ref.ID))
			return
		}
		if _, err := food.LoadNutrition(ctx); err != nil {
			h.fail(w, r, err)
			return
		}
		h.write(w, r, map[string]interface{}{"food": entity.Document(food.Record)})
		return
	}

	rows, err := food.FindByAttribute(ctx, entity.FoodName, ref.Name, 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if len(rows) == 0 {
		h.fail(w, r, response.NotFoundf("No food with name %q found", ref.Name))
		return
	}
	if rows, err = h.withNutrition(ctx, s, rows); err != nil {
		h.fail(w, r, err)
		return
	}

	h.write(w, r, map[string]interface{}{"food": rows})
}

// deleteFood removes one food
func (h *Handler) deleteFood(w http.ResponseWriter, r *http.Request) {
	h.deleteBy(w, r, func(ctx context.Context, conn record.Conn, id int64) (bool, error) {
		food, err := entity.NewFood(ctx, conn, h.opts...)
		if err != nil {
			return false, err
		}
		return food.DeleteByID(ctx, id)
	})
}

// withNutrition attaches each food's fact, or an empty object, with one query
func (h *Handler) withNutrition(ctx context.Context, conn record.Conn, rows []schema.Row) ([]schema.Row, error) {
	facts, err := entity.Nutrition(ctx, h.loader(conn), rows)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		fact, ok := facts[relationships.IDString(row[string(entity.FoodNutritionFK)])]
		if !ok {
			fact = schema.Row{}
		}
		row[entity.RelNutrition] = fact
	}
	return rows, nil
}
