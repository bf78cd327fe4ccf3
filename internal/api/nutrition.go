package api

import (
	"context"
	"net/http"

	"github.com/mongoose-kitchen/mongoose/internal/entity"
	"github.com/mongoose-kitchen/mongoose/internal/orm/record"
	"github.com/mongoose-kitchen/mongoose/internal/web/request"
	"github.com/mongoose-kitchen/mongoose/internal/web/response"
)

type factInput struct {
	id     int64
	fields map[string]interface{}
}

func parseFacts(body map[string]interface{}) ([]factInput, error) {
	items, err := request.Items(body, "facts")
	if err != nil {
		return nil, err
	}

	inputs := make([]factInput, len(items))
	for i, item := range items {
		if err := checkValue(entity.NutritionalFactTable, string(entity.NutritionFoodGroup), item,
			"Food groups must be one of the following: "+enumList(entity.NutritionalFactTable, string(entity.NutritionFoodGroup))); err != nil {
			return nil, err
		}
		fields, extra, err := entity.SplitFields(entity.NutritionalFactTable, item)
		if err != nil {
			return nil, err
		}
		if err := rejectExtra(entity.NutritionalFactTable, extra); err != nil {
			return nil, err
		}
		id, err := takeID(fields, string(entity.NutritionID))
		if err != nil {
			return nil, err
		}
		inputs[i] = factInput{id: id, fields: fields}
	}
	return inputs, nil
}

// saveFacts creates or updates every nutritional fact in the body
func (h *Handler) saveFacts(w http.ResponseWriter, r *http.Request) {
	body, err := h.parser.ParseObject(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	inputs, err := parseFacts(body)
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
		fact, err := entity.NewNutritionalFact(ctx, s, h.opts...)
		if err != nil {
			return nil, err
		}

		fields := entity.Fields[entity.NutritionColumn](in.fields)
		if in.id == 0 {
			return fact.Create(ctx, fields)
		}

		row, err := fact.FindByID(ctx, in.id)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, response.NotFoundf("No nutritional fact with id %d found", in.id)
		}
		fact.Update(fields)
		if err := fact.Flush(ctx); err != nil {
			return nil, err
		}
		return fact.ID(), nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.write(w, r, map[string]interface{}{"nutritional_facts": ids})
}

// allFacts lists every nutritional fact
func (h *Handler) allFacts(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx := r.Context()

	fact, err := entity.NewNutritionalFact(ctx, s, h.opts...)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := fact.All(ctx, "", nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.write(w, r, map[string]interface{}{"nutritional_facts": rows})
}

// showFact renders one nutritional fact
func (h *Handler) showFact(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx := r.Context()

	ref, ok := idParam(r, "id")
	if !ok {
		h.fail(w, r, response.NotFoundf("No nutritional fact with id %s found", ref.Value))
		return
	}

	fact, err := entity.NewNutritionalFact(ctx, s, h.opts...)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	row, err := fact.FindByID(ctx, ref.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if row == nil {
		h.fail(w, r, response.NotFoundf("No nutritional fact with id %d found", ref.ID))
		return
	}

	h.write(w, r, map[string]interface{}{"nutritional_fact": row})
}

// deleteFact removes one nutritional fact
func (h *Handler) deleteFact(w http.ResponseWriter, r *http.Request) {
	h.deleteBy(w, r, func(ctx context.Context, conn record.Conn, id int64) (bool, error) {
		fact, err := entity.NewNutritionalFact(ctx, conn, h.opts...)
		if err != nil {
			return false, err
		}
		return fact.DeleteByID(ctx, id)
	})
}
