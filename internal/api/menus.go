package api

import (
	"context"
	"net/http"
	"time"

	"github.com/mongoose-kitchen/mongoose/internal/entity"
	"github.com/mongoose-kitchen/mongoose/internal/orm/query"
	"github.com/mongoose-kitchen/mongoose/internal/orm/record"
	"github.com/mongoose-kitchen/mongoose/internal/orm/schema"
	"github.com/mongoose-kitchen/mongoose/internal/web/request"
	"github.com/mongoose-kitchen/mongoose/internal/web/response"
)

type menuInput struct {
	id         int64
	fields     map[string]interface{}
	recipes    []int64
	hasRecipes bool
}

func parseMenus(body map[string]interface{}) ([]menuInput, error) {
	items, err := request.Items(body, "menus")
	if err != nil {
		return nil, err
	}

	inputs := make([]menuInput, len(items))
	for i, item := range items {
		if err := checkValue(entity.MenuTable, string(entity.MenuDate), item, "%v is not a valid date"); err != nil {
			return nil, err
		}
		if err := checkValue(entity.MenuTable, string(entity.MenuTimeOfDay), item, "%v is not a valid time of day"); err != nil {
			return nil, err
		}

		fields, extra, err := entity.SplitFields(entity.MenuTable, item)
		if err != nil {
			return nil, err
		}
		in := menuInput{fields: fields}

		if raw, ok := extra[entity.RelRecipes]; ok {
			delete(extra, entity.RelRecipes)
			if in.recipes, err = entity.IDList(raw); err != nil {
				return nil, response.BadRequestf("Invalid data. The recipes attribute must be a list of numeric recipe ids")
			}
			in.hasRecipes = true
		}
		if err := rejectExtra(entity.MenuTable, extra); err != nil {
			return nil, err
		}
		if in.id, err = takeID(fields, string(entity.MenuID)); err != nil {
			return nil, err
		}
		inputs[i] = in
	}
	return inputs, nil
}

// saveMenus creates or updates every menu in the body
func (h *Handler) saveMenus(w http.ResponseWriter, r *http.Request) {
	body, err := h.parser.ParseObject(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	inputs, err := parseMenus(body)
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
		menu, err := entity.NewMenu(ctx, s, h.opts...)
		if err != nil {
			return nil, err
		}

		fields := entity.Fields[entity.MenuColumn](in.fields)
		if in.id != 0 {
			row, err := menu.FindByID(ctx, in.id)
			if err != nil {
				return nil, err
			}
			if row == nil {
				return nil, response.NotFoundf("No menu with id %d found", in.id)
			}
			menu.Update(fields)
			if err := menu.Flush(ctx); err != nil {
				return nil, err
			}
		} else if _, err := menu.Create(ctx, fields); err != nil {
			return nil, err
		}

		if in.hasRecipes {
			if _, err := menu.ReplaceRecipes(ctx, in.recipes); err != nil {
				return nil, err
			}
		}
		return menu.ID(), nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.write(w, r, map[string]interface{}{"menus": ids})
}

// allMenus lists every menu with its recipes
func (h *Handler) allMenus(w http.ResponseWriter, r *http.Request) {
	h.listMenus(w, r, "", nil, nil)
}

// showMenu renders one menu by id, or every menu at a time of day
func (h *Handler) showMenu(w http.ResponseWriter, r *http.Request) {
	ref := request.ParseRef(request.GetParam(r, "ref"))
	if !ref.IsID {
		h.listMenus(w, r, "", map[entity.MenuColumn]query.Cond{
			entity.MenuTimeOfDay: {Op: "=", Value: ref.Name},
		}, response.NotFoundf("No menus with the time of day %s found", ref.Name))
		return
	}

	s, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx := r.Context()

	menu, err := entity.NewMenu(ctx, s, h.opts...)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	row, err := menu.FindByID(ctx, ref.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if row == nil {
		h.fail(w, r, response.NotFoundf("No menu with id %d found", ref.ID))
		return
	}
	if _, err := menu.LoadRecipes(ctx); err != nil {
		h.fail(w, r, err)
		return
	}

	h.write(w, r, map[string]interface{}{"menu": entity.Document(menu.Record)})
}

// menusAt lists the menus at a time of day on one date
func (h *Handler) menusAt(w http.ResponseWriter, r *http.Request) {
	timeOfDay := request.GetParam(r, "ref")
	date, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}

	h.listMenusAs(w, r, "menu", "AND", map[entity.MenuColumn]query.Cond{
		entity.MenuTimeOfDay: {Op: "=", Value: timeOfDay},
		entity.MenuDate:      {Op: "=", Value: date},
	}, response.NotFoundf("No menu found for the time of day %s at date %s", timeOfDay, date.Format(schema.DateLayout)))
}

// menusOnDate lists the menus on one date
func (h *Handler) menusOnDate(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}

	h.listMenus(w, r, "", map[entity.MenuColumn]query.Cond{
		entity.MenuDate: {Op: "=", Value: date},
	}, response.NotFoundf("No menus for the date %s", date.Format(schema.DateLayout)))
}

// menusBetween lists the menus from begin to end, both included
func (h *Handler) menusBetween(w http.ResponseWriter, r *http.Request) {
	begin, ok := h.dateParam(w, r, "begin")
	if !ok {
		return
	}
	end, ok := h.dateParam(w, r, "end")
	if !ok {
		return
	}

	h.listMenus(w, r, "", map[entity.MenuColumn]query.Cond{
		entity.MenuDate: {Op: "BETWEEN", Value: query.Range{Low: begin, High: end}},
	}, response.NotFoundf("No menus between dates %s and %s found",
		begin.Format(schema.DateLayout), end.Format(schema.DateLayout)))
}

// deleteMenu removes one menu
func (h *Handler) deleteMenu(w http.ResponseWriter, r *http.Request) {
	h.deleteBy(w, r, func(ctx context.Context, conn record.Conn, id int64) (bool, error) {
		menu, err := entity.NewMenu(ctx, conn, h.opts...)
		if err != nil {
			return false, err
		}
		return menu.DeleteByID(ctx, id)
	})
}

func (h *Handler) listMenus(w http.ResponseWriter, r *http.Request, combinator string, conds map[entity.MenuColumn]query.Cond, missing *response.HTTPError) {
	h.listMenusAs(w, r, "menus", combinator, conds, missing)
}

// listMenusAs renders the menus matching conds, with their recipes, under
// key. When missing is set an empty result is rendered as that error.
func (h *Handler) listMenusAs(w http.ResponseWriter, r *http.Request, key, combinator string, conds map[entity.MenuColumn]query.Cond, missing *response.HTTPError) {
	s, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx := r.Context()

	menu, err := entity.NewMenu(ctx, s, h.opts...)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := menu.All(ctx, combinator, conds)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if len(rows) == 0 && missing != nil {
		h.fail(w, r, missing)
		return
	}

	idKey := string(entity.MenuID)
	grouped, err := h.loader(s).LoadMany(ctx, entity.Serves, ownerIDs(rows, idKey))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.write(w, r, map[string]interface{}{key: attach(rows, idKey, entity.RelRecipes, grouped)})
}

func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	date, err := request.DateParam(r, name)
	if err != nil {
		h.fail(w, r, response.BadRequestf("%s is not a valid date", request.GetParam(r, name)))
		return time.Time{}, false
	}
	return date, true
}
