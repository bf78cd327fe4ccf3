// Package api serves the kitchen's HTTP routes: recipes, food, nutritional
// facts, menus and the fridge.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mongoose-kitchen/mongoose/internal/orm/dialect"
	"github.com/mongoose-kitchen/mongoose/internal/orm/record"
	"github.com/mongoose-kitchen/mongoose/internal/orm/relationships"
	"github.com/mongoose-kitchen/mongoose/internal/orm/schema"
	"github.com/mongoose-kitchen/mongoose/internal/orm/transaction"
	"github.com/mongoose-kitchen/mongoose/internal/web/middleware"
	"github.com/mongoose-kitchen/mongoose/internal/web/request"
	"github.com/mongoose-kitchen/mongoose/internal/web/router"
)

// errNoSession is returned when a handler runs outside the session middleware
var errNoSession = errors.New("no database session in request context")

// Config holds handler settings
type Config struct {
	Dialect dialect.Dialect
	Logger  *zap.Logger

	// ProbeTables makes every entity constructor check its table first
	ProbeTables bool

	// RequestTimeout bounds each request's context; zero means no bound
	RequestTimeout time.Duration

	// MaxBodySize caps request bodies in bytes; zero keeps the parser default
	MaxBodySize int64
}

// Handler serves the kitchen routes
type Handler struct {
	dialect dialect.Dialect
	logger  *zap.Logger
	parser  *request.Parser
	opts    []record.Option
	timeout time.Duration
}

// New creates a handler
func New(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	parser := request.NewParser()
	if cfg.MaxBodySize > 0 {
		parser = request.NewParserWithMaxSize(cfg.MaxBodySize)
	}

	return &Handler{
		dialect: cfg.Dialect,
		logger:  logger,
		parser:  parser,
		timeout: cfg.RequestTimeout,
		opts: []record.Option{
			record.WithDialect(cfg.Dialect),
			record.WithLogger(logger),
			record.WithProbe(cfg.ProbeTables),
		},
	}
}

// Mount installs the middleware stack and every route on r. Middleware has to
// be installed before the routes.
func (h *Handler) Mount(r *router.Router, manager *transaction.Manager) {
	r.Use(
		middleware.RequestID(),
		middleware.Logging(h.logger),
		middleware.Recovery(h.logger),
		middleware.NoCache(),
		middleware.Timeout(h.timeout),
		middleware.Session(manager),
	)
	router.SetupDefaultErrorHandlers(r)
	h.Routes(r)
}

// Routes registers the kitchen routes on r
func (h *Handler) Routes(r *router.Router) {
	r.Get("/fridge/", h.fridge).Named("fridge")

	r.Post("/recipe/", h.saveRecipes).Named("recipes.save")
	r.Get("/recipe/all/", h.allRecipes).Named("recipes.all")
	r.Get("/recipe/{ref}/", h.showRecipe).Named("recipes.show")
	r.Delete("/recipe/{id}/del/", h.deleteRecipe).Named("recipes.delete")

	r.Post("/food/", h.saveFood).Named("food.save")
	r.Get("/food/all/", h.allFood).Named("food.all")
	r.Get("/food/{ref}/", h.showFood).Named("food.show")
	r.Delete("/food/{id}/del/", h.deleteFood).Named("food.delete")

	r.Post("/nutrition/", h.saveFacts).Named("nutrition.save")
	r.Get("/nutrition/all/", h.allFacts).Named("nutrition.all")
	r.Get("/nutrition/{id}/", h.showFact).Named("nutrition.show")
	r.Delete("/nutrition/{id}/del/", h.deleteFact).Named("nutrition.delete")

	r.Post("/menu/", h.saveMenus).Named("menus.save")
	r.Get("/menu/all/", h.allMenus).Named("menus.all")
	r.Get("/menu/date/{date}/", h.menusOnDate).Named("menus.date")
	r.Get("/menu/date/between/{begin}/{end}/", h.menusBetween).Named("menus.between")
	r.Get("/menu/{ref}/", h.showMenu).Named("menus.show")
	r.Get("/menu/{ref}/{date}/", h.menusAt).Named("menus.at")
	r.Delete("/menu/{id}/del/", h.deleteMenu).Named("menus.delete")
}

func (h *Handler) session(r *http.Request) (*transaction.Session, error) {
	s, ok := transaction.FromContext(r.Context())
	if !ok {
		return nil, errNoSession
	}
	return s, nil
}

func (h *Handler) loader(conn record.Conn) *relationships.Loader {
	return relationships.NewLoader(conn, h.dialect, h.logger)
}

// idParam reads the {id} segment; a non-integer id is reported as missing
func idParam(r *http.Request, name string) (request.Ref, bool) {
	ref := request.ParseRef(request.GetParam(r, name))
	return ref, ref.IsID
}

// attach adds each row's related rows, grouped by owner key, under name
func attach(rows []schema.Row, key, name string, grouped map[string][]schema.Row) []schema.Row {
	for _, row := range rows {
		related := grouped[relationships.IDString(row[key])]
		if related == nil {
			related = []schema.Row{}
		}
		row[name] = related
	}
	return rows
}

func ownerIDs(rows []schema.Row, key string) []interface{} {
	ids := make([]interface{}, len(rows))
	for i, row := range rows {
		ids[i] = row[key]
	}
	return ids
}

// saveEach runs save for every item, each in its own retried transaction
func (h *Handler) saveEach(ctx context.Context, s *transaction.Session, n int, save func(ctx context.Context, i int) (interface{}, error)) ([]interface{}, error) {
	ids := make([]interface{}, 0, n)
	for i := 0; i < n; i++ {
		var id interface{}
		err := s.WithRetry(ctx, func(ctx context.Context) error {
			var err error
			id, err = save(ctx, i)
			return err
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
