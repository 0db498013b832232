package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"unify-server/src/categorize"
	"unify-server/src/config"
	"unify-server/src/handlers"
	"unify-server/src/middleware"
	"unify-server/src/refresh"
	"unify-server/src/stream"
	"unify-server/src/truelayer"
)

type Deps struct {
	Config      config.Config
	Source      handlers.DataSource
	Engine      *categorize.Engine
	Provider    categorize.Provider
	ConfigStore *refresh.ConfigStore
	TrueLayer   *truelayer.Client
	Broker      *stream.Broker
	Logger      zerolog.Logger
}

func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}).Handler)
	r.Use(middleware.DemoModeMiddleware(deps.Config.DemoMode))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	logger := deps.Logger

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Login(deps.Config, logger))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware(deps.Config.JWTSecret)).Group(func(r chi.Router) {
			r.Get("/transactions", handlers.GetTransactions(deps.Source, deps.Engine, logger))
			r.Get("/transactions/rows", handlers.GetTransactionRows(deps.Source, deps.Engine, logger))
			r.Get("/transactions/demo", handlers.GetDemoTransactions(logger))
			r.Get("/transactions/stream", handlers.StreamEvents(deps.Broker, logger))

			// Stats
			r.Get("/stats/activity", handlers.GetActivity(deps.Source, deps.Engine, logger))
			r.Get("/stats/categories", handlers.GetCategoryStats(deps.Source, deps.Engine, deps.Provider, logger))
			r.Get("/stats/income", handlers.GetIncome(deps.Source, deps.Engine, logger))

			// Category rules and overrides
			r.Get("/categories/rules", handlers.GetCategories(deps.Provider, logger))
			r.Post("/categories/rules", handlers.CreateCategory(deps.Provider, logger))
			r.Put("/categories/rules/{rule_id}", handlers.UpdateCategory(deps.Provider, logger))
			r.Delete("/categories/rules/{rule_id}", handlers.DeleteCategory(deps.Provider, logger))
			r.Get("/categories/overrides", handlers.GetCategoryOverrides(deps.Provider, logger))
			r.Post("/categories/overrides", handlers.SetCategoryOverride(deps.Provider, logger))
			r.Delete("/categories/overrides/{reference}", handlers.DeleteCategoryOverride(deps.Provider, logger))

			// Connections
			r.Get("/connections/status", handlers.GetConnections(deps.ConfigStore, logger))
			r.Post("/connections/sync", handlers.TriggerSync(deps.Source, logger))
			r.Get("/connections/truelayer/link", handlers.TrueLayerLink(deps.TrueLayer))
			r.Post("/connections/truelayer", handlers.TrueLayerExchange(deps.TrueLayer, deps.Source, logger))
			r.Delete("/connections/truelayer", handlers.DisconnectTrueLayer(deps.ConfigStore, logger))
			r.Post("/connections/trading", handlers.SaveTrading212(deps.ConfigStore, deps.Source, logger))
			r.Delete("/connections/trading", handlers.DeleteTrading212(deps.ConfigStore, logger))
		})
	})

	return r
}
