package main

import (
	"net/http"
	"time"

	"unify-server/src/api"
	"unify-server/src/cache"
	"unify-server/src/categorize"
	"unify-server/src/config"
	"unify-server/src/db"
	sql "unify-server/src/db/sql"
	"unify-server/src/demo"
	"unify-server/src/handlers"
	"unify-server/src/logger"
	"unify-server/src/refresh"
	"unify-server/src/stream"
	"unify-server/src/trading"
	"unify-server/src/truelayer"
)

func main() {
	cfg := config.Load()
	log := logger.New()

	broker := stream.NewBroker()

	var (
		source      handlers.DataSource
		provider    categorize.Provider
		configStore *refresh.ConfigStore
		bankClient  *truelayer.Client
	)

	if cfg.DemoMode {
		log.Info().Msg("running in demo mode")
		source = demo.NewSource()
		provider = demo.NewProvider()
		// Demo keeps connection state in memory only.
		store := cache.NewMemoryStore()
		configStore = refresh.NewConfigStore(store)
		bankClient = truelayer.NewClient(cfg.TrueLayer, configStore, log)
	} else {
		pool, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("DB connection failed")
		}
		defer pool.Close()

		kv, err := db.NewKVStore(pool)
		if err != nil {
			log.Fatal().Err(err).Msg("cache init failed")
		}

		configStore = refresh.NewConfigStore(kv)
		bankClient = truelayer.NewClient(cfg.TrueLayer, configStore, log)
		tradingClient := trading.NewClient(cfg.Trading212, configStore, log)

		staleAfter := time.Duration(cfg.StaleAfterHours * float64(time.Hour))
		source = refresh.NewCoordinator(kv, configStore, bankClient, tradingClient, broker, staleAfter, log)
		provider = &sql.CategoryStore{Pool: pool}
	}

	router := api.NewRouter(api.Deps{
		Config:      cfg,
		Source:      source,
		Engine:      categorize.NewEngine(provider),
		Provider:    provider,
		ConfigStore: configStore,
		TrueLayer:   bankClient,
		Broker:      broker,
		Logger:      log,
	})

	log.Info().Str("port", cfg.Port).Msg("API server running")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
