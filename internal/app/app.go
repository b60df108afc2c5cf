// Package app arma la aplicación: config -> txn manager, cache, pipeline,
// router. Es el único lugar donde las piezas concretas se conocen entre sí.
package app

import (
	nethttp "net/http"
	"time"

	"github.com/dropDatabas3/naiad/internal/cache"
	"github.com/dropDatabas3/naiad/internal/config"
	"github.com/dropDatabas3/naiad/internal/dispatch"
	httpx "github.com/dropDatabas3/naiad/internal/http"
	"github.com/dropDatabas3/naiad/internal/observability/logger"
	"github.com/dropDatabas3/naiad/internal/orm"
	"github.com/dropDatabas3/naiad/internal/signal"
	"github.com/dropDatabas3/naiad/internal/tenant"
	"github.com/dropDatabas3/naiad/internal/txn"
)

// App agrupa las piezas vivas de la aplicación.
type App struct {
	Config   *config.Config
	Registry *orm.Registry
	Manager  *txn.Manager
	Cache    *cache.Store
	Pipeline *dispatch.Pipeline

	handler nethttp.Handler
}

// New construye la aplicación completa a partir de la config ya validada.
// El registry llega congelado; views permite endpoints que no son
// "model.method".
func New(cfg *config.Config, registry *orm.Registry, views map[string]dispatch.ViewFunc) (*App, error) {
	manager := txn.NewManager(txn.ManagerConfig{
		DSNs:        cfg.Database.DSNs,
		DSNTemplate: cfg.Database.DSNTemplate,
		Pool:        poolConfig(cfg),
	})

	client, err := cache.New(cacheConfig(cfg))
	if err != nil {
		return nil, err
	}
	store := cache.NewStore(client)

	lifecycle := signal.NewLifecycle()
	pipeline := dispatch.New(dispatch.Config{
		Database:      cfg.Database.Name,
		Retry:         cfg.Retry(),
		DefaultLocale: cfg.Dispatch.DefaultLocale,
		Retryable:     txn.Retryable,
		OnAttempt:     httpx.RecordAttempt,
	}, pgOpener{manager}, tenantSource{tenant.NewResolver()}, store, dispatch.NewResolver(registry, views), lifecycle)

	a := &App{
		Config:   cfg,
		Registry: registry,
		Manager:  manager,
		Cache:    store,
		Pipeline: pipeline,
	}
	pipeline.SetApp(a)

	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{Pools: manager})
	if err != nil {
		return nil, err
	}
	start, stop := httpx.TransactionObservers()
	lifecycle.TransactionStart.Connect(start)
	lifecycle.TransactionStop.Connect(stop)

	a.handler = httpx.NewRouter(pipeline, cfg.Routes, httpx.RouterOptions{
		Retryable: txn.Retryable,
		Metrics:   metricsHandler,
	})

	logger.Named("app").Info("application assembled",
		logger.Database(cfg.Database.Name),
		logger.Count(len(cfg.Routes)),
	)
	return a, nil
}

// Handler retorna el handler HTTP raíz.
func (a *App) Handler() nethttp.Handler { return a.handler }

// Close libera pools y backends de cache.
func (a *App) Close() {
	a.Manager.Close()
	if err := a.Cache.Close(); err != nil {
		logger.Named("app").Warn("cache close", logger.Err(err))
	}
}

func poolConfig(cfg *config.Config) txn.PoolConfig {
	pc := txn.PoolConfig{
		MaxConns: cfg.Database.Pool.MaxConns,
		MinConns: cfg.Database.Pool.MinConns,
	}
	if cfg.Database.Pool.ConnMaxLifetime != "" {
		// Validado en config.Parse.
		d, _ := time.ParseDuration(cfg.Database.Pool.ConnMaxLifetime)
		pc.ConnMaxLifetime = d
	}
	return pc
}

func cacheConfig(cfg *config.Config) cache.Config {
	cc := cache.Config{
		Driver:   cfg.Cache.Kind,
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	}
	if cfg.Cache.Memory.DefaultTTL != "" {
		d, _ := time.ParseDuration(cfg.Cache.Memory.DefaultTTL)
		cc.DefaultTTL = d
	}
	return cc
}
