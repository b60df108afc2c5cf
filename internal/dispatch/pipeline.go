// Package dispatch implementa el pipeline central: resolución de tenant,
// transacción por intento, invocación del endpoint y retry acotado sobre
// la clase transitoria de errores.
package dispatch

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/naiad/internal/observability/logger"
	"github.com/dropDatabas3/naiad/internal/render"
	"github.com/dropDatabas3/naiad/internal/signal"
	"github.com/dropDatabas3/naiad/internal/tenant"
	"github.com/dropDatabas3/naiad/internal/txn"
)

// Config parametriza el pipeline. Es un struct explícito que se pasa al
// constructor: nada se lee de estado global durante el dispatch.
type Config struct {
	// Database es la base de datos sobre la que corre el dispatch.
	Database string
	// Retry es el presupuesto de reintentos (N reintentos = N+1 intentos).
	Retry int
	// DefaultLocale es el fallback cuando el website no define locale.
	DefaultLocale string
	// Retryable decide si un error pertenece a la clase transitoria.
	// Default: txn.Retryable (conflictos de serialización y deadlocks).
	Retryable func(error) bool
	// OnAttempt, si no es nil, recibe el resultado de cada intento
	// (committed|retried|failed) con su duración. Hook de métricas.
	OnAttempt func(result string, dur time.Duration)
}

// Pipeline orquesta un dispatch por request. Sin estado mutable compartido
// entre dispatches concurrentes: cada uno maneja su propia transacción.
type Pipeline struct {
	cfg       Config
	opener    Opener
	tenants   TenantSource
	cache     Invalidator
	resolver  *Resolver
	lifecycle *signal.Lifecycle

	// app es el payload que difunden las señales de ciclo de vida.
	app any
	log *zap.Logger
}

// New construye el pipeline con sus colaboradores.
func New(cfg Config, opener Opener, tenants TenantSource, cache Invalidator, resolver *Resolver, lifecycle *signal.Lifecycle) *Pipeline {
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = "en_US"
	}
	if cfg.Retry < 0 {
		cfg.Retry = 0
	}
	if cfg.Retryable == nil {
		cfg.Retryable = txn.Retryable
	}
	if lifecycle == nil {
		lifecycle = signal.NewLifecycle()
	}
	return &Pipeline{
		cfg:       cfg,
		opener:    opener,
		tenants:   tenants,
		cache:     cache,
		resolver:  resolver,
		lifecycle: lifecycle,
		log:       logger.Named("dispatch"),
	}
}

// SetApp define la instancia de aplicación que difunden las señales.
func (p *Pipeline) SetApp(app any) { p.app = app }

// Lifecycle expone las señales para registrar observers.
func (p *Pipeline) Lifecycle() *signal.Lifecycle { return p.lifecycle }

// Dispatch ejecuta el request completo y retorna el valor del handler.
//
// Orden estricto:
//  1. falla de routing ⇒ corta sin abrir transacción;
//  2. OPTIONS automático ⇒ respuesta vacía, sin transacción ni tenant;
//  3. invalidación de cache de la base activa;
//  4. probe read-only (uid 0) para resolver el website por host;
//  5. retry loop: transacción nueva por intento.
func (p *Pipeline) Dispatch(ctx context.Context, req *Request) (any, error) {
	if req.RoutingErr != nil {
		return nil, req.RoutingErr
	}

	if req.AutoOptions && strings.EqualFold(req.Method, http.MethodOptions) {
		return defaultOptionsResponse(req.Allow), nil
	}

	p.cache.InvalidateDatabase(ctx, p.cfg.Database)

	site, err := p.resolveTenant(ctx, req)
	if err != nil {
		return nil, err
	}
	req.website = site
	userID, companyID := site.ApplicationUserID, site.CompanyID

	var result any
	for count := p.cfg.Retry; count >= 0; count-- {
		attempt := p.cfg.Retry - count
		began := time.Now()
		result, err = p.attempt(ctx, req, site, userID, companyID)
		if err == nil {
			p.observe("committed", began)
			return result, nil
		}
		if count > 0 && p.cfg.Retryable(err) {
			// Conflicto transitorio: se descarta todo el intento y se
			// reabre una transacción fresca.
			p.observe("retried", began)
			p.log.Warn("transient failure, retrying",
				logger.Endpoint(req.Endpoint),
				logger.Attempt(attempt),
				logger.Err(err))
			continue
		}
		p.observe("failed", began)
		return nil, err
	}
	return nil, err
}

func (p *Pipeline) observe(result string, began time.Time) {
	if p.cfg.OnAttempt != nil {
		p.cfg.OnAttempt(result, time.Since(began))
	}
}

// resolveTenant corre la búsqueda por host en una transacción read-only con
// identidad de sistema. La transacción se cierra siempre antes de retornar.
func (p *Pipeline) resolveTenant(ctx context.Context, req *Request) (*tenant.Website, error) {
	ro, err := p.opener.Begin(ctx, p.cfg.Database, txn.RootUser, nil, true)
	if err != nil {
		return nil, err
	}
	site, rerr := p.tenants.GetFromHost(ctx, ro, req.Host)
	_ = ro.Close(ctx)
	if rerr != nil {
		return nil, rerr
	}
	return site, nil
}

// attempt corre un intento completo: transacción nueva, señal start,
// invocación, commit o rollback, señal stop antes de liberar.
func (p *Pipeline) attempt(ctx context.Context, req *Request, site *tenant.Website, userID, companyID int64) (result any, err error) {
	tx, err := p.opener.Begin(ctx, p.cfg.Database, userID, map[string]any{"company": companyID}, false)
	if err != nil {
		return nil, err
	}
	defer func() {
		// transaction_stop se emite siempre, simétrica con start, antes de
		// liberar la transacción. Un error del observer reemplaza el
		// resultado, como cualquier otra falla del intento.
		if serr := p.lifecycle.TransactionStop.Send(p.app); serr != nil && err == nil {
			result, err = nil, serr
		}
		_ = tx.Close(ctx)
	}()

	if err = p.lifecycle.TransactionStart.Send(p.app); err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}

	result, err = p.invoke(ctx, tx, req, site)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		// El conflicto de serialización puede aflorar recién en el commit;
		// el predicado del caller decide si se reintenta.
		_ = tx.Rollback(ctx)
		return nil, err
	}
	return result, nil
}

// invoke resuelve y ejecuta el endpoint dentro de un scope anidado con el
// locale efectivo. Los Renderable se fuerzan acá, con transacción y locale
// todavía vivos.
func (p *Pipeline) invoke(ctx context.Context, tx Txn, req *Request, site *tenant.Website) (any, error) {
	language := p.cfg.DefaultLocale
	if site != nil && site.Locale != "" {
		language = site.Locale
	}

	child := tx.WithContext(map[string]any{"language": language})

	target, err := p.resolver.Resolve(req.Endpoint, req.ViewArgs)
	if err != nil {
		return nil, err
	}

	result, err := target.Call(ctx, child)
	if err != nil {
		return nil, err
	}

	if r, ok := result.(render.Renderable); ok {
		s, rerr := r.Resolve(render.Context{Language: language, Tx: child})
		if rerr != nil {
			return nil, rerr
		}
		result = s
	}
	return result, nil
}
