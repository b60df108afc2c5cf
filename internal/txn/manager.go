// Package txn implementa el Transaction Manager: transacciones pgx con
// scope (database, user_id, context-dict) y pools por base de datos.
package txn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/naiad/internal/observability/logger"
)

var (
	// ErrNoDSNForDatabase indica que no hay DSN configurado para esa base.
	ErrNoDSNForDatabase = errors.New("no dsn configured for database")
)

// RootUser es la identidad de sistema (uid 0) usada para probes de solo
// lectura, como la resolución de tenant.
const RootUser int64 = 0

// PoolConfig define parámetros del pool por base de datos.
type PoolConfig struct {
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
}

// ManagerConfig configura el Manager.
type ManagerConfig struct {
	// DSNs mapea nombre de base -> DSN. Tiene prioridad sobre DSNTemplate.
	DSNs map[string]string
	// DSNTemplate deriva DSNs con el placeholder {database}.
	DSNTemplate string
	Pool        PoolConfig
}

// Manager administra pools pgx por base de datos, creados on-demand y
// deduplicados con singleflight.
type Manager struct {
	cfg ManagerConfig

	mu    sync.RWMutex
	pools map[string]*pgxpool.Pool
	sf    singleflight.Group
}

// NewManager crea un Manager con la configuración indicada.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Pool.MaxConns <= 0 {
		cfg.Pool.MaxConns = 8
	}
	if cfg.Pool.MinConns <= 0 {
		cfg.Pool.MinConns = 2
	}
	if cfg.Pool.ConnMaxLifetime <= 0 {
		cfg.Pool.ConnMaxLifetime = 30 * time.Minute
	}
	return &Manager{cfg: cfg, pools: make(map[string]*pgxpool.Pool)}
}

// dsnFor resuelve el DSN para una base: mapa explícito primero, template después.
func (m *Manager) dsnFor(database string) (string, error) {
	if dsn, ok := m.cfg.DSNs[database]; ok && strings.TrimSpace(dsn) != "" {
		return dsn, nil
	}
	if t := strings.TrimSpace(m.cfg.DSNTemplate); t != "" {
		return strings.ReplaceAll(t, "{database}", database), nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoDSNForDatabase, database)
}

// pool devuelve (o crea) el pool de la base solicitada.
func (m *Manager) pool(ctx context.Context, database string) (*pgxpool.Pool, error) {
	m.mu.RLock()
	if p, ok := m.pools[database]; ok {
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	result, err, _ := m.sf.Do(database, func() (any, error) {
		m.mu.RLock()
		if p, ok := m.pools[database]; ok {
			m.mu.RUnlock()
			return p, nil
		}
		m.mu.RUnlock()
		return m.createPool(ctx, database)
	})
	if err != nil {
		return nil, err
	}
	return result.(*pgxpool.Pool), nil
}

func (m *Manager) createPool(ctx context.Context, database string) (*pgxpool.Pool, error) {
	dsn, err := m.dsnFor(database)
	if err != nil {
		return nil, err
	}
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pcfg.MaxConns = int32(m.cfg.Pool.MaxConns)
	pcfg.MinConns = int32(m.cfg.Pool.MinConns)
	pcfg.MaxConnLifetime = m.cfg.Pool.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	// Ping no bloqueante: la app puede arrancar con la base caída.
	if err := pool.Ping(ctx); err != nil {
		logger.Named("txn").Warn("pool startup ping failed",
			logger.Database(database), logger.Err(err))
	} else {
		logger.Named("txn").Info("pool ready",
			logger.Database(database), logger.Count(int(pcfg.MaxConns)))
	}

	m.mu.Lock()
	m.pools[database] = pool
	m.mu.Unlock()
	return pool, nil
}

// Begin abre una transacción top-level con scope (database, userID, ctxvals).
// readonly abre la transacción en modo read-only (probes de tenant).
func (m *Manager) Begin(ctx context.Context, database string, userID int64, ctxvals map[string]any, readonly bool) (*Transaction, error) {
	pool, err := m.pool(ctx, database)
	if err != nil {
		return nil, err
	}

	opts := pgx.TxOptions{}
	if readonly {
		opts.AccessMode = pgx.ReadOnly
	}
	tx, err := pool.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}

	values := make(map[string]any, len(ctxvals))
	for k, v := range ctxvals {
		values[k] = v
	}
	return &Transaction{
		database: database,
		userID:   userID,
		readonly: readonly,
		tx:       tx,
		values:   values,
	}, nil
}

// PoolCount retorna el número de pools activos.
func (m *Manager) PoolCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pools)
}

// Stats devuelve snapshots de cada pool, para métricas.
func (m *Manager) Stats() map[string]*pgxpool.Stat {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*pgxpool.Stat, len(m.pools))
	for db, p := range m.pools {
		out[db] = p.Stat()
	}
	return out
}

// Close cierra todos los pools.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for db, p := range m.pools {
		p.Close()
		delete(m.pools, db)
	}
}
