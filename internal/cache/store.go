package cache

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/dropDatabas3/naiad/internal/observability/logger"
)

// Store namespacea un Client por base de datos y soporta invalidación
// por base completa sin recorrer keys: cada base tiene una "generación"
// y las keys la incluyen. Invalidar es rotar la generación; las entradas
// viejas quedan huérfanas y expiran por TTL.
//
// La invalidación no toma locks contra lectores concurrentes: un request
// puede leer una entrada poblada entre la invalidación y su propio Set.
type Store struct {
	client Client
	seq    atomic.Uint64 // fuente local para generaciones nuevas
}

// NewStore crea un Store sobre el cliente dado.
func NewStore(client Client) *Store {
	return &Store{client: client}
}

func genKey(database string) string { return "gen:" + database }

// generation obtiene la generación vigente de una base ("" ⇒ primera).
func (s *Store) generation(ctx context.Context, database string) string {
	g, err := s.client.Get(ctx, genKey(database))
	if err != nil {
		return "0"
	}
	return g
}

func (s *Store) entryKey(ctx context.Context, database, key string) string {
	return "db:" + database + ":g" + s.generation(ctx, database) + ":" + key
}

// Get lee una entrada del namespace de la base.
func (s *Store) Get(ctx context.Context, database, key string) (string, error) {
	return s.client.Get(ctx, s.entryKey(ctx, database, key))
}

// Set escribe una entrada en el namespace de la base.
func (s *Store) Set(ctx context.Context, database, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, s.entryKey(ctx, database, key), value, ttl)
}

// Delete borra una entrada puntual del namespace de la base.
func (s *Store) Delete(ctx context.Context, database, key string) error {
	return s.client.Delete(ctx, s.entryKey(ctx, database, key))
}

// InvalidateDatabase rota la generación de la base: todas las entradas
// previas dejan de ser visibles. Se invoca una vez por dispatch antes de
// abrir transacciones.
func (s *Store) InvalidateDatabase(ctx context.Context, database string) {
	next := strconv.FormatUint(s.seq.Add(1), 10) + "-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	if err := s.client.Set(ctx, genKey(database), next, 0); err != nil {
		logger.Named("cache").Warn("invalidate failed",
			logger.Database(database), logger.Err(err))
	}
}

// Close cierra el backend subyacente.
func (s *Store) Close() error { return s.client.Close() }
