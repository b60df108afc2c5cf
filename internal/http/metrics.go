package http

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	// Dispatch metrics
	dispatchAttemptsTotal *prometheus.CounterVec
	dispatchRetriesTotal  prometheus.Counter
	transactionsOpen      prometheus.Gauge
	transactionDuration   prometheus.Histogram
)

// PoolStats abstrae la fuente de snapshots de pools (el txn manager).
type PoolStats interface {
	Stats() map[string]*pgxpool.Stat
}

// MetricsConfig agrupa dependencias necesarias para exponer /metrics y capturar datos.
type MetricsConfig struct {
	Registry prometheus.Registerer
	Pools    PoolStats
}

// RegisterMetrics inicializa las métricas HTTP/dispatch y, opcionalmente,
// registra un collector para los pools por base de datos. Devuelve el
// handler para /metrics.
func RegisterMetrics(cfg MetricsConfig) (http.Handler, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método y ruta",
		}, []string{"method", "path"})

		dispatchAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_attempts_total",
			Help: "Intentos de dispatch por resultado",
		}, []string{"result"}) // result: committed|retried|failed

		dispatchRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_retries_total",
			Help: "Reintentos por conflictos transitorios",
		})

		transactionsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_transactions_open",
			Help: "Transacciones de dispatch abiertas",
		})

		transactionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dispatch_transaction_duration_seconds",
			Help:    "Duración de las transacciones de dispatch",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
		})

		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration, httpInflight,
			dispatchAttemptsTotal, dispatchRetriesTotal,
			transactionsOpen, transactionDuration,
		} {
			if err := registerCollector(registry, c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	if metricsErr != nil {
		return nil, metricsErr
	}

	if cfg.Pools != nil {
		if err := registerCollector(registry, newDBPoolCollector(cfg.Pools)); err != nil {
			return nil, err
		}
	}

	// Usamos el gatherer global por compatibilidad, ya que las métricas se registran allí.
	return promhttp.Handler(), nil
}

// TransactionObservers retorna los receivers para las señales
// transaction_start/transaction_stop: el gauge de transacciones abiertas se
// mueve con el ciclo de vida real, no con conteos propios del pipeline.
func TransactionObservers() (start func(any) error, stop func(any) error) {
	start = func(any) error {
		if transactionsOpen != nil {
			transactionsOpen.Inc()
		}
		return nil
	}
	stop = func(any) error {
		if transactionsOpen != nil {
			transactionsOpen.Dec()
		}
		return nil
	}
	return start, stop
}

// RecordAttempt registra el resultado y la duración de un intento de
// dispatch. result: committed|retried|failed.
func RecordAttempt(result string, dur time.Duration) {
	if dispatchAttemptsTotal != nil {
		dispatchAttemptsTotal.WithLabelValues(result).Inc()
	}
	if result == "retried" && dispatchRetriesTotal != nil {
		dispatchRetriesTotal.Inc()
	}
	if transactionDuration != nil {
		transactionDuration.Observe(dur.Seconds())
	}
}

// WithMetrics instrumenta requests HTTP con métricas Prometheus (contadores, latencia, inflight).
func WithMetrics(next http.Handler) http.Handler {
	if next == nil {
		return nil
	}
	if httpRequestsTotal == nil || httpRequestDuration == nil || httpInflight == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.ToUpper(r.Method)
		pathLabel := normalizePath(r.URL.Path)

		httpInflight.WithLabelValues(method, pathLabel).Inc()
		start := time.Now()

		rec := &metricsRecorder{ResponseWriter: w}
		defer func() {
			httpInflight.WithLabelValues(method, pathLabel).Dec()
			duration := time.Since(start).Seconds()
			httpRequestDuration.WithLabelValues(method, pathLabel).Observe(duration)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			httpRequestsTotal.WithLabelValues(method, pathLabel, strconv.Itoa(status)).Inc()
		}()

		next.ServeHTTP(rec, r)
	})
}

type metricsRecorder struct {
	http.ResponseWriter
	status int
}

func (m *metricsRecorder) WriteHeader(code int) {
	if m.status == 0 {
		m.status = code
	}
	m.ResponseWriter.WriteHeader(code)
}

func (m *metricsRecorder) Write(b []byte) (int, error) {
	if m.status == 0 {
		m.status = http.StatusOK
	}
	return m.ResponseWriter.Write(b)
}

// registerCollector registra el collector en el registry indicado, ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// dbPoolCollector expone gauges para los pools por base de datos.
type dbPoolCollector struct {
	pools PoolStats

	countDesc    *prometheus.Desc
	acquiredDesc *prometheus.Desc
	idleDesc     *prometheus.Desc
	totalDesc    *prometheus.Desc
}

func newDBPoolCollector(pools PoolStats) *dbPoolCollector {
	return &dbPoolCollector{
		pools:        pools,
		countDesc:    prometheus.NewDesc("db_pool_count", "Cantidad de pools activos", nil, nil),
		acquiredDesc: prometheus.NewDesc("db_pgxpool_acquired", "Conexiones adquiridas por base", []string{"database"}, nil),
		idleDesc:     prometheus.NewDesc("db_pgxpool_idle", "Conexiones inactivas por base", []string{"database"}, nil),
		totalDesc:    prometheus.NewDesc("db_pgxpool_total", "Conexiones totales por base", []string{"database"}, nil),
	}
}

func (c *dbPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.countDesc
	ch <- c.acquiredDesc
	ch <- c.idleDesc
	ch <- c.totalDesc
}

func (c *dbPoolCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.pools.Stats()
	ch <- prometheus.MustNewConstMetric(c.countDesc, prometheus.GaugeValue, float64(len(stats)))
	for database, stat := range stats {
		if stat == nil {
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.acquiredDesc, prometheus.GaugeValue, float64(stat.AcquiredConns()), database)
		ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(stat.IdleConns()), database)
		ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(stat.TotalConns()), database)
	}
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	clean := strings.SplitN(p, "?", 2)[0]
	if clean == "" {
		return "/"
	}
	if !strings.HasPrefix(clean, "/") {
		clean = "/" + clean
	}

	segments := strings.Split(clean, "/")
	var out []string
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 {
		return true
	}
	if _, err := strconv.Atoi(seg); err == nil {
		return true
	}
	return false
}
