// Package logger provides a singleton Zap logger with context-based scoping.
//
// # Design Decisions
//
//   - Singleton: una sola instancia global inicializada con Init().
//   - Context Scoping: cada dispatch puede tener su propio logger "scoped" con
//     campos adicionales (request_id, website, endpoint, etc.) sin crear un
//     nuevo core.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//   - Levels: debug, info, warn, error (configurable via LOG_LEVEL).
//
// # Usage
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{
//	    Env:   os.Getenv("APP_ENV"),   // "dev" o "prod"
//	    Level: os.Getenv("LOG_LEVEL"), // "debug", "info", "warn", "error"
//	})
//	defer logger.Sync()
//
// En el pipeline o en métodos de modelo (con contexto):
//
//	log := logger.From(ctx)
//	log.Info("dispatch committed", logger.Endpoint(ep))
//
// Sin contexto (fallback al singleton):
//
//	logger.L().Info("application started")
package logger
