package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path crea un campo para el path del request.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Host crea un campo para el host header del request.
func Host(v string) zap.Field {
	return zap.String("host", v)
}

// Duration crea un campo para la duración del request.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

// Bytes crea un campo para los bytes de respuesta.
func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - DISPATCH
// =================================================================================

// Endpoint crea un campo para el endpoint resuelto (vista o "model.method").
func Endpoint(v string) zap.Field {
	return zap.String("endpoint", v)
}

// Website crea un campo para el nombre del website (tenant).
func Website(v string) zap.Field {
	return zap.String("website", v)
}

// Database crea un campo para la base de datos activa.
func Database(v string) zap.Field {
	return zap.String("database", v)
}

// UserID crea un campo para el usuario que ejecuta la transacción.
func UserID(v int64) zap.Field {
	return zap.Int64("user_id", v)
}

// Attempt crea un campo para el número de intento dentro del retry loop.
func Attempt(v int) zap.Field {
	return zap.Int("attempt", v)
}

// Language crea un campo para el locale efectivo del dispatch.
func Language(v string) zap.Field {
	return zap.String("language", v)
}

// Model crea un campo para el nombre de un modelo del registry.
func Model(v string) zap.Field {
	return zap.String("model", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// Count crea un campo para un conteo.
func Count(v int) zap.Field {
	return zap.Int("count", v)
}

// Key crea un campo genérico para una clave.
func Key(v string) zap.Field {
	return zap.String("key", v)
}

// Any crea un campo genérico para cualquier tipo.
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}
