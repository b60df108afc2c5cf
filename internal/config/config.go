package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingSecretKey indica que la config no define secret_key.
// La inicialización debe fallar rápido: sin secret key no hay aplicación.
var ErrMissingSecretKey = errors.New("secret key is not defined in config")

// Route mapea un endpoint de dispatch a un patrón de URL.
// El endpoint puede ser una vista registrada o un "model.method".
type Route struct {
	Endpoint    string   `yaml:"endpoint"`
	Pattern     string   `yaml:"pattern"`
	Methods     []string `yaml:"methods"`
	AutoOptions bool     `yaml:"auto_options"`
}

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	// SecretKey es obligatoria: firma de sesiones/cookies corre por fuera
	// del core pero la clave se valida al inicializar.
	SecretKey string `yaml:"secret_key"`

	Database struct {
		// Name es la base de datos por defecto para el dispatch.
		Name string `yaml:"name"`
		// DSNs mapea nombre de base -> DSN. Tiene prioridad sobre DSNTemplate.
		DSNs map[string]string `yaml:"dsns"`
		// DSNTemplate permite derivar el DSN con el placeholder {database}.
		DSNTemplate string `yaml:"dsn_template"`
		Pool        struct {
			MaxConns        int    `yaml:"max_conns"`
			MinConns        int    `yaml:"min_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"pool"`
	} `yaml:"database"`

	Dispatch struct {
		// Retry es el presupuesto de reintentos ante fallas transitorias.
		// N reintentos = hasta N+1 intentos totales. Default 3.
		Retry *int `yaml:"retry"`
		// DefaultLocale es el locale de fallback cuando el website no define uno.
		DefaultLocale string `yaml:"default_locale"`
	} `yaml:"dispatch"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Routes []Route `yaml:"routes"`
}

// Load lee el YAML, aplica defaults, overrides por env y valida.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse procesa una config ya leída (útil en tests).
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "5m"
	}
	if c.Dispatch.DefaultLocale == "" {
		c.Dispatch.DefaultLocale = "en_US"
	}
	if c.Dispatch.Retry == nil {
		n := 3
		c.Dispatch.Retry = &n
	}
	if c.Database.DSNs == nil {
		c.Database.DSNs = map[string]string{}
	}

	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Retry devuelve el presupuesto de reintentos ya validado.
func (c *Config) Retry() int {
	if c.Dispatch.Retry == nil {
		return 3
	}
	return *c.Dispatch.Retry
}

// Validate chequea los valores críticos. Falla rápido si falta la secret key
// o si el presupuesto de reintentos es negativo.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SecretKey) == "" {
		return ErrMissingSecretKey
	}
	if c.Dispatch.Retry != nil && *c.Dispatch.Retry < 0 {
		return fmt.Errorf("dispatch.retry must be non-negative, got %d", *c.Dispatch.Retry)
	}
	if strings.TrimSpace(c.Database.Name) == "" {
		return errors.New("database.name is required")
	}
	if c.Database.Pool.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Database.Pool.ConnMaxLifetime); err != nil {
			return err
		}
	}
	if c.Cache.Memory.DefaultTTL != "" {
		if _, err := time.ParseDuration(c.Cache.Memory.DefaultTTL); err != nil {
			return err
		}
	}
	return nil
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// applyEnvOverrides pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("SECRET_KEY"); ok {
		c.SecretKey = v
	}
	if v, ok := getEnvStr("DATABASE_NAME"); ok {
		c.Database.Name = v
	}
	if v, ok := getEnvStr("DATABASE_DSN_TEMPLATE"); ok {
		c.Database.DSNTemplate = v
	}
	if v, ok := getEnvInt("DISPATCH_RETRY"); ok {
		c.Dispatch.Retry = &v
	}
	if v, ok := getEnvStr("DISPATCH_DEFAULT_LOCALE"); ok {
		c.Dispatch.DefaultLocale = v
	}
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}
