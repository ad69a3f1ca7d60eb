package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backends de persistencia de la sesión.
const (
	SessionStoreFile     = "file"
	SessionStoreRedis    = "redis"
	SessionStorePostgres = "postgres"
)

// Config agrupa la configuración del back-office (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	DB      DBConfig
	UI      UIConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig configuración del servidor HTTP (BFF).
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// APIConfig configuración del backend REST remoto.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig dónde y cómo se persiste el token + usuario.
type SessionConfig struct {
	Store     string // file, redis, postgres
	File      string
	Secret    string // vacío = token en claro
	Namespace string
}

// RedisConfig configuración de Redis (solo si Session.Store = redis).
type RedisConfig struct {
	URL      string
	Password string
}

// DBConfig configuración de PostgreSQL (solo si Session.Store = postgres).
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// UIConfig tiempos de la capa de presentación (debounce de filtros, duración de avisos).
type UIConfig struct {
	ListDebounce    time.Duration
	NoticeTTL       time.Duration
	DefaultPageSize int
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, API_BASE_URL, SESSION_STORE, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "backoffice-pos"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "127.0.0.1"),
			Port: getInt(v, "HTTP_PORT", 8090),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(getString(v, "API_BASE_URL", "http://localhost:8080"), "/"),
			Timeout: time.Duration(getInt(v, "API_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Session: SessionConfig{
			Store:     strings.ToLower(getString(v, "SESSION_STORE", SessionStoreFile)),
			File:      getString(v, "SESSION_FILE", "./.backoffice-session.json"),
			Secret:    getString(v, "SESSION_SECRET", ""),
			Namespace: getString(v, "SESSION_NAMESPACE", "backoffice"),
		},
		Redis: RedisConfig{
			URL:      getString(v, "REDIS_URL", "redis://localhost:6379/0"),
			Password: getString(v, "REDIS_PASSWORD", ""),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "backoffice"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		UI: UIConfig{
			ListDebounce:    time.Duration(getInt(v, "LIST_DEBOUNCE_MS", 300)) * time.Millisecond,
			NoticeTTL:       time.Duration(getInt(v, "NOTICE_TTL_MS", 3000)) * time.Millisecond,
			DefaultPageSize: getInt(v, "DEFAULT_PAGE_SIZE", 20),
		},
	}

	switch cfg.Session.Store {
	case SessionStoreFile, SessionStoreRedis, SessionStorePostgres:
	default:
		return nil, fmt.Errorf("SESSION_STORE inválido: %q", cfg.Session.Store)
	}
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL es requerido")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
