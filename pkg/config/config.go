package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers understood by NewDB
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port     string
		Env      string
		Timeout  time.Duration
		Version  string
		GRPCPort string
	}

	// Database configuration
	Database struct {
		Driver     string
		SQLitePath string
		Host       string
		Port       string
		User       string
		Password   string
		Name       string
		SSLMode    string
		MaxConns   int
		Retries    int
		RetryDelay time.Duration
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
		AllowedOrigins []string
		MaxBodySize    int64
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}

	// Analytics cache settings
	Cache struct {
		Enabled     bool
		Backend     string
		TTL         time.Duration
		MaxSize     int
		PurgeWindow time.Duration
	}

	Redis struct {
		URL      string
		Password string
		DB       int
	}

	Observability struct {
		TracingEnabled bool
		MetricsEnabled bool
	}

	OpenAPI struct {
		Validate   bool
		SchemaPath string
	}

	Vault struct {
		Enabled     bool
		Address     string
		Token       string
		Namespace   string
		SecretsPath string
	}
}

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables
// Uses singleton pattern to ensure only one instance exists
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = Load()
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Load reads a fresh Config from the environment without touching the singleton.
func Load() *Config {
	cfg := &Config{}

	// Server config
	cfg.Server.Port = getEnvString("PORT", "5000")
	cfg.Server.Env = getEnvString("APP_ENV", "development")
	cfg.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)
	cfg.Server.Version = getEnvString("APP_VERSION", "1.0.0")
	cfg.Server.GRPCPort = getEnvString("GRPC_PORT", "")

	// Database config
	cfg.Database.Driver = strings.ToLower(getEnvString("DB_DRIVER", DriverSQLite))
	cfg.Database.SQLitePath = getEnvString("DB_SQLITE_PATH", "feedback.db")
	cfg.Database.Host = getEnvString("DB_HOST", "localhost")
	cfg.Database.Port = getEnvString("DB_PORT", "5432")
	cfg.Database.User = getEnvString("DB_USER", "postgres")
	cfg.Database.Password = getEnvString("DB_PASSWORD", "postgres")
	cfg.Database.Name = getEnvString("DB_NAME", "feedback-hub")
	cfg.Database.SSLMode = getEnvString("DB_SSL_MODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 20)
	cfg.Database.Retries = getEnvInt("DB_CONNECT_RETRIES", 5)
	cfg.Database.RetryDelay = getEnvDuration("DB_RETRY_DELAY", 5*time.Second)

	// Security config
	cfg.Security.RateLimit = float64(getEnvInt("RATE_LIMIT", 20))
	cfg.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 40)
	cfg.Security.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"*"})
	cfg.Security.MaxBodySize = getEnvInt64("MAX_BODY_SIZE", 1<<20) // 1MB

	// Logging config
	cfg.Logging.Level = getEnvString("LOG_LEVEL", "info")
	cfg.Logging.Format = getEnvString("LOG_FORMAT", "json")

	// Cache settings
	cfg.Cache.Enabled = getEnvBool("CACHE_ENABLED", true)
	cfg.Cache.Backend = strings.ToLower(getEnvString("CACHE_BACKEND", "memory"))
	cfg.Cache.TTL = getEnvDuration("CACHE_TTL", time.Minute)
	cfg.Cache.MaxSize = getEnvInt("CACHE_MAX_SIZE", 100)
	cfg.Cache.PurgeWindow = getEnvDuration("CACHE_PURGE_WINDOW", 5*time.Minute)

	cfg.Redis.URL = getEnvString("REDIS_URL", "localhost:6379")
	cfg.Redis.Password = getEnvString("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.Observability.TracingEnabled = getEnvBool("TRACING_ENABLED", false)
	cfg.Observability.MetricsEnabled = getEnvBool("METRICS_ENABLED", true)

	cfg.OpenAPI.Validate = getEnvBool("OPENAPI_VALIDATION", false)
	cfg.OpenAPI.SchemaPath = getEnvString("OPENAPI_SCHEMA_PATH", "")

	cfg.Vault.Enabled = getEnvBool("VAULT_ENABLED", false)
	cfg.Vault.Address = getEnvString("VAULT_ADDR", "")
	cfg.Vault.Token = getEnvString("VAULT_TOKEN", "")
	cfg.Vault.Namespace = getEnvString("VAULT_NAMESPACE", "")
	cfg.Vault.SecretsPath = getEnvString("VAULT_SECRETS_PATH", "feedback-hub")

	return cfg
}

// IsProduction reports whether the service runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
