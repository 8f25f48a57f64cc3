package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port            string
		Env             string
		Timeout         time.Duration
		ShutdownTimeout time.Duration
	}

	// Database configuration
	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
		MaxConns int
		Retries  int
	}

	// JWT verification of the identity provider's session tokens
	JWT struct {
		Secret       string
		PublicKeyPEM string
		Issuer       string
	}

	// Security configuration
	Security struct {
		RateLimit         float64
		RateLimitBurst    int
		SuggestionRate    float64
		SuggestionBurst   int
		AllowedOrigins    []string
		MaxBodySize       int64
		OpenAPISchemaPath string
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}

	// Identity provider used to provision local user records
	Identity struct {
		BaseURL   string
		SecretKey string
		Timeout   time.Duration
	}

	// Generative-text provider
	AI struct {
		Provider string
		Model    string
		APIKey   string
		BaseURL  string
		Timeout  time.Duration
	}

	// Redis settings; an empty URL keeps the known-user cache in memory
	Redis struct {
		URL      string
		Password string
		DB       int
	}

	// Cache settings
	Cache struct {
		TTL         time.Duration
		MaxSize     int
		PurgeWindow time.Duration
	}

	// Observability settings
	Observability struct {
		TracingEnabled bool
		MetricsEnabled bool
		ServiceName    string
	}

	// GRPC health server settings; an empty port disables it
	GRPC struct {
		Port string
	}

	// Vault settings
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
		_ = godotenv.Load()
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

// Load reads configuration from the current environment without caching it
func Load() *Config {
	cfg := &Config{}

	// Server config
	cfg.Server.Port = getEnvString("PORT", "4000")
	cfg.Server.Env = getEnvString("APP_ENV", "development")
	cfg.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)
	cfg.Server.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)

	// Database config
	cfg.Database.Host = getEnvString("DB_HOST", "localhost")
	cfg.Database.Port = getEnvString("DB_PORT", "5432")
	cfg.Database.User = getEnvString("DB_USER", "postgres")
	cfg.Database.Password = getEnvString("DB_PASSWORD", "postgres")
	cfg.Database.Name = getEnvString("DB_NAME", "pingup")
	cfg.Database.SSLMode = getEnvString("DB_SSL_MODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 20)
	cfg.Database.Retries = getEnvInt("DB_RETRIES", 5)

	// JWT config
	cfg.JWT.Secret = getEnvString("JWT_SECRET", "")
	cfg.JWT.PublicKeyPEM = getEnvString("JWT_PUBLIC_KEY", "")
	cfg.JWT.Issuer = getEnvString("JWT_ISSUER", "")

	// Security config
	cfg.Security.RateLimit = getEnvFloat("RATE_LIMIT", 5)
	cfg.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 10)
	cfg.Security.SuggestionRate = getEnvFloat("SUGGESTION_RATE_LIMIT", 0.5)
	cfg.Security.SuggestionBurst = getEnvInt("SUGGESTION_RATE_BURST", 3)
	cfg.Security.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"*"})
	cfg.Security.MaxBodySize = getEnvInt64("MAX_BODY_SIZE", 1<<20) // 1MB
	cfg.Security.OpenAPISchemaPath = getEnvString("OPENAPI_SCHEMA_PATH", "api/openapi.yaml")

	// Logging config
	cfg.Logging.Level = getEnvString("LOG_LEVEL", "info")
	cfg.Logging.Format = getEnvString("LOG_FORMAT", "json")

	// Identity provider
	cfg.Identity.BaseURL = getEnvString("IDENTITY_API_URL", "https://api.clerk.com/v1")
	cfg.Identity.SecretKey = getEnvString("IDENTITY_SECRET_KEY", "")
	cfg.Identity.Timeout = getEnvDuration("IDENTITY_TIMEOUT", 10*time.Second)

	// Generative-text provider
	cfg.AI.Provider = getEnvString("AI_PROVIDER", "gemini")
	cfg.AI.Model = getEnvString("AI_MODEL", "gemini-2.5-flash")
	cfg.AI.APIKey = getEnvString("GOOGLE_GEMINI_API_KEY", "")
	cfg.AI.BaseURL = getEnvString("AI_SERVICE_URL", "")
	cfg.AI.Timeout = getEnvDuration("AI_TIMEOUT", 30*time.Second)

	// Redis
	cfg.Redis.URL = getEnvString("REDIS_URL", "")
	cfg.Redis.Password = getEnvString("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// Cache settings
	cfg.Cache.TTL = getEnvDuration("CACHE_TTL", 10*time.Minute)
	cfg.Cache.MaxSize = getEnvInt("CACHE_MAX_SIZE", 10000)
	cfg.Cache.PurgeWindow = getEnvDuration("CACHE_PURGE_WINDOW", 10*time.Minute)

	// Observability
	cfg.Observability.TracingEnabled = getEnvBool("TRACING_ENABLED", false)
	cfg.Observability.MetricsEnabled = getEnvBool("METRICS_ENABLED", true)
	cfg.Observability.ServiceName = getEnvString("SERVICE_NAME", "pingup-server")

	// GRPC
	cfg.GRPC.Port = getEnvString("GRPC_PORT", "")

	// Vault
	cfg.Vault.Enabled = getEnvBool("VAULT_ENABLED", false)
	cfg.Vault.Address = getEnvString("VAULT_ADDR", "")
	cfg.Vault.Token = getEnvString("VAULT_TOKEN", "")
	cfg.Vault.Namespace = getEnvString("VAULT_NAMESPACE", "")
	cfg.Vault.SecretsPath = getEnvString("VAULT_SECRETS_PATH", "pingup")

	return cfg
}

// IsProduction reports whether the server runs in production mode
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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
