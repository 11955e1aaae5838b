package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported ticket store backends.
const (
	StoreBackendPostgres = "postgres"
	StoreBackendSupabase = "supabase"
	StoreBackendMemory   = "memory"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Store        StoreConfig
	Postgres     PostgresConfig
	Supabase     SupabaseConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	AI           AIConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	Timezone              string
}

// StoreConfig selects the ticket row store.
type StoreConfig struct {
	Backend string
	Table   string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN             string
	ApplicationName string
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	MigrationsDir   string
	ConnMaxIdleSec  int32
	ConnMaxLifeSec  int32
}

// SupabaseConfig holds the PostgREST endpoint and API key.
type SupabaseConfig struct {
	URL            string
	Key            string
	TimeoutSeconds int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Format string
	// Fields are attached to every entry.
	Service string
	Env     string
}

// AIConfig configures the ticket classifier.
type AIConfig struct {
	GeminiAPIKey    string
	Model           string
	Endpoint        string
	TimeoutSeconds  int
	CacheTTLMinutes int
}

// NotificationConfig holds notification fan-out settings.
type NotificationConfig struct {
	RedisChannel string
	WebhookURL   string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "diario-de-bordo"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			Timezone:              getEnv("APP_TIMEZONE", "Local"),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(getEnv("STORE_BACKEND", StoreBackendPostgres)),
			Table:   getEnv("STORE_TABLE", "tickets"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Supabase: SupabaseConfig{
			URL:            strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
			Key:            os.Getenv("SUPABASE_KEY"),
			TimeoutSeconds: getEnvAsInt("SUPABASE_TIMEOUT_SECONDS", 15),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
		AI: AIConfig{
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
			Model:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Endpoint:        getEnv("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com"),
			TimeoutSeconds:  getEnvAsInt("GEMINI_TIMEOUT_SECONDS", 20),
			CacheTTLMinutes: getEnvAsInt("AI_CACHE_TTL_MINUTES", 60),
		},
		Notification: NotificationConfig{
			RedisChannel: getEnv("NOTIFY_REDIS_CHANNEL", ""),
			WebhookURL:   getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	cfg.Postgres.ApplicationName = cfg.App.Name
	cfg.Logger.Service = cfg.App.Name
	cfg.Logger.Env = cfg.App.Env

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreBackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for store backend %q", c.Store.Backend)
		}
	case StoreBackendSupabase:
		if c.Supabase.URL == "" || c.Supabase.Key == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required for store backend %q", c.Store.Backend)
		}
	case StoreBackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("unknown LOG_FORMAT %q", c.Logger.Format)
	}
	if strings.TrimSpace(c.Store.Table) == "" {
		return fmt.Errorf("STORE_TABLE must not be empty")
	}
	if _, err := c.App.Location(); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Location resolves the timezone used for "today" on the dashboard.
func (a AppConfig) Location() (*time.Location, error) {
	if a.Timezone == "" || a.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(a.Timezone)
}

// Timeout returns the Supabase request timeout.
func (s SupabaseConfig) Timeout() time.Duration {
	return secondsOrDefault(s.TimeoutSeconds, 15*time.Second)
}

// Timeout returns the Gemini request timeout.
func (a AIConfig) Timeout() time.Duration {
	return secondsOrDefault(a.TimeoutSeconds, 20*time.Second)
}

// CacheTTL returns how long classifications stay cached.
func (a AIConfig) CacheTTL() time.Duration {
	if a.CacheTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(a.CacheTTLMinutes) * time.Minute
}

func secondsOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
