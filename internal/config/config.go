package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Auth     AuthConfig
	BaaS     BaaSConfig
	Database DatabaseConfig
	Tracing  TracingConfig
	Store    StoreConfig
	Events   EventsConfig
	Breaker  BreakerConfig
	Metrics  MetricsConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	// WorkspaceTTL is how long an idle workspace stays in memory.
	WorkspaceTTL time.Duration
}

// BaaSConfig locates the backend-as-a-service project.
type BaaSConfig struct {
	Driver              string // "supabase" or "memory"
	Endpoint            string
	ProjectKey          string
	Database            string // schema
	NotesCollection     string
	NotebooksCollection string
	StorageBucket       string
}

// Configured reports whether every value needed to reach the backend is set.
func (c BaaSConfig) Configured() bool {
	if c.Driver == "memory" {
		return true
	}
	return c.Endpoint != "" && c.ProjectKey != "" && c.NotesCollection != "" &&
		c.NotebooksCollection != "" && c.StorageBucket != ""
}

type DatabaseConfig struct {
	Connection string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
}

type StoreConfig struct {
	// SyncPolicy is "merge" or "refetch".
	SyncPolicy string
	Fanout     int
	// ResyncSchedule is a cron spec for reloading live workspaces; empty
	// disables it.
	ResyncSchedule string
}

type EventsConfig struct {
	// Topic on the in-process bus that carries store changes.
	Topic string
	// Stream is the JetStream stream changes are exported to when NATS is
	// configured.
	Stream string
}

type BreakerConfig struct {
	Enabled          bool
	Timeout          time.Duration
	FailureThreshold float64
}

type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", "quiknote-dev-secret"),
			TokenTTL:     getEnvAsDuration("JWT_TTL", 24*time.Hour),
			WorkspaceTTL: getEnvAsDuration("WORKSPACE_TTL", time.Hour),
		},
		BaaS: BaaSConfig{
			Driver:              strings.ToLower(getEnv("BAAS_DRIVER", "supabase")),
			Endpoint:            getEnv("BAAS_ENDPOINT", ""),
			ProjectKey:          getEnv("BAAS_PROJECT_KEY", ""),
			Database:            getEnv("BAAS_DATABASE", "public"),
			NotesCollection:     getEnv("BAAS_NOTES_COLLECTION", "notes"),
			NotebooksCollection: getEnv("BAAS_NOTEBOOKS_COLLECTION", "notebooks"),
			StorageBucket:       getEnv("BAAS_STORAGE_BUCKET", "avatars"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "quiknote-be"),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Store: StoreConfig{
			SyncPolicy:     strings.ToLower(getEnv("STORE_SYNC_POLICY", "merge")),
			Fanout:         getEnvAsInt("STORE_FANOUT", 16),
			ResyncSchedule: getEnv("STORE_RESYNC_SCHEDULE", ""),
		},
		Events: EventsConfig{
			Topic:  getEnv("EVENTS_TOPIC", "store.changes"),
			Stream: getEnv("EVENTS_STREAM", "quiknote"),
		},
		Breaker: BreakerConfig{
			Enabled:          getEnvAsBool("BAAS_BREAKER_ENABLED", true),
			Timeout:          getEnvAsDuration("BAAS_BREAKER_TIMEOUT", time.Minute),
			FailureThreshold: getEnvAsFloat("BAAS_BREAKER_THRESHOLD", 0.8),
		},
		Metrics: MetricsConfig{
			Enabled:   getEnvAsBool("METRICS_ENABLED", true),
			Namespace: getEnv("METRICS_NAMESPACE", "quiknote"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
