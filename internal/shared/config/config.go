package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const defaultAPIBaseURL = "http://localhost:8000"

// Config holds client configuration.
type Config struct {
	APIBaseURL     string
	Env            string
	Profile        string
	DurableStore   string
	StateDir       string
	EphemeralStore string
	RuntimeDir     string
	SessionID      string
	DatabaseURL    string
	CallbackAddr   string
	GoogleClientID string
	GoogleRedirect string
	HTTPTimeout    time.Duration
	RateLimit      float64
	RateBurst      int
	ExportStore    string
	ExportDir      string
	AWSRegion      string
	S3Bucket       string
	S3Prefix       string
	SSEKMSKeyID    string
	LogLevel       string
	LogFormat      string
	MetricsFile    string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", ".env.local")

	return Config{
		APIBaseURL:     strings.TrimRight(getEnv("FITGAP_API_BASE_URL", defaultAPIBaseURL), "/"),
		Env:            normalizeEnv(getEnv("ENV", "dev")),
		Profile:        getEnv("FITGAP_PROFILE", "default"),
		DurableStore:   normalizeDurableStore(getEnv("FITGAP_DURABLE_STORE", "file")),
		StateDir:       getEnv("FITGAP_STATE_DIR", defaultStateDir()),
		EphemeralStore: normalizeEphemeralStore(getEnv("FITGAP_EPHEMERAL_STORE", "file")),
		RuntimeDir:     getEnv("FITGAP_RUNTIME_DIR", defaultRuntimeDir()),
		SessionID:      getEnv("FITGAP_SESSION_ID", strconv.Itoa(os.Getppid())),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		CallbackAddr:   getEnv("FITGAP_CALLBACK_ADDR", "127.0.0.1:3000"),
		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleRedirect: getEnv("GOOGLE_REDIRECT_URL", ""),
		HTTPTimeout:    getEnvDuration("FITGAP_HTTP_TIMEOUT", 15*time.Second),
		RateLimit:      getEnvFloat("FITGAP_RATE_LIMIT", 10),
		RateBurst:      getEnvInt("FITGAP_RATE_BURST", 5),
		ExportStore:    normalizeExportStore(getEnv("FITGAP_EXPORT_STORE", "local")),
		ExportDir:      getEnv("FITGAP_EXPORT_DIR", "./reports"),
		AWSRegion:      getEnv("AWS_REGION", ""),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Prefix:       getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:    getEnv("SSE_KMS_KEY_ID", ""),
		LogLevel:       getEnv("FITGAP_LOG_LEVEL", "warn"),
		LogFormat:      getEnv("FITGAP_LOG_FORMAT", "json"),
		MetricsFile:    getEnv("FITGAP_METRICS_FILE", ""),
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getEnvFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return def
	}
	return d
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "fitgap")
	}
	return ".fitgap"
}

func defaultRuntimeDir() string {
	if dir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR")); dir != "" {
		return filepath.Join(dir, "fitgap")
	}
	return filepath.Join(os.TempDir(), "fitgap-"+strconv.Itoa(os.Getuid()))
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	default:
		return "dev"
	}
}

func normalizeDurableStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return "postgres"
	case "memory":
		return "memory"
	default:
		return "file"
	}
}

func normalizeEphemeralStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "memory":
		return "memory"
	default:
		return "file"
	}
}

func normalizeExportStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
