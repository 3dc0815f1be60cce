package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string
	Telemetry    TelemetryConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	DBAutoMigrate     bool

	SnowflakeNodeID int64

	PricingConfigFile string
	BootstrapDemo     bool

	CORSAllowedOrigins []string

	RateLimit RateLimitConfig
}

// TelemetryConfig controls logging and OpenTelemetry export.
type TelemetryConfig struct {
	LogLevel        string
	LogFormat       string
	LogSampling     bool
	OTelEnabled     bool
	OTelProtocol    string
	OTelSampleRatio float64
	MetricsEnabled  bool
}

// RateLimitConfig controls the redis token bucket in front of the quote endpoints.
type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	QuoteRate     float64
	QuoteBurst    int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:            getenv("APP_NAME", "skyfare"),
		AppVersion:         getenv("APP_VERSION", "0.1.0"),
		Environment:        getenv("ENVIRONMENT", "development"),
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint:       getenv("OTLP_ENDPOINT", "localhost:4317"),
		Telemetry: TelemetryConfig{
			LogLevel:        strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
			LogFormat:       strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
			LogSampling:     getenvBool("LOG_SAMPLING", true),
			OTelEnabled:     getenvBool("OTEL_ENABLED", false),
			OTelProtocol:    strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))),
			OTelSampleRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
			MetricsEnabled:  getenvBool("METRICS_ENABLED", true),
		},
		DBType:             strings.ToLower(getenv("DB_TYPE", "postgres")),
		DBHost:             getenv("DB_HOST", "localhost"),
		DBPort:             getenv("DB_PORT", "5432"),
		DBName:             getenv("DB_NAME", "skyfare"),
		DBUser:             getenv("DB_USER", "postgres"),
		DBPassword:         getenv("DB_PASSWORD", "postgres"),
		DBSSLMode:          getenv("DB_SSL_MODE", "disable"),
		DBMaxIdleConn:      getenvInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConn:      getenvInt("DB_MAX_OPEN_CONNS", 50),
		DBConnMaxLifetime:  getenvInt("DB_CONN_MAX_LIFETIME_SECONDS", 300),
		DBConnMaxIdleTime:  getenvInt("DB_CONN_MAX_IDLE_TIME_SECONDS", 60),
		DBAutoMigrate:      getenvBool("DB_AUTO_MIGRATE", true),
		SnowflakeNodeID:    getenvInt64("SNOWFLAKE_NODE_ID", 1),
		PricingConfigFile:  strings.TrimSpace(getenv("PRICING_CONFIG_FILE", "")),
		BootstrapDemo:      getenvBool("BOOTSTRAP_DEMO_DATA", false),
		CORSAllowedOrigins: parseList(getenv("CORS_ALLOWED_ORIGINS", "")),
		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "localhost:6379")),
			RedisPassword: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			RedisDB:       getenvInt("REDIS_DB", 0),
			QuoteRate:     getenvFloat("RATE_LIMIT_QUOTE_RATE", 20),
			QuoteBurst:    getenvInt("RATE_LIMIT_QUOTE_BURST", 40),
		},
	}

	return cfg
}

// IsProduction reports whether the service runs in a production environment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
