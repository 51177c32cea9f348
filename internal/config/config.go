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
	Port            string
	DatabaseURL     string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	AllowOrigins    []string
	LogstashTCPAddr string

	MinIOEndpoint    string
	MinIOAccessKey   string
	MinIOSecretKey   string
	MinIOUseSSL      bool
	MinIOBucketMedia string
	MinIOPublicURL   string

	ElasticsearchURLs []string
	DebugLog          bool
	DebugLogIndex     string

	ProfilesCacheTTL     time.Duration
	ProfilesFetchTimeout time.Duration
	ProfilesRefreshRPS   float64
	ProfilesWarmup       bool

	AdminJWTSecret  string
	AdminAPIKeyHash string
	AdminAPIKeySalt string

	ShutdownTimeout time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     must("DATABASE_URL"),
		DBMaxOpenConns:  getint("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:  getint("DB_MAX_IDLE_CONNS", 5),
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*"), "*"),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),

		MinIOEndpoint:    getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:   getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:   getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:      getbool("MINIO_USE_SSL", false),
		MinIOBucketMedia: getenv("MINIO_BUCKET_MEDIA", "kids-events-media"),
		MinIOPublicURL:   getenv("MINIO_PUBLIC_URL", ""),

		ElasticsearchURLs: splitAndTrim(getenv("ELASTICSEARCH_URLS", ""), ""),
		DebugLog:          getbool("DEBUG_LOG", false),
		DebugLogIndex:     getenv("DEBUG_LOG_INDEX", "kids-events-debug"),

		ProfilesCacheTTL:     getduration("PROFILES_CACHE_TTL", 5*time.Minute),
		ProfilesFetchTimeout: getduration("PROFILES_FETCH_TIMEOUT", 15*time.Second),
		ProfilesRefreshRPS:   getfloat("PROFILES_REFRESH_RPS", 0.2),
		ProfilesWarmup:       getbool("PROFILES_WARMUP", true),

		AdminJWTSecret:  getenv("ADMIN_JWT_SECRET", ""),
		AdminAPIKeyHash: getenv("ADMIN_API_KEY_HASH", ""),
		AdminAPIKeySalt: getenv("ADMIN_API_KEY_SALT", ""),

		ShutdownTimeout: getduration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// MinIOEnabled reports whether media references should be resolved through
// object storage.
func (c Config) MinIOEnabled() bool {
	return c.MinIOEndpoint != ""
}

func splitAndTrim(input, fallback string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 && fallback != "" {
		return []string{fallback}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getbool(k string, d bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return d
	}
	return v
}

func getint(k string, d int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil || v <= 0 {
		return d
	}
	return v
}

func getfloat(k string, d float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(k)), 64)
	if err != nil || v < 0 {
		return d
	}
	return v
}

func getduration(k string, d time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(k))
	if raw == "" {
		return d
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %s", k, raw, d)
		return d
	}
	return v
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
