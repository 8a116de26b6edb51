package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string
	LogLevel        string
	ShutdownTimeout time.Duration

	DatabaseURL  string
	SeedProducts bool

	RedisAddr          string
	RedisDB            int
	RedisSentinelAddrs string
	RedisMasterName    string

	SessionTTL       time.Duration
	CatalogCacheSize int
	CartRequireAuth  bool
	CORSOrigins      []string
}

// Load reads the environment, after merging in a .env file when one exists.
// Variables already set in the environment win over the file.
func Load(files ...string) Config {
	_ = godotenv.Load(files...)

	return Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":3000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		DatabaseURL:  getEnv("DATABASE_URL", ""),
		SeedProducts: getEnvBool("SEED_PRODUCTS", true),

		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		RedisSentinelAddrs: getEnv("REDIS_SENTINEL_ADDRS", ""),
		RedisMasterName:    getEnv("REDIS_MASTER_NAME", "mymaster"),

		SessionTTL:       getEnvDuration("SESSION_TTL", 24*time.Hour),
		CatalogCacheSize: getEnvPositiveInt("CATALOG_CACHE_SIZE", 128),
		CartRequireAuth:  getEnvBool("CART_REQUIRE_AUTH", false),
		CORSOrigins:      getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// UseRedis reports whether sessions should live in redis.
func (c Config) UseRedis() bool {
	return c.RedisAddr != "" || c.RedisSentinelAddrs != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// getEnvPositiveInt is getEnvInt for sizes, where zero or less is unusable.
func getEnvPositiveInt(key string, def int) int {
	if n := getEnvInt(key, def); n > 0 {
		return n
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
