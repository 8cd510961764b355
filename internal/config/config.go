package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendMemory  = "memory"
	BackendSurreal = "surreal"
	BackendRedis   = "redis"
)

// Provider is the read-only view of the configuration handed to services
// and stored in the registry.
type Provider interface {
	GetServerAddr() string
	GetStoreBackend() string

	GetDBURL() string
	GetDBNs() string
	GetDBDb() string
	GetDBUser() string
	GetDBPass() string
	GetDBQueryTimeout() time.Duration
	GetDBExecuteTimeout() time.Duration

	GetRedisAddr() string
	GetRedisDB() int
	GetRedisPassword() string

	GetCatalogDir() string
	GetCatalogWatch() bool
	GetRNGSeed() int64
	GetRateLimit() float64
}

// Config holds all configuration for the application.
type Config struct {
	ServerAddr   string
	StoreBackend string

	DBUrl            string
	DBNs             string
	DBDb             string
	DBUser           string
	DBPass           string
	DBQueryTimeout   time.Duration
	DBExecuteTimeout time.Duration

	RedisAddr     string
	RedisDB       int
	RedisPassword string

	CatalogDir   string
	CatalogWatch bool
	RNGSeed      int64
	RateLimit    float64
}

var _ Provider = (*Config)(nil)

// New loads configuration from a .env file, if present, and the environment.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		// slog is not configured yet at this point.
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv reads the configuration from the environment only.
func FromEnv() *Config {
	return &Config{
		ServerAddr:       getenv("SERVER_ADDR", ":8080"),
		StoreBackend:     getenv("STORE_BACKEND", BackendMemory),
		DBUrl:            os.Getenv("SURREAL_URL"),
		DBNs:             os.Getenv("SURREAL_NS"),
		DBDb:             os.Getenv("SURREAL_DB"),
		DBUser:           os.Getenv("SURREAL_USER"),
		DBPass:           os.Getenv("SURREAL_PASS"),
		DBQueryTimeout:   duration("DB_QUERY_TIMEOUT", 5*time.Second),
		DBExecuteTimeout: duration("DB_EXECUTE_TIMEOUT", 10*time.Second),
		RedisAddr:        getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisDB:          integer("REDIS_DB", 0),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		CatalogDir:       os.Getenv("CATALOG_DIR"),
		CatalogWatch:     boolean("CATALOG_WATCH", false),
		RNGSeed:          int64(integer("RNG_SEED", 0)),
		RateLimit:        float(os.Getenv("RATE_LIMIT"), 10),
	}
}

// Validate checks that the settings the selected backend needs are present.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendSurreal:
		if c.DBUrl == "" || c.DBNs == "" || c.DBDb == "" {
			return fmt.Errorf("store backend %q requires SURREAL_URL, SURREAL_NS and SURREAL_DB", c.StoreBackend)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("store backend %q requires REDIS_ADDR", c.StoreBackend)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.DBQueryTimeout <= 0 || c.DBExecuteTimeout <= 0 {
		return fmt.Errorf("DB_QUERY_TIMEOUT and DB_EXECUTE_TIMEOUT must be positive durations")
	}
	return nil
}

func (c *Config) GetServerAddr() string              { return c.ServerAddr }
func (c *Config) GetStoreBackend() string            { return c.StoreBackend }
func (c *Config) GetDBURL() string                   { return c.DBUrl }
func (c *Config) GetDBNs() string                    { return c.DBNs }
func (c *Config) GetDBDb() string                    { return c.DBDb }
func (c *Config) GetDBUser() string                  { return c.DBUser }
func (c *Config) GetDBPass() string                  { return c.DBPass }
func (c *Config) GetDBQueryTimeout() time.Duration   { return c.DBQueryTimeout }
func (c *Config) GetDBExecuteTimeout() time.Duration { return c.DBExecuteTimeout }
func (c *Config) GetRedisAddr() string               { return c.RedisAddr }
func (c *Config) GetRedisDB() int                    { return c.RedisDB }
func (c *Config) GetRedisPassword() string           { return c.RedisPassword }
func (c *Config) GetCatalogDir() string              { return c.CatalogDir }
func (c *Config) GetCatalogWatch() bool              { return c.CatalogWatch }
func (c *Config) GetRNGSeed() int64                  { return c.RNGSeed }
func (c *Config) GetRateLimit() float64              { return c.RateLimit }

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s %q, using %s", key, v, def)
		return def
	}
	return d
}

func integer(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s %q, using %d", key, v, def)
		return def
	}
	return n
}

func boolean(key string, def bool) bool {
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

func float(v string, def float64) float64 {
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}
