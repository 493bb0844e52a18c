package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultAPIURL = "http://localhost:5000/api"

// Config is the reference server's configuration.
type Config struct {
	Port                  string
	AllowedOrigin         string
	DatabaseURL           string
	AuthSecret            string
	AccessTokenTTLMinutes int
	MetricsEnabled        bool
	SeedDemoData          bool
}

// ClientConfig drives the sales engine and its CLI.
type ClientConfig struct {
	APIURL        string
	HTTPTimeout   time.Duration
	Token         string
	BranchID      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration
}

// LoadEnvFile reads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func Load() Config {
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}

	return Config{
		Port:                  getEnv("PORT", "5000"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "*"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
		MetricsEnabled:        getBool("METRICS_ENABLED", false),
		SeedDemoData:          getBool("SEED_DEMO_DATA", false),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

// LoadClient reads the engine's settings. The HTTP timeout is unset (no
// timeout) unless FUELSALES_HTTP_TIMEOUT parses as a positive duration.
func LoadClient() ClientConfig {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	var timeout time.Duration
	if raw := os.Getenv("FUELSALES_HTTP_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		}
	}

	ttlHours, err := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "0"))
	if err != nil || ttlHours < 0 {
		ttlHours = 0
	}

	return ClientConfig{
		APIURL:        strings.TrimRight(getEnv("FUELSALES_API_URL", DefaultAPIURL), "/"),
		HTTPTimeout:   timeout,
		Token:         strings.TrimSpace(os.Getenv("FUELSALES_TOKEN")),
		BranchID:      strings.TrimSpace(os.Getenv("FUELSALES_BRANCH")),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		SessionTTL:    time.Duration(ttlHours) * time.Hour,
	}
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getBool(key string, fallback bool) bool {
	parsed, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return parsed
}
