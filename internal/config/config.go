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

// Storage drivers accepted in ECHEQUE_STORAGE.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Config is the service configuration, read from the environment.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string // "json" or "console"
	ShutdownTimeout time.Duration

	Storage     string
	DataFile    string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string
	KafkaTopic   string // empty selects cheque.DefaultTopic

	OTPCode     string
	Timezone    *time.Location
	CORSOrigins []string
}

// Load reads the configuration from the environment. Variables in envFile are
// loaded first without overriding ones already set; when envFile is empty, a
// ./.env file is used if present.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using getenv to look up variables.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		HTTPAddr:      get("ECHEQUE_HTTP_ADDR", ":8080"),
		LogLevel:      get("ECHEQUE_LOG_LEVEL", "info"),
		LogFormat:     get("ECHEQUE_LOG_FORMAT", "json"),
		Storage:       strings.ToLower(get("ECHEQUE_STORAGE", StorageFile)),
		DataFile:      get("ECHEQUE_DATA_FILE", "cheques.json"),
		DatabaseURL:   get("ECHEQUE_DATABASE_URL", ""),
		RedisAddr:     get("ECHEQUE_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("ECHEQUE_REDIS_PASSWORD"),
		KafkaBrokers:  splitList(get("ECHEQUE_KAFKA_BROKERS", "")),
		KafkaTopic:    get("ECHEQUE_KAFKA_TOPIC", ""),
		OTPCode:       get("ECHEQUE_OTP_CODE", "123456"),
		CORSOrigins:   splitList(get("ECHEQUE_CORS_ORIGINS", "https://e-cheque-fv.vercel.app,http://localhost:5173")),
	}

	var errs []error

	db, err := strconv.Atoi(get("ECHEQUE_REDIS_DB", "0"))
	if err != nil {
		errs = append(errs, fmt.Errorf("ECHEQUE_REDIS_DB: %w", err))
	}
	cfg.RedisDB = db

	timeout, err := time.ParseDuration(get("ECHEQUE_SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		errs = append(errs, fmt.Errorf("ECHEQUE_SHUTDOWN_TIMEOUT: %w", err))
	}
	cfg.ShutdownTimeout = timeout

	loc, err := time.LoadLocation(get("ECHEQUE_TIMEZONE", "Local"))
	if err != nil {
		errs = append(errs, fmt.Errorf("ECHEQUE_TIMEZONE: %w", err))
	}
	cfg.Timezone = loc

	switch cfg.Storage {
	case StorageMemory, StorageFile, StorageRedis:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("ECHEQUE_DATABASE_URL is required when ECHEQUE_STORAGE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("ECHEQUE_STORAGE: unknown driver %q", cfg.Storage))
	}

	switch cfg.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("ECHEQUE_LOG_FORMAT: must be json or console, got %q", cfg.LogFormat))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
