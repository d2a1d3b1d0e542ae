// Package config loads application configuration from environment variables,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/social-auth/internal/database"
)

// Store backends selectable with DB_DRIVER and PREFERENCES_BACKEND.
const (
	DriverMemory = "memory"

	PreferencesSQL   = "sql"
	PreferencesRedis = "redis"
)

// Config holds all runtime configuration values.
type Config struct {
	Env        string // APP_ENV (dev/test/prod)
	Port       string // APP_PORT
	JWTSecret  string // JWT_SECRET, signs session tokens
	BcryptCost int    // BCRYPT_COST

	DB          DBConfig
	AutoMigrate bool // AUTO_MIGRATE, run goose up on serve

	PreferencesBackend string // PREFERENCES_BACKEND: sql or redis
	Redis              RedisConfig

	AMQPURL string // AMQP_URL or RABBITMQ_URL; empty disables events

	LogLevel  string
	LogFormat string

	CORSAllowOrigins []string
	ShutdownTimeout  time.Duration
	RequestTimeout   time.Duration
}

// DBConfig selects and locates the credential store.
type DBConfig struct {
	Driver string // mysql, postgres or memory
	DSN    string // DATABASE_DSN overrides the parts below
	User   string
	Pass   string
	Host   string
	Port   string
	Name   string
}

// ConnString returns the DSN for the configured driver.
func (c DBConfig) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.Driver == database.DriverPostgres {
		return database.PostgresDSN(c.User, c.Pass, c.Host, c.Port, c.Name)
	}
	return database.MySQLDSN(c.User, c.Pass, c.Host, c.Port, c.Name)
}

// FromEnv builds a Config from lookup. All problems are reported at once.
func FromEnv(lookup LookupFunc) (Config, error) {
	e := &env{lookup: lookup}

	cfg := Config{
		Env:        e.must("APP_ENV"),
		Port:       e.must("APP_PORT"),
		JWTSecret:  e.must("JWT_SECRET"),
		BcryptCost: e.integer("BCRYPT_COST", 10),

		AutoMigrate:        e.boolean("AUTO_MIGRATE", true),
		PreferencesBackend: strings.ToLower(e.str("PREFERENCES_BACKEND", PreferencesSQL)),
		AMQPURL:            e.str("AMQP_URL", e.get("RABBITMQ_URL")),

		LogLevel:  e.str("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(e.str("LOG_FORMAT", "json")),

		CORSAllowOrigins: e.list("CORS_ALLOW_ORIGINS", []string{"*"}),
		ShutdownTimeout:  e.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		RequestTimeout:   e.duration("REQUEST_TIMEOUT", 5*time.Second),
	}

	cfg.DB = DBConfig{
		Driver: strings.ToLower(e.str("DB_DRIVER", database.DriverMySQL)),
		DSN:    e.get("DATABASE_DSN"),
		Pass:   e.get("DB_PASS"),
	}
	switch cfg.DB.Driver {
	case database.DriverMySQL, database.DriverPostgres:
		if cfg.DB.DSN == "" {
			cfg.DB.User = e.must("DB_USER")
			cfg.DB.Host = e.must("DB_HOST")
			cfg.DB.Port = e.must("DB_PORT")
			cfg.DB.Name = e.must("DB_NAME")
		}
	case DriverMemory:
	default:
		e.errs = append(e.errs, fmt.Errorf("unsupported DB_DRIVER: %q", cfg.DB.Driver))
	}

	switch cfg.PreferencesBackend {
	case PreferencesSQL:
	case PreferencesRedis:
		cfg.Redis = loadRedis(e)
	default:
		e.errs = append(e.errs, fmt.Errorf("unsupported PREFERENCES_BACKEND: %q", cfg.PreferencesBackend))
	}

	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		e.errs = append(e.errs, fmt.Errorf("unsupported LOG_FORMAT: %q", cfg.LogFormat))
	}

	return cfg, errors.Join(e.errs...)
}

// Load reads an optional .env file, then the process environment. Any
// configuration error is fatal.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("read .env: %v", err)
	}
	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}
