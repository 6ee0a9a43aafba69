package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

const (
	DriverJSON     = "json"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is read from the environment. Keys are unprefixed, e.g. PORT, DATA_DIR.
type Config struct {
	Port        int         `envconfig:"PORT" default:"5050"`
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// Storage
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"json"`
	DataDir       string `envconfig:"DATA_DIR" default:"data"`
	SQLitePath    string `envconfig:"SQLITE_PATH"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`

	// Sessions and cookies
	SessionTTL   time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	CookieSecure bool          `envconfig:"COOKIE_SECURE" default:"false"`

	AllowedOrigins     []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	LoginRatePerMinute int      `envconfig:"LOGIN_RATE_PER_MINUTE" default:"10"`
	// TrustProxy honours X-Forwarded-For / X-Real-IP. Enable only behind a proxy
	// that overwrites them.
	TrustProxy bool `envconfig:"TRUST_PROXY" default:"false"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	SeedFile string `envconfig:"SEED_FILE"`
}

// ResolveDefaults validates the storage driver and fills derived paths.
func (c *Config) ResolveDefaults() error {
	switch c.StorageDriver {
	case "", DriverJSON:
		c.StorageDriver = DriverJSON
	case DriverSQLite:
		if c.SQLitePath == "" {
			c.SQLitePath = filepath.Join(c.DataDir, "barangay.db")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORAGE_DRIVER=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER: %s", c.StorageDriver)
	}

	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.LoginRatePerMinute <= 0 {
		c.LoginRatePerMinute = 10
	}
	return nil
}

// Load reads .env.local when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewForTesting returns a JSON-backed config rooted at dataDir.
func NewForTesting(dataDir string) *Config {
	return &Config{
		Port:               5050,
		Environment:        EnvTesting,
		StorageDriver:      DriverJSON,
		DataDir:            dataDir,
		SessionTTL:         7 * 24 * time.Hour,
		AllowedOrigins:     []string{"http://localhost:5173"},
		LoginRatePerMinute: 1000,
		LogLevel:           "error",
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}
