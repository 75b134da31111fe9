package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"galaxy-server/internal/shared/utils"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Frontend  FrontendConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Galaxy    GalaxyConfig
	Discovery DiscoveryConfig
}

type ServerConfig struct {
	Port            string
	URL             string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsPath  string
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
	Channel  string
}

type AuthConfig struct {
	Enabled         bool
	JWTSecret       string
	TokenExpiration time.Duration
}

type FrontendConfig struct {
	URL       string
	CORSDebug bool
}

type LoggingConfig struct {
	Level      string
	JSONFormat bool
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	TrustProxy        bool
}

// GalaxyConfig holds generation defaults and limits.
type GalaxyConfig struct {
	DefaultName        string
	ScaleRadius        float64
	TotalMass          float64
	BodyCount          int
	Cutoff             float64
	MaxBodies          int
	MaxPreviewBodies   int
	CacheTTL           time.Duration
	BarnesHutTheta     float64
	DiagnosticsEnabled bool
}

type DiscoveryConfig struct {
	Enabled        bool
	ConsulAddress  string
	ServiceName    string
	ServiceAddress string
	CheckTTL       time.Duration
}

var GlobalConfig *Config

// Init loads and validates the full server configuration.
func Init() error {
	return initWith((*Config).validate)
}

// InitForCLI loads the configuration but validates only what the
// command-line generator uses.
func InitForCLI() error {
	return initWith((*Config).validateGalaxy)
}

func initWith(validate func(*Config) error) error {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using system environment variables")
	}

	config := Load()
	if err := validate(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	GlobalConfig = config
	return nil
}

// Load reads the configuration from the environment without validating it.
func Load() *Config {
	return &Config{
		Server:    loadServerConfig(),
		Database:  loadDatabaseConfig(),
		Redis:     loadRedisConfig(),
		Auth:      loadAuthConfig(),
		Frontend:  loadFrontendConfig(),
		Logging:   loadLoggingConfig(),
		RateLimit: loadRateLimitConfig(),
		Galaxy:    loadGalaxyConfig(),
		Discovery: loadDiscoveryConfig(),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:            utils.GetEnv("SERVER_PORT", "8080"),
		URL:             utils.GetEnv("SERVER_URL", "http://localhost:8080"),
		Environment:     utils.GetEnv("ENVIRONMENT", "development"),
		ReadTimeout:     time.Duration(utils.GetEnvInt("SERVER_READ_TIMEOUT_SECONDS", 15)) * time.Second,
		WriteTimeout:    time.Duration(utils.GetEnvInt("SERVER_WRITE_TIMEOUT_SECONDS", 60)) * time.Second,
		IdleTimeout:     time.Duration(utils.GetEnvInt("SERVER_IDLE_TIMEOUT_SECONDS", 60)) * time.Second,
		ShutdownTimeout: time.Duration(utils.GetEnvInt("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          utils.GetEnv("DB_DRIVER", "postgres"),
		Host:            utils.GetEnv("DB_HOST", "localhost"),
		Port:            utils.GetEnv("DB_PORT", "5432"),
		User:            utils.GetEnv("DB_USER", "postgres"),
		Password:        utils.GetEnv("DB_PASSWORD", "postgres"),
		Name:            utils.GetEnv("DB_NAME", "galaxies"),
		SSLMode:         utils.GetEnv("DB_SSLMODE", "disable"),
		Path:            utils.GetEnv("DB_PATH", "./data/galaxies.db"),
		MaxOpenConns:    utils.GetEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    utils.GetEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: time.Duration(utils.GetEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		MigrationsPath:  utils.GetEnv("DB_MIGRATIONS_PATH", "migrations"),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  utils.GetEnv("REDIS_ENABLED", "true") == "true",
		URL:      utils.GetEnv("REDIS_URL", ""),
		Host:     utils.GetEnv("REDIS_HOST", "localhost"),
		Port:     utils.GetEnv("REDIS_PORT", "6379"),
		Password: utils.GetEnv("REDIS_PASSWORD", ""),
		DB:       utils.GetEnvInt("REDIS_DB", 0),
		Channel:  utils.GetEnv("REDIS_EVENTS_CHANNEL", "galaxy.events"),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		Enabled:         utils.GetEnv("AUTH_ENABLED", "true") == "true",
		JWTSecret:       utils.GetEnv("JWT_SECRET", ""),
		TokenExpiration: time.Duration(utils.GetEnvInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
	}
}

func loadFrontendConfig() FrontendConfig {
	return FrontendConfig{
		URL:       utils.GetEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSDebug: utils.GetEnv("CORS_DEBUG", "") == "true",
	}
}

func loadLoggingConfig() LoggingConfig {
	environment := utils.GetEnv("ENVIRONMENT", "development")

	return LoggingConfig{
		Level:      utils.GetEnv("LOG_LEVEL", "debug"),
		JSONFormat: environment == "production",
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           utils.GetEnv("RATE_LIMIT_ENABLED", "true") == "true",
		RequestsPerSecond: utils.GetEnvFloat("RATE_LIMIT_REQUESTS_PER_SECOND", 5),
		BurstSize:         utils.GetEnvInt("RATE_LIMIT_BURST_SIZE", 10),
		TrustProxy:        utils.GetEnv("RATE_LIMIT_TRUST_PROXY", "false") == "true",
	}
}

func loadGalaxyConfig() GalaxyConfig {
	return GalaxyConfig{
		DefaultName:        utils.GetEnv("GALAXY_DEFAULT_NAME", "Exponential Disc"),
		ScaleRadius:        utils.GetEnvFloat("GALAXY_SCALE_RADIUS", 1.0),
		TotalMass:          utils.GetEnvFloat("GALAXY_TOTAL_MASS", 100.0),
		BodyCount:          utils.GetEnvInt("GALAXY_BODY_COUNT", 1000),
		Cutoff:             utils.GetEnvFloat("GALAXY_CUTOFF", 10.0),
		MaxBodies:          utils.GetEnvInt("GALAXY_MAX_BODIES", 100000),
		MaxPreviewBodies:   utils.GetEnvInt("GALAXY_MAX_PREVIEW_BODIES", 5000),
		CacheTTL:           time.Duration(utils.GetEnvInt("GALAXY_CACHE_TTL_MINUTES", 30)) * time.Minute,
		BarnesHutTheta:     utils.GetEnvFloat("GALAXY_BH_THETA", 0.5),
		DiagnosticsEnabled: utils.GetEnv("GALAXY_DIAGNOSTICS_ENABLED", "true") == "true",
	}
}

func loadDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		Enabled:        utils.GetEnv("CONSUL_ENABLED", "false") == "true",
		ConsulAddress:  utils.GetEnv("CONSUL_ADDRESS", "localhost:8500"),
		ServiceName:    utils.GetEnv("CONSUL_SERVICE_NAME", "galaxy-server"),
		ServiceAddress: utils.GetEnv("CONSUL_SERVICE_ADDRESS", ""),
		CheckTTL:       time.Duration(utils.GetEnvInt("CONSUL_CHECK_TTL_SECONDS", 10)) * time.Second,
	}
}

func (c *Config) validate() error {
	if c.Auth.Enabled {
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED is true")
		}
		if len(c.Auth.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
		}
	}

	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case "sqlite3":
		if c.Database.Path == "" {
			return fmt.Errorf("DB_PATH is required for sqlite3")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstSize <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS_PER_SECOND and RATE_LIMIT_BURST_SIZE must be positive")
	}

	return c.validateGalaxy()
}

func (c *Config) validateGalaxy() error {
	g := c.Galaxy
	if g.ScaleRadius <= 0 || g.TotalMass <= 0 || g.Cutoff <= 0 {
		return fmt.Errorf("GALAXY_SCALE_RADIUS, GALAXY_TOTAL_MASS and GALAXY_CUTOFF must be positive")
	}
	if g.BodyCount <= 0 {
		return fmt.Errorf("GALAXY_BODY_COUNT must be positive")
	}
	if g.MaxBodies < g.BodyCount {
		return fmt.Errorf("GALAXY_MAX_BODIES (%d) must be at least GALAXY_BODY_COUNT (%d)", g.MaxBodies, g.BodyCount)
	}
	if g.MaxPreviewBodies < g.BodyCount {
		return fmt.Errorf("GALAXY_MAX_PREVIEW_BODIES (%d) must be at least GALAXY_BODY_COUNT (%d)", g.MaxPreviewBodies, g.BodyCount)
	}
	return nil
}

// ConnectionString returns the data source name for the configured driver.
func (c *Config) ConnectionString() string {
	return c.Database.DSN()
}

// DSN returns the data source name for d.Driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite3" {
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", filepath.ToSlash(d.Path))
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// MigrationsDir is the directory holding migrations for the configured driver.
func (d DatabaseConfig) MigrationsDir() string {
	return filepath.Join(d.MigrationsPath, d.Driver)
}
