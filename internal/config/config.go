package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	domain "signage-user-service/internal/domain/user"
	"signage-user-service/pkg/password"
)

// Config holds all configuration for the application
type Config struct {
	DB        DatabaseConfig
	App       AppConfig
	Logger    LoggerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Users     UsersConfig
}

// DatabaseConfig holds configuration for the database
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	Host            string
	Port            string
	User            string
	Password        string
	Name            string // database name, or file path for sqlite
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
	ConnMaxIdleTime int // seconds
	ConnectTimeout  int // seconds spent retrying the initial connection
}

// AppConfig holds configuration for the application server
type AppConfig struct {
	GRPCPort               string
	HTTPPort               string
	ShutdownTimeoutSeconds int
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string
	Format           string
	OutputPath       string
	SlowQuerySeconds float64
	EnableSampling   bool
	ServiceName      string
	ServiceVersion   string
}

// RedisConfig holds configuration for Redis
type RedisConfig struct {
	Host        string
	Port        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	MinIdleConn int
	CacheTTL    int // seconds
}

// RateLimitConfig holds configuration for the request rate limiter
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstCapacity     int
	Enabled           bool
}

// AuthConfig holds configuration for access tokens
type AuthConfig struct {
	JWTSecret       string
	TokenTTLSeconds int
	Issuer          string
}

// UsersConfig holds limits applied to user accounts
type UsersConfig struct {
	MaxUsers       int      // 0 means unlimited
	PasswordLength int      // length of generated passwords
	MinEntropyBits float64  // entropy floor for generated passwords
	BcryptCost     int      // bcrypt cost for password hashes
	KnownGroups    []string // allowed groups, empty allows any
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("app") // Look for app.env
	v.SetConfigType("env")

	v.AutomaticEnv() // Read from environment variables

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	var config Config

	config.DB.Driver = v.GetString("DB_DRIVER")
	config.DB.Host = v.GetString("DB_HOST")
	config.DB.Port = v.GetString("DB_PORT")
	config.DB.User = v.GetString("DB_USER")
	config.DB.Password = v.GetString("DB_PASSWORD")
	config.DB.Name = v.GetString("DB_NAME")
	config.DB.SSLMode = v.GetString("DB_SSLMODE")
	config.DB.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	config.DB.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	config.DB.ConnMaxLifetime = v.GetInt("DB_CONN_MAX_LIFETIME")
	config.DB.ConnMaxIdleTime = v.GetInt("DB_CONN_MAX_IDLE_TIME")
	config.DB.ConnectTimeout = v.GetInt("DB_CONNECT_TIMEOUT")

	config.App.GRPCPort = v.GetString("GRPC_PORT")
	config.App.HTTPPort = v.GetString("HTTP_PORT")
	config.App.ShutdownTimeoutSeconds = v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")

	config.Logger.Level = v.GetString("LOG_LEVEL")
	config.Logger.Format = v.GetString("LOG_FORMAT")
	config.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = v.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.ServiceName = v.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")

	config.Redis.Host = v.GetString("REDIS_HOST")
	config.Redis.Port = v.GetString("REDIS_PORT")
	config.Redis.Password = v.GetString("REDIS_PASSWORD")
	config.Redis.DB = v.GetInt("REDIS_DB")
	config.Redis.MaxRetries = v.GetInt("REDIS_MAX_RETRIES")
	config.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	config.Redis.MinIdleConn = v.GetInt("REDIS_MIN_IDLE_CONN")
	config.Redis.CacheTTL = v.GetInt("REDIS_CACHE_TTL")

	config.RateLimit.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_RPS")
	config.RateLimit.BurstCapacity = v.GetInt("RATE_LIMIT_BURST")
	config.RateLimit.Enabled = v.GetBool("RATE_LIMIT_ENABLED")

	config.Auth.JWTSecret = v.GetString("JWT_SECRET")
	config.Auth.TokenTTLSeconds = v.GetInt("JWT_TTL_SECONDS")
	config.Auth.Issuer = v.GetString("JWT_ISSUER")

	config.Users.MaxUsers = v.GetInt("USERS_MAX")
	config.Users.PasswordLength = v.GetInt("USERS_PASSWORD_LENGTH")
	config.Users.MinEntropyBits = v.GetFloat64("USERS_PASSWORD_MIN_ENTROPY")
	config.Users.BcryptCost = v.GetInt("USERS_BCRYPT_COST")
	config.Users.KnownGroups = splitList(v.GetString("USERS_KNOWN_GROUPS"))

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "signage_users")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)
	v.SetDefault("DB_CONNECT_TIMEOUT", 30)

	v.SetDefault("GRPC_PORT", "50051")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 15)

	// Logger defaults
	if v.GetString("APP_ENV") == "production" {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("LOG_FORMAT", "console")
		v.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("SERVICE_NAME", "signage-user-service")
	v.SetDefault("SERVICE_VERSION", "1.0.0")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONN", 2)
	v.SetDefault("REDIS_CACHE_TTL", 300)

	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_ENABLED", true)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL_SECONDS", 3600)
	v.SetDefault("JWT_ISSUER", "signage-user-service")

	v.SetDefault("USERS_MAX", 64)
	v.SetDefault("USERS_PASSWORD_LENGTH", 16)
	v.SetDefault("USERS_PASSWORD_MIN_ENTROPY", 60.0)
	v.SetDefault("USERS_BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("USERS_KNOWN_GROUPS", "")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DB.Driver))
	}
	for name, port := range map[string]string{"HTTP_PORT": c.App.HTTPPort, "GRPC_PORT": c.App.GRPCPort} {
		if p, err := strconv.Atoi(port); err != nil || p <= 0 || p > 65535 {
			errs = append(errs, fmt.Errorf("%s must be a valid port, got %q", name, port))
		}
	}
	// backoff treats a zero elapsed time as "retry forever"
	if c.DB.ConnectTimeout <= 0 {
		errs = append(errs, errors.New("DB_CONNECT_TIMEOUT must be positive"))
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be positive"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.TokenTTLSeconds <= 0 {
		errs = append(errs, errors.New("JWT_TTL_SECONDS must be positive"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstCapacity <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if c.Users.MaxUsers < 0 {
		errs = append(errs, errors.New("USERS_MAX must not be negative"))
	}
	if c.Users.PasswordLength <= 0 {
		errs = append(errs, errors.New("USERS_PASSWORD_LENGTH must be positive"))
	} else if bits := password.MaxEntropyBits(c.Users.PasswordLength, password.DefaultCharset); bits < c.Users.MinEntropyBits {
		errs = append(errs, fmt.Errorf("USERS_PASSWORD_LENGTH %d gives at most %.1f bits, below USERS_PASSWORD_MIN_ENTROPY %.1f",
			c.Users.PasswordLength, bits, c.Users.MinEntropyBits))
	}
	if len(c.Users.KnownGroups) > 0 {
		for _, g := range c.Users.KnownGroups {
			if len(g) > domain.MaxGroupLength || !domain.ValidGroup(g) {
				errs = append(errs, fmt.Errorf("USERS_KNOWN_GROUPS entry %q is not a valid group name", g))
			}
		}
		if !slices.Contains(c.Users.KnownGroups, domain.AdminGroup) {
			errs = append(errs, fmt.Errorf("USERS_KNOWN_GROUPS must include %q", domain.AdminGroup))
		}
	}
	if c.Users.BcryptCost < bcrypt.MinCost || c.Users.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("USERS_BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}

	return errors.Join(errs...)
}

// DSN returns the Data Source Name for the configured driver
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.Name
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

// TokenTTL returns the access token lifetime.
func (c *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLSeconds) * time.Second
}
