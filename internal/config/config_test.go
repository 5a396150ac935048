package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		DB:        DatabaseConfig{Driver: "sqlite", Name: "users.db", ConnectTimeout: 30},
		App:       AppConfig{GRPCPort: "50051", HTTPPort: "8080", ShutdownTimeoutSeconds: 5},
		RateLimit: RateLimitConfig{RequestsPerSecond: 10, BurstCapacity: 20, Enabled: true},
		Auth:      AuthConfig{JWTSecret: "secret", TokenTTLSeconds: 60},
		Users:     UsersConfig{MaxUsers: 64, PasswordLength: 16, MinEntropyBits: 60, BcryptCost: 10},
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "8080", cfg.App.HTTPPort)
	assert.Equal(t, "50051", cfg.App.GRPCPort)
	assert.Equal(t, 64, cfg.Users.MaxUsers)
	assert.Equal(t, 16, cfg.Users.PasswordLength)
	assert.Empty(t, cfg.Users.KnownGroups)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL())
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := "DB_DRIVER=sqlite\nDB_NAME=/tmp/users.db\nUSERS_MAX=3\nUSERS_KNOWN_GROUPS=admin, editor,,display\nJWT_SECRET=s3cret\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "/tmp/users.db", cfg.DB.DSN())
	assert.Equal(t, 3, cfg.Users.MaxUsers)
	assert.Equal(t, []string{"admin", "editor", "display"}, cfg.Users.KnownGroups)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte("HTTP_PORT=9000\n"), 0o600))
	t.Setenv("HTTP_PORT", "9100")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.App.HTTPPort)
}

func TestDSN_Postgres(t *testing.T) {
	c := DatabaseConfig{Driver: "postgres", Host: "db", User: "u", Password: "p", Name: "n", Port: "5432", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable", c.DSN())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.DB.Driver = "mysql" }, wantErr: "DB_DRIVER"},
		{name: "bad port", mutate: func(c *Config) { c.App.HTTPPort = "http" }, wantErr: "HTTP_PORT"},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: "JWT_SECRET"},
		{name: "negative max users", mutate: func(c *Config) { c.Users.MaxUsers = -1 }, wantErr: "USERS_MAX"},
		{name: "zero password length", mutate: func(c *Config) { c.Users.PasswordLength = 0 }, wantErr: "USERS_PASSWORD_LENGTH"},
		{name: "password too short for entropy floor", mutate: func(c *Config) { c.Users.PasswordLength = 8 }, wantErr: "USERS_PASSWORD_MIN_ENTROPY"},
		{name: "entropy floor disabled allows short passwords", mutate: func(c *Config) {
			c.Users.PasswordLength = 8
			c.Users.MinEntropyBits = 0
		}},
		{name: "zero connect timeout", mutate: func(c *Config) { c.DB.ConnectTimeout = 0 }, wantErr: "DB_CONNECT_TIMEOUT"},
		{name: "known groups with admin", mutate: func(c *Config) { c.Users.KnownGroups = []string{"admin", "display"} }},
		{name: "known groups without admin", mutate: func(c *Config) { c.Users.KnownGroups = []string{"display"} }, wantErr: `must include "admin"`},
		{name: "malformed known group", mutate: func(c *Config) { c.Users.KnownGroups = []string{"admin", "front desk"} }, wantErr: `"front desk"`},
		{name: "bcrypt cost too high", mutate: func(c *Config) { c.Users.BcryptCost = 50 }, wantErr: "USERS_BCRYPT_COST"},
		{name: "rate limit disabled ignores zero rps", mutate: func(c *Config) {
			c.RateLimit.Enabled = false
			c.RateLimit.RequestsPerSecond = 0
		}},
		{name: "rate limit enabled with zero rps", mutate: func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }, wantErr: "RATE_LIMIT_RPS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
