// Package config loads the application configuration from config.yml,
// .env, and NOTEKEEPER_* environment variables.
package config

import (
	"fmt"

	"github.com/kbukum/notekeeper/internal/auth/password"
	"github.com/kbukum/notekeeper/internal/database"
	"github.com/kbukum/notekeeper/internal/logger"
	"github.com/kbukum/notekeeper/internal/observability"
	"github.com/kbukum/notekeeper/internal/server"
	"github.com/kbukum/notekeeper/internal/token"
)

// Config is the full application configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`

	Server   server.Config        `yaml:"server" mapstructure:"server"`
	Database database.Config      `yaml:"database" mapstructure:"database"`
	JWT      token.Config         `yaml:"jwt" mapstructure:"jwt"`
	Password password.Config      `yaml:"password" mapstructure:"password"`
	Auth     AuthConfig           `yaml:"auth" mapstructure:"auth"`
	Logging  logger.Config        `yaml:"logging" mapstructure:"logging"`
	Tracing  observability.Config `yaml:"tracing" mapstructure:"tracing"`
}

// AuthConfig holds the knobs of the auth endpoints themselves.
type AuthConfig struct {
	// LoginRequestsPerMinute caps login attempts per client IP.
	LoginRequestsPerMinute int `yaml:"login_requests_per_minute" mapstructure:"login_requests_per_minute"`
}

// ApplyDefaults applies defaults to every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "notekeeper"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Auth.LoginRequestsPerMinute == 0 {
		c.Auth.LoginRequestsPerMinute = 10
	}
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.JWT.ApplyDefaults()
	c.Password.ApplyDefaults()
	c.Logging.ApplyDefaults()
	c.Tracing.ApplyDefaults()
}

// Validate validates every section. The JWT secret in particular must be
// present before the process can serve a single request.
func (c *Config) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}

	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("config.database: %w", err)
	}
	if err := c.JWT.Validate(); err != nil {
		return fmt.Errorf("config.jwt: %w", err)
	}
	if err := c.Password.Validate(); err != nil {
		return fmt.Errorf("config.password: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Tracing.Validate(); err != nil {
		return fmt.Errorf("config.tracing: %w", err)
	}
	return nil
}
