package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix namespaces the environment variables read by the loader,
// e.g. NOTEKEEPER_JWT_SECRET -> jwt.secret.
const envPrefix = "NOTEKEEPER"

// Load reads configuration in precedence order: defaults, config.yml,
// .env file, then NOTEKEEPER_* environment variables. Explicit paths
// override the search; empty strings mean "search standard locations".
func Load(configFile, envFile string) (*Config, error) {
	// .env first so the env var pass below sees its values.
	if envFile == "" {
		envFile = findFirst(".env", "cmd/api/.env")
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()

	if configFile == "" {
		configFile = findFirst("config.yml", "cmd/api/config.yml", "config/config.yml")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindEnvKeys pre-binds the keys AutomaticEnv cannot discover on its own
// (viper only consults the environment for keys it already knows about).
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"environment",
		"server.host", "server.port",
		"database.dsn",
		"jwt.secret", "jwt.issuer", "jwt.access_token_ttl", "jwt.refresh_token_ttl",
		"password.algorithm",
		"auth.login_requests_per_minute",
		"logging.level", "logging.format",
		"tracing.enabled", "tracing.endpoint",
	}
	for _, k := range keys {
		// BindEnv only errors on an empty key.
		_ = v.BindEnv(k)
	}
}

func findFirst(paths ...string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
