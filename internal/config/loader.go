package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix            = "CHANCHAT"
	envConfigDefaultPath = "CHANCHAT_CONFIG_DEFAULT_PATH"
	defaultConfigName    = "config.yaml"
)

// Load builds configuration from defaults, optional config file, env vars, and returns the resolved path.
// Precedence: defaults < config file < env vars < caller overrides.
// The plain PORT variable is honoured as a fallback for CHANCHAT_ADDR.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	defaults := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("addr", defaults.Addr)
	v.SetDefault("read_header_timeout", defaults.ReadHeaderTimeout)
	v.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("tls_cert_file", defaults.TLSCertFile)
	v.SetDefault("tls_key_file", defaults.TLSKeyFile)
	v.SetDefault("broadcast_interval", defaults.BroadcastInterval)
	v.SetDefault("rate_limit.tokens", defaults.RateLimit.Tokens)
	v.SetDefault("rate_limit.interval", defaults.RateLimit.Interval)
	v.SetDefault("channels", channelMaps(defaults.Channels))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("addr", envPrefix+"_ADDR", "PORT"); err != nil {
		return defaults, "", fmt.Errorf("bind addr env: %w", err)
	}

	configPath := resolveConfigPath(explicitPath)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			if writeErr := writeDefaultConfig(configPath, defaults); writeErr != nil && logger != nil {
				logger.Warn().Err(writeErr).Str("path", configPath).Msg("failed to write default config")
			} else if logger != nil {
				logger.Info().Str("path", configPath).Msg("created default config")
			}
			// try reading again in case it was just written
			if readErr := v.ReadInConfig(); readErr != nil && logger != nil {
				logger.Warn().Err(readErr).Str("path", configPath).Msg("failed to read config after writing default")
			}
		} else {
			return defaults, configPath, fmt.Errorf("read config: %w", err)
		}
	}

	// Decode into a zero value so a configured channel list replaces the default one.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return defaults, configPath, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Addr = normalizeAddr(cfg.Addr)

	return cfg, configPath, nil
}

// normalizeAddr turns a bare port such as "3000" into a listen address.
func normalizeAddr(addr string) string {
	if addr != "" && !strings.Contains(addr, ":") {
		return ":" + addr
	}
	return addr
}

func channelMaps(channels []Channel) []map[string]any {
	out := make([]map[string]any, 0, len(channels))
	for _, ch := range channels {
		out = append(out, map[string]any{"name": ch.Name, "password_hash": ch.PasswordHash})
	}
	return out
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if base := os.Getenv(envConfigDefaultPath); base != "" {
		if err := os.MkdirAll(base, 0o755); err == nil {
			return filepath.Join(base, defaultConfigName)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
