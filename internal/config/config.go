package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/chanchat-server/internal/core"
)

// DefaultPort is used when neither addr nor PORT is configured.
const DefaultPort = 3000

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	TLSCertFile       string        `mapstructure:"tls_cert_file" yaml:"tls_cert_file"`
	TLSKeyFile        string        `mapstructure:"tls_key_file" yaml:"tls_key_file"`
	BroadcastInterval time.Duration `mapstructure:"broadcast_interval" yaml:"broadcast_interval"`
	RateLimit         RateLimit     `mapstructure:"rate_limit" yaml:"rate_limit"`
	Channels          []Channel     `mapstructure:"channels" yaml:"channels"`
}

// RateLimit is the per-connection token bucket: Tokens commands per Interval.
type RateLimit struct {
	Tokens   int           `mapstructure:"tokens" yaml:"tokens"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// Channel is one entry of the fixed channel set. An empty hash makes the channel public.
type Channel struct {
	Name         string `mapstructure:"name" yaml:"name"`
	PasswordHash string `mapstructure:"password_hash" yaml:"password_hash,omitempty"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              fmt.Sprintf(":%d", DefaultPort),
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		BroadcastInterval: core.DefaultBroadcastInterval,
		RateLimit: RateLimit{
			Tokens:   20,
			Interval: 30 * time.Second,
		},
		Channels: []Channel{
			{Name: "room-1"},
			// bcrypt of "secret"
			{Name: "room-2", PasswordHash: "$2b$12$9V4EaTPYyA3TR6XcuwMfneciGkNjseikfN54ANZN8eXIXTxxAvkey"},
		},
	}
}

// TLSEnabled reports whether both certificate and key are configured.
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// CoreChannels converts the channel list for the core registry.
func (c *Config) CoreChannels() []core.ChannelConfig {
	out := make([]core.ChannelConfig, 0, len(c.Channels))
	for _, ch := range c.Channels {
		out = append(out, core.ChannelConfig{Name: ch.Name, PasswordHash: ch.PasswordHash})
	}
	return out
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.BroadcastInterval <= 0 {
		errs = append(errs, errors.New("broadcast_interval must be positive"))
	}
	if c.RateLimit.Tokens <= 0 {
		errs = append(errs, errors.New("rate_limit.tokens must be positive"))
	}
	if c.RateLimit.Interval <= 0 {
		errs = append(errs, errors.New("rate_limit.interval must be positive"))
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		errs = append(errs, errors.New("tls_cert_file and tls_key_file must be set together"))
	}
	if len(c.Channels) == 0 {
		errs = append(errs, errors.New("at least one channel is required"))
	}
	seen := make(map[string]bool, len(c.Channels))
	for _, ch := range c.Channels {
		if !core.ValidChannelName(ch.Name) {
			errs = append(errs, fmt.Errorf("channel %q does not match pattern %s", ch.Name, core.ChannelNamePattern))
		}
		if seen[ch.Name] {
			errs = append(errs, fmt.Errorf("channel %q is listed twice", ch.Name))
		}
		seen[ch.Name] = true
	}
	return errors.Join(errs...)
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.TLSCertFile != "" {
		c.TLSCertFile = other.TLSCertFile
	}
	if other.TLSKeyFile != "" {
		c.TLSKeyFile = other.TLSKeyFile
	}
	if other.BroadcastInterval != 0 {
		c.BroadcastInterval = other.BroadcastInterval
	}
	if other.RateLimit.Tokens != 0 {
		c.RateLimit.Tokens = other.RateLimit.Tokens
	}
	if other.RateLimit.Interval != 0 {
		c.RateLimit.Interval = other.RateLimit.Interval
	}
	if len(other.Channels) > 0 {
		c.Channels = other.Channels
	}
}
