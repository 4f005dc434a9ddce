// Package config provides YAML-based configuration loading for Scopeline.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Scopeline configuration, loaded from scopeline.yaml.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Email     EmailConfig     `yaml:"email"`
	Notify    NotifyConfig    `yaml:"notify"`
	Limits    LimitsConfig    `yaml:"limits"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"` // used to build public share links
}

// DatabaseConfig holds connection settings for the primary store.
// Driver "mysql" is the production default; "sqlite" runs everything in a
// single file for local development.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Path     string `yaml:"path"` // sqlite only
}

// AnthropicConfig holds settings for the completion service.
type AnthropicConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	MaxTokens      int    `yaml:"max_tokens"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// EmailConfig holds SMTP settings. Leaving Host empty disables outbound
// email; sends are logged instead.
type EmailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
}

// NotifyConfig holds optional chat notification channels for change-order
// events. Each channel is enabled by setting its token.
type NotifyConfig struct {
	SlackBotToken    string `yaml:"slack_bot_token"`
	SlackChannelID   string `yaml:"slack_channel_id"`
	DiscordBotToken  string `yaml:"discord_bot_token"`
	DiscordChannelID string `yaml:"discord_channel_id"`
	DigestSchedule   string `yaml:"digest_schedule"` // cron spec for pending change-order digest
}

// LimitsConfig holds per-client rate limits.
type LimitsConfig struct {
	ChatPerMinute    int `yaml:"chat_per_minute"`
	AuthPerQuarter   int `yaml:"auth_per_quarter_hour"`
	SessionTTLHours  int `yaml:"session_ttl_hours"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Database.Name == "" {
		c.Database.Name = "scopeline"
	}
	if c.Database.Path == "" {
		c.Database.Path = "scopeline.db"
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-sonnet-4-5-20250929"
	}
	if c.Anthropic.MaxTokens == 0 {
		c.Anthropic.MaxTokens = 2000
	}
	if c.Anthropic.TimeoutSeconds == 0 {
		c.Anthropic.TimeoutSeconds = 60
	}
	if c.Email.Port == 0 {
		c.Email.Port = 587
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "Scopeline"
	}
	if c.Notify.DigestSchedule == "" {
		c.Notify.DigestSchedule = "0 9 * * *"
	}
	if c.Limits.ChatPerMinute == 0 {
		c.Limits.ChatPerMinute = 10
	}
	if c.Limits.AuthPerQuarter == 0 {
		c.Limits.AuthPerQuarter = 5
	}
	if c.Limits.SessionTTLHours == 0 {
		c.Limits.SessionTTLHours = 24 * 7
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q must be mysql or sqlite", c.Database.Driver))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Email.Host != "" && c.Email.From == "" {
		errs = append(errs, "email.from is required when email.host is set")
	}
	if c.Notify.SlackBotToken != "" && c.Notify.SlackChannelID == "" {
		errs = append(errs, "notify.slack_channel_id is required when notify.slack_bot_token is set")
	}
	if c.Notify.DiscordBotToken != "" && c.Notify.DiscordChannelID == "" {
		errs = append(errs, "notify.discord_channel_id is required when notify.discord_bot_token is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
