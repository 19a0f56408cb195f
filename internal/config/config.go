// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath      = "config.toml"
	DefaultHTTPAddr        = ":3001"
	DefaultInboxName       = "BOTWS"
	DefaultMediaDir        = "media"
	DefaultMediaBaseURL    = "http://localhost:3001/media"
	DefaultQueueInterval   = 500
	DefaultChatwootTimeout = 15
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Chatwoot ChatwootConfig `toml:"chatwoot"`
	Media    MediaConfig    `toml:"media"`
	Queue    QueueConfig    `toml:"queue"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP server listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// ChatwootConfig holds the Chatwoot account, API token, endpoint, and inbox name.
type ChatwootConfig struct {
	Account        string `toml:"account"`
	Token          string `toml:"token"`
	Endpoint       string `toml:"endpoint"`
	InboxName      string `toml:"inbox_name"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the Chatwoot request timeout as a duration.
func (c ChatwootConfig) Timeout() time.Duration {
	seconds := c.TimeoutSeconds
	if seconds <= 0 {
		seconds = DefaultChatwootTimeout
	}
	return time.Duration(seconds) * time.Second
}

// MediaConfig holds the local media directory, its public base URL, and the
// bearer token sent when downloading provider media.
type MediaConfig struct {
	Dir           string `toml:"dir"`
	BaseURL       string `toml:"base_url"`
	DownloadToken string `toml:"download_token"`
}

// QueueConfig holds the minimum spacing between pipeline task starts.
type QueueConfig struct {
	IntervalMs int `toml:"interval_ms"`
}

// Interval returns the inter-task spacing as a duration.
func (c QueueConfig) Interval() time.Duration {
	ms := c.IntervalMs
	if ms <= 0 {
		ms = DefaultQueueInterval
	}
	return time.Duration(ms) * time.Millisecond
}

// Load reads and parses the TOML config file at path and applies default values for missing fields.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Chatwoot: ChatwootConfig{
			InboxName:      DefaultInboxName,
			TimeoutSeconds: DefaultChatwootTimeout,
		},
		Media: MediaConfig{
			Dir:     DefaultMediaDir,
			BaseURL: DefaultMediaBaseURL,
		},
		Queue: QueueConfig{
			IntervalMs: DefaultQueueInterval,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
