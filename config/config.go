// Package config holds the process settings for the bridge.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Config is the complete bridge configuration.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Symbols []string      `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Events  EventsConfig  `json:"events" yaml:"events"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// ServerConfig locates the venue terminal and its timezone.
type ServerConfig struct {
	Host     string `json:"host" yaml:"host"`
	ReqPort  int    `json:"req_port" yaml:"req_port"`
	SubPort  int    `json:"sub_port" yaml:"sub_port"`
	Timezone string `json:"timezone" yaml:"timezone"`
}

// JournalConfig selects the journal sink.
type JournalConfig struct {
	Type       string `json:"type,omitempty" yaml:"type,omitempty"` // "sqlite", "csv" or ""
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
}

// EventsConfig configures the websocket event surface. Empty addr disables
// it.
type EventsConfig struct {
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
}

type LogConfig struct {
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
}

// Default returns the stock terminal-bridge settings.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "localhost",
			ReqPort:  6888,
			SubPort:  8666,
			Timezone: "Asia/Shanghai",
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadFromFile loads a YAML or JSON configuration, layered over Default.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if yerr := yaml.Unmarshal(data, cfg); yerr != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", yerr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate catches settings the bridge cannot start with.
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return fmt.Errorf("server host required")
	}
	if c.Server.ReqPort <= 0 || c.Server.SubPort <= 0 {
		return fmt.Errorf("ports must be positive, got req=%d sub=%d", c.Server.ReqPort, c.Server.SubPort)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Journal.Type {
	case "", "sqlite", "csv":
	default:
		return fmt.Errorf("unknown journal type %q", c.Journal.Type)
	}
	return nil
}

// ReqAddr is the command channel endpoint.
func (c *Config) ReqAddr() string {
	return fmt.Sprintf("tcp://%s:%d", c.Server.Host, c.Server.ReqPort)
}

// SubAddr is the push channel endpoint.
func (c *Config) SubAddr() string {
	return fmt.Sprintf("tcp://%s:%d", c.Server.Host, c.Server.SubPort)
}

// Location resolves the venue trading-day timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return nil, fmt.Errorf("venue timezone %q: %w", c.Server.Timezone, err)
	}
	return loc, nil
}
