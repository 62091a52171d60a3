package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultFileName is the config file name inside the home directory
const DefaultFileName = ".wallet-connect-config.json"

// DefaultPollSeconds is the provider poll interval when none is configured
const DefaultPollSeconds = 4

// Config represents the application configuration
type Config struct {
	Endpoints   []Endpoint `json:"endpoints"`
	Logger      bool       `json:"logger"`
	PollSeconds int        `json:"poll_seconds,omitempty"`
}

// Endpoint represents a wallet provider endpoint
type Endpoint struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// DefaultPath returns the config path in the user's home directory
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, DefaultFileName)
}

// Load reads the config from the specified path
func Load(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}

	return cfg
}

// Save writes the config to the specified path
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// DefaultConfig returns a new configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		Endpoints:   []Endpoint{},
		Logger:      false,
		PollSeconds: DefaultPollSeconds,
	}
}

// LoadOrCreate loads config from path, or creates a default one if not found
func LoadOrCreate(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		cfg := DefaultConfig()
		_ = Save(path, cfg)
		return cfg
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig()
	}

	return cfg
}

// ApplyEnv seeds a Default endpoint from ETH_RPC_URL when none is configured
func (c *Config) ApplyEnv() {
	fromEnv := strings.TrimSpace(os.Getenv("ETH_RPC_URL"))
	if len(c.Endpoints) == 0 && fromEnv != "" {
		c.Endpoints = []Endpoint{{Name: "Default", URL: fromEnv, Active: true}}
	}
}

// ActiveURL returns the URL of the active endpoint, or the first one
func (c Config) ActiveURL() string {
	for _, e := range c.Endpoints {
		if e.Active {
			return e.URL
		}
	}
	if len(c.Endpoints) > 0 {
		return c.Endpoints[0].URL
	}
	return ""
}

// SetActive marks the endpoint with url active, adding it when missing
func (c *Config) SetActive(name, url string) {
	found := false
	for i := range c.Endpoints {
		c.Endpoints[i].Active = c.Endpoints[i].URL == url
		if c.Endpoints[i].Active {
			found = true
			if name != "" {
				c.Endpoints[i].Name = name
			}
		}
	}
	if !found {
		if name == "" {
			name = "Custom"
		}
		c.Endpoints = append(c.Endpoints, Endpoint{Name: name, URL: url, Active: true})
	}
}

// Remove deletes the endpoint at i. Removing the active endpoint leaves
// none active, so ActiveURL falls back to the first one.
func (c *Config) Remove(i int) {
	if i < 0 || i >= len(c.Endpoints) {
		return
	}
	c.Endpoints = append(c.Endpoints[:i], c.Endpoints[i+1:]...)
}

// PollInterval returns the configured provider poll interval
func (c Config) PollInterval() time.Duration {
	if c.PollSeconds <= 0 {
		return DefaultPollSeconds * time.Second
	}
	return time.Duration(c.PollSeconds) * time.Second
}
