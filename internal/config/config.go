package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Remote struct {
		BaseURL       string `yaml:"base_url"`
		SessionCookie string `yaml:"session_cookie"`
		Timeout       string `yaml:"timeout"`
		LogoutPath    string `yaml:"logout_path"`
	} `yaml:"remote"`
	Quiz struct {
		DefaultDuration   string `yaml:"default_duration"`
		KeepAliveInterval string `yaml:"keep_alive_interval"`
	} `yaml:"quiz"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

// Load reads YAML config from path. A missing file is not an error: the
// client falls back to compiled-in defaults so it can run with flags alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DurationOr parses a duration string or returns the fallback if empty or
// invalid.
func DurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
