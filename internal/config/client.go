package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultBaseURL = "http://localhost:8080"

// ClientConfig holds the settings of the chat front-end.
type ClientConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Timeout        time.Duration `yaml:"timeout"`
	Token          string        `yaml:"token"`
	LogLevel       string        `yaml:"log_level"`
	LogFile        string        `yaml:"log_file"`
	GoogleClientID string        `yaml:"google_client_id"`
	FacebookAppID  string        `yaml:"facebook_app_id"`
}

// LoadClient reads an optional YAML file (path argument, else
// SENTIBOT_CONFIG) and then applies environment overrides.
func LoadClient(path string) (*ClientConfig, error) {
	cfg := &ClientConfig{
		BaseURL:  defaultBaseURL,
		Timeout:  30 * time.Second,
		LogLevel: "warn",
	}

	if path == "" {
		path = strings.TrimSpace(os.Getenv("SENTIBOT_CONFIG"))
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		return nil, errors.New("api base url must not be empty")
	}
	return cfg, nil
}

func (c *ClientConfig) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read client config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse client config %s: %w", path, err)
	}
	return nil
}

func (c *ClientConfig) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("SENTIBOT_API_URL")); v != "" {
		c.BaseURL = v
	}

	seconds, err := parseOptionalIntEnv("SENTIBOT_TIMEOUT")
	if err != nil {
		return err
	}
	if seconds != nil {
		if *seconds <= 0 {
			return fmt.Errorf("invalid SENTIBOT_TIMEOUT value %d: must be positive", *seconds)
		}
		c.Timeout = time.Duration(*seconds) * time.Second
	}

	c.Token = getEnvOrDefault("SENTIBOT_TOKEN", c.Token)
	c.LogLevel = getEnvOrDefault("SENTIBOT_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnvOrDefault("SENTIBOT_LOG_FILE", c.LogFile)
	c.GoogleClientID = getEnvOrDefault("GOOGLE_WEB_CLIENT_ID", c.GoogleClientID)
	c.FacebookAppID = getEnvOrDefault("FACEBOOK_APP_ID", c.FacebookAppID)
	return nil
}
