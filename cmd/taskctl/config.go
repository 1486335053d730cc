package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	appName       = "taskctl"
	configFile    = "config.yaml"
	defaultServer = "http://localhost:8080"
)

// cliConfig is persisted between invocations so the session survives.
type cliConfig struct {
	Server string `yaml:"server"`
	Token  string `yaml:"token,omitempty"`
}

// defaultConfigDir uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func defaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return appName
	}
	return filepath.Join(home, ".config", appName)
}

func loadConfig(dir string) (*cliConfig, error) {
	cfg := &cliConfig{Server: defaultServer}

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configFile, err)
	}
	if cfg.Server == "" {
		cfg.Server = defaultServer
	}
	return cfg, nil
}

// saveConfig writes the config with owner-only permissions since it holds the
// session token.
func saveConfig(dir string, cfg *cliConfig) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, configFile), data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
