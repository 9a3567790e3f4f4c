// Copyright (C) 2025 Tienda Labs (dev@tiendalabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config provides configuration loading for the storefront
// service: a YAML file with environment-variable overrides. A missing
// config file is created with defaults on first run.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables overriding the file values.
const (
	EnvListenAddr = "STOREFRONT_LISTEN_ADDR"
	EnvDataDir    = "STOREFRONT_DATA_DIR"
	EnvFeedURL    = "STOREFRONT_FEED_URL"
	EnvSeedFile   = "STOREFRONT_SEED_FILE"
	EnvLogLevel   = "STOREFRONT_LOG_LEVEL"
)

// Config is the storefront service configuration.
type Config struct {
	// ListenAddr is the HTTP bind address, e.g. ":8080".
	ListenAddr string `yaml:"listen_addr"`

	// DataDir holds the BadgerDB catalog cache.
	DataDir string `yaml:"data_dir"`

	// SeedFile is an optional JSON catalog override. When set the file
	// is loaded at startup and watched for changes.
	SeedFile string `yaml:"seed_file,omitempty"`

	Feed FeedConfig `yaml:"feed"`
	Log  LogConfig  `yaml:"log"`
}

// FeedConfig configures the remote product feed client.
type FeedConfig struct {
	// BaseURL is the feed origin; the client fetches
	// <base_url>/products.json.
	BaseURL string `yaml:"base_url"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`

	// Dir enables file logging when non-empty. Supports ~ expansion.
	Dir string `yaml:"dir,omitempty"`

	// JSON switches stderr output to JSON.
	JSON bool `yaml:"json"`
}

// Default returns the out-of-the-box configuration.
func Default() Config {
	return Config{
		ListenAddr: ":8080",
		DataDir:    "~/.storefront/data",
		Feed: FeedConfig{
			BaseURL: "https://json-tienda.vercel.app",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".storefront", "storefront.yaml"), nil
}

// Load reads the configuration from the given path, creating the file
// with defaults when it does not exist, then applies environment
// overrides. An empty path means DefaultPath().
func Load(path string) (Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return Config{}, err
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeDefault(path); err != nil {
			return Config{}, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0640); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// applyEnv layers environment overrides onto the file values.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvFeedURL); v != "" {
		c.Feed.BaseURL = v
	}
	if v := os.Getenv(EnvSeedFile); v != "" {
		c.SeedFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// ExpandedDataDir returns DataDir with a leading ~ expanded.
func (c Config) ExpandedDataDir() string {
	return expandPath(c.DataDir)
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
