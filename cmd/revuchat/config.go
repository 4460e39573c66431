package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultBaseURL = "http://localhost:5001/api"

type clientConfig struct {
	BaseURL   string `yaml:"baseURL"`
	StorePath string `yaml:"storePath"`
	LogLevel  string `yaml:"logLevel"`
}

// loadConfig reads the client configuration from the user's config directory,
// falling back to defaults when no config file exists.
func loadConfig() (clientConfig, error) {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return clientConfig{}, fmt.Errorf("error getting user config dir: %w", err)
	}
	cfgPath := filepath.Join(cfgDir, "revuchat")
	if err := os.MkdirAll(cfgPath, 0755); err != nil {
		return clientConfig{}, fmt.Errorf("error creating config directory: %w", err)
	}

	cfg := clientConfig{
		BaseURL:   defaultBaseURL,
		StorePath: filepath.Join(cfgPath, "store.db"),
		LogLevel:  "info",
	}

	cfgFile, err := os.Open(filepath.Join(cfgPath, "config.yaml"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return clientConfig{}, fmt.Errorf("error opening config file: %w", err)
	}
	defer cfgFile.Close()

	if err := yaml.NewDecoder(cfgFile).Decode(&cfg); err != nil {
		return clientConfig{}, fmt.Errorf("error decoding config file: %w", err)
	}
	return cfg, nil
}

// newLogger writes structured logs to a file next to the store, keeping the
// interactive chat output clean.
func newLogger(cfg clientConfig) (*slog.Logger, io.Closer, error) {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return nil, nil, fmt.Errorf("error getting user config dir: %w", err)
	}

	logPath := filepath.Join(cfgDir, "revuchat", "revuchat.log")
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening log file: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	return logger, logFile, nil
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
