package app

import (
	"errors"
	"fmt"
	"time"
)

// Commands understood by App.
const (
	CommandRender = "render"
	CommandWatch  = "watch"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // hcl file or directory
	Command    string
	Only       []string // target names; empty means all
	EnvFile    string   // optional .env consulted for forwarded variables

	LogFormat       string
	LogLevel        string
	KeepGoing       bool
	HealthcheckPort int
	SettleDelay     time.Duration
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.Command == "" {
		cfg.Command = CommandRender
	}
	if cfg.Command != CommandRender && cfg.Command != CommandWatch {
		return nil, fmt.Errorf("unknown command %q: must be %q or %q", cfg.Command, CommandRender, CommandWatch)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("healthcheck port %d out of range", cfg.HealthcheckPort)
	}
	if cfg.SettleDelay < 0 {
		return nil, errors.New("settle delay cannot be negative")
	}
	return &cfg, nil
}
