// Package config provides environment configuration management.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all environment configuration for the pipeline services.
type Config struct {
	Port       string        `env:"PORT"        envDefault:"8080"`
	DBPath     string        `env:"PIPELINE_DB" envDefault:"pipeline.db"`
	OutputDir  string        `env:"OUTPUT_DIR"  envDefault:"output"`
	RunTimeout time.Duration `env:"RUN_TIMEOUT" envDefault:"5m"`
}

// Load parses environment variables into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
