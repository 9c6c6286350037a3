package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment names. Local development talks to services on localhost ports
// 8080-8082; deployed installs must name their URLs explicitly.
const (
	EnvLocal    = "local"
	EnvDeployed = "deployed"
)

type Config struct {
	Environment string `yaml:"environment"`
	Services    struct {
		Auth     string `yaml:"auth"`
		Question string `yaml:"question"`
		Result   string `yaml:"result"`
	} `yaml:"services"`
	Heartbeat struct {
		Interval string `yaml:"interval"`
	} `yaml:"heartbeat"`
	Superadmin struct {
		Refresh string `yaml:"refresh"`
	} `yaml:"superadmin"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	HTTP struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"http"`
}

// Load resolves configuration in increasing precedence: built-in defaults,
// optional .env file, optional YAML file at path, then process environment.
func Load(path string) (Config, error) {
	// Best-effort; a missing .env is the normal case.
	_ = godotenv.Load()

	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if env := os.Getenv("QUIZ_ENV"); env != "" {
		cfg.Environment = env
	}
	if cfg.Environment == "" {
		cfg.Environment = EnvLocal
	}

	switch cfg.Environment {
	case EnvLocal:
		host := os.Getenv("API_HOST")
		if host == "" {
			host = "localhost"
		}
		if cfg.Services.Auth == "" {
			cfg.Services.Auth = fmt.Sprintf("http://%s:8080/api/auth", host)
		}
		if cfg.Services.Question == "" {
			cfg.Services.Question = fmt.Sprintf("http://%s:8081/api/questions", host)
		}
		if cfg.Services.Result == "" {
			cfg.Services.Result = fmt.Sprintf("http://%s:8082/api/results", host)
		}
	case EnvDeployed:
		// Every service URL must come from the file or the environment,
		// enforced below.
	default:
		return cfg, fmt.Errorf("unknown environment %q", cfg.Environment)
	}

	// Explicit URLs always win, whatever the environment.
	if v := os.Getenv("AUTH_API_BASE"); v != "" {
		cfg.Services.Auth = v
	}
	if v := os.Getenv("QUESTION_API_BASE"); v != "" {
		cfg.Services.Question = v
	}
	if v := os.Getenv("RESULT_API_BASE"); v != "" {
		cfg.Services.Result = v
	}

	if cfg.Services.Auth == "" || cfg.Services.Question == "" || cfg.Services.Result == "" {
		return cfg, fmt.Errorf("environment %q requires auth, question and result service URLs", cfg.Environment)
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}

	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
