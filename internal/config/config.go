package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"peer-review-assigner/internal/directory/canvas"
	"peer-review-assigner/internal/issuance"
	"peer-review-assigner/internal/logger"
	"peer-review-assigner/internal/sandbox"
)

var ErrEmptyToken = errors.New("token file is empty")

type Config struct {
	Logger   logger.Config   `yaml:"logger"`
	Canvas   canvas.Config   `yaml:"canvas"`
	Issuance issuance.Config `yaml:"issuance"`
	Sandbox  sandbox.Config  `yaml:"sandbox"`
}

// New reads the config file at path, if any, and applies environment
// overrides on top of it.
func New(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from env: %w", err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return &cfg, nil
}

// ReadToken returns the first line of the token file with surrounding
// whitespace removed.
func ReadToken(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open token file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err = scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read token file: %w", err)
		}
		return "", fmt.Errorf("%w: %s", ErrEmptyToken, path)
	}

	token := strings.TrimSpace(scanner.Text())
	if token == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyToken, path)
	}

	return token, nil
}

// Usage describes every environment variable the config understands.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}
