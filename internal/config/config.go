package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures what the cip tool needs to reach a CIP server.
type Config struct {
	Server        string
	User          string
	Password      string
	ServerAddress string
	Catalog       string
	View          string
	Table         string
	Locale        string
	Timeout       time.Duration
	OpenSession   bool
	Debug         bool
}

const (
	defaultConfigPath = "~/.config/cip/config.toml"
	defaultServer     = "http://localhost:8080"
	defaultView       = "web"
	defaultTimeout    = 30 * time.Second
)

func defaults() Config {
	return Config{
		Server:      defaultServer,
		View:        defaultView,
		Timeout:     defaultTimeout,
		OpenSession: true,
	}
}

// Load locates and parses the config, falling back to defaults when missing.
// Environment overrides are applied last.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Server         string `toml:"server"`
		User           string `toml:"user"`
		Password       string `toml:"password"`
		ServerAddress  string `toml:"server_address"`
		Catalog        string `toml:"catalog"`
		View           string `toml:"view"`
		Table          string `toml:"table"`
		Locale         string `toml:"locale"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
		OpenSession    *bool  `toml:"open_session"`
		Debug          bool   `toml:"debug"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if s := strings.TrimSpace(raw.Server); s != "" {
		cfg.Server = s
	}
	if v := strings.TrimSpace(raw.View); v != "" {
		cfg.View = v
	}
	if raw.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	if raw.OpenSession != nil {
		cfg.OpenSession = *raw.OpenSession
	}
	cfg.User = strings.TrimSpace(raw.User)
	cfg.Password = raw.Password
	cfg.ServerAddress = strings.TrimSpace(raw.ServerAddress)
	cfg.Catalog = strings.TrimSpace(raw.Catalog)
	cfg.Table = strings.TrimSpace(raw.Table)
	cfg.Locale = strings.TrimSpace(raw.Locale)
	cfg.Debug = raw.Debug

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("CIP_SERVER")); v != "" {
		cfg.Server = v
	}
	if v := strings.TrimSpace(os.Getenv("CIP_USER")); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("CIP_PASSWORD"); v != "" {
		cfg.Password = v
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEBUGGING"))) {
	case "1", "true", "yes":
		cfg.Debug = true
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

// ExpandPath expands a leading ~ to the home directory and makes path absolute.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
