package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// searchPaths returns the ordered list of config file locations to try.
func searchPaths() []string {
	paths := []string{
		"/etc/koraki/koraki.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "koraki", "koraki.yaml"))
	}

	paths = append(paths, "koraki.yaml")

	if envPath := os.Getenv("KORAKI_CONFIG"); envPath != "" {
		paths = append(paths, envPath)
	}

	return paths
}

// envFiles lists the optional dotenv files read before any YAML expansion.
var envFiles = []string{".env", ".env.local"}

// Load reads configuration from YAML files and environment variables.
// Files are loaded in order (each overrides the previous):
// /etc/koraki/koraki.yaml < ~/.config/koraki/koraki.yaml < ./koraki.yaml < $KORAKI_CONFIG
func Load() (*Config, error) {
	loadDotEnv(envFiles...)

	cfg := Defaults()

	for _, path := range searchPaths() {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv(envFiles...)

	cfg := Defaults()

	if err := loadFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadDotEnv populates the process environment from the given files.
// Variables already set in the environment win.
func loadDotEnv(files ...string) {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			slog.Warn("could not load env file", "path", file, "error", err)
		}
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables have higher priority than YAML config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KORAKI_HOST"); v != "" {
		cfg.Koraki.Host = v
	}
	if v := os.Getenv("KORAKI_API_TOKEN"); v != "" {
		cfg.Auth.APIToken = v
	}
	if v := os.Getenv("KORAKI_REDIS_PASSWORD"); v != "" {
		cfg.Store.Redis.Password = v
	}
	if v := os.Getenv("KORAKI_NGROK_AUTHTOKEN"); v != "" {
		cfg.Tunnel.AuthToken = v
	}
	if v := os.Getenv("KORAKI_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted config search paths
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	slog.Debug("loading config file", "path", path)

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	if cfg.Server.Host == "0.0.0.0" && !cfg.Tunnel.Enabled {
		return fmt.Errorf("server.host must not be 0.0.0.0 unless tunnel.enabled is set")
	}

	if strings.TrimSpace(cfg.Koraki.Host) == "" {
		return fmt.Errorf("koraki.host is required")
	}

	if cfg.Koraki.UpdateThresholdMinutes <= 0 {
		return fmt.Errorf("koraki.update_threshold_minutes must be positive")
	}

	if cfg.Koraki.ExcerptLength < 1 {
		return fmt.Errorf("koraki.excerpt_length must be at least 1")
	}

	switch cfg.Store.Driver {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("store.driver must be sqlite or redis, got %q", cfg.Store.Driver)
	}

	if cfg.Tunnel.Enabled && cfg.Tunnel.AuthToken == "" {
		return fmt.Errorf("tunnel.authtoken is required when the tunnel is enabled (or set KORAKI_NGROK_AUTHTOKEN)")
	}

	cfg.Koraki.Host = strings.TrimRight(cfg.Koraki.Host, "/")
	cfg.Koraki.AppURL = strings.TrimRight(cfg.Koraki.AppURL, "/")
	cfg.Site.URL = strings.TrimRight(cfg.Site.URL, "/")

	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	cfg.Server.PublicURL = strings.TrimRight(cfg.Server.PublicURL, "/")

	cfg.Store.Path = ExpandHome(cfg.Store.Path)
	cfg.Auth.TokenDir = ExpandHome(cfg.Auth.TokenDir)

	return nil
}
