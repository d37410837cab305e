package config

import "time"

// Config is the root configuration for koraki.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Site   SiteConfig   `yaml:"site"`
	Koraki KorakiConfig `yaml:"koraki"`
	Store  StoreConfig  `yaml:"store"`
	Auth   AuthConfig   `yaml:"auth"`
	Tunnel TunnelConfig `yaml:"tunnel"`
}

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	PublicURL string `yaml:"public_url"`
	LogLevel  string `yaml:"log_level"`
	LogFile   string `yaml:"log_file"`
}

// SiteConfig describes the host site as announced to Koraki.
type SiteConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type KorakiConfig struct {
	// Host is the API base, e.g. https://api.koraki.io.
	Host string `yaml:"host"`
	// AppURL is the dashboard base used in links shown to the admin.
	AppURL                 string        `yaml:"app_url"`
	RequestTimeout         time.Duration `yaml:"request_timeout"`
	UpdateThresholdMinutes float64       `yaml:"update_threshold_minutes"`
	ExcerptLength          int           `yaml:"excerpt_length"`
}

type StoreConfig struct {
	Driver string      `yaml:"driver"` // "sqlite" or "redis"
	Path   string      `yaml:"path"`
	Redis  RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type AuthConfig struct {
	// APIToken guards /api, /mcp and /admin. Generated under TokenDir when empty.
	APIToken string `yaml:"api_token"`
	TokenDir string `yaml:"token_dir"`
}

type TunnelConfig struct {
	Enabled   bool   `yaml:"enabled"`
	AuthToken string `yaml:"authtoken"`
	Domain    string `yaml:"domain"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "127.0.0.1",
			Port:     8430,
			LogLevel: "info",
		},
		Site: SiteConfig{
			Name: "My Site",
			URL:  "http://localhost",
		},
		Koraki: KorakiConfig{
			Host:                   "https://api.koraki.io",
			AppURL:                 "https://app.koraki.io",
			RequestTimeout:         10 * time.Second,
			UpdateThresholdMinutes: 0.20,
			ExcerptLength:          40,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   "~/.config/koraki/koraki.db",
			Redis: RedisConfig{
				Addr:   "127.0.0.1:6379",
				Prefix: "koraki",
			},
		},
		Auth: AuthConfig{
			TokenDir: "~/.config/koraki",
		},
	}
}

// AdminURL is the externally reachable address of the settings page.
func (c *Config) AdminURL() string {
	return c.Server.PublicURL + "/admin"
}
