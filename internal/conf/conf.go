package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/galzzz/drops-exporter/internal/biz/usecase"
)

// Config represents application configuration
type Config struct {
	// Remote whitelist and webhook endpoints
	Endpoint EndpointConfig `yaml:"endpoint"`

	// Outbound HTTP and refresh behaviour
	HTTP HTTPConfig `yaml:"http"`

	// Local storage
	Storage StorageConfig `yaml:"storage"`

	// Local API the host pushes events to
	API APIConfig `yaml:"api"`

	// Notification sinks
	Notify NotifyConfig `yaml:"notify"`

	// Item ID to name catalog (optional)
	ItemCatalogPath string `yaml:"item_catalog_path"`

	// Debug mode
	Debug bool `yaml:"debug"`
}

// EndpointConfig contains the remote endpoints
type EndpointConfig struct {
	URL           string `yaml:"url"`            // Whitelist GET, webhook POST by default
	WebhookURL    string `yaml:"webhook_url"`    // Optional POST override
	SheetID       string `yaml:"sheet_id"`       // Display only
	SigningSecret string `yaml:"signing_secret"` // Optional HS256 webhook token
}

// HTTPConfig contains outbound request settings
type HTTPConfig struct {
	TimeoutSeconds         int `yaml:"timeout_seconds"`
	RefreshIntervalMinutes int `yaml:"refresh_interval_minutes"` // 0 = startup and login only
	MaxInflightDeliveries  int `yaml:"max_inflight_deliveries"`
}

// StorageConfig contains storage configuration
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// APIConfig contains local API configuration
type APIConfig struct {
	Port int `yaml:"port"`
}

// NotifyConfig contains sink configuration
type NotifyConfig struct {
	Desktop bool         `yaml:"desktop"`
	Feishu  FeishuConfig `yaml:"feishu"`
}

// FeishuConfig contains the Feishu chat mirror configuration
type FeishuConfig struct {
	AppID     string `yaml:"app_id"`
	AppSecret string `yaml:"app_secret"`
	ChatID    string `yaml:"chat_id"`
}

// Enabled reports whether the chat mirror is configured
func (c FeishuConfig) Enabled() bool {
	return c.AppID != "" && c.AppSecret != "" && c.ChatID != ""
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		HTTP: HTTPConfig{
			TimeoutSeconds:        10,
			MaxInflightDeliveries: 8,
		},
		Storage: StorageConfig{
			DBPath: filepath.Join(homeDir, ".drops-exporter", "drops.db"),
		},
		API: APIConfig{
			Port: 9877,
		},
	}
}

// LoadFromEnv loads the optional YAML file, then applies environment
// variables on top of it
func LoadFromEnv() *Config {
	cfg := Default()

	path, data := readConfigFile(os.Getenv("EXPORTER_CONFIG_PATH"))
	if data != nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			fmt.Printf("[Config] Failed to parse %s: %v, using defaults\n", path, err)
			cfg = Default()
		} else {
			fmt.Printf("[Config] Loaded config from: %s\n", path)
		}
	}

	applyEnv(cfg, os.LookupEnv)
	cfg.Storage.DBPath = expandHome(cfg.Storage.DBPath)
	cfg.ItemCatalogPath = expandHome(cfg.ItemCatalogPath)
	return cfg
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[2:])
}

// readConfigFile returns the first config file found
func readConfigFile(configPath string) (string, []byte) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/exporter.yaml",
			"/etc/drops-exporter/exporter.yaml",
		}
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "exporter.yaml"))
		}
	}

	for _, p := range paths {
		if data, err := os.ReadFile(p); err == nil {
			return p, data
		}
	}
	return "", nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if val, ok := lookup(key); ok {
			*dst = strings.TrimSpace(val)
		}
	}
	num := func(key string, dst *int) {
		if val, ok := lookup(key); ok {
			if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
				*dst = parsed
			}
		}
	}
	flag := func(key string, dst *bool) {
		if val, ok := lookup(key); ok {
			if parsed, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
				*dst = parsed
			}
		}
	}

	str("ENDPOINT_URL", &cfg.Endpoint.URL)
	str("WEBHOOK_URL", &cfg.Endpoint.WebhookURL)
	str("GOOGLE_SHEET_ID", &cfg.Endpoint.SheetID)
	str("WEBHOOK_SIGNING_SECRET", &cfg.Endpoint.SigningSecret)

	num("HTTP_TIMEOUT_SECONDS", &cfg.HTTP.TimeoutSeconds)
	num("REFRESH_INTERVAL_MINUTES", &cfg.HTTP.RefreshIntervalMinutes)
	num("MAX_INFLIGHT_DELIVERIES", &cfg.HTTP.MaxInflightDeliveries)

	str("DB_PATH", &cfg.Storage.DBPath)
	num("API_PORT", &cfg.API.Port)
	str("ITEM_CATALOG_PATH", &cfg.ItemCatalogPath)

	flag("DESKTOP_NOTIFY", &cfg.Notify.Desktop)
	str("FEISHU_APP_ID", &cfg.Notify.Feishu.AppID)
	str("FEISHU_APP_SECRET", &cfg.Notify.Feishu.AppSecret)
	str("FEISHU_CHAT_ID", &cfg.Notify.Feishu.ChatID)

	flag("DEBUG", &cfg.Debug)
}

// Timeout returns the outbound request timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// RefreshInterval returns the periodic refresh interval, 0 when disabled
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.HTTP.RefreshIntervalMinutes) * time.Minute
}

// ToCacheConfig converts to whitelist cache configuration
func (c *Config) ToCacheConfig() usecase.CacheConfig {
	return usecase.CacheConfig{
		Timeout: c.Timeout(),
		SheetID: c.Endpoint.SheetID,
	}
}

// ToNotifierConfig converts to notifier configuration
func (c *Config) ToNotifierConfig() usecase.NotifierConfig {
	return usecase.NotifierConfig{
		Timeout:     c.Timeout(),
		MaxInflight: c.HTTP.MaxInflightDeliveries,
	}
}

// ToPluginConfig converts to plugin configuration
func (c *Config) ToPluginConfig() usecase.PluginConfig {
	return usecase.PluginConfig{
		EndpointURL: c.Endpoint.URL,
		WebhookURL:  c.Endpoint.WebhookURL,
	}
}

// Validate validates the configuration. An empty endpoint is allowed; the
// exporter then runs with an empty whitelist.
func (c *Config) Validate() error {
	if c.HTTP.TimeoutSeconds <= 0 {
		return &ConfigError{Field: "HTTP_TIMEOUT_SECONDS", Message: "must be positive"}
	}
	if c.HTTP.RefreshIntervalMinutes < 0 {
		return &ConfigError{Field: "REFRESH_INTERVAL_MINUTES", Message: "must not be negative"}
	}
	if c.HTTP.MaxInflightDeliveries <= 0 {
		return &ConfigError{Field: "MAX_INFLIGHT_DELIVERIES", Message: "must be positive"}
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return &ConfigError{Field: "API_PORT", Message: "out of range"}
	}
	if c.Storage.DBPath == "" {
		return &ConfigError{Field: "DB_PATH", Message: "required"}
	}

	f := c.Notify.Feishu
	if (f.AppID != "" || f.AppSecret != "" || f.ChatID != "") && !f.Enabled() {
		return &ConfigError{Field: "FEISHU_APP_ID/FEISHU_APP_SECRET/FEISHU_CHAT_ID", Message: "must be set together"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
