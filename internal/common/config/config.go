// internal/common/config/config.go
package config

import "strings"

// Config is the main application configuration struct.
type Config struct {
	App         AppConfig                   `mapstructure:"app"`
	Backend     BackendConfig               `mapstructure:"backend"`
	Controllers map[string]ControllerConfig `mapstructure:"controllers"`
	Chat        ChatConfig                  `mapstructure:"chat"`
	Logging     LoggingConfig               `mapstructure:"logging"`
	Metrics     MetricsConfig               `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// BackendConfig points at the classification backend serving the
// /mpcdc/classify_change and /mpcdc/chat endpoints.
type BackendConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds, per-attempt
}

// ClassifyURL returns the change-classification endpoint.
func (b BackendConfig) ClassifyURL() string {
	return strings.TrimRight(b.BaseURL, "/") + "/mpcdc/classify_change"
}

// ChatURL returns the conversational endpoint.
func (b BackendConfig) ChatURL() string {
	return strings.TrimRight(b.BaseURL, "/") + "/mpcdc/chat"
}

// StatusURL returns the backend health-probe endpoint.
func (b BackendConfig) StatusURL() string {
	return strings.TrimRight(b.BaseURL, "/") + "/mpcdc/status"
}

// ControllerConfig holds the core settings applicable to every controller.
type ControllerConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Timeout    int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries int  `mapstructure:"max_retries"` // For error handling
}

// ChatConfig holds settings specific to the conversational controller.
type ChatConfig struct {
	MockMode bool `mapstructure:"mock_mode"` // answer from canned responses, no backend
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig holds settings for the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}
