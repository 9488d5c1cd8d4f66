// Package config provides configuration management for the remote key server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const appDir = "remotekey"

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Input     InputConfig     `json:"input"`
	Operator  OperatorConfig  `json:"operator"`
	Telemetry TelemetryConfig `json:"telemetry"`
}

// ServerConfig configures the client-facing WebSocket listener
type ServerConfig struct {
	// Port is the WebSocket listening port (default: 8765)
	Port int `json:"port"`

	// Credential is the shared secret the client sends in AUTH:
	Credential string `json:"credential"`

	// AuthTimeoutSeconds bounds the wait for the AUTH: frame
	AuthTimeoutSeconds int `json:"auth_timeout_seconds"`

	// PingIntervalSeconds is the keepalive ping period; 0 disables pings
	PingIntervalSeconds int `json:"ping_interval_seconds"`

	// ReadLimit is the largest accepted frame in bytes
	ReadLimit int64 `json:"read_limit"`
}

// InputConfig configures input injection
type InputConfig struct {
	// KeymapFile is an optional YAML file overriding key names
	KeymapFile string `json:"keymap_file,omitempty"`

	// DryRun records input instead of injecting it
	DryRun bool `json:"dry_run"`
}

// OperatorConfig configures the local operator surfaces
type OperatorConfig struct {
	// APIEnabled enables the loopback HTTP API
	APIEnabled bool `json:"api_enabled"`

	// APIPort is the port for the API server (default: 8766)
	APIPort int `json:"api_port"`

	// APIToken is an optional bearer token for API requests
	APIToken string `json:"api_token,omitempty"`

	// Tray shows the system tray icon
	Tray bool `json:"tray"`

	// FirewallRule opens the listening port in the Windows firewall on start
	FirewallRule bool `json:"firewall_rule"`
}

// TelemetryConfig configures OpenTelemetry export
type TelemetryConfig struct {
	Enabled     bool   `json:"enabled"`
	ServiceName string `json:"service_name"`
}

// AuthTimeout returns the auth timeout as a duration
func (c ServerConfig) AuthTimeout() time.Duration {
	return time.Duration(c.AuthTimeoutSeconds) * time.Second
}

// PingInterval returns the ping interval as a duration
func (c ServerConfig) PingInterval() time.Duration {
	return time.Duration(c.PingIntervalSeconds) * time.Second
}

// DefaultConfig returns a new Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                8765,
			Credential:          "default123",
			AuthTimeoutSeconds:  10,
			PingIntervalSeconds: 30,
			ReadLimit:           64 * 1024,
		},
		Operator: OperatorConfig{
			APIEnabled: true,
			APIPort:    8766,
			Tray:       true,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "remotekey",
		},
	}
}

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks ranges that would make the server unusable
func (c *Config) Validate() error {
	switch {
	case c.Server.Port < 1 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server port %d", ErrInvalidConfig, c.Server.Port)
	case c.Server.Credential == "":
		return fmt.Errorf("%w: empty credential", ErrInvalidConfig)
	case c.Server.AuthTimeoutSeconds <= 0:
		return fmt.Errorf("%w: auth timeout %ds", ErrInvalidConfig, c.Server.AuthTimeoutSeconds)
	case c.Operator.APIEnabled && (c.Operator.APIPort < 1 || c.Operator.APIPort > 65535):
		return fmt.Errorf("%w: api port %d", ErrInvalidConfig, c.Operator.APIPort)
	case c.Operator.APIEnabled && c.Operator.APIPort == c.Server.Port:
		return fmt.Errorf("%w: api port equals server port", ErrInvalidConfig)
	}
	return nil
}

// Manager handles loading and saving configuration
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     *Config
	onChanged  func()
	log        zerolog.Logger
}

// NewManager creates a new configuration manager. An empty path selects the
// per-user default location.
func NewManager(path string, log zerolog.Logger) (*Manager, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	return &Manager{
		configPath: path,
		config:     DefaultConfig(),
		log:        log.With().Str("component", "config").Logger(),
	}, nil
}

// DefaultPath returns the per-OS path to the configuration file
func DefaultPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", appDir)
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, appDir)
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config", appDir)
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Path returns the file the manager reads and writes
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the configuration from disk. A missing file leaves the defaults.
func (m *Manager) Load() error {
	m.mu.Lock()

	data, err := os.ReadFile(m.configPath)
	if os.IsNotExist(err) {
		m.mu.Unlock()
		m.log.Debug().Str("path", m.configPath).Msg("No config file, using defaults")
		return nil
	}
	if err != nil {
		m.mu.Unlock()
		return err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, m.configPath, err)
	}
	m.config = cfg
	onChanged := m.onChanged
	m.mu.Unlock()

	if onChanged != nil {
		onChanged()
	}
	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0o755); err != nil {
		return err
	}

	m.log.Info().Str("path", m.configPath).Int("bytes", len(data)).Msg("Saving configuration")
	return os.WriteFile(m.configPath, data, 0o600)
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.config
}

// Set updates the configuration
func (m *Manager) Set(config Config) {
	m.mu.Lock()
	m.config = &config
	onChanged := m.onChanged
	m.mu.Unlock()
	if onChanged != nil {
		onChanged()
	}
}

// Update applies fn to the configuration under the lock
func (m *Manager) Update(fn func(*Config)) {
	m.mu.Lock()
	fn(m.config)
	onChanged := m.onChanged
	m.mu.Unlock()
	if onChanged != nil {
		onChanged()
	}
}

// SetCredential stores a new credential and saves the file
func (m *Manager) SetCredential(secret string) error {
	m.Update(func(c *Config) { c.Server.Credential = secret })
	return m.Save()
}

// RegisterChangeCallback registers a function to be called when config changes
func (m *Manager) RegisterChangeCallback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChanged = fn
}
