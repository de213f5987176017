package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/tagtree/internal/datanode"
	"github.com/starford/tagtree/internal/watch"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// DefaultRootLabel is the label of the data root when none is configured.
const DefaultRootLabel = "Data Sources"

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Tree      TreeConfig        `yaml:"tree"`
	Session   SessionConfig     `yaml:"session"`
	Watch     WatchConfig       `yaml:"watch"`
	Clipboard ClipboardConfig   `yaml:"clipboard"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Tree.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	if err := c.Watch.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// TreeConfig controls how opened data is presented.
type TreeConfig struct {
	ShowVirtualRoot bool     `yaml:"show_virtual_root"`
	RootLabel       string   `yaml:"root_label"`
	FilePatterns    []string `yaml:"file_patterns"`
}

// Validate validates the tree configuration.
func (c *TreeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RootLabel, validation.Required, validation.Length(1, 200)),
		validation.Field(&c.FilePatterns, validation.Required, validation.Each(validation.Required)),
	)
}

// SessionConfig holds the SQLite session store configuration.
type SessionConfig struct {
	Path    string `yaml:"path"`
	Restore bool   `yaml:"restore"`
}

// Validate validates the session configuration.
func (c *SessionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// WatchConfig controls external change watching of opened paths.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.When(c.Enabled, validation.Required, validation.Min(10*time.Millisecond))),
	)
}

// ClipboardConfig controls the clipboard.
//
// System mirrors every cut or copied tag onto the operating system
// clipboard as a tag document.
type ClipboardConfig struct {
	System bool `yaml:"system"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Tree: TreeConfig{
			ShowVirtualRoot: true,
			RootLabel:       DefaultRootLabel,
			FilePatterns:    append([]string(nil), datanode.DefaultTagFilePatterns...),
		},
		Session: SessionConfig{
			Path:    "./tagtree.db",
			Restore: true,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: watch.DefaultDebounce,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
