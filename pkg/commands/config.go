package commands

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// DefaultProvider is assumed for choice providers when none is configured
	DefaultProvider = "anthropic"
	// DefaultModel is assumed for choice providers when none is configured
	DefaultModel = "claude-sonnet-4-0"
)

// Config is the commands section of the configuration file together with
// the model selection that dynamic argument choices depend on
type Config struct {
	// Text toggles text command handling on native surfaces; nil means on
	Text *bool `mapstructure:"text" yaml:"text,omitempty"`
	// Native toggles registration of platform command menus; nil means on
	Native *bool `mapstructure:"native" yaml:"native,omitempty"`
	Config bool  `mapstructure:"config" yaml:"config,omitempty"`
	Debug  bool  `mapstructure:"debug" yaml:"debug,omitempty"`
	Bash   bool  `mapstructure:"bash" yaml:"bash,omitempty"`

	Provider string `mapstructure:"-" yaml:"-"`
	Model    string `mapstructure:"-" yaml:"-"`
}

// TextEnabled reports whether text commands are handled on native surfaces
func (c *Config) TextEnabled() bool {
	return c == nil || c.Text == nil || *c.Text
}

// NativeEnabled reports whether native command menus are registered
func (c *Config) NativeEnabled() bool {
	return c == nil || c.Native == nil || *c.Native
}

// ProviderModel returns the configured provider and model, falling back to
// the defaults
func (c *Config) ProviderModel() (string, string) {
	provider, model := DefaultProvider, DefaultModel
	if c != nil && c.Provider != "" {
		provider = c.Provider
	}
	if c != nil && c.Model != "" {
		model = c.Model
	}
	return provider, model
}

// ConfigFromViper reads the commands section from the global viper instance
func ConfigFromViper() (*Config, error) {
	return ConfigFrom(viper.GetViper())
}

// ConfigFrom reads the commands section, plus the top-level provider and
// model keys, from v
func ConfigFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.UnmarshalKey("commands", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal commands configuration")
	}
	cfg.Provider = v.GetString("provider")
	cfg.Model = v.GetString("model")
	return &cfg, nil
}
