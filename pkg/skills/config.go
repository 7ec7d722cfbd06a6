package skills

import (
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EntryConfig holds per-skill overrides, keyed by the skill key
type EntryConfig struct {
	Enabled *bool             `mapstructure:"enabled" yaml:"enabled,omitempty"`
	APIKey  string            `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Env     map[string]string `mapstructure:"env" yaml:"env,omitempty"`
}

// LoadConfig configures where skills are loaded from
type LoadConfig struct {
	ExtraDirs       []string `mapstructure:"extra_dirs" yaml:"extra_dirs,omitempty"`
	Ignore          []string `mapstructure:"ignore" yaml:"ignore,omitempty"`
	Watch           bool     `mapstructure:"watch" yaml:"watch,omitempty"`
	WatchDebounceMs int      `mapstructure:"watch_debounce_ms" yaml:"watch_debounce_ms,omitempty"`
}

// Config is the skills section of the configuration file
type Config struct {
	Enabled      *bool                  `mapstructure:"enabled" yaml:"enabled,omitempty"`
	Allowed      []string               `mapstructure:"allowed" yaml:"allowed,omitempty"`
	AllowBundled []string               `mapstructure:"allow_bundled" yaml:"allow_bundled,omitempty"`
	BundledDir   string                 `mapstructure:"bundled_dir" yaml:"bundled_dir,omitempty"`
	ManagedDir   string                 `mapstructure:"managed_dir" yaml:"managed_dir,omitempty"`
	Load         LoadConfig             `mapstructure:"load" yaml:"load,omitempty"`
	Entries      map[string]EntryConfig `mapstructure:"-" yaml:"entries,omitempty"`
}

// IsEnabled reports whether skills are enabled; they are unless explicitly
// turned off
func (c *Config) IsEnabled() bool {
	return c == nil || c.Enabled == nil || *c.Enabled
}

// Entry returns the overrides for a skill key
func (c *Config) Entry(key string) (EntryConfig, bool) {
	if c == nil || c.Entries == nil {
		return EntryConfig{}, false
	}
	entry, ok := c.Entries[key]
	return entry, ok
}

// DecodeEntries decodes the raw skills.entries map. Values are weakly typed
// so "false" and 0 both disable a skill.
func DecodeEntries(raw interface{}) (map[string]EntryConfig, error) {
	if raw == nil {
		return nil, nil
	}

	entries := map[string]EntryConfig{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &entries,
		WeaklyTypedInput: true,
		ZeroFields:       false,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create skill entries decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode skill entries")
	}
	return entries, nil
}

// ConfigFromViper reads the skills section from the global viper instance
func ConfigFromViper() (*Config, error) {
	return ConfigFrom(viper.GetViper())
}

// ConfigFrom reads the skills section from v
func ConfigFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.UnmarshalKey("skills", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal skills configuration")
	}

	entries, err := DecodeEntries(v.Get("skills.entries"))
	if err != nil {
		return nil, err
	}
	cfg.Entries = entries

	cfg.Allowed = trimList(cfg.Allowed)
	cfg.AllowBundled = trimList(cfg.AllowBundled)
	return &cfg, nil
}

// ViperLookup resolves dotted config paths against v, for use with
// requires.config gating
func ViperLookup(v *viper.Viper) ConfigLookup {
	return func(path string) (interface{}, bool) {
		if !v.IsSet(path) {
			return nil, false
		}
		return v.Get(path), true
	}
}

func trimList(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
