package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (MATDASH_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: MATDASH_BACKENDS_CHAT_URL -> backends.chat_url.
	if err := k.Load(env.Provider("MATDASH_", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps an environment variable name to its koanf key. Section
// prefixes become nested keys; everything else stays flat, so
// MATDASH_LOG_LEVEL maps to log_level and MATDASH_POLL_TIMEOUT_SECONDS
// to poll.timeout_seconds.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "MATDASH_"))
	for _, section := range []string{"backends", "upload", "poll"} {
		if strings.HasPrefix(s, section+"_") {
			return section + "." + strings.TrimPrefix(s, section+"_")
		}
	}
	return s
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	for name, raw := range map[string]string{
		"backends.chat_url":   c.Backends.ChatURL,
		"backends.files_url":  c.Backends.FilesURL,
		"backends.status_url": c.Backends.StatusURL,
	} {
		if raw == "" {
			return fmt.Errorf("%s is required", name)
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s is not a valid URL: %q", name, raw)
		}
	}

	if c.Upload.MaxFileSizeMB <= 0 {
		return fmt.Errorf("upload.max_file_size_mb must be positive")
	}
	if len(c.Upload.AllowedTypes) == 0 {
		return fmt.Errorf("upload.allowed_types must not be empty")
	}

	if c.Poll.StatusIntervalSeconds <= 0 || c.Poll.SuggestionsIntervalSeconds <= 0 {
		return fmt.Errorf("poll intervals must be positive")
	}
	if c.Poll.TimeoutSeconds <= 0 {
		return fmt.Errorf("poll.timeout_seconds must be positive")
	}

	if c.TreeDepth <= 0 {
		return fmt.Errorf("tree_depth must be positive")
	}

	return nil
}

// MaxFileSizeBytes returns the attachment size limit in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.Upload.MaxFileSizeMB) * 1024 * 1024
}

// TypeAllowed reports whether the declared media type may be attached.
func (c *Config) TypeAllowed(mediaType string) bool {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	for _, t := range c.Upload.AllowedTypes {
		if mediaType == t {
			return true
		}
	}
	return false
}
