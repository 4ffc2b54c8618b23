package config

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard asks for the handful of values a fresh install needs and
// writes them to path. Everything not asked for keeps its default.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to matdash! Let's configure your gateway.")
	fmt.Println()

	cfg := DefaultConfig()

	portPrompt := promptui.Prompt{
		Label:   "Port to listen on",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("port must be 1-65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	validateURL := func(s string) error {
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("must be an absolute URL")
		}
		return nil
	}

	backends := []struct {
		label  string
		target *string
	}{
		{"Chat service URL", &cfg.Backends.ChatURL},
		{"File service URL", &cfg.Backends.FilesURL},
		{"Status service URL", &cfg.Backends.StatusURL},
	}
	for _, b := range backends {
		prompt := promptui.Prompt{
			Label:    b.label,
			Default:  *b.target,
			Validate: validateURL,
		}
		value, err := prompt.Run()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.label, err)
		}
		*b.target = value
	}

	levelPrompt := promptui.Select{
		Label: "Log level",
		Items: []string{"debug", "info", "warn", "error"},
	}
	_, level, err := levelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg.LogLevel = level

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
