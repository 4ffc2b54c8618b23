package cmd

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/matdash/matdash/internal/chatclient"
	"github.com/matdash/matdash/internal/config"
	"github.com/matdash/matdash/internal/logging"
	"github.com/matdash/matdash/internal/smbclient"
	"github.com/matdash/matdash/internal/status"
)

// loadConfig reads the config file, honoring the --verbose override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// buildClients constructs the three backend clients from config.
func buildClients(cfg *config.Config, logger *zap.Logger) (*chatclient.Client, *smbclient.Client, *status.Client) {
	probeTimeout := time.Duration(cfg.Poll.TimeoutSeconds) * time.Second
	return chatclient.New(cfg.Backends.ChatURL, 0, logger),
		smbclient.New(cfg.Backends.FilesURL, 0, logger),
		status.NewClient(cfg.Backends.StatusURL, probeTimeout, logger)
}
