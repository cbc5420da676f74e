package app

import (
	"github.com/pkg/errors"

	"github.com/pyromage/micro-oidc/internal/config"
	"github.com/pyromage/micro-oidc/internal/logger"
)

// loadConfig loads the dotenv files and the configuration and initializes
// the logger.
func loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return config.Config{}, err //nolint:wrapcheck
	}

	cfg, err := config.ReadConfig(configPath)
	if err != nil {
		return config.Config{}, err //nolint:wrapcheck
	}

	if err = logger.Init(cfg.Log); err != nil {
		return config.Config{}, errors.Wrap(err, "failed to init logger")
	}

	return cfg, nil
}
