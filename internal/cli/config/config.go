package config

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"radruga/internal/app"
	appconfig "radruga/pkg/config"
	"radruga/pkg/logger"
)

// FileKey is the viper key the root command binds --config to
const FileKey = "config_file"

var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
	Long:  "View the effective Radruga configuration",
}

// Load reads the configuration selected by --config and initializes logging
func Load() (*appconfig.Config, error) {
	cfg, err := appconfig.Load(viper.GetString(FileKey))
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Logging)
	return cfg, nil
}

// OpenApp loads the configuration and connects its backends
func OpenApp(ctx context.Context) (*app.App, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	return app.Open(ctx, cfg)
}
