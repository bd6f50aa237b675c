package bootstrap

import (
	"log/slog"

	"github.com/osse101/PackOpener_Go/internal/config"
	"github.com/osse101/PackOpener_Go/internal/logger"
)

// SetupLogger installs the process-wide slog logger from configuration.
// Source locations are only added in dev.
func SetupLogger(cfg *config.Config) *slog.Logger {
	logCfg := logger.ForEnvironment(cfg.Environment)
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	if cfg.ServiceVersion != "" {
		logCfg.Version = cfg.ServiceVersion
	}

	l := logger.InitLogger(logCfg)

	l.Info(LogMsgStarting,
		"environment", cfg.Environment,
		"log_level", cfg.LogLevel,
		"log_format", cfg.LogFormat,
		"version", cfg.ServiceVersion,
		"storage", cfg.StorageBackend)

	l.Debug(LogMsgConfigurationLoaded,
		"db_host", cfg.DBHost,
		"db_port", cfg.DBPort,
		"db_name", cfg.DBName,
		"port", cfg.Port,
		"lock_timeout", cfg.LockTimeout,
		"release_timeout", cfg.ReleaseTimeout)

	return l
}
