package logger

import (
	"log/slog"
	"strings"
)

// Config selects the slog handler and the attributes stamped on every record.
type Config struct {
	Level       string
	Format      string
	ServiceName string
	Version     string
	Environment string
	AddSource   bool
}

var levels = map[string]slog.Level{
	LogLevelDebug:   slog.LevelDebug,
	LogLevelInfo:    slog.LevelInfo,
	LogLevelWarn:    slog.LevelWarn,
	LogLevelWarning: slog.LevelWarn,
	LogLevelError:   slog.LevelError,
}

// ForEnvironment returns defaults for an environment: JSON at info in prod,
// text at debug with source locations in dev, text at info elsewhere.
// Callers override Level and Format from configuration afterwards.
func ForEnvironment(env string) Config {
	cfg := Config{
		Level:       LogLevelInfo,
		Format:      LogFormatText,
		ServiceName: DefaultServiceName,
		Version:     DefaultVersion,
		Environment: env,
	}
	switch strings.ToLower(env) {
	case EnvironmentProduction:
		cfg.Format = LogFormatJSON
	case EnvironmentDev, EnvironmentDevelopment:
		cfg.Level = LogLevelDebug
		cfg.AddSource = true
	}
	return cfg
}

// LogLevel parses Level, falling back to info.
func (c Config) LogLevel() slog.Level {
	if lvl, ok := levels[strings.ToLower(c.Level)]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// IsJSON reports whether records are written as JSON.
func (c Config) IsJSON() bool {
	return strings.EqualFold(c.Format, LogFormatJSON)
}

// BaseAttributes are attached to every record; empty values are skipped.
func (c Config) BaseAttributes() []slog.Attr {
	attrs := make([]slog.Attr, 0, 3)
	for _, kv := range [][2]string{
		{AttrKeyService, c.ServiceName},
		{AttrKeyVersion, c.Version},
		{AttrKeyEnvironment, c.Environment},
	} {
		if kv[1] != "" {
			attrs = append(attrs, slog.String(kv[0], kv[1]))
		}
	}
	return attrs
}
