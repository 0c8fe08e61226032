package logging

import (
	"log"
	"log/slog"
	"os"
	"strings"
)

// Setup installs a JSON slog handler as the process default and returns the
// base logger tagged with the service name and environment. The level comes
// from LOG_LEVEL (debug, info, warn, error), defaulting to info.
func Setup(service, env string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromEnv(),
	})

	base := slog.New(handler)
	if service = strings.TrimSpace(service); service != "" {
		base = base.With("service", service)
	}
	if env = strings.TrimSpace(env); env != "" {
		base = base.With("env", env)
	}
	slog.SetDefault(base)

	// Route the standard library logger through the same handler so nothing
	// writes unstructured lines alongside it.
	bridge := slog.NewLogLogger(handler, slog.LevelInfo)
	log.SetOutput(bridge.Writer())
	log.SetFlags(0)
	log.SetPrefix("")

	return base
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
