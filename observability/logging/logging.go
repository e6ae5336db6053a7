package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

// Setup installs a JSON logger on stdout and returns it. Every line carries
// the service name, plus the environment when one is configured; the "dev"
// environment lowers the threshold to debug. The standard library logger is
// redirected through the same handler so dependencies share the output
// format.
func Setup(service, env string) *slog.Logger {
	logger, handler := newLogger(os.Stdout, service, env)
	slog.SetDefault(logger)

	bridge := slog.NewLogLogger(handler, slog.LevelInfo)
	bridge.SetFlags(0)
	log.SetOutput(bridge.Writer())
	log.SetFlags(0)
	log.SetPrefix("")

	return logger
}

func newLogger(w io.Writer, service, env string) (*slog.Logger, slog.Handler) {
	env = strings.TrimSpace(env)

	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}

	base := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: renameStandardKeys,
	})

	fields := []slog.Attr{slog.String("service", strings.TrimSpace(service))}
	if env != "" {
		fields = append(fields, slog.String("env", env))
	}
	handler := base.WithAttrs(fields)

	return slog.New(handler), handler
}

// renameStandardKeys maps slog's built-in keys onto the field names the log
// pipeline indexes: timestamp, severity and message.
func renameStandardKeys(_ []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		attr.Key = "timestamp"
	case slog.LevelKey:
		return slog.String("severity", strings.ToUpper(attr.Value.String()))
	case slog.MessageKey:
		attr.Key = "message"
	}
	return attr
}
