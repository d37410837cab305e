package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/kolapsis/koraki/internal/config"
)

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupLogging installs the default logger: text on a terminal, JSON
// otherwise, plus a JSON copy in server.log_file when set.
func setupLogging(cfg *config.Config, out io.Writer) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}

	var console slog.Handler
	if isTerminal(out) {
		console = slog.NewTextHandler(out, opts)
	} else {
		console = slog.NewJSONHandler(out, opts)
	}
	handlers := []slog.Handler{console}

	if cfg.Server.LogFile != "" {
		f, err := os.OpenFile(config.ExpandHome(cfg.Server.LogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			slog.Warn("failed to open log file, using console only", "path", cfg.Server.LogFile, "error", err)
		} else {
			handlers = append(handlers, slog.NewJSONHandler(f, opts))
		}
	}

	slog.SetDefault(slog.New(slog.NewMultiHandler(handlers...)))
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
