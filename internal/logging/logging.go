// Package logging builds the slog.Logger shared by the executables.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the handler. Format "text" forces the tint console handler,
// "json" forces JSON; empty picks tint for development and JSON otherwise.
type Config struct {
	Level       string
	Format      string
	Environment string

	// File, when set, receives JSON log lines with size-based rotation
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Output defaults to os.Stdout
	Output io.Writer
}

// ParseLevel accepts debug, info, warn and error (case-insensitive)
func ParseLevel(level string) (slog.Level, error) {
	if strings.TrimSpace(level) == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// New returns a logger for cfg
func New(cfg Config) (*slog.Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	format := strings.ToLower(cfg.Format)
	if format == "" {
		format = "json"
		if cfg.Environment == "" || cfg.Environment == "development" {
			format = "text"
		}
	}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 5),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
			Compress:   true,
		}
		// colour codes would end up in the file
		out = io.MultiWriter(out, rotator)
		format = "json"
	}

	var handler slog.Handler
	switch format {
	case "text":
		handler = tint.NewHandler(out, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
			NoColor:    !isTerminal(out),
		})
	case "json":
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl})
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}

	return slog.New(handler), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
