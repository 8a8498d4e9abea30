// Package logging sets up the process-wide zerolog logger: a console writer on
// stderr plus, when a log file is configured, a rotating file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vial-kb/vial-gui/internal/config"
)

const timeFormat = "02.01.2006 15:04:05 MST"

// ConsoleWriter returns the human readable writer used on stderr.
func ConsoleWriter(out io.Writer) zerolog.ConsoleWriter {
	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: timeFormat}
	writer.FormatFieldValue = func(value interface{}) string {
		if value == nil {
			return ""
		}

		str, ok := value.(string)
		if ok && strings.Contains(str, "\\n") && strings.Contains(str, "\\t") {
			// quoted values with line breaks and tabs are stack traces
			if unquoted, err := strconv.Unquote(str); err == nil {
				return unquoted
			}
		}
		return fmt.Sprintf("%s", value)
	}
	return writer
}

// New builds a logger from cfg. Writers other than stderr are appended, so a
// broken log file never silences the console.
func New(cfg config.LogConfig, stderr io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	writers := []io.Writer{ConsoleWriter(stderr)}
	var fileErr error
	if cfg.File != "" {
		var file io.Writer
		file, fileErr = rotatingFile(cfg)
		if fileErr == nil {
			writers = append(writers, file)
		}
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	if err != nil {
		logger.Warn().Str("level", cfg.Level).Msg("Invalid log level, using info")
	}

	return logger, fileErr
}

// Setup builds the logger and installs it as zerolog's global logger.
func Setup(cfg config.LogConfig) zerolog.Logger {
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		return eris.ToString(err, true)
	}

	logger, err := New(cfg, os.Stderr)
	if err != nil {
		logger.Error().Err(err).Msg("Log file disabled")
	}

	log.Logger = logger
	return logger
}

func rotatingFile(cfg config.LogConfig) (io.Writer, error) {
	path := cfg.File
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, "vial.log")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, eris.Wrapf(err, "failed to create log directory for %q", path)
	}

	probe, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid log file %q", path)
	}
	if err := probe.Close(); err != nil {
		return nil, eris.Wrapf(err, "failed to close %q", path)
	}

	return &lumberjack.Logger{
		Filename:   path,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
	}, nil
}
