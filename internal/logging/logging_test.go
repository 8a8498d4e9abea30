package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vial-kb/vial-gui/internal/config"
)

func TestNewWritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var stderr bytes.Buffer

	logger, err := New(config.LogConfig{Level: "debug", File: dir, MaxBackups: 1}, &stderr)
	require.NoError(t, err)

	logger.Debug().Msg("Keyboard detected")

	assert.Contains(t, stderr.String(), "Keyboard detected")
	data, err := os.ReadFile(filepath.Join(dir, "vial.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"Keyboard detected"`)
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	var stderr bytes.Buffer

	logger, err := New(config.LogConfig{Level: "chatty"}, &stderr)
	require.NoError(t, err)

	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	assert.Contains(t, stderr.String(), "Invalid log level")
}

func TestNewBadLogFileKeepsConsole(t *testing.T) {
	var stderr bytes.Buffer
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	logger, err := New(config.LogConfig{Level: "info", File: filepath.Join(blocker, "sub", "vial.log")}, &stderr)
	require.Error(t, err)

	logger.Info().Msg("still here")
	assert.Contains(t, stderr.String(), "still here")
}

func TestConsoleWriterUnquotesTraces(t *testing.T) {
	w := ConsoleWriter(nil)

	assert.Equal(t, "main.main()\n\tmain.go:1", w.FormatFieldValue(`"main.main()\n\tmain.go:1"`))
	assert.Equal(t, "plain", w.FormatFieldValue("plain"))
	assert.Equal(t, "", w.FormatFieldValue(nil))
}
