package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForServiceAddsAttribute(t *testing.T) {
	Init()
	var structured, human bytes.Buffer
	SetOutput(&structured, &human)

	ForService("vision").Info("annotate completed", "labels", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(structured.Bytes(), &entry))
	assert.Equal(t, "vision", entry["service"])
	assert.Equal(t, "annotate completed", entry["msg"])
	assert.EqualValues(t, 3, entry["labels"])
}

func TestCustomLevelNames(t *testing.T) {
	Init()
	var structured, human bytes.Buffer
	SetOutput(&structured, &human)

	Trace("very detailed")
	slog.Log(context.Background(), LevelFatal, "about to give up")

	lines := strings.Split(strings.TrimSpace(structured.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"TRACE"`)
	assert.Contains(t, lines[1], `"FATAL"`)
}

func TestNewFileLoggerCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	logger, closer, err := NewFileLogger(path, "analysis", slog.LevelInfo, FileLoggerOptions{})
	require.NoError(t, err)

	logger.Info("run started", "mode", "process-new")
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "analysis", entry["service"])
	assert.Equal(t, "process-new", entry["mode"])
}
