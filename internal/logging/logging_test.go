package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit_TextDebug(t *testing.T) {
	ResetForTests()
	t.Cleanup(ResetForTests)

	var buf bytes.Buffer
	Init(slog.LevelDebug, &buf, "text")
	GetLogger().Debug("[DEBUG] Executing query", "query", "SELECT 1")

	assert.Contains(t, buf.String(), "Executing query")
	assert.Contains(t, buf.String(), "SELECT 1")
}

func TestInit_OnlyFirstCallWins(t *testing.T) {
	ResetForTests()
	t.Cleanup(ResetForTests)

	var first, second bytes.Buffer
	Init(slog.LevelInfo, &first, "json")
	Init(slog.LevelDebug, &second, "text")
	GetLogger().Info("hello")

	assert.Contains(t, first.String(), `"msg":"hello"`)
	assert.Empty(t, second.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}
