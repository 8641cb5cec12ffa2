package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info")
	require.NoError(t, err)

	l := slog.New(logger)
	l.Debug("hidden")
	l.Info("conda manager found", "executable", "/opt/conda/bin/conda")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "conda manager found")
	assert.Contains(t, out, "/opt/conda/bin/conda")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "chatty")
	assert.Error(t, err)
}
