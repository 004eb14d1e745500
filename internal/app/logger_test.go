package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("Output is stale.", "files", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec), "exactly one JSON record is written")
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "Output is stale.", rec["msg"])
	assert.Equal(t, float64(3), rec["files"])

	buf.Reset()
	newLogger("bogus", "text", &buf).Debug("hidden")
	newLogger("bogus", "text", &buf).Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "level=INFO msg=shown")
}
