package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(Options{Out: &buf})
	require.NoError(t, err)

	logger.WithField("target", "120.0.6099.109").Info("driver ready")
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "driver ready")
	assert.Contains(t, out, "target=120.0.6099.109")
	assert.NotContains(t, out, "hidden")
}

func TestNewJSONVerbose(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(Options{Out: &buf, Verbose: true, Format: FormatJSON})
	require.NoError(t, err)

	logger.WithField("cached", "0").Debug("read cache")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "read cache", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "0", entry["cached"])
}

func TestNewUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Out: &bytes.Buffer{}, Format: "xml"})
	assert.Error(t, err)
}

func TestOrDiscard(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, OrDiscard(nil))
	logger := Discard()
	assert.Same(t, logger, OrDiscard(logger))
}
