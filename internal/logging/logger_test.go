package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestZerologLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).Level(zerolog.DebugLevel)
	log := NewZerolog(&zl)

	log.Warn("skipping booking", "booking_id", "12", "reason", "missing item_id")
	log.Info("odd fields", "key")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "skipping booking", entries[0]["message"])
	assert.Equal(t, "12", entries[0]["booking_id"])
	assert.Equal(t, "missing item_id", entries[0]["reason"])
	assert.Equal(t, "(missing)", entries[1]["key"])
}

func TestZerologLogger_Timers(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).Level(zerolog.DebugLevel)
	log := NewZerolog(&zl)

	log.TimeEnd("unknown")
	assert.Zero(t, buf.Len())

	log.Time("build")
	log.TimeEnd("build")
	log.TimeEnd("build")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "build", entries[0]["timer"])
	assert.Contains(t, entries[0], "elapsed")
}

func TestZerologLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).Level(zerolog.WarnLevel)
	log := NewZerolog(&zl)

	log.Debug("hidden")
	log.Info("hidden")
	log.Error("shown", "err", "boom")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["message"])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		l := OrNop(nil)
		l.Debug("x")
		l.Time("t")
		l.TimeEnd("t")
	})
	assert.NotPanics(t, func() {
		NewZerolog(nil).Info("discarded")
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}
