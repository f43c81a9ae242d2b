package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("info"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("unknown"))
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Info().Str("transaction_id", "ESC-123").Msg("escrow created")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "escrow created", entry["message"])
	assert.Equal(t, "ESC-123", entry["transaction_id"])
	assert.NotEmpty(t, entry["time"])
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)

	log.Info().Msg("should be dropped")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("should be written")
	assert.NotZero(t, buf.Len())
}

func TestNew_ServiceField(t *testing.T) {
	log := New("info", false)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}
