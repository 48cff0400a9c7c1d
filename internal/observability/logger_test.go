package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "debug", Format: "json", Output: &buf, ServiceName: "qto"})

	log.WithSession("s-1").WithModel("m-1").Info().
		Str("intent", "PLASTER_AREA").
		Float64("value", 216).
		Strs("defaulted", []string{"coats"}).
		Msg("answered")

	m := decodeLine(t, &buf)
	assert.Equal(t, "qto", m["service"])
	assert.Equal(t, "s-1", m["session_id"])
	assert.Equal(t, "m-1", m["model_id"])
	assert.Equal(t, "PLASTER_AREA", m["intent"])
	assert.Equal(t, 216.0, m["value"])
	assert.Equal(t, []any{"coats"}, m["defaulted"])
	assert.Equal(t, "info", m["level"])
	assert.Equal(t, "answered", m["message"])
	assert.Contains(t, m, "time")
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "WARN", Output: &buf})

	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Warn().Err(errors.New("boom")).Msg("shown")
	m := decodeLine(t, &buf)
	assert.Equal(t, "boom", m["error"])
}

func TestLogger_WithContextTraceID(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "info", Output: &buf})

	ctx := ContextWithTraceID(context.Background(), "trace-42")
	log.WithContext(ctx).Info().Msg("traced")
	assert.Equal(t, "trace-42", decodeLine(t, &buf)["trace_id"])

	assert.Same(t, log, log.WithContext(context.Background()))
}

func TestLogger_Nop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Error().Str("k", "v").Msg("dropped")
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}
