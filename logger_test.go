package shadercache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_LogCompile(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var addrs Addresses
	addrs[StageFragment] = 0x40
	logger.LogCompile(context.Background(), addrs, time.Millisecond, errors.New("bad opcode"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "compile failed", rec["msg"])
	assert.Equal(t, "bad opcode", rec["error"])
}

func TestLogger_LogFetch(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, nil))

	logger.LogFetch(context.Background(), StageGeometry, 0x40, errors.New("unmapped"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "stage fetch failed", rec["msg"])
	assert.Equal(t, "geometry", rec["stage"])
	assert.InDelta(t, 0x40, rec["address"], 0)
	assert.Equal(t, "unmapped", rec["error"])
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	logger.LogAdd(Key{0, 1}, 1, nil)
	assert.Empty(t, buf.String(), "adds log at debug")

	logger.LogAdd(Key{}, 0, ErrNoStages)
	assert.Contains(t, buf.String(), "bundle add failed")
}

func TestNoopLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		l := NoopLogger()
		l.LogDuplicate(Key{1})
		l.LogCompile(context.Background(), Addresses{}, 0, nil)
	})
	assert.NotNil(t, NewLogger(nil))
	assert.NotNil(t, NewJSONLogger(slog.LevelWarn))
}

func TestBasicMetricsCollector(t *testing.T) {
	var m BasicMetricsCollector
	assert.Zero(t, m.HitRate())
	assert.Zero(t, m.AverageLookup())

	m.RecordLookup(true, 2*time.Microsecond)
	m.RecordLookup(false, 4*time.Microsecond)
	m.RecordCompile(time.Millisecond, nil)
	m.RecordCompile(time.Millisecond, errors.New("x"))
	m.RecordAdd(0, ErrNoStages)

	assert.InDelta(t, 0.5, m.HitRate(), 1e-9)
	assert.Equal(t, 3*time.Microsecond, m.AverageLookup())
	assert.Equal(t, int64(2), m.CompileCount.Load())
	assert.Equal(t, int64(1), m.CompileErrors.Load())
	assert.Equal(t, int64(1), m.AddErrors.Load())

	var _ MetricsCollector = NoopMetricsCollector{}
}

func TestParseHashKind(t *testing.T) {
	kind, err := ParseHashKind("xxhash")
	require.NoError(t, err)
	assert.Equal(t, HashXXHash, kind)

	_, err = ParseHashKind("md5")
	assert.Error(t, err)
}
