package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastLine(buf *bytes.Buffer) map[string]any {
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var m map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &m); err != nil {
		return nil
	}
	return m
}

func TestNewWithWriter_EmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")

	log.Info(context.Background(), "hello", "user", "alice")

	m := lastLine(&buf)
	require.NotNil(t, m)
	assert.Equal(t, "hello", m["msg"])
	assert.Equal(t, "alice", m["user"])
	assert.Equal(t, "INFO", m["level"])
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Info(context.Background(), "dropped")
	assert.Zero(t, buf.Len())

	log.Warn(context.Background(), "kept")
	assert.NotZero(t, buf.Len())
}

func TestNewWithWriter_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "nonsense")

	log.Debug(context.Background(), "dropped")
	assert.Zero(t, buf.Len())

	log.Info(context.Background(), "kept")
	assert.NotZero(t, buf.Len())
}

func TestWith_AddsPersistentAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")

	child := log.With("component", "vault")
	child.Error(context.Background(), "boom")

	m := lastLine(&buf)
	require.NotNil(t, m)
	assert.Equal(t, "vault", m["component"])
	assert.Equal(t, "ERROR", m["level"])
}

func TestNewDiscard_DoesNotPanic(t *testing.T) {
	log := NewDiscard()
	log.Debug(context.Background(), "x")
	log.Info(context.Background(), "x")
	log.Warn(context.Background(), "x")
	log.Error(context.Background(), "x")
	log.With("a", 1).Info(context.Background(), "x")
}
