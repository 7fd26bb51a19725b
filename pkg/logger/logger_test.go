package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONWithContextFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Encoding: "json", Output: &buf})
	require.NoError(t, err)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithUserID(ctx, "u-7")
	WithRequestID(ctx, log).Info("page rendered")
	require.NoError(t, log.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "page rendered", entry["msg"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "u-7", entry["user_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "chatty", Output: &buf})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithRequestID_NoValues(t *testing.T) {
	var buf bytes.Buffer
	log, _ := New(Config{Output: &buf})
	assert.Same(t, log, WithRequestID(context.Background(), log))
	assert.Equal(t, "", RequestID(context.Background()))
}
