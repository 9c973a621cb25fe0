package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelFallback(t *testing.T) {
	logger := New("vendorctl", "not-a-level", "text")
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	logger = New("vendorctl", "DEBUG", "json")
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.Equal(t, "vendorctl", logger.Service())
}

func TestTraceID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, TraceIDFromContext(ctx))

	id := NewTraceID()
	ctx = WithTraceID(ctx, id)
	assert.Equal(t, id, TraceIDFromContext(ctx))
}

func TestLogRequest_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New("session", "debug", "json")
	logger.SetOutput(&buf)

	ctx := WithTraceID(context.Background(), "trace-1")
	logger.LogRequest(ctx, http.MethodGet, "/auth/profile", http.StatusInternalServerError, 25*time.Millisecond)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "session", entry["service"])
	assert.Equal(t, "trace-1", entry["trace_id"])
	assert.Equal(t, "/auth/profile", entry["path"])
	assert.Equal(t, "warning", entry["level"])
}

func TestLogSecurityEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := New("session", "info", "json")
	logger.SetOutput(&buf)

	logger.LogSecurityEvent(context.Background(), "logout", map[string]interface{}{"generation": 3})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "logout", entry["event"])
	assert.EqualValues(t, 3, entry["generation"])
}
