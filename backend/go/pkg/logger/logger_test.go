package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"ecofix/backend/go/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger(buf *bytes.Buffer) *Logger {
	l := logrus.New()
	l.SetOutput(buf)
	l.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{logrus.FieldKeyMsg: "message"},
	})
	l.SetLevel(logrus.DebugLevel)
	return NewWithEntry(logrus.NewEntry(l).WithField("service_name", "test"))
}

func TestWithMethodsDoNotMutateReceiver(t *testing.T) {
	var buf bytes.Buffer
	base := newBufferedLogger(&buf)

	base.WithPayload(map[string]interface{}{"k": "v"}).Info("with payload")
	base.Info("plain")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))

	assert.Contains(t, first, "payload")
	assert.NotContains(t, second, "payload")
	assert.Equal(t, "plain", second["message"])
}

func TestWithErrorAndRequest(t *testing.T) {
	var buf bytes.Buffer
	newBufferedLogger(&buf).
		WithRequest(models.RequestInfo{Method: "GET", Path: "/healthz", Status: 200}).
		WithError(models.ErrorInfo{Message: "boom", Type: "model_error"}).
		Warn("failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))

	req := entry["request_info"].(map[string]interface{})
	assert.Equal(t, "/healthz", req["path"])
	errInfo := entry["error"].(map[string]interface{})
	assert.Equal(t, "model_error", errInfo["type"])
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("loud"))
}
