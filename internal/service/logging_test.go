package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"icrelay/internal/tracing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.DebugLevel)
	return logger, &buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestIsVerboseLogging(t *testing.T) {
	assert.False(t, IsVerboseLogging(context.Background()))
	assert.True(t, IsVerboseLogging(WithVerbose(context.Background(), true)))
	assert.False(t, IsVerboseLogging(WithVerbose(context.Background(), false)))

	//nolint:staticcheck // plain string keys must not leak through
	ctx := context.WithValue(context.Background(), "verbose", true)
	assert.False(t, IsVerboseLogging(ctx))
}

func TestSanitizeContent(t *testing.T) {
	assert.Equal(t, "", SanitizeContent(""))
	assert.Equal(t, "[hidden]", SanitizeContent("secret plot"))
}

func TestLogWithContext(t *testing.T) {
	logger, buf := bufferLogger()

	ctx := tracing.WithRequestID(context.Background(), "req_1")
	LogWithContext(ctx, logger).Info("hello")

	entry := lastEntry(t, buf)
	assert.Equal(t, "req_1", entry[LogFieldRequestID])
	assert.Equal(t, false, entry["verbose"])
}

func TestLogCommand(t *testing.T) {
	src := commandSource{channelID: "123456789", messageID: "987654321", authorID: "555566667777"}

	t.Run("masked", func(t *testing.T) {
		logger, buf := bufferLogger()
		LogCommand(context.Background(), logger, "relay-public", src, "the moon rises")

		entry := lastEntry(t, buf)
		assert.Equal(t, "relay-public", entry[LogFieldCommand])
		assert.Equal(t, "*****6789", entry[LogFieldChannelID])
		assert.Equal(t, "********7777", entry[LogFieldUserID])
		assert.Equal(t, "[hidden]", entry[LogFieldContent])
	})

	t.Run("verbose", func(t *testing.T) {
		logger, buf := bufferLogger()
		LogCommand(WithVerbose(context.Background(), true), logger, "relay-public", src, "the moon rises")

		entry := lastEntry(t, buf)
		assert.Equal(t, "123456789", entry[LogFieldChannelID])
		assert.Equal(t, "the moon rises", entry[LogFieldContent])
	})
}
