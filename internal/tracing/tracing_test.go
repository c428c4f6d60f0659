package tracing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRequestID(t *testing.T) {
	id1 := GenerateRequestID()
	id2 := GenerateRequestID()

	assert.True(t, strings.HasPrefix(id1, "req_"))
	assert.Len(t, id1, len("req_")+36)
	assert.NotEqual(t, id1, id2)
}

func TestWithAndGetRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))

	ctx = WithRequestID(ctx, "req_abc")
	assert.Equal(t, "req_abc", GetRequestID(ctx))
}

func TestWithAndGetStartTime(t *testing.T) {
	ctx := context.Background()
	assert.True(t, GetStartTime(ctx).IsZero())

	now := time.Now()
	ctx = WithStartTime(ctx, now)
	assert.Equal(t, now, GetStartTime(ctx))
}

func TestWithRequest(t *testing.T) {
	ctx := WithRequest(context.Background())

	assert.NotEmpty(t, GetRequestID(ctx))
	assert.False(t, GetStartTime(ctx).IsZero())

	other := WithRequest(context.Background())
	assert.NotEqual(t, GetRequestID(ctx), GetRequestID(other))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, time.Duration(0), Duration(context.Background()))

	ctx := WithStartTime(context.Background(), time.Now().Add(-50*time.Millisecond))
	assert.GreaterOrEqual(t, Duration(ctx), 50*time.Millisecond)
}

func TestContextKeysDoNotCollide(t *testing.T) {
	ctx := context.WithValue(context.Background(), "request_id", "plain-string-key")
	assert.Empty(t, GetRequestID(ctx))
}
