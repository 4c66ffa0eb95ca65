package requestctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestFields(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, Fields(ctx))
	assert.Equal(t, "", GetRequestID(ctx))

	ctx = WithRequestID(ctx, "req-1")
	assert.Equal(t, []zap.Field{zap.String("requestId", "req-1")}, Fields(ctx))

	ctx = WithActorID(ctx, "u-1")
	assert.Equal(t, "u-1", GetActorID(ctx))
	assert.Equal(t, []zap.Field{zap.String("requestId", "req-1"), zap.String("actorId", "u-1")}, Fields(ctx))
}
