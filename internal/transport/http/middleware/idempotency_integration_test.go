package middleware

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfreview/internal/platform/db/dbtest"
)

func TestIdempotencyStoreRoundTrip(t *testing.T) {
	store := NewIdempotencyStore(dbtest.Pool(t))
	ctx := context.Background()
	key := uuid.NewString()
	endpoint := "POST /assessments/emp-1/2026-S1/finalize"
	hash := RequestHash([]byte(`{}`))

	_, found, err := store.Check(ctx, "mgr-1", endpoint, key, hash)
	require.NoError(t, err)
	assert.False(t, found)

	response := json.RawMessage(`{"status":"final"}`)
	require.NoError(t, store.Save(ctx, "mgr-1", endpoint, key, hash, response))

	stored, found, err := store.Check(ctx, "mgr-1", endpoint, key, hash)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, string(response), string(stored))

	_, _, err = store.Check(ctx, "mgr-1", endpoint, key, RequestHash([]byte(`{"other":1}`)))
	assert.ErrorIs(t, err, ErrIdempotencyConflict)

	err = store.Save(ctx, "mgr-1", endpoint, key, RequestHash([]byte("x")), response)
	assert.ErrorIs(t, err, ErrIdempotencyConflict)

	_, found, err = store.Check(ctx, "mgr-2", endpoint, key, hash)
	require.NoError(t, err)
	assert.False(t, found, "keys are scoped per actor")
}

func TestNilIdempotencyStoreIsNoop(t *testing.T) {
	var store *IdempotencyStore
	_, found, err := store.Check(context.Background(), "a", "e", "k", "h")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, store.Save(context.Background(), "a", "e", "k", "h", nil))
}
