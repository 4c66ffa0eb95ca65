package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfreview/internal/platform/db/dbtest"
)

func TestRecordAndList(t *testing.T) {
	svc := New(dbtest.Pool(t))
	ctx := context.Background()
	entity := uuid.NewString()

	require.NoError(t, svc.Record(ctx, "mgr-1", ActionDraftSaved, EntityAssessment, entity, "req-1", "10.0.0.1",
		nil, map[string]any{"finalScore": 3.5}))
	require.NoError(t, svc.Record(ctx, "mgr-1", ActionFinalized, EntityAssessment, entity, "req-2", "10.0.0.1",
		map[string]any{"status": "draft"}, map[string]any{"status": "final"}))
	require.NoError(t, svc.Record(ctx, "mgr-2", ActionDraftSaved, EntityAssessment, uuid.NewString(), "req-3", "", nil, nil))

	events, err := svc.List(ctx, Filter{EntityType: EntityAssessment, EntityID: entity}, true, 10, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ActionFinalized, events[0].Action, "newest first")
	assert.Equal(t, "req-2", events[0].RequestID)

	var after map[string]string
	require.NoError(t, json.Unmarshal(events[0].After, &after))
	assert.Equal(t, "final", after["status"])

	summary, err := svc.List(ctx, Filter{EntityID: entity, Action: ActionDraftSaved}, false, 10, 0)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Nil(t, summary[0].After, "details are omitted unless requested")

	paged, err := svc.List(ctx, Filter{EntityID: entity}, false, 1, 1)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, ActionDraftSaved, paged[0].Action)
}

func TestBuildQuerySkipsEmptyFilters(t *testing.T) {
	query, args := buildQuery("SELECT id", Filter{EntityID: "a-1", ActorID: "u-1"})
	assert.Equal(t, "SELECT id FROM audit_events WHERE 1=1 AND entity_id = $1 AND actor_id = $2", query)
	assert.Equal(t, []any{"a-1", "u-1"}, args)
}
