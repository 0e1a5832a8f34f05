package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "downloadgate/pkg/platform/audit"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	store := NewInMemoryStore()

	require.NoError(t, store.Append(ctx, audit.NewEvent(audit.EventDownloadGranted, at)))
	require.NoError(t, store.Append(ctx, audit.NewEvent(audit.EventRateLimitExceeded, at)))
	require.NoError(t, store.Append(ctx, audit.NewEvent(audit.EventDownloadGranted, at.Add(time.Second))))

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	granted, err := store.ListByAction(ctx, audit.EventDownloadGranted)
	require.NoError(t, err)
	require.Len(t, granted, 2)
	assert.True(t, granted[0].Timestamp.Before(granted[1].Timestamp))

	all[0].Action = "mutated"
	again, _ := store.ListAll(ctx)
	assert.Equal(t, string(audit.EventDownloadGranted), again[0].Action)

	store.Clear()
	all, _ = store.ListAll(ctx)
	assert.Empty(t, all)
}
