package tracker

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

func newTestTracker(t *testing.T) (*Tracker, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	tr := New(rdb)
	tr.now = func() time.Time { return now }
	return tr, &now
}

func TestTracker_TrackDedupAndList(t *testing.T) {
	t.Parallel()
	tr, now := newTestTracker(t)
	ctx := t.Context()

	added, err := tr.Track(ctx, "rec1", "Protirna")
	require.NoError(t, err)
	assert.True(t, added)

	*now = now.Add(90 * time.Second)
	added, err = tr.Track(ctx, "rec2", "Onco Labs")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = tr.Track(ctx, "rec1", "Protirna again")
	require.NoError(t, err)
	assert.False(t, added)

	items, err := tr.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "rec1", items[0].RecordID)
	assert.Equal(t, "Protirna", items[0].StartupName)
	assert.Equal(t, "rec2", items[1].RecordID)
	assert.Equal(t, 1.5, MinutesWaiting(items[0], *now))
}

func TestTracker_Remove(t *testing.T) {
	t.Parallel()
	tr, _ := newTestTracker(t)
	ctx := t.Context()

	_, err := tr.Track(ctx, "rec1", "Protirna")
	require.NoError(t, err)
	require.NoError(t, tr.Remove(ctx, "rec1"))
	require.NoError(t, tr.Remove(ctx, "missing"))

	items, err := tr.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	added, err := tr.Track(ctx, "rec1", "Protirna")
	require.NoError(t, err)
	assert.True(t, added)
}

func TestTracker_EmptyID(t *testing.T) {
	t.Parallel()
	tr, _ := newTestTracker(t)
	_, err := tr.Track(t.Context(), "", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTracker_Ping(t *testing.T) {
	t.Parallel()
	tr, _ := newTestTracker(t)
	assert.NoError(t, tr.Ping(t.Context()))
}

func TestNewFromURL(t *testing.T) {
	t.Parallel()
	_, err := NewFromURL("not a url")
	assert.Error(t, err)
	tr, err := NewFromURL("redis://localhost:6379/0")
	require.NoError(t, err)
	assert.NoError(t, tr.Close())
}

func TestMinutesWaiting(t *testing.T) {
	t.Parallel()
	q := domain.QueuedSubmission{QueuedAt: time.Unix(0, 0)}
	assert.Equal(t, 0.0, MinutesWaiting(q, time.Unix(0, 0)))
	assert.Equal(t, 2.3, MinutesWaiting(q, time.Unix(137, 0)))
}
