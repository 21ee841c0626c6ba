// Package tracker keeps the set of queued submissions in Redis: a sorted
// set scored by enqueue time plus a hash of startup names.
package tracker

import (
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

const (
	queuedKey = "pitchdeck:queued"
	namesKey  = "pitchdeck:queued:names"
)

// Tracker implements domain.SubmissionTracker.
type Tracker struct {
	rdb *redis.Client
	now func() time.Time
}

var _ domain.SubmissionTracker = (*Tracker)(nil)

// New constructs a Tracker on rdb.
func New(rdb *redis.Client) *Tracker {
	return &Tracker{rdb: rdb, now: time.Now}
}

// NewFromURL parses a redis:// URL and constructs a Tracker.
func NewFromURL(url string) (*Tracker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("op=tracker.NewFromURL: %w", err)
	}
	return New(redis.NewClient(opts)), nil
}

// Track adds recordID unless it is already queued and reports whether it
// was added.
func (t *Tracker) Track(ctx domain.Context, recordID, startupName string) (bool, error) {
	if recordID == "" {
		return false, fmt.Errorf("op=tracker.Track: %w: empty record id", domain.ErrInvalidArgument)
	}
	added, err := t.rdb.ZAddNX(ctx, queuedKey, redis.Z{
		Score:  float64(t.now().UnixMilli()),
		Member: recordID,
	}).Result()
	if err != nil {
		return false, fmt.Errorf("op=tracker.Track: %w", err)
	}
	if added == 0 {
		return false, nil
	}
	if err := t.rdb.HSet(ctx, namesKey, recordID, startupName).Err(); err != nil {
		return true, fmt.Errorf("op=tracker.Track: %w", err)
	}
	return true, nil
}

// Remove forgets recordID.
func (t *Tracker) Remove(ctx domain.Context, recordID string) error {
	_, err := t.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRem(ctx, queuedKey, recordID)
		p.HDel(ctx, namesKey, recordID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("op=tracker.Remove: %w", err)
	}
	return nil
}

// List returns queued submissions, oldest first.
func (t *Tracker) List(ctx domain.Context) ([]domain.QueuedSubmission, error) {
	entries, err := t.rdb.ZRangeWithScores(ctx, queuedKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("op=tracker.List: %w", err)
	}
	names, err := t.rdb.HGetAll(ctx, namesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("op=tracker.List: %w", err)
	}
	out := make([]domain.QueuedSubmission, 0, len(entries))
	for _, e := range entries {
		id, ok := e.Member.(string)
		if !ok {
			continue
		}
		out = append(out, domain.QueuedSubmission{
			RecordID:    id,
			StartupName: names[id],
			QueuedAt:    time.UnixMilli(int64(e.Score)).UTC(),
		})
	}
	return out, nil
}

// Ping checks the connection.
func (t *Tracker) Ping(ctx domain.Context) error {
	return t.rdb.Ping(ctx).Err()
}

// Close closes the client.
func (t *Tracker) Close() error { return t.rdb.Close() }

// MinutesWaiting returns the wait of q at now, rounded to one decimal.
func MinutesWaiting(q domain.QueuedSubmission, now time.Time) float64 {
	m := now.Sub(q.QueuedAt).Minutes()
	f, _ := strconv.ParseFloat(strconv.FormatFloat(m, 'f', 1, 64), 64)
	return f
}
