package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/tracker"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/config"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

type queueStub struct {
	mu       sync.Mutex
	payloads []domain.SubmissionTaskPayload
	err      error
}

func (q *queueStub) EnqueueSubmission(_ context.Context, p domain.SubmissionTaskPayload) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.payloads = append(q.payloads, p)
	return nil
}

func newTestServer(t *testing.T, cfg config.Config) (*Server, *queueStub, *tracker.Tracker) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	tr := tracker.New(rdb)
	q := &queueStub{}
	cfg.OTELServiceName = "pitch-deck-evaluator"
	return NewServer(cfg, q, tr), q, tr
}

func post(h http.HandlerFunc, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

const changeBody = `{
  "payloads": [
    {
      "action": "update",
      "changedTablesById": {
        "tbl1": {
          "changedRecordsById": {
            "recB": {
              "current": {"fields": {"Startup Name": "Onco Labs", "AI Analysis Status": "Pending"}},
              "previous": {"fields": {"AI Analysis Status": "Error"}}
            },
            "recA": {
              "current": {"fields": {"Startup Name": "Protirna", "Non-Confidential Pitch Deck": [{"id": "att1"}]}},
              "previous": {"fields": {}}
            },
            "recC": {
              "current": {"fields": {"Startup Name": "Quiet", "AI Analysis Status": "Complete"}},
              "previous": {"fields": {"AI Analysis Status": "Processing"}}
            }
          }
        }
      }
    },
    {
      "action": "create",
      "changedTablesById": {
        "tbl1": {
          "changedRecordsById": {
            "recD": {"current": {"fields": {"Non-Confidential Pitch Deck": [{"id": "att2"}]}}}
          }
        }
      }
    },
    {"action": "destroy", "changedTablesById": {"tbl1": {"changedRecordsById": {"recE": {}}}}}
  ]
}`

func TestAirtableWebhook_QueuesTriggeredRecords(t *testing.T) {
	t.Parallel()
	srv, q, tr := newTestServer(t, config.Config{})

	rec := post(srv.AirtableWebhookHandler(), changeBody, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.EqualValues(t, 3, body["queued"])

	require.Len(t, q.payloads, 3)
	assert.Equal(t, domain.SubmissionTaskPayload{RecordID: "recA", StartupName: "Protirna", Trigger: TriggerPDFAdded}, q.payloads[0])
	assert.Equal(t, domain.SubmissionTaskPayload{RecordID: "recB", StartupName: "Onco Labs", Trigger: TriggerStatusPending}, q.payloads[1])
	assert.Equal(t, TriggerPDFAdded, q.payloads[2].Trigger)
	assert.Equal(t, "Unknown", q.payloads[2].StartupName)

	queued, err := tr.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, queued, 3)

	// a repeated delivery queues nothing new
	rec = post(srv.AirtableWebhookHandler(), changeBody, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.EqualValues(t, 0, body["queued"])
	assert.EqualValues(t, 3, body["duplicates"])
	assert.Len(t, q.payloads, 3)
}

func TestTriggerFor(t *testing.T) {
	t.Parallel()
	deck := []any{map[string]any{"id": "att1"}}
	tests := []struct {
		name   string
		action string
		cur    map[string]any
		prev   map[string]any
		want   string
	}{
		{"deck added", "update", map[string]any{domain.FieldPitchDeck: deck}, nil, TriggerPDFAdded},
		{"deck unchanged", "update", map[string]any{domain.FieldPitchDeck: deck}, map[string]any{domain.FieldPitchDeck: deck}, ""},
		{"status to pending", "update", map[string]any{domain.FieldStatus: "Pending"}, map[string]any{domain.FieldStatus: ""}, TriggerStatusPending},
		{"already pending", "update", map[string]any{domain.FieldStatus: "Pending"}, map[string]any{domain.FieldStatus: "Pending"}, ""},
		{"created with deck", "create", map[string]any{domain.FieldPitchDeck: deck}, map[string]any{domain.FieldPitchDeck: deck}, TriggerNewRecord},
		{"created without deck", "create", map[string]any{"Startup Name": "X"}, nil, ""},
		{"empty deck list", "update", map[string]any{domain.FieldPitchDeck: []any{}}, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := recordChange{Current: recordState{Fields: tt.cur}, Previous: recordState{Fields: tt.prev}}
			assert.Equal(t, tt.want, triggerFor(tt.action, c))
		})
	}
}

func TestAirtableWebhook_BadRequests(t *testing.T) {
	t.Parallel()
	srv, q, _ := newTestServer(t, config.Config{})

	rec := post(srv.AirtableWebhookHandler(), "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no data received")

	rec = post(srv.AirtableWebhookHandler(), "{not json", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ARGUMENT", decode(t, rec)["error"].(map[string]any)["code"])
	assert.Empty(t, q.payloads)
}

func TestAirtableWebhook_Signature(t *testing.T) {
	t.Parallel()
	secret := "c2VjcmV0LWtleQ=="
	srv, q, _ := newTestServer(t, config.Config{WebhookSecret: secret})

	rec := post(srv.AirtableWebhookHandler(), changeBody, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(srv.AirtableWebhookHandler(), changeBody, http.Header{SignatureHeader: {sign("other", []byte(changeBody))}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, q.payloads)

	rec = post(srv.AirtableWebhookHandler(), changeBody, http.Header{SignatureHeader: {sign(secret, []byte(changeBody))}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, q.payloads, 3)
}

func TestAirtableWebhook_QueueFailureReleasesRecord(t *testing.T) {
	t.Parallel()
	srv, q, tr := newTestServer(t, config.Config{})
	q.err = errors.New("broker down")

	rec := post(srv.AirtableWebhookHandler(), changeBody, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	queued, err := tr.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, queued)
}

func TestManualTrigger(t *testing.T) {
	t.Parallel()
	srv, q, _ := newTestServer(t, config.Config{})

	rec := post(srv.ManualTriggerHandler(), `{"record_id":"rec123","startup_name":"Protirna"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["queued"])
	assert.Equal(t, "Analysis queued for Protirna", body["message"])
	require.Len(t, q.payloads, 1)
	assert.Equal(t, TriggerManual, q.payloads[0].Trigger)

	rec = post(srv.ManualTriggerHandler(), `{"record_id":"rec123"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, false, body["queued"])
	assert.Equal(t, "Already queued: rec123", body["message"])
	assert.Len(t, q.payloads, 1)
}

func TestManualTrigger_Validation(t *testing.T) {
	t.Parallel()
	srv, q, _ := newTestServer(t, config.Config{})
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing id", `{"startup_name":"Protirna"}`, "recordid"},
		{"bad chars", `{"record_id":"rec 1/../x"}`, "recordid"},
		{"too long", `{"record_id":"` + strings.Repeat("a", 65) + `"}`, "recordid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(srv.ManualTriggerHandler(), tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			details := decode(t, rec)["error"].(map[string]any)["details"].(map[string]any)
			assert.Contains(t, details, tt.field)
		})
	}
	rec := post(srv.ManualTriggerHandler(), `[]`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, q.payloads)
}

func TestStatusHandler(t *testing.T) {
	t.Parallel()
	srv, _, tr := newTestServer(t, config.Config{})
	_, err := tr.Track(t.Context(), "rec1", "Protirna")
	require.NoError(t, err)
	srv.now = func() time.Time { return time.Now().Add(3 * time.Minute) }

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	srv.StatusHandler()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "running", body["status"])
	assert.EqualValues(t, 1, body["queue_size"])
	items := body["queued_items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "rec1", item["record_id"])
	assert.InDelta(t, 3.0, item["queued_minutes_ago"], 0.2)
}

type pingStub struct{ err error }

func (p pingStub) Ping(context.Context) error { return p.err }

func TestReadyzHandler(t *testing.T) {
	t.Parallel()
	srv, _, _ := newTestServer(t, config.Config{})
	srv.Checks = []ReadyCheck{
		{Name: "db", Check: pingStub{}.Ping},
		{Name: "redis", Check: pingStub{err: errors.New("connection refused")}.Ping},
	}

	rec := httptest.NewRecorder()
	srv.ReadyzHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"checks":[{"name":"db","ok":true},{"name":"redis","ok":false,"details":"connection refused"}]}`, rec.Body.String())

	srv.Checks = srv.Checks[:1]
	rec = httptest.NewRecorder()
	srv.ReadyzHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthzHandler(t *testing.T) {
	t.Parallel()
	srv, _, _ := newTestServer(t, config.Config{})
	rec := httptest.NewRecorder()
	srv.HealthzHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestValidSignature(t *testing.T) {
	t.Parallel()
	body := []byte(`{"payloads":[]}`)
	header := sign("c2VjcmV0", body)
	assert.True(t, strings.HasPrefix(header, "hmac-sha256="))
	assert.True(t, validSignature("c2VjcmV0", header, body))
	assert.True(t, validSignature("c2VjcmV0", strings.ToUpper(header[:11])+header[11:], body))
	assert.False(t, validSignature("c2VjcmV0", header, append(bytes.Clone(body), ' ')))
	assert.False(t, validSignature("c2VjcmV0", "", body))
}
