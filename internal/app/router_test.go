package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/httpserver"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/tracker"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/config"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

func TestParseOrigins(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"*"}, ParseOrigins(""))
	assert.Equal(t, []string{"*"}, ParseOrigins(" , "))
	assert.Equal(t, []string{"*"}, ParseOrigins("*"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, ParseOrigins(" https://a.example,https://b.example ,"))
}

type nopQueue struct{ n int }

func (q *nopQueue) EnqueueSubmission(context.Context, domain.SubmissionTaskPayload) error {
	q.n++
	return nil
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func newRouter(t *testing.T) (http.Handler, *nopQueue) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	tr := tracker.New(rdb)
	q := &nopQueue{}
	cfg := config.Config{CORSAllowOrigins: "*", RateLimitPerMin: 100}
	srv := httpserver.NewServer(cfg, q, tr, BuildReadinessChecks(
		Dependency{Name: "redis", Pinger: tr},
		Dependency{Name: "db"},
	)...)
	return BuildRouter(cfg, srv), q
}

func TestBuildRouter_Routes(t *testing.T) {
	t.Parallel()
	h, q := newRouter(t)
	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/readyz", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/status", "", http.StatusOK},
		{http.MethodPost, "/webhook/manual", `{"record_id":"rec1"}`, http.StatusOK},
		{http.MethodPost, "/webhook/airtable", `{"payloads":[]}`, http.StatusOK},
		{http.MethodGet, "/webhook/manual", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, "%s %s: %s", tt.method, tt.path, rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"), tt.path)
	}
	assert.Equal(t, 1, q.n)
}

func TestBuildRouter_RateLimit(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cfg := config.Config{RateLimitPerMin: 1}
	h := BuildRouter(cfg, httpserver.NewServer(cfg, &nopQueue{}, tracker.New(rdb)))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/airtable", strings.NewReader(`{"payloads":[]}`)))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestBuildReadinessChecks(t *testing.T) {
	t.Parallel()
	checks := BuildReadinessChecks(
		Dependency{Name: "db", Pinger: pinger{}},
		Dependency{Name: "skipped"},
		Dependency{Name: "queue", Pinger: pinger{err: errors.New("down")}},
	)
	require.Len(t, checks, 2)
	assert.Equal(t, "db", checks[0].Name)
	assert.NoError(t, checks[0].Check(t.Context()))
	assert.Equal(t, "queue", checks[1].Name)
	assert.Error(t, checks[1].Check(t.Context()))
}
