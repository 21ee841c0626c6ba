package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fieldUpdate struct {
	recordID string
	fields   map[string]any
}

type storeStub struct {
	mu          sync.Mutex
	pending     []domain.Submission
	listErr     error
	subs        map[string]domain.Submission
	pdf         []byte
	downloadErr error
	// updateErr, when set, decides the error of each UpdateFields call.
	updateErr func(fields map[string]any) error
	updates   []fieldUpdate
}

func (s *storeStub) ListPending(_ context.Context, limit int) ([]domain.Submission, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if limit > 0 && len(s.pending) > limit {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *storeStub) GetSubmission(_ context.Context, recordID string) (domain.Submission, error) {
	sub, ok := s.subs[recordID]
	if !ok {
		return domain.Submission{}, domain.ErrNotFound
	}
	return sub, nil
}

func (s *storeStub) DownloadAttachment(_ context.Context, _ domain.Attachment) ([]byte, error) {
	return s.pdf, s.downloadErr
}

func (s *storeStub) UpdateFields(_ context.Context, recordID string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[string]any, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	s.updates = append(s.updates, fieldUpdate{recordID: recordID, fields: cp})
	if s.updateErr != nil {
		return s.updateErr(fields)
	}
	return nil
}

// notes returns the notes of every update in order.
func (s *storeStub) notes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, u := range s.updates {
		if n, ok := u.fields[domain.FieldNotes].(string); ok {
			out = append(out, n)
		}
	}
	return out
}

func (s *storeStub) last() fieldUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates[len(s.updates)-1]
}

type rendererStub struct {
	pages [][]byte
	err   error
	calls int
}

func (r *rendererStub) RenderPages(_ context.Context, _ []byte) ([][]byte, error) {
	r.calls++
	return r.pages, r.err
}

type visionStub struct {
	prompts []string
	// failOn lists 1-based slide numbers that return an error.
	failOn map[int]bool
}

func (v *visionStub) Describe(_ context.Context, _ []byte, prompt string) (string, error) {
	v.prompts = append(v.prompts, prompt)
	n := len(v.prompts)
	if v.failOn[n] {
		return "", errBoom
	}
	return slideText(n), nil
}

type textStub struct {
	response string
	err      error
	prompts  []string
}

func (t *textStub) Complete(_ context.Context, prompt string) (string, error) {
	t.prompts = append(t.prompts, prompt)
	return t.response, t.err
}

type archiveStub struct {
	keys []string
	err  error
}

func (a *archiveStub) Put(_ context.Context, key string, _ []byte, _ string) error {
	a.keys = append(a.keys, key)
	return a.err
}

type runsStub struct {
	runs []domain.EvaluationRun
	err  error
}

func (r *runsStub) Upsert(_ context.Context, run domain.EvaluationRun) error {
	r.runs = append(r.runs, run)
	return r.err
}

func (r *runsStub) GetLatest(_ context.Context, recordID string) (domain.EvaluationRun, error) {
	for i := len(r.runs) - 1; i >= 0; i-- {
		if r.runs[i].RecordID == recordID {
			return r.runs[i], nil
		}
	}
	return domain.EvaluationRun{}, domain.ErrNotFound
}

type sleepRecorder struct {
	waits []time.Duration
	// cancel, when set, is called on the first wait.
	cancel context.CancelFunc
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return ctx.Err()
}
