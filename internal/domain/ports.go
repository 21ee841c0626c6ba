package domain

// RecordStore is the hosted database holding startup submissions.
type RecordStore interface {
	ListPending(ctx Context, limit int) ([]Submission, error)
	GetSubmission(ctx Context, recordID string) (Submission, error)
	DownloadAttachment(ctx Context, att Attachment) ([]byte, error)
	UpdateFields(ctx Context, recordID string, fields map[string]any) error
}

// PageRenderer turns a PDF into one image per page, in page order.
type PageRenderer interface {
	RenderPages(ctx Context, pdf []byte) ([][]byte, error)
}

// VisionModel describes one slide image.
type VisionModel interface {
	Describe(ctx Context, image []byte, prompt string) (string, error)
}

// TextModel completes a prompt.
type TextModel interface {
	Complete(ctx Context, prompt string) (string, error)
}

// EvaluationRepository keeps the history of evaluation runs.
type EvaluationRepository interface {
	Upsert(ctx Context, run EvaluationRun) error
	GetLatest(ctx Context, recordID string) (EvaluationRun, error)
}

// Archiver stores raw pipeline artifacts (digest, prompt, response).
type Archiver interface {
	Put(ctx Context, key string, body []byte, contentType string) error
}

// Queue accepts submission ids for asynchronous processing.
type Queue interface {
	EnqueueSubmission(ctx Context, payload SubmissionTaskPayload) error
}

// SubmissionTaskPayload is the queue message for one submission.
type SubmissionTaskPayload struct {
	RecordID    string `json:"record_id"`
	StartupName string `json:"startup_name,omitempty"`
	Trigger     string `json:"trigger,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// SubmissionTracker remembers which submissions are queued so that a record
// is not queued twice.
type SubmissionTracker interface {
	Track(ctx Context, recordID, startupName string) (bool, error)
	Remove(ctx Context, recordID string) error
	List(ctx Context) ([]QueuedSubmission, error)
}
