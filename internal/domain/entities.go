package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	ErrInternal          = errors.New("internal error")
	ErrConfig            = errors.New("invalid configuration")

	// Pipeline failures. Only ErrAttachmentMissing, ErrRenderFailure and a
	// failed text-model call end a submission in StatusError. A download
	// over the size limit is reported as ErrAttachmentTooLarge wrapped in
	// ErrAttachmentMissing.
	ErrAttachmentMissing  = errors.New("attachment missing")
	ErrAttachmentTooLarge = errors.New("attachment too large")
	ErrRenderFailure      = errors.New("render failure")
	ErrModelCall          = errors.New("model call failure")
	ErrPromptTooLarge     = errors.New("prompt too large")
	ErrParseAmbiguity     = errors.New("parse ambiguity")
)

// SlideExtraction is the vision model output for one rendered page.
// IsError marks a failed call; such entries never reach the digest.
type SlideExtraction struct {
	SlideNumber int    `json:"slide_number"`
	Text        string `json:"text"`
	IsError     bool   `json:"is_error"`
}

// Digest is the bounded summary of all slide extractions of one submission.
type Digest string

// SubmissionStatus mirrors the status field of the record store.
type SubmissionStatus string

const (
	StatusPending    SubmissionStatus = "Pending"
	StatusProcessing SubmissionStatus = "Processing"
	StatusComplete   SubmissionStatus = "Complete"
	StatusError      SubmissionStatus = "Error"
)

// Attachment references a file stored by the record store.
type Attachment struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

// Submission is a startup record owned by the record store. The pipeline
// reads its attachment and writes back status and evaluation fields.
type Submission struct {
	RecordID    string
	StartupName string
	Attachment  *Attachment
	Status      SubmissionStatus
	CreatedAt   time.Time
}

// EvaluationRun is one persisted evaluation, kept as history next to the
// fields written to the record store.
type EvaluationRun struct {
	ID           string
	RecordID     string
	StartupName  string
	Status       SubmissionStatus
	OverallScore float64
	TeamScore    int
	TechScore    int
	MarketScore  int
	GTMScore     int
	CompScore    int
	SlidesTotal  int
	SlidesFailed int
	DigestChars  int
	PromptTokens int
	Warnings     []string
	RawResponse  string
	Note         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Context is an alias so ports read the same across adapters and use cases.
type Context = context.Context

// QueuedSubmission is one entry of the submission tracker.
type QueuedSubmission struct {
	RecordID    string    `json:"record_id"`
	StartupName string    `json:"startup_name"`
	QueuedAt    time.Time `json:"queued_at"`
}
