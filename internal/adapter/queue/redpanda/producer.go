// Package redpanda queues submission ids on a Redpanda (Kafka API) topic
// and drains them one at a time.
package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/observability"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

const (
	// TopicSubmissions carries one record per submission to evaluate.
	TopicSubmissions = "pitch-deck-submissions"

	defaultTransactionalID = "pitch-deck-evaluator-producer"
)

// Producer implements domain.Queue with transactional produces.
type Producer struct {
	client *kgo.Client
	topic  string
	// txn serializes transactions on the shared client.
	txn chan struct{}
}

var _ domain.Queue = (*Producer)(nil)

// NewProducer constructs a Producer on TopicSubmissions.
func NewProducer(brokers []string) (*Producer, error) {
	return NewProducerWithTopic(brokers, defaultTransactionalID, TopicSubmissions)
}

// NewProducerWithTopic constructs a Producer with a custom transactional id
// and topic.
func NewProducerWithTopic(brokers []string, transactionalID, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("op=redpanda.NewProducer: %w: no seed brokers", domain.ErrInvalidArgument)
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.TransactionalID(transactionalID),
		kgo.RequestRetries(10),
		kgo.WithHooks(tracingHooks()...),
	)
	if err != nil {
		return nil, fmt.Errorf("op=redpanda.NewProducer: %w", err)
	}
	if err := createTopicIfNotExists(context.Background(), client, topic, 1, 1); err != nil {
		slog.Warn("failed to create topic, it may already exist", slog.String("topic", topic), slog.Any("error", err))
	}
	return &Producer{client: client, topic: topic, txn: make(chan struct{}, 1)}, nil
}

// EnqueueSubmission produces the payload inside a transaction.
func (p *Producer) EnqueueSubmission(ctx domain.Context, payload domain.SubmissionTaskPayload) error {
	record, err := newRecord(p.topic, payload)
	if err != nil {
		return fmt.Errorf("op=redpanda.EnqueueSubmission: %w", err)
	}

	select {
	case p.txn <- struct{}{}:
		defer func() { <-p.txn }()
	case <-ctx.Done():
		return fmt.Errorf("op=redpanda.EnqueueSubmission: %w", ctx.Err())
	}

	if err := p.client.BeginTransaction(); err != nil {
		return fmt.Errorf("op=redpanda.EnqueueSubmission: begin transaction: %w", err)
	}
	e := kgo.AbortingFirstErrPromise(p.client)
	p.client.Produce(ctx, record, e.Promise())
	if err := e.Err(); err != nil {
		if abortErr := p.client.EndTransaction(ctx, kgo.TryAbort); abortErr != nil {
			slog.ErrorContext(ctx, "failed to abort transaction", slog.Any("error", abortErr))
		}
		return fmt.Errorf("op=redpanda.EnqueueSubmission: produce: %w", err)
	}
	if err := p.client.EndTransaction(ctx, kgo.TryCommit); err != nil {
		return fmt.Errorf("op=redpanda.EnqueueSubmission: commit transaction: %w", err)
	}

	observability.EnqueueSubmission(payload.Trigger)
	slog.InfoContext(ctx, "submission enqueued",
		slog.String("record_id", payload.RecordID),
		slog.String("trigger", payload.Trigger),
		slog.String("topic", p.topic))
	return nil
}

// Ping checks that a broker is reachable.
func (p *Producer) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("op=redpanda.Ping: %w", err)
	}
	return nil
}

// Close closes the producer.
func (p *Producer) Close() {
	if p.client != nil {
		p.client.Close()
	}
}

// newRecord keys the record by record id so that repeated submissions of
// the same record land on one partition in order.
func newRecord(topic string, payload domain.SubmissionTaskPayload) (*kgo.Record, error) {
	if payload.RecordID == "" {
		return nil, fmt.Errorf("%w: empty record id", domain.ErrInvalidArgument)
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(payload.RecordID),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "record_id", Value: []byte(payload.RecordID)},
			{Key: "trigger", Value: []byte(payload.Trigger)},
		},
	}, nil
}

func tracingHooks() []kgo.Hook {
	tracer := kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider()))
	return kotel.NewKotel(kotel.WithTracer(tracer)).Hooks()
}
