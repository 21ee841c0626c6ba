package redpanda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

// Handler evaluates one queued submission.
type Handler func(ctx context.Context, payload domain.SubmissionTaskPayload) error

// recordClient is the part of *kgo.Client used by Consumer.
type recordClient interface {
	PollRecords(ctx context.Context, maxPollRecords int) kgo.Fetches
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
	AllowRebalance()
	Close()
}

// Consumer drains the submissions topic one record at a time. Offsets are
// committed after the handler returns, whatever its outcome: a failed
// evaluation is recorded on the submission itself and is not redelivered.
type Consumer struct {
	client  recordClient
	handle  Handler
	groupID string
	topic   string
}

// NewConsumer joins groupID on TopicSubmissions.
func NewConsumer(brokers []string, groupID string, handle Handler) (*Consumer, error) {
	return NewConsumerWithTopic(brokers, groupID, TopicSubmissions, handle)
}

// NewConsumerWithTopic joins groupID on topic.
func NewConsumerWithTopic(brokers []string, groupID, topic string, handle Handler) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("op=redpanda.NewConsumer: %w: no seed brokers", domain.ErrInvalidArgument)
	}
	if groupID == "" {
		return nil, fmt.Errorf("op=redpanda.NewConsumer: %w: missing group id", domain.ErrInvalidArgument)
	}
	if handle == nil {
		return nil, fmt.Errorf("op=redpanda.NewConsumer: %w: nil handler", domain.ErrInvalidArgument)
	}

	admin, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return nil, fmt.Errorf("op=redpanda.NewConsumer: %w", err)
	}
	if err := createTopicIfNotExists(context.Background(), admin, topic, 1, 1); err != nil {
		slog.Warn("failed to create topic, it may already exist", slog.String("topic", topic), slog.Any("error", err))
	}
	admin.Close()

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
		kgo.FetchIsolationLevel(kgo.ReadCommitted()),
		kgo.DisableAutoCommit(),
		kgo.BlockRebalanceOnPoll(),
		// one evaluation can take several minutes
		kgo.RebalanceTimeout(10*time.Minute),
		kgo.SessionTimeout(45*time.Second),
		kgo.WithHooks(tracingHooks()...),
	)
	if err != nil {
		return nil, fmt.Errorf("op=redpanda.NewConsumer: %w", err)
	}
	return newConsumer(client, groupID, topic, handle), nil
}

func newConsumer(client recordClient, groupID, topic string, handle Handler) *Consumer {
	return &Consumer{client: client, handle: handle, groupID: groupID, topic: topic}
}

// Run polls until ctx is done or the client is closed.
func (c *Consumer) Run(ctx context.Context) error {
	slog.Info("submission consumer started", slog.String("group_id", c.groupID), slog.String("topic", c.topic))
	for {
		fetches := c.client.PollRecords(ctx, 1)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if fetches.IsClientClosed() {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			slog.Warn("fetch error", slog.String("topic", topic), slog.Int("partition", int(partition)), slog.Any("error", err))
		})
		fetches.EachRecord(func(r *kgo.Record) {
			c.process(ctx, r)
		})
		c.client.AllowRebalance()
	}
}

func (c *Consumer) process(ctx context.Context, r *kgo.Record) {
	log := slog.With(slog.String("topic", r.Topic), slog.Int64("offset", r.Offset))
	var payload domain.SubmissionTaskPayload
	if err := json.Unmarshal(r.Value, &payload); err != nil || payload.RecordID == "" {
		log.Error("dropping malformed submission message", slog.Any("error", err))
	} else if err := c.handle(ctx, payload); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("submission handler failed", slog.String("record_id", payload.RecordID), slog.Any("error", err))
	}
	if ctx.Err() != nil {
		return
	}
	if err := c.client.CommitRecords(ctx, r); err != nil {
		log.Error("commit failed", slog.Any("error", err))
	}
}

// Close leaves the group and closes the client.
func (c *Consumer) Close() {
	c.client.Close()
}
