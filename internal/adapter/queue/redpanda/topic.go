package redpanda

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"
)

// createTopicIfNotExists creates topic through the admin API. An existing
// topic is not an error.
func createTopicIfNotExists(ctx context.Context, client *kgo.Client, topic string, partitions int32, replicationFactor int16) error {
	if err := validateTopic(topic, partitions, replicationFactor); err != nil {
		return err
	}

	req := kmsg.NewCreateTopicsRequest()
	req.TimeoutMillis = 30000
	t := kmsg.NewCreateTopicsRequestTopic()
	t.Topic = topic
	t.NumPartitions = partitions
	t.ReplicationFactor = replicationFactor
	req.Topics = append(req.Topics, t)

	resp, err := req.RequestWith(ctx, client)
	if err != nil {
		return fmt.Errorf("create topic request: %w", err)
	}
	return topicResult(resp)
}

func validateTopic(topic string, partitions int32, replicationFactor int16) error {
	switch {
	case topic == "":
		return fmt.Errorf("topic name cannot be empty")
	case partitions <= 0:
		return fmt.Errorf("partitions must be greater than 0")
	case replicationFactor <= 0:
		return fmt.Errorf("replication factor must be greater than 0")
	}
	return nil
}

func topicResult(resp *kmsg.CreateTopicsResponse) error {
	for _, tr := range resp.Topics {
		err := kerr.ErrorForCode(tr.ErrorCode)
		if err == nil {
			slog.Info("topic created", slog.String("topic", tr.Topic))
			continue
		}
		if err == kerr.TopicAlreadyExists {
			continue
		}
		msg := ""
		if tr.ErrorMessage != nil {
			msg = *tr.ErrorMessage
		}
		return fmt.Errorf("create topic %s: %w %s", tr.Topic, err, msg)
	}
	return nil
}
