package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clipstream/internal/config"
	"clipstream/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var producer *kafka.Writer

// Relation event types.
const (
	RelationEventFollow   = "follow"
	RelationEventUnfollow = "unfollow"
)

// RelationEvent announces a committed change to the follow edge set. The
// reconcile worker uses it to re-derive the two affected users' counters.
type RelationEvent struct {
	Type        string `json:"type"`
	FollowerID  int64  `json:"follower_id"`
	FollowingID int64  `json:"following_id"`
	OccurredAt  int64  `json:"occurred_at"`
}

// InitProducer builds the shared Kafka writer.
func InitProducer(cfg *config.KafkaConfig) error {
	producer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logger.Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
	)

	return nil
}

// SendRelationEvent publishes a relation event. Events for the same ordered
// pair share a key so they stay on one partition, in commit order.
func SendRelationEvent(ctx context.Context, topic string, event *RelationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal relation event: %w", err)
	}

	key := fmt.Sprintf("relation-%d-%d", event.FollowerID, event.FollowingID)
	if err := SendRaw(ctx, topic, key, payload); err != nil {
		return fmt.Errorf("failed to send relation event: %w", err)
	}

	logger.Debug("Relation event sent",
		zap.String("type", event.Type),
		zap.Int64("follower_id", event.FollowerID),
		zap.Int64("following_id", event.FollowingID),
		zap.String("topic", topic),
	)

	return nil
}

// SendRaw publishes an arbitrary message to a topic.
func SendRaw(ctx context.Context, topic, key string, value []byte) error {
	if producer == nil {
		return fmt.Errorf("kafka producer not initialized")
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}

	if err := producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send kafka message: %w", err)
	}
	return nil
}

// CloseProducer closes the shared writer.
func CloseProducer() error {
	if producer == nil {
		return nil
	}
	logger.Info("Kafka producer closed")
	return producer.Close()
}
