package kafka

import (
	"context"
	"encoding/json"
	"time"

	"clipstream/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RelationEventHandler processes one relation event.
type RelationEventHandler func(event *RelationEvent) error

// StartRelationEventConsumer reads relation events until ctx is cancelled.
// It blocks, so run it in a goroutine or as a worker main loop.
func StartRelationEventConsumer(ctx context.Context, brokers []string, topic, groupID string, handler RelationEventHandler) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error("Failed to close kafka consumer", zap.Error(err))
		}
		logger.Info("Kafka relation event consumer stopped")
	}()

	logger.Info("Kafka relation event consumer started",
		zap.String("topic", topic),
		zap.String("group", groupID),
	)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Failed to read kafka message", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var event RelationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("Failed to unmarshal relation event",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			continue
		}

		if err := handler(&event); err != nil {
			logger.Error("Failed to handle relation event",
				zap.String("type", event.Type),
				zap.Int64("follower_id", event.FollowerID),
				zap.Int64("following_id", event.FollowingID),
				zap.Error(err),
			)
		}
	}
}
