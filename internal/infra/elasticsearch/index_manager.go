package elasticsearch

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"clipstream/internal/config"
	"clipstream/pkg/logger"

	"go.uber.org/zap"
)

// videosIndexMapping is the mapping for the videos search index.
const videosIndexMapping = `{
	"settings": {
		"number_of_shards": 1,
		"number_of_replicas": 0
	},
	"mappings": {
		"properties": {
			"id": {"type": "long"},
			"author_id": {"type": "long"},
			"author_name": {"type": "keyword"},
			"title": {
				"type": "text",
				"fields": {"keyword": {"type": "keyword", "ignore_above": 200}}
			},
			"description": {"type": "text"},
			"status": {"type": "keyword"},
			"view_count": {"type": "long"},
			"favorite_count": {"type": "long"},
			"hot_score": {"type": "float"},
			"created_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"},
			"updated_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"}
		}
	}
}`

// usersIndexMapping is the mapping for the users search index.
const usersIndexMapping = `{
	"settings": {
		"number_of_shards": 1,
		"number_of_replicas": 0
	},
	"mappings": {
		"properties": {
			"id": {"type": "long"},
			"username": {
				"type": "text",
				"fields": {"keyword": {"type": "keyword", "ignore_above": 255}}
			},
			"display_name": {"type": "text"},
			"follower_count": {"type": "long"},
			"video_count": {"type": "long"},
			"created_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"}
		}
	}
}`

// VideosIndexName resolves the configured videos index name.
func VideosIndexName() string {
	if name := config.GetElasticsearch().Index["videos"]; name != "" {
		return name
	}
	return "videos"
}

// UsersIndexName resolves the configured users index name.
func UsersIndexName() string {
	if name := config.GetElasticsearch().Index["users"]; name != "" {
		return name
	}
	return "users"
}

func ensureIndex(ctx context.Context, indexName, mapping string) error {
	exists, err := IndicesExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	if exists {
		logger.Info("Elasticsearch index already exists", zap.String("index", indexName))
		return nil
	}

	resp, err := IndicesCreate(ctx, indexName, bytes.NewReader([]byte(mapping)))
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("create index failed: %s", resp.String())
	}

	logger.Info("Elasticsearch index created", zap.String("index", indexName))
	return nil
}

// InitIndexes makes sure all search indexes exist. Called at startup.
func InitIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ensureIndex(ctx, VideosIndexName(), videosIndexMapping); err != nil {
		return err
	}
	return ensureIndex(ctx, UsersIndexName(), usersIndexMapping)
}
