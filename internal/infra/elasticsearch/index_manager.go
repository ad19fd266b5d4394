package elasticsearch

import (
	"bytes"
	"context"
	"fmt"

	"vidshare/pkg/logger"

	"go.uber.org/zap"
)

// GetVideosIndexMapping 返回 videos 索引的 mapping
func GetVideosIndexMapping() string {
	return `{
		"settings": {
			"number_of_shards": 1,
			"number_of_replicas": 0
		},
		"mappings": {
			"properties": {
				"id": {"type": "long"},
				"title": {
					"type": "text",
					"analyzer": "standard",
					"fields": {"keyword": {"type": "keyword", "ignore_above": 200}}
				},
				"hashtags": {"type": "text", "analyzer": "standard"},
				"url": {"type": "keyword", "index": false},
				"blob_name": {"type": "keyword"},
				"created_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"}
			}
		}
	}`
}

// EnsureVideosIndex 确保 videos 索引存在，不存在则创建；created 表示本次新建
func EnsureVideosIndex(ctx context.Context) (created bool, err error) {
	indexName := VideosIndex()

	exists, err := videosIndexExists(ctx)
	if err != nil {
		return false, fmt.Errorf("check index exists: %w", err)
	}
	if exists {
		logger.Info("Elasticsearch videos index already exists", zap.String("index", indexName))
		return false, nil
	}

	body := bytes.NewReader([]byte(GetVideosIndexMapping()))
	resp, err := createVideosIndex(ctx, body)
	if err != nil {
		return false, fmt.Errorf("create index: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse("create index", resp); err != nil {
		return false, err
	}

	logger.Info("Elasticsearch videos index created", zap.String("index", indexName))
	return true, nil
}
