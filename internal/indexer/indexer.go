package indexer

import (
	"context"
	"fmt"
	"time"

	infraES "vidshare/internal/infra/elasticsearch"
	infraKafka "vidshare/internal/infra/kafka"
	"vidshare/internal/model"
	"vidshare/internal/repository"
	"vidshare/pkg/logger"

	"go.uber.org/zap"
)

const defaultBatchSize = 500

// Sink 搜索索引的写入端
type Sink interface {
	IndexVideo(ctx context.Context, doc *infraES.VideoDoc) error
	BulkIndexVideos(ctx context.Context, videos []model.Video) (success, failed int, err error)
}

// Indexer 把视频目录同步到搜索索引
type Indexer struct {
	sink      Sink
	videoRepo *repository.VideoRepository
	batchSize int
}

func New(sink Sink, videoRepo *repository.VideoRepository) *Indexer {
	return &Indexer{sink: sink, videoRepo: videoRepo, batchSize: defaultBatchSize}
}

// HandleUploaded 处理一条上传事件，事件里已带齐文档字段，不回查数据库
func (i *Indexer) HandleUploaded(ctx context.Context, evt *infraKafka.VideoUploadedEvent) error {
	createdAt := evt.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	doc := &infraES.VideoDoc{
		ID:        evt.VideoID,
		Title:     evt.Title,
		Hashtags:  evt.Hashtags,
		URL:       evt.URL,
		BlobName:  evt.BlobName,
		CreatedAt: createdAt.UTC().Format(time.RFC3339),
	}
	if err := i.sink.IndexVideo(ctx, doc); err != nil {
		return fmt.Errorf("index video %d: %w", evt.VideoID, err)
	}

	logger.Info("Video indexed", zap.Int64("video_id", evt.VideoID))
	return nil
}

// Backfill 分批把已有视频全部写入索引，返回成功与失败条数
func (i *Indexer) Backfill(ctx context.Context) (indexed, failed int, err error) {
	start := time.Now()
	err = i.videoRepo.FindInBatches(i.batchSize, func(videos []model.Video) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, bad, err := i.sink.BulkIndexVideos(ctx, videos)
		indexed += ok
		failed += bad
		return err
	})
	if err != nil {
		return indexed, failed, fmt.Errorf("backfill videos: %w", err)
	}

	logger.Info("Search index backfill completed",
		zap.Int("indexed", indexed),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return indexed, failed, nil
}
