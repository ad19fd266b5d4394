package kafka

import (
	"context"
	"time"

	"vidshare/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// VideoUploadedHandler 处理上传事件的回调函数
type VideoUploadedHandler func(ctx context.Context, evt *VideoUploadedEvent) error

// StartVideoUploadedConsumer 启动上传事件消费者（阻塞，需在 goroutine 中运行）
// ctx 取消后会自动停止
func StartVideoUploadedConsumer(ctx context.Context, brokers []string, topic, groupID string, handler VideoUploadedHandler) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error("Failed to close kafka consumer", zap.Error(err))
		}
		logger.Info("Kafka video uploaded consumer stopped")
	}()

	logger.Info("Kafka video uploaded consumer started",
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

		evt, err := DecodeVideoUploaded(msg.Value)
		if err != nil {
			logger.Error("Skipping malformed event",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			continue
		}

		logger.Info("Received video uploaded event", zap.Int64("video_id", evt.VideoID))

		if err := handler(ctx, evt); err != nil {
			logger.Error("Failed to handle video uploaded event",
				zap.Int64("video_id", evt.VideoID),
				zap.Error(err),
			)
		}
	}
}
