package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"vidshare/internal/config"
	"vidshare/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// TopicVideoUploaded 视频上传完成事件的 topic 配置键
const TopicVideoUploaded = "video_uploaded"

var producer *kafka.Writer

// VideoUploadedEvent 视频入库后发布的事件
type VideoUploadedEvent struct {
	VideoID   int64     `json:"video_id"`
	Title     string    `json:"title"`
	Hashtags  string    `json:"hashtags"`
	URL       string    `json:"url"`
	BlobName  string    `json:"blob_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Key 同一视频的事件落在同一分区
func (e *VideoUploadedEvent) Key() []byte {
	return []byte("video-" + strconv.FormatInt(e.VideoID, 10))
}

// DecodeVideoUploaded 解析事件消息体
func DecodeVideoUploaded(value []byte) (*VideoUploadedEvent, error) {
	var evt VideoUploadedEvent
	if err := json.Unmarshal(value, &evt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal video uploaded event: %w", err)
	}
	if evt.VideoID == 0 {
		return nil, fmt.Errorf("video uploaded event without video_id")
	}
	return &evt, nil
}

// InitProducer 初始化 Kafka 生产者
func InitProducer(cfg *config.KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("kafka brokers is empty")
	}

	producer = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	logger.Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
	)

	return nil
}

// Publisher 将上传事件写入 Kafka
type Publisher struct {
	topic string
}

// NewPublisher 使用 InitProducer 创建的 writer
func NewPublisher(topic string) *Publisher {
	return &Publisher{topic: topic}
}

// PublishVideoUploaded 发送视频上传事件
func (p *Publisher) PublishVideoUploaded(ctx context.Context, evt *VideoUploadedEvent) error {
	if producer == nil {
		return fmt.Errorf("kafka producer not initialized")
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal video uploaded event: %w", err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   evt.Key(),
		Value: payload,
	}

	if err := producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send video uploaded event: %w", err)
	}

	logger.Info("Video uploaded event sent",
		zap.Int64("video_id", evt.VideoID),
		zap.String("topic", p.topic),
	)

	return nil
}

// CloseProducer 关闭生产者
func CloseProducer() error {
	if producer == nil {
		return nil
	}
	logger.Info("Kafka producer closed")
	return producer.Close()
}
