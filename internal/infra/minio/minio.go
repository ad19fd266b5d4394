package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vidshare/internal/config"
	"vidshare/internal/storage"
	"vidshare/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var client *minio.Client

// Init 初始化 MinIO 客户端并确保 Bucket 存在且公开可读
func Init(cfg *config.MinIOConfig) error {
	var err error
	client, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("MinIO bucket created", zap.String("bucket", cfg.Bucket))
	}

	// 前端直接通过对象 URL 播放视频，需要公开读
	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, cfg.Bucket)
	if err := client.SetBucketPolicy(ctx, cfg.Bucket, policy); err != nil {
		return fmt.Errorf("failed to set public policy for %s: %w", cfg.Bucket, err)
	}

	logger.Info("MinIO connected",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
	)

	return nil
}

// Get 获取 MinIO 客户端实例
func Get() *minio.Client {
	return client
}

// Backend 基于 MinIO 的 storage.Backend 实现
type Backend struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewBackend 使用 Init 创建的客户端
func NewBackend(cfg *config.MinIOConfig) *Backend {
	base := cfg.PublicURL
	if base == "" {
		base = GetPublicURL(cfg.Endpoint, cfg.UseSSL, cfg.Bucket, "")
	}
	return &Backend{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(base, "/"),
	}
}

// Put 上传对象，同时写入 Content-Type、Cache-Control 与用户元数据
func (b *Backend) Put(ctx context.Context, key string, r io.Reader, size int64, opts storage.PutOptions) error {
	_, err := b.client.PutObject(ctx, b.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		CacheControl: opts.CacheControl,
		UserMetadata: opts.Metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to upload to minio: %w", err)
	}
	return nil
}

// Stat 读取对象属性
func (b *Backend) Stat(ctx context.Context, key string) (*storage.ObjectInfo, error) {
	info, err := b.client.StatObject(ctx, b.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && (resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey") {
			return nil, storage.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to stat minio object: %w", err)
	}

	return &storage.ObjectInfo{
		BlobName:     key,
		ContentType:  info.ContentType,
		Size:         info.Size,
		LastModified: info.LastModified,
		Metadata:     storage.NormalizeMetadata(info.UserMetadata),
	}, nil
}

// URL 返回对象公开地址
func (b *Backend) URL(key string) string {
	return b.publicURL + "/" + key
}

// GetPublicURL 生成公开访问 URL（需要 Bucket 设置为 public-read）
func GetPublicURL(endpoint string, useSSL bool, bucket, objectName string) string {
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, bucket, objectName)
}
