package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"vidshare/internal/config"
	"vidshare/internal/storage"
	"vidshare/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// Backend AWS S3 及兼容服务（DigitalOcean Spaces、R2 等）的 storage.Backend 实现
type Backend struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// New 创建客户端并确保 Bucket 存在
func New(ctx context.Context, cfg *config.S3Config) (*Backend, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	publicURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
		publicURL = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	b := &Backend{client: client, bucket: cfg.Bucket, publicURL: publicURL}
	if err := b.ensureBucket(ctx); err != nil {
		return nil, err
	}

	logger.Info("S3 storage initialized",
		zap.String("bucket", cfg.Bucket),
		zap.String("region", cfg.Region),
		zap.String("endpoint", cfg.Endpoint),
	)
	return b, nil
}

func (b *Backend) ensureBucket(ctx context.Context) error {
	if _, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)}); err == nil {
		return nil
	}
	if _, err := b.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(b.bucket)}); err != nil {
		return fmt.Errorf("bucket %q does not exist and could not be created: %w", b.bucket, err)
	}
	logger.Info("S3 bucket created", zap.String("bucket", b.bucket))
	return nil
}

// Put 上传对象
func (b *Backend) Put(ctx context.Context, key string, r io.Reader, size int64, opts storage.PutOptions) error {
	input := &s3.PutObjectInput{
		Bucket:       aws.String(b.bucket),
		Key:          aws.String(key),
		Body:         r,
		ContentType:  aws.String(opts.ContentType),
		CacheControl: aws.String(opts.CacheControl),
		Metadata:     opts.Metadata,
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := b.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// Stat 读取对象属性
func (b *Backend) Stat(ctx context.Context, key string) (*storage.ObjectInfo, error) {
	out, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		var apiErr smithy.APIError
		if errors.As(err, &notFound) || (errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound") {
			return nil, storage.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to head S3 object: %w", err)
	}

	info := &storage.ObjectInfo{
		BlobName:    key,
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
		Metadata:    storage.NormalizeMetadata(out.Metadata),
	}
	if out.LastModified != nil {
		info.LastModified = *out.LastModified
	}
	return info, nil
}

// URL 返回对象公开地址
func (b *Backend) URL(key string) string {
	return b.publicURL + "/" + key
}
