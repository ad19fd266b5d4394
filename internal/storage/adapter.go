package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen 内容嗅探读取的字节数
const sniffLen = 3072

// Adapter 在写入后端之前执行策略校验，并组装 UploadResult
type Adapter struct {
	backend Backend
	policy  Policy
	timeout time.Duration
	now     func() time.Time
	newKey  func(kind Kind, filename string) string
}

// NewAdapter timeout <= 0 时只受调用方 context 约束
func NewAdapter(backend Backend, policy Policy, timeout time.Duration) *Adapter {
	return &Adapter{
		backend: backend,
		policy:  policy,
		timeout: timeout,
		now:     time.Now,
		newKey:  MakeKey,
	}
}

// Policy 返回当前生效的上传策略
func (a *Adapter) Policy() Policy {
	return a.policy
}

// Store 校验并写入对象。校验失败时后端不会被调用。
func (a *Adapter) Store(ctx context.Context, obj Object) (*UploadResult, error) {
	if obj.Reader == nil {
		return nil, ErrEmptyFile
	}

	// 大小先于格式检查，超限时不读取任何内容
	if err := a.policy.CheckSize(obj.Size, obj.Kind); err != nil {
		return nil, err
	}

	reader := obj.Reader
	contentType := NormalizeContentType(obj.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		detected, replay, err := sniff(reader)
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		contentType, reader = detected, replay
	}

	if err := a.policy.Validate(obj.Size, contentType, obj.Kind); err != nil {
		return nil, err
	}

	key := a.newKey(obj.Kind, obj.Filename)
	uploadDate := a.now().UTC()
	opts := PutOptions{
		ContentType:  contentType,
		CacheControl: CacheControl,
		Metadata: map[string]string{
			MetaOriginalName: obj.Filename,
			MetaContentType:  contentType,
			MetaUploadDate:   uploadDate.Format(time.RFC3339),
		},
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	if err := a.backend.Put(ctx, key, reader, obj.Size, opts); err != nil {
		return nil, fmt.Errorf("%w: put %s: %v", ErrStorageUnavailable, key, err)
	}

	return &UploadResult{
		URL:          a.backend.URL(key),
		BlobName:     key,
		OriginalName: obj.Filename,
		Size:         obj.Size,
		ContentType:  contentType,
		UploadDate:   uploadDate,
	}, nil
}

// Metadata 读取已存储对象的属性和元数据
func (a *Adapter) Metadata(ctx context.Context, blobName string) (*ObjectInfo, error) {
	info, err := a.backend.Stat(ctx, blobName)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: stat %s: %v", ErrStorageUnavailable, blobName, err)
	}
	return info, nil
}

// sniff 读取开头若干字节识别类型，返回可以从头重放的 reader
func sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, err
	}
	head = head[:n]
	detected := mimetype.Detect(head)
	return NormalizeContentType(detected.String()), io.MultiReader(bytes.NewReader(head), r), nil
}
