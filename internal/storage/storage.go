// Package storage validates uploads against the size and format policy and
// writes them to an object store backend under generated keys.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// Kind 上传对象的类别，决定大小上限、格式校验和键前缀
type Kind string

const (
	KindVideo   Kind = "video"
	KindGeneric Kind = "generic"
)

const CacheControl = "public, max-age=31536000"

// 写入对象时附带的用户元数据键
const (
	MetaOriginalName = "originalName"
	MetaContentType  = "contentType"
	MetaUploadDate   = "uploadDate"
)

var metaKeys = []string{MetaOriginalName, MetaContentType, MetaUploadDate}

// NormalizeMetadata 后端返回的元数据键大小写不一（MinIO 首字母大写，S3 全小写），
// 统一还原成写入时的键名；未知键原样保留
func NormalizeMetadata(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		key := k
		for _, want := range metaKeys {
			if strings.EqualFold(k, want) {
				key = want
				break
			}
		}
		out[key] = v
	}
	return out
}

var (
	ErrEmptyFile          = errors.New("file is empty")
	ErrPayloadTooLarge    = errors.New("file size exceeds limit")
	ErrUnsupportedFormat  = errors.New("unsupported video format")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrObjectNotFound     = errors.New("object not found")
)

// Object 一次待写入的上传
type Object struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
	Kind        Kind
}

// UploadResult 成功写入后的存储信息，是创建目录记录的唯一输入
type UploadResult struct {
	URL          string    `json:"url"`
	BlobName     string    `json:"blobName"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType"`
	UploadDate   time.Time `json:"uploadDate"`
}

// PutOptions 写入对象时的 HTTP 头和用户元数据
type PutOptions struct {
	ContentType  string
	CacheControl string
	Metadata     map[string]string
}

// ObjectInfo 对象属性与用户元数据
type ObjectInfo struct {
	BlobName     string            `json:"blobName"`
	ContentType  string            `json:"contentType"`
	Size         int64             `json:"contentLength"`
	LastModified time.Time         `json:"lastModified"`
	Metadata     map[string]string `json:"metadata"`
}

// Backend 对象存储后端（MinIO / S3）
type Backend interface {
	// Put 写入对象，size 为 -1 时表示未知长度
	Put(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) error
	// Stat 读取对象属性，对象不存在时返回 ErrObjectNotFound
	Stat(ctx context.Context, key string) (*ObjectInfo, error)
	// URL 返回对象的公开访问地址
	URL(key string) string
}
