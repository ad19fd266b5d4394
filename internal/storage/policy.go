package storage

import (
	"fmt"
	"mime"
	"strings"

	"github.com/dustin/go-humanize"
)

// DefaultVideoTypes MP4, MPEG, QuickTime, AVI, WMV, WebM
var DefaultVideoTypes = []string{
	"video/mp4",
	"video/mpeg",
	"video/quicktime",
	"video/x-msvideo",
	"video/x-ms-wmv",
	"video/webm",
}

// Policy 上传前的大小与格式约束
type Policy struct {
	MaxVideoSize int64
	MaxFileSize  int64
	videoTypes   map[string]bool
}

func NewPolicy(maxVideoSize, maxFileSize int64) Policy {
	types := make(map[string]bool, len(DefaultVideoTypes))
	for _, t := range DefaultVideoTypes {
		types[t] = true
	}
	return Policy{MaxVideoSize: maxVideoSize, MaxFileSize: maxFileSize, videoTypes: types}
}

// Ceiling 返回该类别允许的最大字节数
func (p Policy) Ceiling(kind Kind) int64 {
	if kind == KindVideo {
		return p.MaxVideoSize
	}
	return p.MaxFileSize
}

// CheckSize 只校验大小，可在读取请求体之前调用
func (p Policy) CheckSize(size int64, kind Kind) error {
	if limit := p.Ceiling(kind); size > limit {
		return fmt.Errorf("%w (%s)", ErrPayloadTooLarge, HumanSize(limit))
	}
	return nil
}

// AllowsVideoType 判断 MIME 类型是否在视频白名单中
func (p Policy) AllowsVideoType(contentType string) bool {
	return p.videoTypes[NormalizeContentType(contentType)]
}

// Validate 完整校验，在任何写入之前执行
func (p Policy) Validate(size int64, contentType string, kind Kind) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if err := p.CheckSize(size, kind); err != nil {
		return err
	}
	if kind == KindVideo && !p.AllowsVideoType(contentType) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, contentType)
	}
	return nil
}

// NormalizeContentType 去掉参数并转小写，"Video/MP4; codecs=x" -> "video/mp4"
func NormalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// HumanSize 错误提示里的紧凑写法，"500 MiB" -> "500MB"
func HumanSize(n int64) string {
	s := humanize.IBytes(uint64(n))
	s = strings.Replace(s, ".0 ", " ", 1)
	return sizeCompactor.Replace(s)
}

var sizeCompactor = strings.NewReplacer(" ", "", "iB", "B")
