package storage

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const maxExtLen = 10

func prefixFor(kind Kind) string {
	if kind == KindVideo {
		return "videos/"
	}
	return "files/"
}

// MakeKey 生成对象键：前缀 + 随机 UUID + 原文件扩展名，原文件名只保存在元数据里
func MakeKey(kind Kind, filename string) string {
	return prefixFor(kind) + uuid.NewString() + safeExt(filename)
}

func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
