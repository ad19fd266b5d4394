package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"vidshare/internal/storage"
)

// StoredBlob 内存后端里的一个对象
type StoredBlob struct {
	Data []byte
	Opts storage.PutOptions
}

// MemoryBackend 实现 storage.Backend，记录所有写入
type MemoryBackend struct {
	mu      sync.Mutex
	Objects map[string]StoredBlob
	Puts    int
	PutErr  error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{Objects: make(map[string]StoredBlob)}
}

func (m *MemoryBackend) Put(ctx context.Context, key string, r io.Reader, _ int64, opts storage.PutOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Puts++
	if m.PutErr != nil {
		return m.PutErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.Objects[key] = StoredBlob{Data: data, Opts: opts}
	return nil
}

func (m *MemoryBackend) Stat(_ context.Context, key string) (*storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.Objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.ObjectInfo{
		BlobName:     key,
		ContentType:  obj.Opts.ContentType,
		Size:         int64(len(obj.Data)),
		LastModified: time.Now(),
		Metadata:     obj.Opts.Metadata,
	}, nil
}

func (m *MemoryBackend) URL(key string) string {
	return fmt.Sprintf("https://blob.test/vidshare/%s", key)
}

// Count 已写入对象数
func (m *MemoryBackend) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Objects)
}
