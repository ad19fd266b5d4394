package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"vidshare/internal/infra/kafka"
	"vidshare/internal/repository"
	"vidshare/internal/storage"
	"vidshare/internal/testutil"
	"vidshare/pkg/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const mib = 1 << 20

// env 一套基于内存 SQLite 和内存对象存储的服务依赖
type env struct {
	db       *gorm.DB
	users    *repository.UserRepository
	videos   *repository.VideoRepository
	comments *repository.CommentRepository
	backend  *testutil.MemoryBackend
	store    *storage.Adapter
	tokens   *utils.TokenManager
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	backend := testutil.NewMemoryBackend()
	tokens, err := utils.NewTokenManager("test-secret", time.Hour, "vidshare-test")
	require.NoError(t, err)

	return &env{
		db:       db,
		users:    repository.NewUserRepository(db),
		videos:   repository.NewVideoRepository(db),
		comments: repository.NewCommentRepository(db),
		backend:  backend,
		store:    storage.NewAdapter(backend, storage.NewPolicy(500*mib, 5*mib), time.Minute),
		tokens:   tokens,
	}
}

// videoFile 声明大小可以与实际内容不同，用于模拟超大文件
func videoFile(name, contentType string, size int64) storage.Object {
	return storage.Object{
		Reader:      bytes.NewReader([]byte(strings.Repeat("v", 64))),
		Filename:    name,
		ContentType: contentType,
		Size:        size,
	}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*kafka.VideoUploadedEvent
	err    error
}

func (f *fakePublisher) PublishVideoUploaded(_ context.Context, evt *kafka.VideoUploadedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, evt)
	return nil
}

type fakeSearcher struct {
	ids []int64
	err error
}

func (f fakeSearcher) SearchVideoIDs(context.Context, string, int) ([]int64, error) {
	return f.ids, f.err
}

var errBoom = errors.New("boom")
