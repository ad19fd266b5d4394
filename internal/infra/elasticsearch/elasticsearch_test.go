package elasticsearch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"vidshare/internal/config"
	"vidshare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	body   string
}

// fakeCluster 模拟 ES 的最小 HTTP 行为
func fakeCluster(t *testing.T, indexExists bool) (*httptest.Server, func() []recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recorded{method: r.Method, path: r.URL.Path, body: string(body)})
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodHead && r.URL.Path == "/":
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodHead && r.URL.Path == "/clips":
			if indexExists {
				w.WriteHeader(http.StatusOK)
			} else {
				w.WriteHeader(http.StatusNotFound)
			}
		case r.Method == http.MethodPut && r.URL.Path == "/clips":
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		case strings.HasPrefix(r.URL.Path, "/clips/_doc/"):
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"result":"created"}`))
		case r.URL.Path == "/_bulk":
			_, _ = w.Write([]byte(`{"errors":true,"items":[{"index":{"status":201}},{"index":{"status":400}}]}`))
		case r.URL.Path == "/clips/_search":
			_, _ = w.Write([]byte(`{"hits":{"hits":[{"_source":{"id":7}},{"_source":{"id":3}}]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(func() {
		srv.Close()
		_ = Close()
	})

	require.NoError(t, Init(&config.ElasticsearchConfig{
		Hosts: []string{srv.URL},
		Index: map[string]string{"videos": "clips"},
	}))

	return srv, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), reqs...)
	}
}

func TestEnsureVideosIndex(t *testing.T) {
	_, requests := fakeCluster(t, false)

	created, err := EnsureVideosIndex(context.Background())
	require.NoError(t, err)
	assert.True(t, created)

	last := requests()[len(requests())-1]
	assert.Equal(t, http.MethodPut, last.method)
	assert.Contains(t, last.body, `"hashtags"`)
}

func TestEnsureVideosIndex_Exists(t *testing.T) {
	fakeCluster(t, true)

	created, err := EnsureVideosIndex(context.Background())
	require.NoError(t, err)
	assert.False(t, created)
}

func TestSyncVideo(t *testing.T) {
	_, requests := fakeCluster(t, true)

	v := &model.Video{ID: 5, Title: "Surf", Hashtags: "#sea", CreatedAt: time.Now()}
	require.NoError(t, SyncVideo(context.Background(), NewVideoDoc(v)))

	last := requests()[len(requests())-1]
	assert.Equal(t, "/clips/_doc/5", last.path)
	assert.Contains(t, last.body, `"title":"Surf"`)
}

func TestBulkSyncVideos(t *testing.T) {
	_, requests := fakeCluster(t, true)

	success, failed, err := BulkSyncVideos(context.Background(), []model.Video{
		{ID: 1, Title: "a"},
		{ID: 2, Title: "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, success)
	assert.Equal(t, 1, failed)

	last := requests()[len(requests())-1]
	assert.Equal(t, 4, strings.Count(last.body, "\n"))
	assert.Contains(t, last.body, `"_index":"clips"`)
}

func TestBulkSyncVideos_Empty(t *testing.T) {
	success, failed, err := BulkSyncVideos(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, success)
	assert.Zero(t, failed)
}

func TestSearchVideoIDs(t *testing.T) {
	_, requests := fakeCluster(t, true)

	ids, err := VideoSearcher{}.SearchVideoIDs(context.Background(), "surf", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 3}, ids)

	last := requests()[len(requests())-1]
	assert.Contains(t, last.body, `"query":"surf"`)
}

func TestSearch_NotInitialized(t *testing.T) {
	_ = Close()
	_, err := VideoSearcher{}.SearchVideoIDs(context.Background(), "x", 5)
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = EnsureVideosIndex(context.Background())
	assert.ErrorIs(t, err, ErrNotInitialized)
}

// failingCluster ping 正常，其余请求都按 status 返回 body
func failingCluster(t *testing.T, status int, body string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(func() {
		srv.Close()
		_ = Close()
	})
	require.NoError(t, Init(&config.ElasticsearchConfig{Hosts: []string{srv.URL}}))
}

func TestSearchVideoIDs_ResponseError(t *testing.T) {
	failingCluster(t, http.StatusBadRequest,
		`{"error":{"type":"parsing_exception","reason":"unknown query [multi_matc]"},"status":400}`)

	_, err := VideoSearcher{}.SearchVideoIDs(context.Background(), "surf", 10)

	var rerr *ResponseError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "search", rerr.Op)
	assert.Equal(t, http.StatusBadRequest, rerr.Status)
	assert.Equal(t, "parsing_exception", rerr.Type)
	assert.Equal(t, "unknown query [multi_matc]", rerr.Reason)
	assert.Contains(t, err.Error(), "parsing_exception")
}

func TestSyncVideo_ResponseErrorWithoutBody(t *testing.T) {
	failingCluster(t, http.StatusTooManyRequests, ``)

	err := SyncVideo(context.Background(), NewVideoDoc(&model.Video{ID: 1}))

	var rerr *ResponseError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "index document", rerr.Op)
	assert.Equal(t, http.StatusTooManyRequests, rerr.Status)
	assert.Empty(t, rerr.Type)
}

func TestEnsureVideosIndex_ExistsCheckFails(t *testing.T) {
	failingCluster(t, http.StatusForbidden, ``)

	_, err := EnsureVideosIndex(context.Background())

	var rerr *ResponseError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusForbidden, rerr.Status)
}
