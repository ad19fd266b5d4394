package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// FakeObjectStore 单个 bucket 的 path-style S3 接口，够 minio-go 与 aws-sdk-go-v2 的
// HEAD/PUT bucket、PUT/HEAD object 使用
type FakeObjectStore struct {
	*httptest.Server
	Bucket string

	mu       sync.Mutex
	objects  map[string]http.Header
	requests []string
}

func NewFakeObjectStore(t *testing.T, bucket string) *FakeObjectStore {
	t.Helper()
	f := &FakeObjectStore{Bucket: bucket, objects: make(map[string]http.Header)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// Host 不带 scheme 的地址，minio-go 的 endpoint 格式
func (f *FakeObjectStore) Host() string {
	return strings.TrimPrefix(f.URL, "http://")
}

// Seed 预置一个对象，header 里的 X-Amz-Meta-* 会在 HEAD 时原样返回
func (f *FakeObjectStore) Seed(key string, header http.Header) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = header.Clone()
}

// Object 返回写入对象时收到的请求头
func (f *FakeObjectStore) Object(key string) (http.Header, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.objects[key]
	return h, ok
}

// Requests 按顺序记录的 "METHOD /path"
func (f *FakeObjectStore) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// Saw 是否收到过该请求，路径末尾的 / 忽略
func (f *FakeObjectStore) Saw(method, path string) bool {
	want := method + " " + strings.TrimSuffix(path, "/")
	for _, r := range f.Requests() {
		if strings.TrimSuffix(r, "/") == want {
			return true
		}
	}
	return false
}

func (f *FakeObjectStore) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if bucket != f.Bucket {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch {
	case key == "" && r.Method == http.MethodGet && r.URL.Query().Has("location"):
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/"></LocationConstraint>`)
	case key == "" && r.Method == http.MethodPut && r.URL.Query().Has("policy"):
		w.WriteHeader(http.StatusNoContent)
	case key == "":
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		h := r.Header.Clone()
		size := int64(len(body))
		if decoded := r.Header.Get("X-Amz-Decoded-Content-Length"); decoded != "" {
			size, _ = strconv.ParseInt(decoded, 10, 64)
		}
		h.Set("Content-Length", strconv.FormatInt(size, 10))
		f.objects[key] = h
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodHead:
		obj, ok := f.objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		for k, v := range obj {
			if strings.HasPrefix(k, "X-Amz-Meta-") {
				w.Header()[k] = v
			}
		}
		length := obj.Get("Content-Length")
		if length == "" {
			length = "0"
		}
		w.Header().Set("Content-Length", length)
		w.Header().Set("Content-Type", obj.Get("Content-Type"))
		w.Header().Set("Last-Modified", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Format(http.TimeFormat))
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
