package elasticsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"vidshare/internal/config"
	"vidshare/pkg/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// ErrNotInitialized 未调用 Init 或已 Close
var ErrNotInitialized = errors.New("elasticsearch client not initialized")

var (
	client      *elasticsearch.Client
	videosIndex = "videos"
)

// ResponseError ES 返回的非 2xx 响应，Type/Reason 取自响应体的 error 字段
type ResponseError struct {
	Op     string
	Status int
	Type   string
	Reason string
}

func (e *ResponseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("elasticsearch %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("elasticsearch %s: status %d: %s: %s", e.Op, e.Status, e.Type, e.Reason)
}

// checkResponse resp.IsError 时读出错误体并转成 *ResponseError
func checkResponse(op string, resp *esapi.Response) error {
	if !resp.IsError() {
		return nil
	}
	rerr := &ResponseError{Op: op, Status: resp.StatusCode}

	var body struct {
		Error json.RawMessage `json:"error"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if json.Unmarshal(raw, &body) != nil || len(body.Error) == 0 {
		return rerr
	}
	var detail struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}
	if json.Unmarshal(body.Error, &detail) == nil {
		rerr.Type, rerr.Reason = detail.Type, detail.Reason
	} else {
		// 老版本 error 是字符串
		var s string
		if json.Unmarshal(body.Error, &s) == nil {
			rerr.Reason = s
		}
	}
	return rerr
}

// Init 初始化 Elasticsearch 客户端，视频索引名取自 cfg.Index["videos"]
func Init(cfg *config.ElasticsearchConfig) error {
	hosts := make([]string, 0, len(cfg.Hosts))
	for _, h := range cfg.Hosts {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if !strings.HasPrefix(h, "http") {
			h = "http://" + h
		}
		hosts = append(hosts, h)
	}

	if len(hosts) == 0 {
		return fmt.Errorf("elasticsearch hosts is empty")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     hosts,
		RetryOnStatus: []int{502, 503, 504},
		MaxRetries:    3,
		RetryBackoff:  func(i int) time.Duration { return time.Duration(i) * time.Second },
	})
	if err != nil {
		return fmt.Errorf("create elasticsearch client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := es.Ping(es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ping elasticsearch: %w", err)
	}
	defer resp.Body.Close()
	if err := checkResponse("ping", resp); err != nil {
		return err
	}

	client = es
	videosIndex = cfg.VideosIndex()
	logger.Info("Elasticsearch connected", zap.Strings("hosts", hosts), zap.String("videos_index", videosIndex))
	return nil
}

func searchVideos(ctx context.Context, body io.Reader) (*esapi.Response, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}
	return client.Search(
		client.Search.WithContext(ctx),
		client.Search.WithIndex(videosIndex),
		client.Search.WithBody(body),
	)
}

func indexVideoDoc(ctx context.Context, id string, body io.Reader) (*esapi.Response, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}
	return client.Index(
		videosIndex,
		body,
		client.Index.WithContext(ctx),
		client.Index.WithDocumentID(id),
	)
}

func createVideosIndex(ctx context.Context, body io.Reader) (*esapi.Response, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}
	return client.Indices.Create(
		videosIndex,
		client.Indices.Create.WithContext(ctx),
		client.Indices.Create.WithBody(body),
	)
}

func videosIndexExists(ctx context.Context) (bool, error) {
	if client == nil {
		return false, ErrNotInitialized
	}
	resp, err := client.Indices.Exists(
		[]string{videosIndex},
		client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case 200:
		return true, nil
	case 404:
		return false, nil
	default:
		return false, checkResponse("index exists", resp)
	}
}

// bulk 请求体里每条 action 自带 _index
func bulk(ctx context.Context, body io.Reader) (*esapi.Response, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}
	return client.Bulk(
		body,
		client.Bulk.WithContext(ctx),
	)
}

// VideosIndex 返回视频索引名
func VideosIndex() string {
	return videosIndex
}

// Close 关闭连接
func Close() error {
	client = nil
	logger.Info("Elasticsearch client closed")
	return nil
}
