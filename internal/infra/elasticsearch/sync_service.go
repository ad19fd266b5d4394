package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vidshare/internal/model"
	"vidshare/pkg/logger"

	"go.uber.org/zap"
)

// VideoDoc ES 视频文档结构
type VideoDoc struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Hashtags  string `json:"hashtags"`
	URL       string `json:"url"`
	BlobName  string `json:"blob_name"`
	CreatedAt string `json:"created_at"`
}

// NewVideoDoc 由视频记录构造文档
func NewVideoDoc(v *model.Video) *VideoDoc {
	return &VideoDoc{
		ID:        v.ID,
		Title:     v.Title,
		Hashtags:  v.Hashtags,
		URL:       v.URL,
		BlobName:  v.BlobName,
		CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// SyncVideo 同步单个视频到 ES
func SyncVideo(ctx context.Context, doc *VideoDoc) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	resp, err := indexVideoDoc(ctx, strconv.FormatInt(doc.ID, 10), bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkResponse("index document", resp); err != nil {
		return err
	}

	logger.Debug("Video synced to ES", zap.Int64("video_id", doc.ID))
	return nil
}

// BulkSyncVideos 批量同步视频到 ES
func BulkSyncVideos(ctx context.Context, videos []model.Video) (success, failed int, err error) {
	indexName := VideosIndex()

	var buf strings.Builder
	for i := range videos {
		docBody, err := json.Marshal(NewVideoDoc(&videos[i]))
		if err != nil {
			return 0, len(videos), err
		}

		fmt.Fprintf(&buf, `{"index":{"_index":"%s","_id":"%d"}}`, indexName, videos[i].ID)
		buf.WriteString("\n")
		buf.Write(docBody)
		buf.WriteString("\n")
	}

	if buf.Len() == 0 {
		return 0, 0, nil
	}

	resp, err := bulk(ctx, strings.NewReader(buf.String()))
	if err != nil {
		return 0, len(videos), err
	}
	defer resp.Body.Close()

	if err := checkResponse("bulk", resp); err != nil {
		return 0, len(videos), err
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				Status int `json:"status"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return 0, len(videos), fmt.Errorf("decode bulk response: %w", err)
	}

	for _, item := range bulkResp.Items {
		if item.Index.Status >= 200 && item.Index.Status < 300 {
			success++
		} else {
			failed++
		}
	}

	logger.Info("Bulk sync to ES completed", zap.Int("success", success), zap.Int("failed", failed))
	return success, failed, nil
}

// VideoSearcher 按关键字检索视频 ID
type VideoSearcher struct{}

// SearchVideoIDs 返回按相关度排序的视频 ID
func (VideoSearcher) SearchVideoIDs(ctx context.Context, keyword string, limit int) ([]int64, error) {
	query := map[string]interface{}{
		"size":    limit,
		"_source": []string{"id"},
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     keyword,
				"fields":    []string{"title^2", "hashtags"},
				"fuzziness": "AUTO",
			},
		},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"created_at": map[string]string{"order": "desc"}},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	resp, err := searchVideos(ctx, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResponse("search", resp); err != nil {
		return nil, err
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source struct {
					ID int64 `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]int64, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		ids = append(ids, hit.Source.ID)
	}
	return ids, nil
}

// VideoIndexer 以方法形式暴露 SyncVideo / BulkSyncVideos，供 worker 注入
type VideoIndexer struct{}

func (VideoIndexer) IndexVideo(ctx context.Context, doc *VideoDoc) error {
	return SyncVideo(ctx, doc)
}

func (VideoIndexer) BulkIndexVideos(ctx context.Context, videos []model.Video) (int, int, error) {
	return BulkSyncVideos(ctx, videos)
}
