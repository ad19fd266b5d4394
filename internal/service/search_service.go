package service

import (
	"context"
	"strings"
	"time"

	"vidshare/internal/model"
	"vidshare/internal/repository"
	"vidshare/pkg/logger"

	"go.uber.org/zap"
)

const searchLimit = 50

// VideoSearcher 全文检索后端
type VideoSearcher interface {
	SearchVideoIDs(ctx context.Context, keyword string, limit int) ([]int64, error)
}

type SearchService struct {
	searcher  VideoSearcher
	videoRepo *repository.VideoRepository
}

// NewSearchService searcher 为 nil 时直接走数据库
func NewSearchService(searcher VideoSearcher, videoRepo *repository.VideoRepository) *SearchService {
	return &SearchService{searcher: searcher, videoRepo: videoRepo}
}

// SearchVideos 搜索视频（ES 优先，失败则降级到 DB）
func (s *SearchService) SearchVideos(ctx context.Context, keyword string) ([]model.Video, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []model.Video{}, nil
	}

	if s.searcher != nil {
		videos, err := s.searchFromES(ctx, keyword)
		if err == nil {
			return videos, nil
		}
		logger.Warn("ES search failed, fallback to DB", zap.String("q", keyword), zap.Error(err))
	}

	videos, err := s.videoRepo.Search(keyword, searchLimit)
	if err != nil {
		return nil, err
	}
	if videos == nil {
		videos = []model.Video{}
	}
	return videos, nil
}

func (s *SearchService) searchFromES(ctx context.Context, keyword string) ([]model.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ids, err := s.searcher.SearchVideoIDs(ctx, keyword, searchLimit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.Video{}, nil
	}

	found, err := s.videoRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	// 保持 ES 的相关度顺序，索引中残留的已不存在的 ID 被跳过
	byID := make(map[int64]model.Video, len(found))
	for _, v := range found {
		byID[v.ID] = v
	}
	videos := make([]model.Video, 0, len(ids))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			videos = append(videos, v)
		}
	}
	return videos, nil
}
