package service

import (
	"errors"
	"net/url"
	"strings"

	"vidshare/internal/api/dto"
	"vidshare/internal/model"
	"vidshare/internal/repository"
	"vidshare/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AnonymousUsername 评论作者查不到时显示的名字
const AnonymousUsername = "Anonymous"

var ErrVideoNotFound = errors.New("video not found")

type VideoService struct {
	videoRepo   *repository.VideoRepository
	commentRepo *repository.CommentRepository
	userRepo    *repository.UserRepository
}

func NewVideoService(videoRepo *repository.VideoRepository, commentRepo *repository.CommentRepository, userRepo *repository.UserRepository) *VideoService {
	return &VideoService{videoRepo: videoRepo, commentRepo: commentRepo, userRepo: userRepo}
}

// ListVideos 所有视频及其评论，按创建时间倒序
func (s *VideoService) ListVideos() ([]dto.VideoWithComments, error) {
	videos, err := s.videoRepo.List()
	if err != nil {
		return nil, err
	}
	return s.withComments(videos)
}

// GetVideoWithComments 单个视频详情，相对 URL 以 baseURL 补全
func (s *VideoService) GetVideoWithComments(videoID int64, baseURL string) (*dto.VideoWithComments, error) {
	video, err := s.videoRepo.GetByID(videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	video.URL = AbsoluteURL(video.URL, baseURL)

	list, err := s.withComments([]model.Video{*video})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// withComments 评论与作者各一次 IN 查询
func (s *VideoService) withComments(videos []model.Video) ([]dto.VideoWithComments, error) {
	result := make([]dto.VideoWithComments, len(videos))
	if len(videos) == 0 {
		return result, nil
	}

	videoIDs := make([]int64, len(videos))
	for i := range videos {
		videoIDs[i] = videos[i].ID
	}

	comments, err := s.commentRepo.ListByVideoIDs(videoIDs)
	if err != nil {
		return nil, err
	}

	names := s.authorNames(comments)

	byVideo := make(map[int64][]dto.CommentInfo, len(videos))
	for _, c := range comments {
		name, ok := names[c.UserID]
		if !ok {
			name = AnonymousUsername
		}
		byVideo[c.VideoID] = append(byVideo[c.VideoID], dto.CommentInfo{
			ID:        c.ID,
			VideoID:   c.VideoID,
			UserID:    c.UserID,
			Comment:   c.Comment,
			CreatedAt: c.CreatedAt,
			User:      dto.CommentAuthor{ID: c.UserID, Username: name},
		})
	}

	for i := range videos {
		list := byVideo[videos[i].ID]
		if list == nil {
			list = []dto.CommentInfo{}
		}
		result[i] = dto.VideoWithComments{Video: videos[i], Comments: list}
	}
	return result, nil
}

// authorNames 查询失败不影响整个响应，作者按匿名处理
func (s *VideoService) authorNames(comments []model.Comment) map[int64]string {
	names := make(map[int64]string)
	if len(comments) == 0 {
		return names
	}

	seen := make(map[int64]struct{}, len(comments))
	ids := make([]int64, 0, len(comments))
	for _, c := range comments {
		if _, ok := seen[c.UserID]; ok {
			continue
		}
		seen[c.UserID] = struct{}{}
		ids = append(ids, c.UserID)
	}

	users, err := s.userRepo.GetByIDs(ids)
	if err != nil {
		logger.Warn("Failed to load comment authors", zap.Int("count", len(ids)), zap.Error(err))
		return names
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names
}

// AbsoluteURL 将相对地址解析为 baseURL 下的绝对地址，已是 http(s) 的原样返回
func AbsoluteURL(raw, baseURL string) string {
	if raw == "" || baseURL == "" || strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return base.ResolveReference(ref).String()
}
