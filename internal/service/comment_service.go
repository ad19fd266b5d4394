package service

import (
	"errors"
	"strings"

	"vidshare/internal/api/dto"
	"vidshare/internal/model"
	"vidshare/internal/repository"

	"gorm.io/gorm"
)

var ErrEmptyComment = errors.New("comment must not be empty")

type CommentService struct {
	commentRepo *repository.CommentRepository
	videoRepo   *repository.VideoRepository
}

func NewCommentService(commentRepo *repository.CommentRepository, videoRepo *repository.VideoRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, videoRepo: videoRepo}
}

// AddComment 发表评论，空白内容在访问数据库之前被拒绝
func (s *CommentService) AddComment(userID int64, req *dto.AddCommentRequest) (*model.Comment, error) {
	text := strings.TrimSpace(req.Comment)
	if text == "" {
		return nil, ErrEmptyComment
	}

	if _, err := s.videoRepo.GetByID(req.VideoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	comment := &model.Comment{
		VideoID: req.VideoID,
		UserID:  userID,
		Comment: text,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	return comment, nil
}
