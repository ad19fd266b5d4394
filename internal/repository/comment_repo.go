package repository

import (
	"vidshare/internal/model"

	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

// ListByVideoIDs 一次查询多个视频的评论，按发表时间正序
func (r *CommentRepository) ListByVideoIDs(videoIDs []int64) ([]model.Comment, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}
	var comments []model.Comment
	err := r.db.Where("video_id IN ?", videoIDs).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	return comments, err
}
