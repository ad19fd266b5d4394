package repository

import (
	"strings"

	"vidshare/internal/model"

	"gorm.io/gorm"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// GetByID 根据 ID 获取视频
func (r *VideoRepository) GetByID(id int64) (*model.Video, error) {
	var video model.Video
	err := r.db.Where("id = ?", id).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// Create 创建视频记录
func (r *VideoRepository) Create(video *model.Video) error {
	return r.db.Create(video).Error
}

// List 全部视频，按创建时间倒序
func (r *VideoRepository) List() ([]model.Video, error) {
	var videos []model.Video
	err := r.db.Order("created_at DESC").Order("id DESC").Find(&videos).Error
	return videos, err
}

// GetByIDs 批量查询视频，顺序与 List 一致
func (r *VideoRepository) GetByIDs(ids []int64) ([]model.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var videos []model.Video
	err := r.db.Where("id IN ?", ids).Order("created_at DESC").Order("id DESC").Find(&videos).Error
	return videos, err
}

// Search 标题或话题标签模糊匹配（不区分大小写）
func (r *VideoRepository) Search(keyword string, limit int) ([]model.Video, error) {
	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
	var videos []model.Video
	err := r.db.
		Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(hashtags) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&videos).Error
	return videos, err
}

// FindInBatches 分批遍历全部视频（索引回填用）
func (r *VideoRepository) FindInBatches(batchSize int, fn func(videos []model.Video) error) error {
	var batch []model.Video
	return r.db.Order("id ASC").FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	}).Error
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
