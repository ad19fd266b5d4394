package model

import "time"

// Video 视频模型，创建后不可修改
type Video struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:视频标识" json:"id"`
	Title     string    `gorm:"size:200;not null;comment:视频标题" json:"title"`
	URL       string    `gorm:"size:1024;not null;comment:存储地址" json:"url"`
	Hashtags  string    `gorm:"size:1000;comment:话题标签" json:"hashtags"`
	BlobName  string    `gorm:"size:512;comment:对象存储键" json:"blobName"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_videos_created_at;comment:创建时间" json:"createdAt"`
}

func (Video) TableName() string {
	return "videos"
}
