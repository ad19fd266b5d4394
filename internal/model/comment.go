package model

import "time"

// Comment 评论模型
type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:评论ID" json:"id"`
	VideoID   int64     `gorm:"not null;index:idx_comments_video_id;index:idx_composite_video_created,priority:1;comment:被评论视频ID" json:"videoId"`
	UserID    int64     `gorm:"not null;index:idx_comments_user_id;comment:评论用户ID" json:"userId"`
	Comment   string    `gorm:"type:text;not null;comment:评论内容" json:"comment"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_composite_video_created,priority:2;comment:评论时间" json:"createdAt"`
}

func (Comment) TableName() string {
	return "comments"
}
