package dto

import "time"

// AddCommentRequest 发表评论请求
type AddCommentRequest struct {
	VideoID int64  `json:"videoId" binding:"required"`
	Comment string `json:"comment" binding:"max=1000"`
}

// CommentAuthor 评论作者，用户不存在时为 Anonymous
type CommentAuthor struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// CommentInfo 评论信息
type CommentInfo struct {
	ID        int64         `json:"id"`
	VideoID   int64         `json:"videoId"`
	UserID    int64         `json:"userId"`
	Comment   string        `json:"comment"`
	CreatedAt time.Time     `json:"createdAt"`
	User      CommentAuthor `json:"user"`
}
