package dto

import (
	"vidshare/internal/model"
	"vidshare/internal/storage"
)

// UploadVideoRequest 上传视频的表单字段，文件在 video 字段
type UploadVideoRequest struct {
	Title    string `form:"title" binding:"required,max=200"`
	Hashtags string `form:"hashtags" binding:"max=1000"`
}

// UploadVideoData 上传成功返回
type UploadVideoData struct {
	Success     bool                  `json:"success"`
	Message     string                `json:"message"`
	Video       *model.Video          `json:"video"`
	FileDetails *storage.UploadResult `json:"fileDetails"`
}

// VideoWithComments 视频及其评论
type VideoWithComments struct {
	model.Video
	Comments []CommentInfo `json:"comments"`
}
