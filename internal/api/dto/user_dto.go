package dto

import (
	"vidshare/internal/model"
	"vidshare/internal/storage"
)

// UpdateProfileRequest 资料更新（multipart 表单），空字段保持原值
type UpdateProfileRequest struct {
	Username string `form:"username" binding:"max=255"`
	Email    string `form:"email" binding:"omitempty,email,max=255"`
	Password string `form:"password" binding:"max=255"`
	Bio      string `form:"bio" binding:"max=2000"`
	Location string `form:"location" binding:"max=255"`
}

// UpdateProfileData 资料更新结果
type UpdateProfileData struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    *model.User `json:"user"`
	// File 本次上传的文件信息，未上传时省略
	File *storage.UploadResult `json:"file,omitempty"`
}
