package dto

import "vidshare/internal/model"

// SignupRequest 注册请求
type SignupRequest struct {
	Username string `json:"username" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=1,max=255"`
	Role     string `json:"role" binding:"omitempty,oneof=user admin"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginData 登录成功返回的 Token 与用户信息
type LoginData struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}
