package handler

import (
	"errors"
	"net/http"

	"vidshare/internal/api/dto"
	"vidshare/internal/api/middleware"
	"vidshare/internal/api/response"
	"vidshare/internal/service"
	"vidshare/internal/storage"
	"vidshare/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
	policy      storage.Policy
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService, policy storage.Policy) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService, policy: policy}
}

// Signup 用户注册
// @Summary 用户注册
// @Description 注册新用户账号，邮箱唯一
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "注册信息"
// @Success 201 {object} model.User "注册成功"
// @Failure 400 {object} response.ErrorResponse "邮箱已注册或参数无效"
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	user, err := h.authService.Signup(&req)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	response.Created(c, user)
}

// Login 用户登录
// @Summary 用户登录
// @Description 邮箱 + 密码登录获取 JWT Token
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.LoginData "登录成功"
// @Failure 400 {object} response.ErrorResponse "邮箱或密码错误"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	data, err := h.authService.Login(&req)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	response.OK(c, data)
}

// Profile 获取当前用户信息
// @Summary 获取当前用户信息
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User "获取成功"
// @Failure 401 {object} response.ErrorResponse "未授权"
// @Failure 404 {object} response.ErrorResponse "用户不存在"
// @Router /auth/profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)

	user, err := h.authService.GetProfile(userID)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateProfile PUT /api/auth/update，multipart 表单，file 字段可选
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)

	if !limitBody(c, h.policy.Ceiling(storage.KindGeneric)) {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		if isBodyTooLarge(err) {
			payloadTooLarge(c, h.policy.Ceiling(storage.KindGeneric))
			return
		}
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	var avatar *storage.Object
	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			logger.Error("Open uploaded file failed", zap.Error(err))
			response.InternalError(c, "Failed to read uploaded file")
			return
		}
		defer f.Close()
		avatar = &storage.Object{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case isBodyTooLarge(err):
		payloadTooLarge(c, h.policy.Ceiling(storage.KindGeneric))
		return
	default:
		response.BadRequest(c, "Invalid multipart form")
		return
	}

	data, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req, avatar)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	response.OK(c, data)
}

func handleAuthError(c *gin.Context, err error) {
	if writeStorageError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrEmailExists):
		response.BadRequest(c, "Email is already registered")
	case errors.Is(err, service.ErrUsernameRequired):
		response.BadRequest(c, "Username is required")
	case errors.Is(err, service.ErrInvalidCredential):
		response.BadRequest(c, "Invalid credentials")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, "User not found.")
	default:
		logger.Error("Auth operation failed", zap.Error(err))
		response.InternalError(c, "An unexpected error occurred")
	}
}
