package handler

import (
	"errors"
	"strconv"
	"strings"

	"vidshare/internal/api/dto"
	"vidshare/internal/api/middleware"
	"vidshare/internal/api/response"
	"vidshare/internal/service"
	"vidshare/internal/storage"
	"vidshare/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type VideoHandler struct {
	videoService  *service.VideoService
	uploadService *service.UploadService
	searchService *service.SearchService
	store         *storage.Adapter
}

func NewVideoHandler(videoService *service.VideoService, uploadService *service.UploadService, searchService *service.SearchService, store *storage.Adapter) *VideoHandler {
	return &VideoHandler{
		videoService:  videoService,
		uploadService: uploadService,
		searchService: searchService,
		store:         store,
	}
}

// Upload 上传视频（管理员）
// @Summary 上传视频
// @Description 管理员上传视频文件（最大 500MB，mp4/mpeg/mov/avi/wmv/webm）
// @Tags 视频
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param video formData file true "视频文件"
// @Param title formData string true "标题"
// @Param hashtags formData string false "话题标签"
// @Success 201 {object} dto.UploadVideoData "上传成功"
// @Failure 400 {object} response.ErrorResponse "文件过大、格式不支持或缺少字段"
// @Failure 401 {object} response.ErrorResponse "未登录"
// @Failure 403 {object} response.ErrorResponse "非管理员或 token 无效"
// @Failure 503 {object} response.ErrorResponse "对象存储不可用"
// @Router /videos/upload [post]
func (h *VideoHandler) Upload(c *gin.Context) {
	ceiling := h.store.Policy().Ceiling(storage.KindVideo)
	if !limitBody(c, ceiling) {
		return
	}

	var req dto.UploadVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		if isBodyTooLarge(err) {
			payloadTooLarge(c, ceiling)
			return
		}
		response.BadRequest(c, "Title is required")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		response.BadRequest(c, "Title is required")
		return
	}

	fh, err := c.FormFile("video")
	if err != nil {
		if isBodyTooLarge(err) {
			payloadTooLarge(c, ceiling)
			return
		}
		response.BadRequest(c, "Please upload a video file")
		return
	}

	f, err := fh.Open()
	if err != nil {
		logger.Error("Open uploaded file failed", zap.Error(err))
		response.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer f.Close()

	userID, _ := middleware.GetCurrentUserID(c)
	principal := &service.Principal{UserID: userID, Role: middleware.GetCurrentUserRole(c)}

	uploadID := uuid.NewString()
	c.Set(middleware.ContextKeyUploadID, uploadID)
	ctx := service.WithUploadID(c.Request.Context(), uploadID)

	data, err := h.uploadService.UploadVideo(ctx, principal, &req, storage.Object{
		Reader:      f,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	})
	if err != nil {
		handleVideoError(c, err)
		return
	}

	response.Created(c, data)
}

// List GET /api/videos/ 所有视频及评论
// @Summary 视频列表
// @Tags 视频
// @Produce json
// @Success 200 {array} dto.VideoWithComments
// @Router /videos/ [get]
func (h *VideoHandler) List(c *gin.Context) {
	videos, err := h.videoService.ListVideos()
	if err != nil {
		handleVideoError(c, err)
		return
	}
	response.OK(c, videos)
}

// Get GET /api/videos/get?id=
func (h *VideoHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id <= 0 {
		response.NotFound(c, "Video not found")
		return
	}

	video, err := h.videoService.GetVideoWithComments(id, baseURL(c))
	if err != nil {
		handleVideoError(c, err)
		return
	}
	response.OK(c, video)
}

// Search GET /api/videos/search?q=
// @Summary 搜索视频
// @Description 按标题和话题标签搜索（ES 不可用时降级到数据库）
// @Tags 视频
// @Produce json
// @Param q query string true "关键字"
// @Success 200 {array} model.Video
// @Router /videos/search [get]
func (h *VideoHandler) Search(c *gin.Context) {
	videos, err := h.searchService.SearchVideos(c.Request.Context(), c.Query("q"))
	if err != nil {
		handleVideoError(c, err)
		return
	}
	response.OK(c, videos)
}

// Metadata GET /api/videos/metadata/*blob 已存储对象的元数据
func (h *VideoHandler) Metadata(c *gin.Context) {
	blob := strings.TrimPrefix(c.Param("blob"), "/")
	if blob == "" {
		response.NotFound(c, "File not found")
		return
	}

	info, err := h.store.Metadata(c.Request.Context(), blob)
	if err != nil {
		handleVideoError(c, err)
		return
	}
	response.OK(c, info)
}

func handleVideoError(c *gin.Context, err error) {
	if writeStorageError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrVideoNotFound):
		response.NotFound(c, "Video not found")
	case errors.Is(err, service.ErrTitleRequired):
		response.BadRequest(c, "Title is required")
	case errors.Is(err, service.ErrUnauthenticated):
		response.Unauthorized(c, "Unauthorized")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, "Unauthorized")
	default:
		logger.Error("Video operation failed", zap.Error(err))
		response.InternalError(c, "An unexpected error occurred")
	}
}
