package handler

import (
	"errors"

	"vidshare/internal/api/dto"
	"vidshare/internal/api/middleware"
	"vidshare/internal/api/response"
	"vidshare/internal/service"
	"vidshare/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Add 发表评论
// @Summary 发表评论
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AddCommentRequest true "评论内容"
// @Success 201 {object} model.Comment "评论成功"
// @Failure 400 {object} response.ErrorResponse "评论为空"
// @Failure 404 {object} response.ErrorResponse "视频不存在"
// @Router /comments/add [post]
func (h *CommentHandler) Add(c *gin.Context) {
	var req dto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)
	comment, err := h.commentService.AddComment(userID, &req)
	if err != nil {
		handleCommentError(c, err)
		return
	}

	response.Created(c, comment)
}

func handleCommentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyComment):
		response.BadRequest(c, "Comment cannot be empty")
	case errors.Is(err, service.ErrVideoNotFound):
		response.NotFound(c, "Video not found")
	default:
		logger.Error("Comment operation failed", zap.Error(err))
		response.InternalError(c, "An unexpected error occurred")
	}
}
