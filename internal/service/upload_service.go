package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vidshare/internal/api/dto"
	"vidshare/internal/infra/kafka"
	"vidshare/internal/model"
	"vidshare/internal/repository"
	"vidshare/internal/storage"
	"vidshare/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrTitleRequired   = errors.New("title is required")
)

// UploadState 上传流程所处阶段
type UploadState string

const (
	StateIdle           UploadState = "idle"
	StateAuthenticating UploadState = "authenticating"
	StateValidating     UploadState = "validating"
	StateTransferring   UploadState = "transferring"
	StatePersisting     UploadState = "persisting"
	StateDone           UploadState = "done"
	StateFailed         UploadState = "failed"
)

// Principal 已通过 token 校验的调用者
type Principal struct {
	UserID int64
	Role   string
}

// VideoEventPublisher 上传完成事件的发布方
type VideoEventPublisher interface {
	PublishVideoUploaded(ctx context.Context, evt *kafka.VideoUploadedEvent) error
}

type UploadService struct {
	store     *storage.Adapter
	videoRepo *repository.VideoRepository
	events    VideoEventPublisher
}

// NewUploadService events 可为 nil（未启用 Kafka）
func NewUploadService(store *storage.Adapter, videoRepo *repository.VideoRepository, events VideoEventPublisher) *UploadService {
	return &UploadService{store: store, videoRepo: videoRepo, events: events}
}

// uploadRun 单次上传的状态记录，每次迁移都写日志
type uploadRun struct {
	id    string
	state UploadState
	log   *zap.Logger
	start time.Time
}

type uploadIDKey struct{}

// WithUploadID 由调用方指定上传 ID，便于与请求日志关联
func WithUploadID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, uploadIDKey{}, id)
}

func newUploadRun(ctx context.Context, p *Principal, filename string) *uploadRun {
	id, _ := ctx.Value(uploadIDKey{}).(string)
	if id == "" {
		id = uuid.NewString()
	}
	fields := []zap.Field{zap.String("upload_id", id), zap.String("filename", filename)}
	if p != nil {
		fields = append(fields, zap.Int64("user_id", p.UserID))
	}
	return &uploadRun{
		id:    id,
		state: StateIdle,
		log:   logger.With(fields...),
		start: time.Now(),
	}
}

func (r *uploadRun) to(state UploadState, fields ...zap.Field) {
	fields = append(fields, zap.String("from", string(r.state)), zap.String("to", string(state)))
	r.state = state
	r.log.Info("Upload state changed", fields...)
}

func (r *uploadRun) fail(err error) error {
	r.state = StateFailed
	r.log.Warn("Upload failed", zap.Duration("elapsed", time.Since(r.start)), zap.Error(err))
	return err
}

// UploadVideo 管理员上传视频：鉴权 -> 校验 -> 写入对象存储 -> 写入视频记录。
// 对象存储写入确认之前不会产生任何数据库记录。
func (s *UploadService) UploadVideo(ctx context.Context, p *Principal, req *dto.UploadVideoRequest, file storage.Object) (*dto.UploadVideoData, error) {
	run := newUploadRun(ctx, p, file.Filename)
	file.Kind = storage.KindVideo

	run.to(StateAuthenticating)
	if p == nil || p.UserID == 0 {
		return nil, run.fail(ErrUnauthenticated)
	}
	if p.Role != model.RoleAdmin {
		return nil, run.fail(ErrForbidden)
	}

	run.to(StateValidating, zap.Int64("size", file.Size), zap.String("content_type", file.ContentType))
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, run.fail(ErrTitleRequired)
	}
	if err := precheck(s.store.Policy(), file); err != nil {
		return nil, run.fail(err)
	}

	run.to(StateTransferring)
	result, err := s.store.Store(ctx, file)
	if err != nil {
		return nil, run.fail(err)
	}

	run.to(StatePersisting, zap.String("blob", result.BlobName))
	video := &model.Video{
		Title:    title,
		Hashtags: strings.TrimSpace(req.Hashtags),
		URL:      result.URL,
		BlobName: result.BlobName,
	}
	if err := s.videoRepo.Create(video); err != nil {
		run.log.Error("Video record not created, blob orphaned",
			zap.String("blob", result.BlobName),
			zap.String("url", result.URL),
			zap.Error(err),
		)
		return nil, run.fail(fmt.Errorf("create video record: %w", err))
	}

	run.to(StateDone, zap.Int64("video_id", video.ID), zap.Duration("elapsed", time.Since(run.start)))
	s.publishUploaded(ctx, video)

	return &dto.UploadVideoData{
		Success:     true,
		Message:     "Video uploaded successfully",
		Video:       video,
		FileDetails: result,
	}, nil
}

// precheck 传输前的快速校验；未声明类型的文件由存储层嗅探后再判定
func precheck(policy storage.Policy, file storage.Object) error {
	if file.Reader == nil || file.Size <= 0 {
		return storage.ErrEmptyFile
	}
	if err := policy.CheckSize(file.Size, storage.KindVideo); err != nil {
		return err
	}
	ct := storage.NormalizeContentType(file.ContentType)
	if ct != "" && ct != "application/octet-stream" && !policy.AllowsVideoType(ct) {
		return fmt.Errorf("%w: %q", storage.ErrUnsupportedFormat, ct)
	}
	return nil
}

// publishUploaded 发布失败只记录日志，不影响上传结果
func (s *UploadService) publishUploaded(ctx context.Context, video *model.Video) {
	if s.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	evt := &kafka.VideoUploadedEvent{
		VideoID:   video.ID,
		Title:     video.Title,
		Hashtags:  video.Hashtags,
		URL:       video.URL,
		BlobName:  video.BlobName,
		CreatedAt: video.CreatedAt,
	}
	if err := s.events.PublishVideoUploaded(ctx, evt); err != nil {
		logger.Warn("Failed to publish video uploaded event", zap.Int64("video_id", video.ID), zap.Error(err))
	}
}
