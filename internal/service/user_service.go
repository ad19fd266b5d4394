package service

import (
	"context"
	"errors"
	"strings"

	"vidshare/internal/api/dto"
	"vidshare/internal/model"
	"vidshare/internal/repository"
	"vidshare/internal/storage"
	"vidshare/pkg/logger"
	"vidshare/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo *repository.UserRepository
	store    *storage.Adapter
}

func NewUserService(userRepo *repository.UserRepository, store *storage.Adapter) *UserService {
	return &UserService{userRepo: userRepo, store: store}
}

// UpdateProfile 部分更新用户资料，avatar 可为 nil。
// 头像写入对象存储成功之后才会修改用户记录；存储结果放在返回值的 File 中。
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest, avatar *storage.Object) (*dto.UpdateProfileData, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	updates := make(map[string]interface{})

	if v := strings.TrimSpace(req.Username); v != "" {
		updates["username"] = v
	}
	if v := normalizeEmail(req.Email); v != "" && v != user.Email {
		exists, err := s.userRepo.ExistsByEmail(v)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailExists
		}
		updates["email"] = v
	}
	if req.Password != "" {
		hashed, err := utils.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hashed
	}
	if v := strings.TrimSpace(req.Bio); v != "" {
		updates["bio"] = v
	}
	if v := strings.TrimSpace(req.Location); v != "" {
		updates["location"] = v
	}

	var file *storage.UploadResult
	if avatar != nil {
		avatar.Kind = storage.KindGeneric
		result, err := s.store.Store(ctx, *avatar)
		if err != nil {
			return nil, err
		}
		logger.Info("Profile file stored",
			zap.Int64("user_id", userID),
			zap.String("blob", result.BlobName),
			zap.Int64("size", result.Size),
		)
		updates["avatar_url"] = result.URL
		file = result
	}

	if len(updates) > 0 {
		if user, err = s.applyUpdates(userID, updates); err != nil {
			return nil, err
		}
	}

	return &dto.UpdateProfileData{
		Success: true,
		Message: "Profile updated successfully",
		User:    user,
		File:    file,
	}, nil
}

func (s *UserService) applyUpdates(userID int64, updates map[string]interface{}) (*model.User, error) {
	updated, err := s.userRepo.Update(userID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return updated, nil
}
