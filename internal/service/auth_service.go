package service

import (
	"errors"
	"strings"

	"vidshare/internal/api/dto"
	"vidshare/internal/model"
	"vidshare/internal/repository"
	"vidshare/pkg/utils"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailExists       = errors.New("email is already registered")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrUsernameRequired  = errors.New("username is required")
)

type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *utils.TokenManager
}

func NewAuthService(userRepo *repository.UserRepository, tokens *utils.TokenManager) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

// Signup 用户注册
func (s *AuthService) Signup(req *dto.SignupRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	email := normalizeEmail(req.Email)

	exists, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
		Role:     role,
	}

	if err := s.userRepo.Create(user); err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	return user, nil
}

// Login 用户登录，返回 token 数据
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginData, error) {
	user, err := s.userRepo.GetByEmail(normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	if !utils.VerifyPassword(req.Password, user.Password) {
		return nil, ErrInvalidCredential
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	return &dto.LoginData{Token: token, User: user}, nil
}

// GetProfile 根据用户 ID 获取用户信息
func (s *AuthService) GetProfile(userID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
