package service

import (
	"errors"
	"lingocode_backend/internal/model"
	"lingocode_backend/internal/repository"
	"lingocode_backend/internal/util"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const maxPageSize = 100

// UserService 管理端的用户维护
type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

// GetUsers 分页查询，page 从 1 开始，pageSize 超出范围时按边界值处理
func (s *UserService) GetUsers(page, pageSize int, filter repository.UserFilter) (*util.PageResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	users, total, err := s.UserRepo.List(filter, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	return &util.PageResponse{List: users, Total: total, Page: page, Limit: pageSize}, nil
}

func (s *UserService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

// DisableUser 禁用/启用用户；不能禁用自己或其他管理员
func (s *UserService) DisableUser(operatorID, id uint, disable bool) error {
	if disable && operatorID == id {
		return util.ErrPermissionDenied
	}
	user, err := s.GetUserByID(id)
	if err != nil {
		return err
	}
	if disable && user.IsAdmin() {
		return util.ErrPermissionDenied
	}
	user.Disabled = disable
	return s.UserRepo.Update(user)
}

// ResetPassword 生成临时密码并返回明文，仅此一次
func (s *UserService) ResetPassword(id uint) (string, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return "", err
	}

	tempPassword := "tmp-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	hashed, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	user.Password = string(hashed)

	if err := s.UserRepo.Update(user); err != nil {
		return "", err
	}
	return tempPassword, nil
}
