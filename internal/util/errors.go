package util

import "errors"

var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrInvalidCredentials  = errors.New("邮箱或密码错误")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrModuleNotFound      = errors.New("module not found")
	ErrLessonNotFound      = errors.New("lesson not found")
	ErrRunInProgress       = errors.New("exercise run already in progress")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrEmptyQuestion       = errors.New("question must not be empty")
	ErrInvalidLevel        = errors.New("invalid level")
)
