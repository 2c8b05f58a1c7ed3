package util

import (
	"errors"
	"lingocode_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构，code 与 HTTP 状态码一致
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func write(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{Code: code, Message: message, Data: data})
}

func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, "success", data)
}

func Created(c *gin.Context, data interface{}) {
	write(c, http.StatusCreated, "created", data)
}

func Error(c *gin.Context, code int, message string) {
	write(c, code, message, nil)
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func ServiceUnavailable(c *gin.Context, message string) {
	Error(c, http.StatusServiceUnavailable, message)
}

func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, "too many requests")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

// 业务错误到状态码的映射，未列出的错误按 500 处理
var errorStatus = []struct {
	err    error
	status int
}{
	{ErrUserNotFound, http.StatusNotFound},
	{ErrModuleNotFound, http.StatusNotFound},
	{ErrLessonNotFound, http.StatusNotFound},
	{ErrEmailRegistered, http.StatusConflict},
	{ErrRunInProgress, http.StatusConflict},
	{ErrInvalidCredentials, http.StatusUnauthorized},
	{ErrPermissionDenied, http.StatusForbidden},
	{ErrUnsupportedLanguage, http.StatusBadRequest},
	{ErrEmptyQuestion, http.StatusBadRequest},
	{ErrInvalidLevel, http.StatusBadRequest},
}

// StatusOf 返回业务错误对应的状态码
func StatusOf(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// ServiceError 按业务错误类型返回 4xx，其余错误记录日志后返回 500
func ServiceError(c *gin.Context, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		LogInternalError(c, err)
		return
	}
	Error(c, status, err.Error())
}

// LogInternalError 记录请求上下文后返回 500，错误细节不返回给客户端
func LogInternalError(c *gin.Context, err error) {
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	}
	if claims := GetUserFromContext(c); claims != nil {
		fields = append(fields, zap.Uint("userID", claims.UserID))
	}
	logger.Log.Error("Internal server error", fields...)
	InternalServerError(c)
}
