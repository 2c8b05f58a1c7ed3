package middleware

import (
	"errors"
	"lingocode_backend/internal/config"
	"lingocode_backend/internal/model"
	"lingocode_backend/internal/util"
	"lingocode_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserLookup 每次请求回查用户，使禁用和角色变更立即生效
type UserLookup interface {
	FindByID(id uint) (*model.User, error)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// AuthMiddleware users 为 nil 时只校验令牌本身
func AuthMiddleware(cfg *config.Config, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("JWT解析错误", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if users != nil {
			user, err := users.FindByID(claims.UserID)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				util.Unauthorized(c)
				c.Abort()
				return
			case err != nil:
				util.LogInternalError(c, err)
				c.Abort()
				return
			case user.Disabled:
				util.Forbidden(c)
				c.Abort()
				return
			}
			claims.Role = user.Role
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

// RoleMiddleware 管理员可访问所有角色的接口
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if user.Role != model.Admin && !containsRole(roles, user.Role) {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

func containsRole(roles []model.UserRole, role model.UserRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
