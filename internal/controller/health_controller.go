package controller

import (
	"context"
	"lingocode_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

// HealthInfo 随健康检查一起返回的运行配置
type HealthInfo struct {
	StateStore string `json:"stateStore"`
	Storage    string `json:"storage"`
	Lessons    int    `json:"lessons"`
}

type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
	Info  HealthInfo
}

// NewHealthController rdb 为 nil 时不检查 Redis
func NewHealthController(db *gorm.DB, rdb *redis.Client, info HealthInfo) *HealthController {
	return &HealthController{DB: db, Redis: rdb, Info: info}
}

// @Summary 健康检查
// @Description 检查数据库与 Redis 连接，并返回状态存储和课程数量
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthTimeout)
	defer cancel()

	sqlDB, err := c.DB.DB()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if err := sqlDB.PingContext(pingCtx); err != nil {
		util.ServiceUnavailable(ctx, "Database unavailable")
		return
	}

	components := gin.H{"database": "up"}
	if c.Redis != nil {
		if err := c.Redis.Ping(pingCtx).Err(); err != nil {
			util.ServiceUnavailable(ctx, "Redis unavailable")
			return
		}
		components["redis"] = "up"
	}

	util.Success(ctx, gin.H{
		"status":     "ok",
		"components": components,
		"info":       c.Info,
	})
}
