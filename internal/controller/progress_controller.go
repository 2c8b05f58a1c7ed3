package controller

import (
	"errors"
	"lingocode_backend/internal/service"
	"lingocode_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
	ProfileService  *service.ProfileService
}

func NewProgressController(progressService *service.ProgressService, profileService *service.ProfileService) *ProgressController {
	return &ProgressController{
		ProgressService: progressService,
		ProfileService:  profileService,
	}
}

// GetProgress godoc
// @Summary 学习进度汇总
// @Description 已完成课程数、本周完成数及各模块进度
// @Tags 进度
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.ProgressSummary} "成功"
// @Router /api/progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	summary, err := c.ProgressService.Summary(ctx.Request.Context(), userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// GetLevels godoc
// @Summary 获取学习者等级
// @Description 未设置时返回默认等级 B1 / beginner
// @Tags 进度
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.Levels} "成功"
// @Router /api/profile/levels [get]
func (c *ProgressController) GetLevels(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	levels, err := c.ProfileService.Levels(ctx.Request.Context(), userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, levels)
}

// UpdateLevels godoc
// @Summary 更新学习者等级
// @Description 英语等级 A1-C2，编程等级 beginner / intermediate / advanced；空字段保持不变
// @Tags 进度
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.Levels true "等级"
// @Success 200 {object} util.Response{data=service.Levels} "成功"
// @Failure 400 {object} util.Response "等级无效"
// @Router /api/profile/levels [put]
func (c *ProgressController) UpdateLevels(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.Levels
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	levels, err := c.ProfileService.UpdateLevels(ctx.Request.Context(), userID, req)
	if errors.Is(err, util.ErrInvalidLevel) {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, levels)
}
