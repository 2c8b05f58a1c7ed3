package controller

import (
	"lingocode_backend/internal/service"
	"lingocode_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	LessonService *service.LessonService
}

func NewAdminController(lessonService *service.LessonService) *AdminController {
	return &AdminController{LessonService: lessonService}
}

// ExportLessons godoc
// @Summary 导出课程页面
// @Description 把所有课程渲染为静态 HTML 上传到配置的存储（本地 / MinIO / OSS）
// @Tags 管理
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.ExportedLesson} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/admin/lessons/export [post]
func (c *AdminController) ExportLessons(ctx *gin.Context) {
	exported, err := c.LessonService.ExportLessons(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, exported)
}
