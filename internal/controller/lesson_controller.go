package controller

import (
	"lingocode_backend/internal/service"
	"lingocode_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService *service.LessonService
	TutorService  *service.TutorService
}

func NewLessonController(lessonService *service.LessonService, tutorService *service.TutorService) *LessonController {
	return &LessonController{
		LessonService: lessonService,
		TutorService:  tutorService,
	}
}

// ListModules godoc
// @Summary 获取课程模块列表
// @Description 返回所有模块及其课程概要，用于仪表盘
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.ModuleSummary} "成功"
// @Router /api/modules [get]
func (c *LessonController) ListModules(ctx *gin.Context) {
	util.Success(ctx, c.LessonService.ListModules())
}

// GetModule godoc
// @Summary 获取单个模块
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   moduleId path int true "模块ID"
// @Success 200 {object} util.Response{data=service.ModuleSummary} "成功"
// @Failure 404 {object} util.Response "模块不存在"
// @Router /api/modules/{moduleId} [get]
func (c *LessonController) GetModule(ctx *gin.Context) {
	moduleID, ok := util.ParseID(ctx.Param("moduleId"))
	if !ok {
		util.BadRequest(ctx, "invalid module id")
		return
	}

	module, err := c.LessonService.GetModule(moduleID)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, module)
}

// GetLesson godoc
// @Summary 获取课程详情
// @Description 返回渲染后的课程内容、练习（不含参考答案）以及前后课程ID
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   moduleId path int true "模块ID"
// @Param   lessonId path int true "课程ID"
// @Success 200 {object} util.Response{data=service.LessonView} "成功"
// @Failure 400 {object} util.Response "参数错误"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/lessons/{moduleId}/{lessonId} [get]
func (c *LessonController) GetLesson(ctx *gin.Context) {
	moduleID, lessonID, ok := lessonParams(ctx)
	if !ok {
		return
	}

	view, err := c.LessonService.GetLesson(moduleID, lessonID)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, view)
}

// swagger:model HelpRequest
type HelpRequest struct {
	Question string `json:"question" binding:"required"`
}

// AskHelp godoc
// @Summary 向 AI 导师提问当前课程
// @Description AI 服务不可用时返回兜底文案，success 为 false
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   moduleId path int true "模块ID"
// @Param   lessonId path int true "课程ID"
// @Param   body body HelpRequest true "问题"
// @Success 200 {object} util.Response{data=service.TutorReply} "成功"
// @Failure 400 {object} util.Response "参数错误"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/lessons/{moduleId}/{lessonId}/help [post]
func (c *LessonController) AskHelp(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	moduleID, lessonID, ok := lessonParams(ctx)
	if !ok {
		return
	}

	var req HelpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reply, err := c.TutorService.LessonHelp(ctx.Request.Context(), userID, moduleID, lessonID, req.Question)
	if err != nil {
		util.ServiceError(ctx, err)
		return
	}
	util.Success(ctx, reply)
}
