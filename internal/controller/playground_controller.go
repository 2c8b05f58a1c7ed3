package controller

import (
	"lingocode_backend/internal/curriculum"
	"lingocode_backend/internal/service"
	"lingocode_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PlaygroundController struct {
	PlaygroundService *service.PlaygroundService
	TutorService      *service.TutorService
}

func NewPlaygroundController(playgroundService *service.PlaygroundService, tutorService *service.TutorService) *PlaygroundController {
	return &PlaygroundController{
		PlaygroundService: playgroundService,
		TutorService:      tutorService,
	}
}

// swagger:model PlaygroundRunRequest
type PlaygroundRunRequest struct {
	Language string `json:"language" binding:"required"`
	Code     string `json:"code"`
}

// Run godoc
// @Summary 练习场运行代码
// @Description 运行代码但不判定、不记录进度；HTML/CSS 暂不支持预览
// @Tags 练习场
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body PlaygroundRunRequest true "语言与代码"
// @Success 200 {object} util.Response{data=runner.Result} "成功"
// @Failure 400 {object} util.Response "不支持的语言"
// @Router /api/playground/run [post]
func (c *PlaygroundController) Run(ctx *gin.Context) {
	var req PlaygroundRunRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.PlaygroundService.Run(ctx.Request.Context(), curriculum.Language(req.Language), req.Code)
	if err != nil {
		util.ServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Templates godoc
// @Summary 练习场默认代码模板
// @Tags 练习场
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.PlaygroundTemplate} "成功"
// @Router /api/playground/templates [get]
func (c *PlaygroundController) Templates(ctx *gin.Context) {
	list, err := c.PlaygroundService.Templates()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// swagger:model TutorChatRequest
type TutorChatRequest struct {
	Message  string `json:"message" binding:"required"`
	Language string `json:"language"`
}

// Chat godoc
// @Summary 与 AI 导师对话
// @Description 按当前练习场语言生成上下文；AI 服务不可用时返回兜底文案
// @Tags 练习场
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body TutorChatRequest true "消息"
// @Success 200 {object} util.Response{data=service.TutorReply} "成功"
// @Failure 400 {object} util.Response "参数错误"
// @Router /api/tutor/chat [post]
func (c *PlaygroundController) Chat(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req TutorChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reply, err := c.TutorService.Chat(ctx.Request.Context(), userID, curriculum.Language(req.Language), req.Message)
	if err != nil {
		util.ServiceError(ctx, err)
		return
	}
	util.Success(ctx, reply)
}
