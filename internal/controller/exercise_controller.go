package controller

import (
	"lingocode_backend/internal/service"
	"lingocode_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExerciseController struct {
	ExerciseService *service.ExerciseService
}

func NewExerciseController(exerciseService *service.ExerciseService) *ExerciseController {
	return &ExerciseController{ExerciseService: exerciseService}
}

// swagger:model RunRequest
type RunRequest struct {
	Code string `json:"code"`
}

// Run godoc
// @Summary 运行课程练习
// @Description 执行提交的代码并判定；第一次判对时记录完成。同一练习运行中再次提交返回 409
// @Tags 练习
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   moduleId path int true "模块ID"
// @Param   lessonId path int true "课程ID"
// @Param   body body RunRequest true "代码"
// @Success 200 {object} util.Response{data=service.RunResult} "成功"
// @Failure 400 {object} util.Response "参数错误"
// @Failure 404 {object} util.Response "课程不存在"
// @Failure 409 {object} util.Response "练习正在运行"
// @Router /api/lessons/{moduleId}/{lessonId}/run [post]
func (c *ExerciseController) Run(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	moduleID, lessonID, ok := lessonParams(ctx)
	if !ok {
		return
	}

	var req RunRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ExerciseService.Run(ctx.Request.Context(), userID, moduleID, lessonID, req.Code)
	if err != nil {
		util.ServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// State godoc
// @Summary 查询练习实例状态
// @Tags 练习
// @Produce  json
// @Security ApiKeyAuth
// @Param   moduleId path int true "模块ID"
// @Param   lessonId path int true "课程ID"
// @Success 200 {object} util.Response{data=service.InstanceState} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/lessons/{moduleId}/{lessonId}/state [get]
func (c *ExerciseController) State(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	moduleID, lessonID, ok := lessonParams(ctx)
	if !ok {
		return
	}

	state, err := c.ExerciseService.State(ctx.Request.Context(), userID, moduleID, lessonID)
	if err != nil {
		util.ServiceError(ctx, err)
		return
	}
	util.Success(ctx, state)
}
