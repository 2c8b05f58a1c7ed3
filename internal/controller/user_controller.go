package controller

import (
	"errors"
	"lingocode_backend/internal/model"
	"lingocode_backend/internal/repository"
	"lingocode_backend/internal/service"
	"lingocode_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// UserController 管理端用户维护
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// swagger:model DisableUserRequest
type DisableUserRequest struct {
	Disabled bool `json:"disabled"`
}

// GetUsers godoc
// @Summary 获取用户列表
// @Description 分页获取用户列表，支持按角色、状态和关键词筛选
// @Tags 管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码" default(1)
// @Param   pageSize query int false "每页条数" default(10)
// @Param   role query string false "角色筛选"
// @Param   status query string false "状态筛选 (active/disabled)"
// @Param   search query string false "搜索关键词"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "权限不足"
// @Router /api/admin/users [get]
func (c *UserController) GetUsers(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("pageSize", "10"))

	filter := repository.UserFilter{Search: ctx.Query("search")}
	if role := ctx.Query("role"); role != "" {
		if _, ok := model.ParseRole(role); !ok {
			util.BadRequest(ctx, "无效的角色")
			return
		}
		filter.Role = role
	}

	switch ctx.Query("status") {
	case "":
	case "disabled":
		disabled := true
		filter.Disabled = &disabled
	case "active":
		disabled := false
		filter.Disabled = &disabled
	default:
		util.BadRequest(ctx, "无效的状态筛选")
		return
	}

	result, err := c.UserService.GetUsers(page, pageSize, filter)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetUser godoc
// @Summary 获取单个用户信息
// @Tags 管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}

	user, err := c.UserService.GetUserByID(id)
	if errors.Is(err, util.ErrUserNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// DisableUser godoc
// @Summary 禁用或启用用户
// @Description 被禁用的用户无法登录；管理员不能禁用自己
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Param   body body DisableUserRequest true "禁用状态"
// @Success 200 {object} util.Response "成功"
// @Failure 403 {object} util.Response "不能禁用自己"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id}/status [put]
func (c *UserController) DisableUser(ctx *gin.Context) {
	operatorID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}

	var req DisableUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.UserService.DisableUser(operatorID, id, req.Disabled)
	switch {
	case errors.Is(err, util.ErrUserNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case err != nil:
		util.LogInternalError(ctx, err)
	default:
		util.Success(ctx, gin.H{"id": id, "disabled": req.Disabled})
	}
}

// ResetPassword godoc
// @Summary 重置用户密码
// @Description 生成临时密码，仅在响应中返回一次
// @Tags 管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id}/reset-password [post]
func (c *UserController) ResetPassword(ctx *gin.Context) {
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}

	password, err := c.UserService.ResetPassword(id)
	if errors.Is(err, util.ErrUserNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"tempPassword": password})
}
